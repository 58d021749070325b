package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/infra/metrics"
	authsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/auth"
	exportsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/export"
	ratesvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/rate"
	spoolsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/spool"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/handlers"
)

type Dependencies struct {
	ExportService *exportsvc.Service
	Spool         spoolsvc.Spool
	MaxBodyBytes  int64
	JWTManager    *authsvc.JWTManager
	RateLimiter   *ratesvc.Limiter
	Metrics       *metrics.Collector
	Version       string
	Logger        *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	infoHandler := handlers.NewInfoHandler(deps.Version)
	exportHandler := handlers.NewExportHandler(deps.ExportService, deps.Spool, deps.MaxBodyBytes, deps.Logger)
	if deps.Metrics != nil {
		exportHandler.AttachObserver(deps.Metrics)
	}

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	rateMW := RateLimitMiddleware(deps.RateLimiter, deps.Logger)

	r.Get("/", infoHandler.Get)
	r.Get("/healthz", healthHandler.Get)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.With(authMW, rateMW).Post("/convert-to-excel", exportHandler.Convert)
	r.Route("/v1", func(r chi.Router) {
		r.With(authMW, rateMW).Post("/export", exportHandler.Convert)
	})
}
