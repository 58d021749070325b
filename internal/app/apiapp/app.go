package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/buildinfo"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/config"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/rules"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/infra/metrics"
	s3infra "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/infra/s3"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/jobs/cleanup"
	pgrepo "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/repo/postgres"
	redrepo "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/repo/redis"
	authsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/auth"
	exportsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/export"
	ratesvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/rate"
	spoolsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/spool"
)

const bucketCheckTimeout = 5 * time.Second

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	scheduler  *cleanup.Scheduler
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.WriteTimeout)

	order := rules.DefaultColumnOrder()
	if len(cfg.Export.PreferredColumns) > 0 {
		order = rules.NewColumnOrder(cfg.Export.PreferredColumns...)
	}
	exportService := exportsvc.NewService(order, exportsvc.Config{
		SheetName:  cfg.Export.SheetName,
		MaxRecords: cfg.Export.MaxRecords,
	}, log)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace)
		exportService.AttachObserver(collector)
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.DSN == "" {
		log.Info("postgres dsn not configured, export journal disabled")
	} else if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		exportService.AttachJournal(pgrepo.NewExportJournalRepo(pool))
	}

	var redisClient *goredis.Client
	var rateLimiter *ratesvc.Limiter
	if cfg.Redis.Addr == "" {
		log.Info("redis addr not configured, rate limiting disabled")
	} else {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		rateLimiter = ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), cfg.Rate.PerMinute, cfg.Rate.Per10Sec)
	}

	spool, err := newSpool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	job := cleanup.NewSpoolCleanupJob(spool, spool.Backend(), cfg.Spool.Retention, log)
	scheduler := cleanup.NewScheduler(job, cfg.Spool.CleanupSchedule, log)
	if err := scheduler.Start(ctx); err != nil {
		return nil, fmt.Errorf("start spool cleanup: %w", err)
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if !jwtManager.Enabled() {
		log.Info("jwt secret not configured, export routes are public")
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		ExportService: exportService,
		Spool:         spool,
		MaxBodyBytes:  cfg.Export.MaxBodyBytes,
		JWTManager:    jwtManager,
		RateLimiter:   rateLimiter,
		Metrics:       collector,
		Version:       buildinfo.Version,
		Logger:        log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		scheduler:  scheduler,
		httpRouter: r,
	}, nil
}

type sweepingSpool interface {
	spoolsvc.Spool
	cleanup.Sweeper
}

// newSpool builds the configured backend. An unreachable s3 backend falls
// back to the file spool.
func newSpool(ctx context.Context, cfg config.Config, log *zap.Logger) (sweepingSpool, error) {
	switch cfg.Spool.Backend {
	case config.SpoolBackendMemory:
		return spoolsvc.NewMemorySpool(), nil
	case config.SpoolBackendS3:
		s3Spool, err := newS3Spool(ctx, cfg)
		if err == nil {
			return s3Spool, nil
		}
		log.Warn("s3 spool init failed, falling back to file spool", zap.Error(err))
	}

	fileSpool, err := spoolsvc.NewFileSpool(cfg.Spool.Dir, cfg.Spool.Prefix)
	if err != nil {
		return nil, fmt.Errorf("init file spool: %w", err)
	}
	return fileSpool, nil
}

func newS3Spool(ctx context.Context, cfg config.Config) (*spoolsvc.S3Spool, error) {
	client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	checkCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()
	if err := s3infra.EnsureBucket(checkCtx, client, cfg.S3.Bucket); err != nil {
		return nil, err
	}

	return spoolsvc.NewS3Spool(client, cfg.S3.Bucket, cfg.Spool.Prefix)
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("version", buildinfo.Version),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
