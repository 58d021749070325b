package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	authsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/auth"
	httperrors "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/errors"
)

var errTrailingData = errors.New("unexpected data after json body")

// decodeJSON reads exactly one JSON value from the body. Unknown top-level
// fields are ignored.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// ClientKey identifies the caller for rate limiting and the export journal:
// the token subject when authenticated, otherwise the remote IP.
func ClientKey(r *http.Request) string {
	if claims, ok := authsvc.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeTooLarge(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
