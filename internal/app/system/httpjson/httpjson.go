// internal/app/system/httpjson/httpjson.go

// Package httpjson centralizes JSON response writing and the mapping
// from apierr kinds to HTTP status codes. Handlers never set status
// codes for domain errors themselves.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"go.uber.org/zap"
)

// MaxBodySize caps JSON request bodies. Listings and profiles are small;
// anything near this size is not a legitimate request.
const MaxBodySize = 1 << 20 // 1 MB

// ErrorBody is the uniform error shape for every API error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write sends data as JSON with the given status.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Error("encoding JSON response failed", zap.Error(err))
		}
	}
}

// WriteError maps err onto a status code via its apierr kind and writes
// the uniform error body. Unknown errors become 500 with a generic
// message; the cause goes to the log, not the wire.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		msg = "internal server error"
	}
	Write(w, status, ErrorBody{Error: apierr.Code(err), Message: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apierr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apierr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apierr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apierr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apierr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apierr.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into dst with a size cap. A malformed
// or oversized body is a validation failure, not a server error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validation("request body is required")
		}
		return apierr.Validation("malformed JSON body: %v", err)
	}
	return nil
}
