package httpjson

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"go.uber.org/zap"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{apierr.Validation("quantity must be positive"), http.StatusBadRequest, "validation"},
		{apierr.Unauthorized("no token"), http.StatusUnauthorized, "unauthorized"},
		{apierr.Forbidden("not your listing"), http.StatusForbidden, "forbidden"},
		{apierr.NotFound("no such item"), http.StatusNotFound, "not_found"},
		{apierr.Conflict("already claimed"), http.StatusConflict, "conflict"},
		{apierr.Unavailable(errors.New("down"), "store unreachable"), http.StatusServiceUnavailable, "unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, zap.NewNop(), tt.err)

		if rec.Code != tt.wantStatus {
			t.Errorf("WriteError(%v): status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
		if !strings.Contains(rec.Body.String(), tt.wantCode) {
			t.Errorf("WriteError(%v): body %q missing code %q", tt.err, rec.Body.String(), tt.wantCode)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), errors.New("pq: secret table missing"))

	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("internal error detail leaked into the response body")
	}
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	err := Decode(rec, req, &dst)
	if !errors.Is(err, apierr.ErrValidation) {
		t.Errorf("Decode: got %v, want validation error", err)
	}
}

func TestDecodeRejectsEmptyBody(t *testing.T) {
	var dst struct{}

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	rec := httptest.NewRecorder()

	err := Decode(rec, req, &dst)
	if !errors.Is(err, apierr.ErrValidation) {
		t.Errorf("Decode: got %v, want validation error", err)
	}
}
