package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	Error(rec, req, http.StatusConflict, CodeAlreadyFulfilled, "order already fulfilled")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") != "req-42" {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error == nil || env.Error.Code != CodeAlreadyFulfilled || env.RequestID != "req-42" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestInternalHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	Internal(rec, req, "query failed", errors.New("pq: password authentication failed"))

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || env.Error.Message != "internal error" {
		t.Errorf("status %d envelope %+v", rec.Code, env)
	}
	if env.RequestID == "" {
		t.Error("expected a generated request id")
	}
}
