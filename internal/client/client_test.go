package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/orders"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, AuthResult{Token: "tok-1", User: &model.User{ID: "farmer-1", Role: model.RoleFarmer}})
	})
	mux.HandleFunc("GET /api/farmer/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, "missing bearer token")
			return
		}
		respond.JSON(w, r, http.StatusOK, []orders.FarmerOrder{{ID: "o1", Status: orders.StatusPending}})
	})
	mux.HandleFunc("PATCH /api/orders/{id}/fulfill", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "done":
			respond.Error(w, r, http.StatusConflict, respond.CodeAlreadyFulfilled, "order already fulfilled")
		case "missing":
			respond.Error(w, r, http.StatusNotFound, respond.CodeOrderNotFound, "order not found")
		default:
			respond.JSON(w, r, http.StatusOK, map[string]string{"id": r.PathValue("id")})
		}
	})
	mux.HandleFunc("GET /api/farmer/report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3 fake"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresToken(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.FarmerOrders(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("before login: err = %v, want ErrUnauthorized", err)
	}

	res, err := c.Login(ctx, "ravi@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != "farmer-1" || c.Token() != "tok-1" {
		t.Errorf("login result = %+v token %q", res.User, c.Token())
	}

	list, err := c.FarmerOrders(ctx)
	if err != nil {
		t.Fatalf("FarmerOrders: %v", err)
	}
	if len(list) != 1 || list[0].ID != "o1" {
		t.Errorf("orders = %+v", list)
	}
}

func TestFulfillErrors(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	tests := []struct {
		id   string
		want error
	}{
		{"o1", nil},
		{"done", ErrAlreadyFulfilled},
		{"missing", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := c.Fulfill(ctx, tt.id)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Fulfill: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.RequestID == "" {
				t.Errorf("expected APIError with request id, got %#v", err)
			}
		})
	}
}

func TestReport(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)

	var buf bytes.Buffer
	if err := c.Report(context.Background(), "monthly", &buf); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if buf.String() != "%PDF-1.3 fake" {
		t.Errorf("report body = %q", buf.String())
	}
}
