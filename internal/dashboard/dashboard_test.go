package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cropcart/internal/analytics"
	"cropcart/internal/client"
	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/orders"
)

func TestAnalyticsFailureLeavesOtherSections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/farmer/crops", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, []model.Crop{{ID: "c1", Name: "Tomato"}})
	})
	mux.HandleFunc("GET /api/farmer/orders", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, []orders.FarmerOrder{{ID: "o1"}, {ID: "o2"}})
	})
	mux.HandleFunc("GET /api/farmer/analytics", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternal, "internal error")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewLoader(client.New(srv.URL)).Load(context.Background(), analytics.ViewMonthly)

	if len(d.Crops) != 1 || d.CropsErr != nil {
		t.Errorf("crops = %+v err %v", d.Crops, d.CropsErr)
	}
	if len(d.Orders) != 2 || d.OrdersErr != nil {
		t.Errorf("orders = %+v err %v", d.Orders, d.OrdersErr)
	}
	if d.Analytics != nil {
		t.Errorf("analytics = %+v, want nil", d.Analytics)
	}
	var apiErr *client.APIError
	if !errors.As(d.AnalyticsErr, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("analytics err = %v", d.AnalyticsErr)
	}
	if d.Loaded() {
		t.Error("Loaded() = true with a failed section")
	}
}

type stubSource struct {
	cropsErr error
}

func (s stubSource) FarmerCrops(context.Context) ([]model.Crop, error) {
	if s.cropsErr != nil {
		return nil, s.cropsErr
	}
	return []model.Crop{{ID: "c1"}}, nil
}

func (stubSource) FarmerOrders(context.Context) ([]orders.FarmerOrder, error) {
	return []orders.FarmerOrder{}, nil
}

func (stubSource) Analytics(_ context.Context, mode analytics.ViewMode) (*client.Analytics, error) {
	return &client.Analytics{View: mode}, nil
}

func TestLoadAllSections(t *testing.T) {
	tests := []struct {
		name       string
		src        stubSource
		wantLoaded bool
	}{
		{"all ok", stubSource{}, true},
		{"crops fail", stubSource{cropsErr: errors.New("boom")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewLoader(tt.src).Load(context.Background(), analytics.ViewWeekly)
			if d.Loaded() != tt.wantLoaded {
				t.Errorf("Loaded() = %v, want %v", d.Loaded(), tt.wantLoaded)
			}
			if d.Analytics == nil || d.Analytics.View != analytics.ViewWeekly {
				t.Errorf("analytics = %+v", d.Analytics)
			}
		})
	}
}
