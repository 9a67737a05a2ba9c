package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cropcart/internal/analytics"
	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/mw"
	"cropcart/internal/orders"
	"cropcart/internal/report"
)

func FarmerOrdersHandler(orderSvc OrderStore, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID := mw.UserID(r.Context())

		list, err := orderSvc.ListByFarmer(r.Context(), farmerID)
		if err != nil {
			respond.Internal(w, r, "list farmer orders", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, orders.FormatAll(list, farmerID, now()))
	}
}

type analyticsResponse struct {
	View   analytics.ViewMode `json:"view"`
	Series analytics.Series   `json:"series"`
	analytics.Snapshot
}

func AnalyticsHandler(orderSvc OrderStore, crops CropStore, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := analytics.ParseViewMode(r.URL.Query().Get("view"))
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, err.Error())
			return
		}

		_, snap, err := farmerSnapshot(r.Context(), orderSvc, crops, mw.UserID(r.Context()), now())
		if err != nil {
			respond.Internal(w, r, "farmer analytics", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, analyticsResponse{View: mode, Series: snap.Series(mode), Snapshot: snap})
	}
}

func ReportHandler(orderSvc OrderStore, crops CropStore, authSvc Authenticator, exporter *report.Exporter, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := analytics.ParseViewMode(r.URL.Query().Get("view"))
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, err.Error())
			return
		}

		farmerID := mw.UserID(r.Context())
		t := now()
		list, snap, err := farmerSnapshot(r.Context(), orderSvc, crops, farmerID, t)
		if err != nil {
			respond.Internal(w, r, "farmer report", err)
			return
		}

		summary := SummaryFor(snap, mode)
		if user, err := authSvc.GetByID(r.Context(), farmerID); err == nil {
			summary.FarmerName = user.Name
		} else {
			slog.Warn("report without farmer name", "farmer", farmerID, "error", err)
		}

		var buf bytes.Buffer
		if err := exporter.Write(&buf, summary, list, t); err != nil {
			respond.Internal(w, r, "render report", err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cropcart-report-%s.pdf"`, t.Format("2006-01-02")))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// SummaryFor picks the report headline figures for the given view.
func SummaryFor(s analytics.Snapshot, mode analytics.ViewMode) report.Summary {
	sum := report.Summary{
		TotalOrders:           s.TotalOrders,
		PendingOrders:         s.PendingOrders,
		CompletedOrders:       s.CompletedOrders,
		LifetimeEarnings:      s.LifetimeEarnings,
		CurrentPeriodEarnings: s.CurrentMonthEarnings,
		PeriodLabel:           "this month",
	}
	if mode == analytics.ViewWeekly {
		series := s.Series(mode)
		sum.CurrentPeriodEarnings = series.Earnings[len(series.Earnings)-1]
		sum.PeriodLabel = "today"
	}
	return sum
}

func farmerSnapshot(ctx context.Context, orderSvc OrderStore, crops CropStore, farmerID string, now time.Time) ([]orders.FarmerOrder, analytics.Snapshot, error) {
	raw, err := orderSvc.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, analytics.Snapshot{}, fmt.Errorf("list orders: %w", err)
	}
	list := orders.FormatAll(raw, farmerID, now)

	ids := cropIDs(list)
	resolved, err := crops.ByIDs(ctx, ids)
	if err != nil {
		// Unresolved crops fall into "Other"; losing the breakdown beats losing the page.
		slog.Warn("resolve crops for analytics", "farmer", farmerID, "error", err)
		resolved = map[string]model.Crop{}
	}

	return list, analytics.Aggregate(list, resolved, now), nil
}

func cropIDs(list []orders.FarmerOrder) []string {
	seen := map[string]bool{}
	var ids []string
	for _, o := range list {
		for _, item := range o.Items {
			if !seen[item.CropID] {
				seen[item.CropID] = true
				ids = append(ids, item.CropID)
			}
		}
	}
	return ids
}
