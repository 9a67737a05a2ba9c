package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cropcart/internal/audit"
	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/mw"
	"cropcart/internal/orders"
	"cropcart/internal/service"
)

type placeOrderRequest struct {
	Buyer               model.Buyer         `json:"buyer"`
	Items               []service.PlaceItem `json:"items"`
	DeliveryTimeMinutes int                 `json:"deliveryTimeMinutes"`
}

func PlaceOrderHandler(orderSvc OrderStore, recorder audit.Recorder, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}
		if req.Buyer.Name == "" || req.Buyer.Email == "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "buyer name and email required")
			return
		}
		if req.DeliveryTimeMinutes < 0 {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "deliveryTimeMinutes must not be negative")
			return
		}

		order, err := orderSvc.Place(r.Context(), service.PlaceOrderInput{
			Buyer:               req.Buyer,
			Items:               req.Items,
			DeliveryTimeMinutes: req.DeliveryTimeMinutes,
		}, now())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidQuantity):
				respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, err.Error())
			case errors.Is(err, service.ErrCropNotFound):
				respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeNotFound, err.Error())
			default:
				respond.Internal(w, r, "place order", err)
			}
			return
		}

		record(r.Context(), recorder, audit.Event{
			Action:  audit.ActionOrderPlaced,
			OrderID: order.ID,
			ActorID: order.Buyer.ID,
			Data:    map[string]any{"items": len(order.Items)},
		})
		respond.JSON(w, r, http.StatusCreated, orders.ForBuyer(*order, now()))
	}
}

func BuyerOrdersHandler(orderSvc OrderStore, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if userID != mw.UserID(r.Context()) {
			respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden, "cannot list another user's orders")
			return
		}

		list, err := orderSvc.ListByBuyer(r.Context(), userID)
		if err != nil {
			respond.Internal(w, r, "list buyer orders", err)
			return
		}

		t := now()
		views := make([]orders.BuyerOrder, 0, len(list))
		for _, o := range list {
			views = append(views, orders.ForBuyer(o, t))
		}
		respond.JSON(w, r, http.StatusOK, views)
	}
}

// FulfillOrderHandler applies the pending -> completed transition. The
// result is distinguishable by error code so callers can treat
// ORDER_ALREADY_FULFILLED as a no-op.
func FulfillOrderHandler(orderSvc OrderStore, recorder audit.Recorder, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		userID := mw.UserID(r.Context())

		order, err := orderSvc.Get(r.Context(), id)
		if err != nil {
			writeOrderError(w, r, "get order", err)
			return
		}
		if !involved(*order, userID) {
			respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden, "not a party to this order")
			return
		}

		t := now()
		if err := orderSvc.Fulfill(r.Context(), id, t); err != nil {
			writeOrderError(w, r, "fulfill order", err)
			return
		}

		record(r.Context(), recorder, audit.Event{
			Action:  audit.ActionOrderFulfilled,
			OrderID: id,
			ActorID: userID,
		})

		orders.MarkFulfilled(order, t)
		respond.JSON(w, r, http.StatusOK, orders.ForBuyer(*order, t))
	}
}

func CancelOrderHandler(orderSvc OrderStore, recorder audit.Recorder, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		userID := mw.UserID(r.Context())

		if err := orderSvc.Cancel(r.Context(), id, userID, now()); err != nil {
			writeOrderError(w, r, "cancel order", err)
			return
		}

		record(r.Context(), recorder, audit.Event{
			Action:  audit.ActionOrderCancelled,
			OrderID: id,
			ActorID: userID,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func OrderEventsHandler(orderSvc OrderStore, recorder audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		order, err := orderSvc.Get(r.Context(), id)
		if err != nil {
			writeOrderError(w, r, "get order", err)
			return
		}
		if !involved(*order, mw.UserID(r.Context())) {
			respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden, "not a party to this order")
			return
		}

		events, err := recorder.History(r.Context(), id, 50)
		if err != nil {
			respond.Internal(w, r, "order history", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, events)
	}
}

// involved reports whether userID placed the order or sells any of its items.
func involved(o model.Order, userID string) bool {
	if userID == "" {
		return false
	}
	if o.Buyer.ID == userID {
		return true
	}
	for _, item := range o.Items {
		if item.FarmerID == userID {
			return true
		}
	}
	return false
}

func writeOrderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respond.Error(w, r, http.StatusNotFound, respond.CodeOrderNotFound, "order not found")
	case errors.Is(err, service.ErrOrderAlreadyFulfilled):
		respond.Error(w, r, http.StatusConflict, respond.CodeAlreadyFulfilled, "order already fulfilled")
	case errors.Is(err, service.ErrOrderNotDue):
		respond.Error(w, r, http.StatusConflict, respond.CodeOrderNotDue, "delivery time has not elapsed")
	case errors.Is(err, service.ErrOrderCompleted):
		respond.Error(w, r, http.StatusConflict, respond.CodeOrderCompleted, "order already completed")
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden, "not allowed")
	default:
		respond.Internal(w, r, op, err)
	}
}

// record writes an audit event. Failures are logged, never surfaced.
func record(ctx context.Context, recorder audit.Recorder, e audit.Event) {
	if err := recorder.Record(ctx, e); err != nil {
		slog.Warn("audit record failed", "action", e.Action, "order", e.OrderID, "error", err)
	}
}
