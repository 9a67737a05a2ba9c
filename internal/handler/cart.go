package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"cropcart/internal/cart"
	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/mw"
)

func GetCartHandler(carts CartStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := carts.Get(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			respond.Internal(w, r, "get cart", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, items)
	}
}

func PutCartHandler(carts CartStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []model.CartItem
		if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}

		saved, err := carts.Put(r.Context(), mw.UserID(r.Context()), items)
		if err != nil {
			if errors.Is(err, cart.ErrInvalidItem) {
				respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, err.Error())
				return
			}
			respond.Internal(w, r, "save cart", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, saved)
	}
}

func ClearCartHandler(carts CartStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := carts.Clear(r.Context(), mw.UserID(r.Context())); err != nil {
			respond.Internal(w, r, "clear cart", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
