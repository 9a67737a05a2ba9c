package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cropcart/internal/handler/respond"
	"cropcart/internal/identity"
	"cropcart/internal/model"
	"cropcart/internal/mw"
	"cropcart/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	IDToken string `json:"idToken"`
	Role    string `json:"role"`
}

type authResponse struct {
	Token       string      `json:"token"`
	User        *model.User `json:"user"`
	MemberSince *time.Time  `json:"member_since,omitempty"`
}

func RegisterHandler(authSvc Authenticator, carts CartStore, secret string, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "name, email and password required")
			return
		}
		if !model.ValidRole(req.Role) {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "role must be buyer or farmer")
			return
		}

		user, err := authSvc.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
		if err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				respond.Error(w, r, http.StatusConflict, respond.CodeEmailTaken, "email already registered")
				return
			}
			respond.Internal(w, r, "register failed", err)
			return
		}

		writeAuth(w, r, user, carts, secret, now(), http.StatusCreated)
	}
}

func LoginHandler(authSvc Authenticator, carts CartStore, secret string, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}
		if req.Email == "" || req.Password == "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "email and password required")
			return
		}

		user, err := authSvc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				respond.Error(w, r, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
			case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrPasswordless):
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeInvalidPassword, "invalid email or password")
			default:
				respond.Internal(w, r, "login failed", err)
			}
			return
		}

		writeAuth(w, r, user, carts, secret, now(), http.StatusOK)
	}
}

func GoogleLoginHandler(authSvc Authenticator, verifier identity.Verifier, carts CartStore, secret string, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req googleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}
		if req.IDToken == "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "idToken required")
			return
		}
		role := req.Role
		if role == "" {
			role = model.RoleBuyer
		}
		if !model.ValidRole(role) {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, "role must be buyer or farmer")
			return
		}

		id, err := verifier.Verify(r.Context(), req.IDToken)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrDisabled):
				respond.Error(w, r, http.StatusNotImplemented, respond.CodeNotImplemented, "federated sign-in disabled")
			case errors.Is(err, identity.ErrInvalidToken):
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid identity token")
			default:
				respond.Internal(w, r, "verify identity token", err)
			}
			return
		}

		user, err := authSvc.UpsertFederated(r.Context(), id.Name, id.Email, role)
		if err != nil {
			respond.Internal(w, r, "federated login failed", err)
			return
		}

		writeAuth(w, r, user, carts, secret, now(), http.StatusOK)
	}
}

func MeHandler(authSvc Authenticator, carts CartStore, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := authSvc.GetByID(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				respond.Error(w, r, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
				return
			}
			respond.Internal(w, r, "get user", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, authResponse{User: user, MemberSince: memberSince(r, carts, user.ID, now())})
	}
}

func writeAuth(w http.ResponseWriter, r *http.Request, user *model.User, carts CartStore, secret string, now time.Time, status int) {
	token, err := issueToken(secret, user, now)
	if err != nil {
		respond.Internal(w, r, "token generation failed", err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	respond.JSON(w, r, status, authResponse{
		Token:       token,
		User:        user,
		MemberSince: memberSince(r, carts, user.ID, now),
	})
}

// memberSince is best effort: a broken state store must not block login.
func memberSince(r *http.Request, carts CartStore, userID string, now time.Time) *time.Time {
	t, err := carts.MemberSince(r.Context(), userID, now)
	if err != nil {
		slog.Warn("member since unavailable", "user", userID, "error", err)
		return nil
	}
	return &t
}
