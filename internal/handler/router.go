package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cropcart/internal/audit"
	"cropcart/internal/handler/respond"
	"cropcart/internal/identity"
	"cropcart/internal/model"
	"cropcart/internal/mw"
	"cropcart/internal/report"
)

type Deps struct {
	Auth      Authenticator
	Crops     CropStore
	Orders    OrderStore
	Carts     CartStore
	Audit     audit.Recorder
	Identity  identity.Verifier
	Exporter  *report.Exporter
	JWTSecret string
	Now       Clock
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Identity == nil {
		d.Identity = identity.Disabled{}
	}
	if d.Exporter == nil {
		d.Exporter = report.NewExporter()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, "route not found")
	})

	// Public routes
	r.Post("/api/auth/register", RegisterHandler(d.Auth, d.Carts, d.JWTSecret, d.Now))
	r.Post("/api/auth/login", LoginHandler(d.Auth, d.Carts, d.JWTSecret, d.Now))
	r.Post("/api/auth/google", GoogleLoginHandler(d.Auth, d.Identity, d.Carts, d.JWTSecret, d.Now))
	r.Get("/api/crops", ListCropsHandler(d.Crops))
	r.Post("/api/orders", PlaceOrderHandler(d.Orders, d.Audit, d.Now))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(d.JWTSecret))

		r.Get("/api/me", MeHandler(d.Auth, d.Carts, d.Now))

		r.Get("/api/orders/user/{userId}", BuyerOrdersHandler(d.Orders, d.Now))
		r.Patch("/api/orders/{id}/fulfill", FulfillOrderHandler(d.Orders, d.Audit, d.Now))
		r.Delete("/api/orders/{id}", CancelOrderHandler(d.Orders, d.Audit, d.Now))
		r.Get("/api/orders/{id}/events", OrderEventsHandler(d.Orders, d.Audit))

		r.Get("/api/cart", GetCartHandler(d.Carts))
		r.Put("/api/cart", PutCartHandler(d.Carts))
		r.Delete("/api/cart", ClearCartHandler(d.Carts))

		r.Route("/api/farmer", func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleFarmer))

			r.Get("/crops", FarmerCropsHandler(d.Crops))
			r.Post("/crops", CreateCropHandler(d.Crops))
			r.Put("/crops/{id}", UpdateCropHandler(d.Crops))
			r.Delete("/crops/{id}", DeleteCropHandler(d.Crops))

			r.Get("/orders", FarmerOrdersHandler(d.Orders, d.Now))
			r.Get("/analytics", AnalyticsHandler(d.Orders, d.Crops, d.Now))
			r.Get("/report", ReportHandler(d.Orders, d.Crops, d.Auth, d.Exporter, d.Now))
		})
	})

	return r
}
