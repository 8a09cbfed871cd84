/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique id per request for tracing
  4. CORS:       cross-origin requests for the browser client
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openlease/roomrental/metrics"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Account"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/status", h.UserStatus)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Post("/", h.CreateRoom)
			r.Get("/stats", h.RoomStats)
			r.Get("/{id}", h.GetRoom)
			r.Delete("/{id}", h.DeleteRoom)
			r.Post("/{id}/appointment", h.MakeAppointment)
			r.Get("/{id}/appointment", h.GetAppointment)
			r.Delete("/{id}/appointment", h.DeleteAppointment)
		})

		r.Route("/rentals", func(r chi.Router) {
			r.Post("/", h.RentRoom)
			r.Post("/move-in", h.MoveIn)
			r.Post("/move-out", h.MoveOut)
			r.Post("/refund", h.RefundRoom)
			r.Get("/current", h.CurrentRental)
		})

		r.Route("/balance", func(r chi.Router) {
			r.Get("/", h.GetBalance)
			r.Post("/withdraw", h.Withdraw)
		})

		r.Get("/audit", h.AuditTrail)
		r.Post("/seed/demo", h.SeedDemo)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
