/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through the service's slog handler
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  public        user sign-up, restaurant discovery, menu, hours, availability
  Authenticated bookings, reviews, orders, the caller's own data
  Manager       everything under /api/restaurants/{restaurantID} that changes
                the restaurant or shows its operations

SEE ALSO:
  - handlers.go: Handler implementations and the endpoint list
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(h.Logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.CreateUser)

		// Public restaurant routes
		r.Get("/restaurants", h.ListRestaurants)
		r.Route("/restaurants/{restaurantID}", func(r chi.Router) {
			r.Get("/", h.GetRestaurant)
			r.Get("/menu", h.GetMenu)
			r.Get("/hours", h.GetHours)
			r.Get("/availability", h.GetAvailability)
			r.Get("/reviews", h.ListReviews)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticated)
				r.Post("/reservations", h.CreateReservation)
				r.Post("/reviews", h.CreateReview)
				r.Post("/orders", h.CreateOrder)

				// Manager routes
				r.Group(func(r chi.Router) {
					r.Use(h.ManagesRestaurant)
					r.Put("/", h.UpdateRestaurant)
					r.Put("/hours", h.SetHours)
					r.Get("/tables", h.ListTables)
					r.Post("/tables", h.CreateTable)
					r.Put("/tables/{tableID}", h.EditTable)
					r.Get("/tables/{tableID}/bill", h.GetTableBill)
					r.Post("/menu", h.CreateMenuItem)
					r.Put("/menu/{itemID}", h.UpdateMenuItem)
					r.Delete("/menu/{itemID}", h.DeleteMenuItem)
					r.Get("/reservations", h.ListRestaurantReservations)
					r.Get("/queue", h.GetOrderQueue)
					r.Get("/metrics", h.GetMetrics)
				})
			})
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticated)
			r.Post("/restaurants", h.CreateRestaurant)

			r.Get("/me", h.GetMe)
			r.Get("/me/reservations", h.ListMyReservations)
			r.Get("/me/restaurant", h.GetManagedRestaurant)

			r.Delete("/reservations/{reservationID}", h.CancelReservation)

			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Get("/", h.GetOrder)
				r.Post("/items", h.AddOrderItem)
				r.Put("/status", h.SetOrderStatus)
			})
		})
	})

	return r
}
