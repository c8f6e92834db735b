/*
handlers.go - HTTP API handlers for the dining engine

PURPOSE:
  Exposes the dining engine via REST API. Handles HTTP request/response,
  JSON serialization and request validation, and delegates to dining.Service.

ENDPOINTS:
  Public:
    POST   /api/users                                    Create user, returns token
    GET    /api/restaurants                              List restaurants
    GET    /api/restaurants/{restaurantID}               Restaurant details
    GET    /api/restaurants/{restaurantID}/menu          Menu by section
    GET    /api/restaurants/{restaurantID}/hours         Weekly opening hours
    GET    /api/restaurants/{restaurantID}/availability  Start times for a date and party
    GET    /api/restaurants/{restaurantID}/reviews       Reviews, newest first

  Authenticated (X-User-ID + Authorization: Bearer <token>):
    GET    /api/me, /api/me/reservations, /api/me/restaurant
    POST   /api/restaurants                              Become a manager
    POST   /api/restaurants/{restaurantID}/reservations  Book a table
    DELETE /api/reservations/{reservationID}             Cancel own booking
    POST   /api/restaurants/{restaurantID}/reviews
    POST   /api/restaurants/{restaurantID}/orders        Open an order
    GET    /api/orders/{orderID}                         Owner or manager
    POST   /api/orders/{orderID}/items                   Owner adds units
    PUT    /api/orders/{orderID}/status                  Manager transition

  Manager of {restaurantID} only:
    PUT    /api/restaurants/{restaurantID}
    PUT    /api/restaurants/{restaurantID}/hours
    GET    /api/restaurants/{restaurantID}/tables
    POST   /api/restaurants/{restaurantID}/tables
    PUT    /api/restaurants/{restaurantID}/tables/{tableID}
    GET    /api/restaurants/{restaurantID}/tables/{tableID}/bill
    POST   /api/restaurants/{restaurantID}/menu
    PUT    /api/restaurants/{restaurantID}/menu/{itemID}
    DELETE /api/restaurants/{restaurantID}/menu/{itemID}
    GET    /api/restaurants/{restaurantID}/reservations
    GET    /api/restaurants/{restaurantID}/queue?after=
    GET    /api/restaurants/{restaurantID}/metrics

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid credentials
  - 403: Authenticated but not allowed
  - 404: Resource not found
  - 409: Conflict (no table free, duplicate table number, closed order)
  - 500: Storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - bookings.go, orders.go: Remaining handler groups
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Authenticator issues and checks bearer tokens.
type Authenticator interface {
	Issue(userID dining.UserID) (string, error)
	Authenticate(userID dining.UserID, token string) (bool, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *dining.Service
	Auth    Authenticator
	Logger  *slog.Logger

	validate *validator.Validate
}

// NewHandler creates a new handler over the service.
func NewHandler(svc *dining.Service, auth Authenticator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{Service: svc, Auth: auth, Logger: logger, validate: v}
}

func (h *Handler) loc() *time.Location {
	if h.Service.Location == nil {
		return time.Local
	}
	return h.Service.Location
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

type ctxKey int

const userIDKey ctxKey = iota

// currentUser returns the authenticated user of the request.
func currentUser(ctx context.Context) dining.UserID {
	id, _ := ctx.Value(userIDKey).(dining.UserID)
	return id
}

// Authenticated rejects requests without a valid X-User-ID and bearer token
// pair and records the user in the request context.
func (h *Handler) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Authorization header required (Bearer <token>)", nil)
			return
		}
		id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusUnauthorized, "X-User-ID header required", nil)
			return
		}

		valid, err := h.Auth.Authenticate(dining.UserID(id), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			h.Logger.Error("authentication failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "Failed to authenticate", err)
			return
		}
		if !valid {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, dining.UserID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ManagesRestaurant allows only the manager of {restaurantID}. It must run
// after Authenticated.
func (h *Handler) ManagesRestaurant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "restaurantID")
		if !ok {
			return
		}
		allowed, err := h.manages(r.Context(), dining.RestaurantID(id))
		if err != nil {
			h.writeDomainError(w, "Failed to get restaurant", err)
			return
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "Only the restaurant's manager may do this", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) manages(ctx context.Context, restaurantID dining.RestaurantID) (bool, error) {
	restaurant, err := h.Service.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return false, err
	}
	return restaurant.ManagerID == currentUser(ctx), nil
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// CreateUser registers a user and issues their first token.
// POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeDomainError(w, "Failed to create user", err)
		return
	}
	token, err := h.Auth.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateUserResponse{User: toUserDTO(user), Token: token})
}

// GetMe returns the authenticated user.
// GET /api/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), currentUser(r.Context()))
	if err != nil {
		h.writeDomainError(w, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// RESTAURANT HANDLERS
// =============================================================================

// ListRestaurants returns all restaurants.
// GET /api/restaurants
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Service.ListRestaurants(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list restaurants", err)
		return
	}

	dtos := make([]RestaurantDTO, len(restaurants))
	for i, rs := range restaurants {
		dtos[i] = toRestaurantDTO(rs)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRestaurant returns one restaurant.
// GET /api/restaurants/{restaurantID}
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	restaurant, err := h.Service.GetRestaurant(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get restaurant", err)
		return
	}
	writeJSON(w, http.StatusOK, toRestaurantDTO(*restaurant))
}

// GetManagedRestaurant returns the restaurant the user manages.
// GET /api/me/restaurant
func (h *Handler) GetManagedRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.Service.ManagedRestaurant(r.Context(), currentUser(r.Context()))
	if err != nil {
		h.writeDomainError(w, "Failed to get restaurant", err)
		return
	}
	writeJSON(w, http.StatusOK, toRestaurantDTO(*restaurant))
}

// CreateRestaurant makes the user the manager of a new restaurant.
// POST /api/restaurants
func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantRequest
	if !h.decode(w, r, &req) {
		return
	}

	restaurant, err := h.Service.CreateRestaurant(r.Context(), currentUser(r.Context()), restaurantInput(req))
	if err != nil {
		h.writeDomainError(w, "Failed to create restaurant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRestaurantDTO(*restaurant))
}

// UpdateRestaurant replaces the restaurant's details.
// PUT /api/restaurants/{restaurantID}
func (h *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantRequest
	if !h.decode(w, r, &req) {
		return
	}

	restaurant, err := h.Service.UpdateRestaurant(r.Context(), currentUser(r.Context()), restaurantInput(req))
	if err != nil {
		h.writeDomainError(w, "Failed to update restaurant", err)
		return
	}
	writeJSON(w, http.StatusOK, toRestaurantDTO(*restaurant))
}

func restaurantInput(req RestaurantRequest) dining.RestaurantInput {
	return dining.RestaurantInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
}

// =============================================================================
// REVIEW HANDLERS
// =============================================================================

// ListReviews returns the restaurant's reviews.
// GET /api/restaurants/{restaurantID}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	reviews, err := h.Service.Reviews(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to list reviews", err)
		return
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, rv := range reviews {
		dtos[i] = ReviewDTO{
			ID:       int64(rv.ID),
			UserID:   int64(rv.UserID),
			UserName: rv.UserName,
			Rating:   rv.Rating,
			Title:    rv.Title,
			Body:     rv.Body,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateReview posts a review as the authenticated user.
// POST /api/restaurants/{restaurantID}/reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.Service.MakeReview(r.Context(), currentUser(r.Context()), dining.RestaurantID(id), req.Rating, req.Title, req.Body)
	if err != nil {
		h.writeDomainError(w, "Failed to create review", err)
		return
	}
	writeJSON(w, http.StatusCreated, ReviewDTO{
		ID:       int64(review.ID),
		UserID:   int64(review.UserID),
		UserName: review.UserName,
		Rating:   review.Rating,
		Title:    review.Title,
		Body:     review.Body,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return true
	}

	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return false
		}
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = describeField(fe)
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "validation",
			Details: details,
		})
		return false
	}
	return true
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "datetime":
		return fmt.Sprintf("must match %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// pathID parses a positive integer URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err)
		return 0, false
	}
	return id, true
}

// statusFor maps a dining error kind to its HTTP status.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dining.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, dining.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, dining.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "storage"
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, slog.Any("error", err))
	}

	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}
	var partial *dining.PartialAddError
	if errors.As(err, &partial) {
		resp.Details = map[string]any{
			"added":     partial.Added,
			"requested": partial.Requested,
			"cause":     partial.Err.Error(),
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
