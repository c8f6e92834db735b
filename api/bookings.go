package api

import (
	"net/http"
	"strconv"

	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// OPENING HOURS
// =============================================================================

// GetHours returns the restaurant's weekly schedule.
// GET /api/restaurants/{restaurantID}/hours
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	periods, err := h.Service.WeeklyHours(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get opening hours", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// SetHours replaces the weekly schedule and reports the reservations it
// cancelled.
// PUT /api/restaurants/{restaurantID}/hours
func (h *Handler) SetHours(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req map[string]HoursDTO
	if !h.decode(w, r, &req) {
		return
	}

	in := make(map[string]dining.HoursInput, len(req))
	for day, hours := range req {
		in[day] = dining.HoursInput{OpeningTime: hours.OpeningTime, ClosingTime: hours.ClosingTime}
	}

	ctx := r.Context()
	cancelled, err := h.Service.SetOpeningPeriods(ctx, dining.RestaurantID(id), in)
	if err != nil {
		h.writeDomainError(w, "Failed to set opening hours", err)
		return
	}
	periods, err := h.Service.WeeklyHours(ctx, dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get opening hours", err)
		return
	}

	writeJSON(w, http.StatusOK, SetHoursResponse{
		Hours:     toPeriodDTOs(periods),
		Cancelled: toReservationDTOs(cancelled, h.loc()),
	})
}

// =============================================================================
// TABLES
// =============================================================================

// ListTables returns the restaurant's tables.
// GET /api/restaurants/{restaurantID}/tables
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	tables, err := h.Service.ListTables(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to list tables", err)
		return
	}

	dtos := make([]TableDTO, len(tables))
	for i, t := range tables {
		dtos[i] = toTableDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTable adds a table.
// POST /api/restaurants/{restaurantID}/tables
func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req TableRequest
	if !h.decode(w, r, &req) {
		return
	}

	table, err := h.Service.CreateTable(r.Context(), dining.RestaurantID(id), req.Number, req.Capacity)
	if err != nil {
		h.writeDomainError(w, "Failed to create table", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTableDTO(*table))
}

// EditTable renumbers or resizes a table.
// PUT /api/restaurants/{restaurantID}/tables/{tableID}
func (h *Handler) EditTable(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	tableID, ok := pathID(w, r, "tableID")
	if !ok {
		return
	}
	var req TableRequest
	if !h.decode(w, r, &req) {
		return
	}

	table, cancelled, err := h.Service.EditTable(r.Context(),
		dining.RestaurantID(restaurantID), dining.TableID(tableID), req.Number, req.Capacity)
	if err != nil {
		h.writeDomainError(w, "Failed to edit table", err)
		return
	}
	writeJSON(w, http.StatusOK, EditTableResponse{
		Table:     toTableDTO(*table),
		Cancelled: toReservationDTOs(cancelled, h.loc()),
	})
}

// =============================================================================
// AVAILABILITY & RESERVATIONS
// =============================================================================

// GetAvailability returns the bookable start times.
// GET /api/restaurants/{restaurantID}/availability?date=2026-10-19&persons=4
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	persons, err := strconv.Atoi(r.URL.Query().Get("persons"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "persons must be an integer", err)
		return
	}

	times, err := h.Service.AvailableStartTimes(r.Context(), dining.RestaurantID(id), date, persons)
	if err != nil {
		h.writeDomainError(w, "Failed to get availability", err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Persons: persons, StartTimes: times})
}

// CreateReservation books the best-fitting free table.
// POST /api/restaurants/{restaurantID}/reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req ReservationRequest
	if !h.decode(w, r, &req) {
		return
	}

	booked, err := h.Service.MakeReservation(r.Context(), currentUser(r.Context()),
		dining.RestaurantID(id), req.Date, req.Time, req.Persons)
	if err != nil {
		h.writeDomainError(w, "Failed to make reservation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTOs([]dining.BookedReservation{*booked}, h.loc())[0])
}

// ListRestaurantReservations returns every booking of the restaurant.
// GET /api/restaurants/{restaurantID}/reservations
func (h *Handler) ListRestaurantReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	rs, err := h.Service.RestaurantReservations(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to list reservations", err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTOs(rs, h.loc()))
}

// ListMyReservations returns the authenticated user's bookings.
// GET /api/me/reservations
func (h *Handler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Service.UserReservations(r.Context(), currentUser(r.Context()))
	if err != nil {
		h.writeDomainError(w, "Failed to list reservations", err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTOs(rs, h.loc()))
}

// CancelReservation deletes one of the user's bookings.
// DELETE /api/reservations/{reservationID}
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "reservationID")
	if !ok {
		return
	}

	if err := h.Service.CancelReservation(r.Context(), currentUser(r.Context()), dining.ReservationID(id)); err != nil {
		h.writeDomainError(w, "Failed to cancel reservation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
