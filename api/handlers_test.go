/*
handlers_test.go - HTTP tests for the API handlers

Tests run the full router against an in-memory SQLite store with a pinned
clock (Sunday 2026-10-18 12:00 UTC) and real bearer tokens.

Tests for:
- Sign-up and authentication
- Manager-only routes
- Opening hours, tables, availability and reservations
- The order lifecycle, queue and bill
- Error status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/dining-engine/auth"
	"github.com/tablenest/dining-engine/dining"
	"github.com/tablenest/dining-engine/store/sqlite"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, string) error { return nil }

type session struct {
	id    int64
	token string
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	svc    *dining.Service
	store  *sqlite.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := dining.NewService(store, nopNotifier{}, logger)
	svc.Now = func() time.Time { return testNow }
	svc.Location = time.UTC
	t.Cleanup(svc.Wait)

	authenticator, err := auth.New("test-secret", time.Hour)
	require.NoError(t, err)

	return &testAPI{t: t, router: NewRouter(NewHandler(svc, authenticator, logger)), svc: svc, store: store}
}

func (a *testAPI) do(method, path string, body any, as *session) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.token)
		req.Header.Set("X-User-ID", fmt.Sprint(as.id))
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func (a *testAPI) signUp(name, email string) *session {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/users", CreateUserRequest{Name: name, Email: email}, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[CreateUserResponse](a.t, rec)
	require.NotEmpty(a.t, resp.Token)
	return &session{id: resp.User.ID, token: resp.Token}
}

// openRestaurant signs up a manager whose restaurant opens Mondays
// 09:00-22:00 with a 2-seat and a 4-seat table.
func (a *testAPI) openRestaurant() (*session, string) {
	a.t.Helper()
	manager := a.signUp("Maria Rossi", "maria@example.com")

	rec := a.do(http.MethodPost, "/api/restaurants", RestaurantRequest{
		Name: "Trattoria Nest", Category: "Italian", Location: "51.5072,-0.1276",
	}, manager)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	base := fmt.Sprintf("/api/restaurants/%d", decodeBody[RestaurantDTO](a.t, rec).ID)

	rec = a.do(http.MethodPut, base+"/hours", map[string]HoursDTO{
		"1": {OpeningTime: "09:00", ClosingTime: "22:00"},
	}, manager)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	for number, capacity := range map[int]int{1: 2, 2: 4} {
		rec = a.do(http.MethodPost, base+"/tables", TableRequest{Number: number, Capacity: capacity}, manager)
		require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return manager, base
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestCreateUser_IssuesUsableToken(t *testing.T) {
	a := newTestAPI(t)
	dan := a.signUp("Dan Brown", "Dan@Example.com")

	rec := a.do(http.MethodGet, "/api/me", nil, dan)

	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[UserDTO](t, rec)
	assert.Equal(t, "dan@example.com", me.Email)
	assert.False(t, me.Professional)
}

func TestCreateUser_Rejections(t *testing.T) {
	a := newTestAPI(t)
	a.signUp("Dan Brown", "dan@example.com")

	rec := a.do(http.MethodPost, "/api/users", CreateUserRequest{Name: "Dan Again", Email: "dan@example.com"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/users", CreateUserRequest{Name: "", Email: "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation", resp.Code)
	assert.Equal(t, map[string]any{"name": "is required", "email": "must be a valid email address"}, resp.Details)

	rec = a.do(http.MethodPost, "/api/users", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticated(t *testing.T) {
	a := newTestAPI(t)
	dan := a.signUp("Dan Brown", "dan@example.com")
	eve := a.signUp("Eve Smith", "eve@example.com")

	tests := []struct {
		name string
		as   *session
		want int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"valid", dan, http.StatusOK},
		{"token of another user", &session{id: eve.id, token: dan.token}, http.StatusUnauthorized},
		{"garbage token", &session{id: dan.id, token: "garbage"}, http.StatusUnauthorized},
		{"missing user id", &session{token: dan.token}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/api/me/reservations", nil, tt.as)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestManagerOnlyRoutes(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	rec := a.do(http.MethodGet, base+"/tables", nil, dan)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, base+"/tables", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, base+"/tables", nil, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]TableDTO](t, rec), 2)

	rec = a.do(http.MethodGet, "/api/restaurants/999/tables", nil, manager)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/api/restaurants/abc/tables", nil, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRestaurant_OnlyOnce(t *testing.T) {
	a := newTestAPI(t)
	manager, _ := a.openRestaurant()

	rec := a.do(http.MethodPost, "/api/restaurants", RestaurantRequest{Name: "Second", Location: "0,0"}, manager)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/me", nil, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[UserDTO](t, rec).Professional)
}

// =============================================================================
// HOURS, TABLES & RESERVATIONS
// =============================================================================

func TestHours(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()

	rec := a.do(http.MethodGet, base+"/hours", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hours := decodeBody[[]OpeningPeriodDTO](t, rec)
	require.Len(t, hours, 1)
	assert.Equal(t, OpeningPeriodDTO{Day: 1, DayName: "Monday", OpeningTime: "09:00", ClosingTime: "22:00"}, hours[0])

	rec = a.do(http.MethodPut, base+"/hours", map[string]HoursDTO{
		"8": {OpeningTime: "09:00", ClosingTime: "22:00"},
	}, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPut, base+"/hours", map[string]HoursDTO{}, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTables_DuplicateNumber(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()

	rec := a.do(http.MethodPost, base+"/tables", TableRequest{Number: 1, Capacity: 6}, manager)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, base+"/tables", TableRequest{Number: 3, Capacity: 0}, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationFlow(t *testing.T) {
	// GIVEN: A restaurant with one 2-seat and one 4-seat table
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	// WHEN: Two couples book Monday 18:00
	booking := ReservationRequest{Date: "2026-10-19", Time: "18:00", Persons: 2}
	rec := a.do(http.MethodPost, base+"/reservations", booking, dan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[ReservationDTO](t, rec)
	rec = a.do(http.MethodPost, base+"/reservations", booking, dan)
	require.Equal(t, http.StatusCreated, rec.Code)

	// THEN: The smallest table went first, then the 4-seat one
	assert.Equal(t, 1, first.TableNumber)
	assert.Equal(t, "2026-10-19T18:00:00Z", first.StartsAt)
	assert.Equal(t, 2, decodeBody[ReservationDTO](t, rec).TableNumber)

	// AND: A third booking inside the window finds nothing
	rec = a.do(http.MethodPost, base+"/reservations", ReservationRequest{Date: "2026-10-19", Time: "19:00", Persons: 2}, dan)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no tables available", decodeBody[ErrorResponse](t, rec).Details)

	// AND: Availability skips the blocked starts
	rec = a.do(http.MethodGet, base+"/availability?date=2026-10-19&persons=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	avail := decodeBody[AvailabilityResponse](t, rec)
	assert.Contains(t, avail.StartTimes, "16:00")
	assert.NotContains(t, avail.StartTimes, "16:30")
	assert.NotContains(t, avail.StartTimes, "19:30")
	assert.Contains(t, avail.StartTimes, "20:00")

	// AND: The manager sees both bookings, the diner can cancel one
	rec = a.do(http.MethodGet, base+"/reservations", nil, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ReservationDTO](t, rec), 2)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/reservations/%d", first.ID), nil, manager)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/reservations/%d", first.ID), nil, dan)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, "/api/me/reservations", nil, dan)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ReservationDTO](t, rec), 1)
}

func TestReservation_Validation(t *testing.T) {
	a := newTestAPI(t)
	_, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	tests := []struct {
		name string
		req  ReservationRequest
	}{
		{"bad date", ReservationRequest{Date: "19/10/2026", Time: "18:00", Persons: 2}},
		{"bad time", ReservationRequest{Date: "2026-10-19", Time: "6pm", Persons: 2}},
		{"no persons", ReservationRequest{Date: "2026-10-19", Time: "18:00"}},
		{"in the past", ReservationRequest{Date: "2026-10-17", Time: "18:00", Persons: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, base+"/reservations", tt.req, dan)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := a.do(http.MethodGet, base+"/availability?date=2026-10-19&persons=many", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditTable_ReportsCancelled(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	rec := a.do(http.MethodPost, base+"/reservations", ReservationRequest{Date: "2026-10-19", Time: "18:00", Persons: 4}, dan)
	require.Equal(t, http.StatusCreated, rec.Code)
	booked := decodeBody[ReservationDTO](t, rec)

	rec = a.do(http.MethodPut, fmt.Sprintf("%s/tables/%d", base, booked.TableID), TableRequest{Number: 2, Capacity: 3}, manager)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[EditTableResponse](t, rec)
	assert.Equal(t, 3, resp.Table.Capacity)
	require.Len(t, resp.Cancelled, 1)
	assert.Equal(t, booked.ID, resp.Cancelled[0].ID)
}

// =============================================================================
// ORDERS
// =============================================================================

func TestOrderFlow(t *testing.T) {
	// GIVEN: A menu with one dish and a diner seated at table 1
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	rec := a.do(http.MethodPost, base+"/menu", MenuItemRequest{
		Section: "Mains", Name: "Pasta", Price: decimal.RequireFromString("12.50"),
	}, manager)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pasta := decodeBody[MenuItemDTO](t, rec)

	rec = a.do(http.MethodGet, base+"/tables", nil, manager)
	tables := decodeBody[[]TableDTO](t, rec)

	rec = a.do(http.MethodPost, base+"/orders", CreateOrderRequest{TableID: tables[0].ID}, dan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody[OrderDTO](t, rec)
	assert.Equal(t, "open", order.Status)
	orderPath := fmt.Sprintf("/api/orders/%d", order.ID)

	// WHEN: The diner adds two units
	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: pasta.ID, Quantity: 2}, dan)

	// THEN: The order carries both lines and the running total
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order = decodeBody[OrderDTO](t, rec)
	assert.Len(t, order.Lines, 2)
	assert.True(t, order.Price.Equal(decimal.NewFromInt(25)), order.Price.String())

	// AND: Only the owner adds items, only the manager changes status
	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: pasta.ID, Quantity: 1}, manager)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodPut, orderPath+"/status", OrderStatusRequest{Confirmed: true}, dan)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// AND: The kitchen queue shows the order until it is fulfilled
	rec = a.do(http.MethodGet, base+"/queue", nil, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]OrderDTO](t, rec), 1)
	rec = a.do(http.MethodGet, fmt.Sprintf("%s/queue?after=%d", base, order.ID), nil, manager)
	assert.Empty(t, decodeBody[[]OrderDTO](t, rec))

	rec = a.do(http.MethodPut, orderPath+"/status", OrderStatusRequest{Confirmed: true}, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decodeBody[OrderDTO](t, rec).Status)

	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: pasta.ID, Quantity: 1}, dan)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// AND: The table's bill totals the unpaid order
	rec = a.do(http.MethodGet, fmt.Sprintf("%s/tables/%d/bill", base, tables[0].ID), nil, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	bill := decodeBody[BillDTO](t, rec)
	assert.True(t, bill.Total.Equal(decimal.NewFromInt(25)))
	assert.Len(t, bill.Orders, 1)

	rec = a.do(http.MethodPut, orderPath+"/status", OrderStatusRequest{Fulfilled: true}, manager)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, base+"/queue", nil, manager)
	assert.Empty(t, decodeBody[[]OrderDTO](t, rec))

	rec = a.do(http.MethodGet, orderPath, nil, dan)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fulfilled", decodeBody[OrderDTO](t, rec).Status)
}

func TestOrder_RejectDeletes(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")
	tables := decodeBody[[]TableDTO](t, a.do(http.MethodGet, base+"/tables", nil, manager))

	rec := a.do(http.MethodPost, base+"/orders", CreateOrderRequest{TableID: tables[0].ID}, dan)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderPath := fmt.Sprintf("/api/orders/%d", decodeBody[OrderDTO](t, rec).ID)

	rec = a.do(http.MethodPut, orderPath+"/status", OrderStatusRequest{}, manager)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, orderPath, nil, dan)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddOrderItem_UnknownItem(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")
	tables := decodeBody[[]TableDTO](t, a.do(http.MethodGet, base+"/tables", nil, manager))

	rec := a.do(http.MethodPost, base+"/orders", CreateOrderRequest{TableID: tables[0].ID}, dan)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderPath := fmt.Sprintf("/api/orders/%d", decodeBody[OrderDTO](t, rec).ID)

	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: 999, Quantity: 1}, dan)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: 999, Quantity: 101}, dan)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// brokenLines fails every order line insert after the first.
type brokenLines struct {
	dining.TxStore
	inserted int
}

func (s *brokenLines) WithTx(ctx context.Context, fn func(dining.Store) error) error {
	return s.TxStore.WithTx(ctx, func(st dining.Store) error {
		return fn(&brokenLinesTx{Store: st, parent: s})
	})
}

type brokenLinesTx struct {
	dining.Store
	parent *brokenLines
}

func (s *brokenLinesTx) InsertOrderLine(ctx context.Context, orderID dining.OrderID, itemID dining.MenuItemID) error {
	if s.parent.inserted >= 1 {
		return io.ErrUnexpectedEOF
	}
	s.parent.inserted++
	return s.Store.InsertOrderLine(ctx, orderID, itemID)
}

func TestAddOrderItem_ReportsPartialAdd(t *testing.T) {
	// GIVEN: An open order and a store that stops after one line
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")
	tables := decodeBody[[]TableDTO](t, a.do(http.MethodGet, base+"/tables", nil, manager))

	rec := a.do(http.MethodPost, base+"/menu", MenuItemRequest{Section: "Mains", Name: "Pasta", Price: decimal.NewFromInt(10)}, manager)
	require.Equal(t, http.StatusCreated, rec.Code)
	pasta := decodeBody[MenuItemDTO](t, rec)
	rec = a.do(http.MethodPost, base+"/orders", CreateOrderRequest{TableID: tables[0].ID}, dan)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderPath := fmt.Sprintf("/api/orders/%d", decodeBody[OrderDTO](t, rec).ID)

	a.svc.Store = &brokenLines{TxStore: a.store}

	// WHEN: Three units are requested
	rec = a.do(http.MethodPost, orderPath+"/items", AddItemRequest{MenuItemID: pasta.ID, Quantity: 3}, dan)

	// THEN: The response names how many units made it
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "storage", resp.Code)
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok, "details: %v", resp.Details)
	assert.EqualValues(t, 1, details["added"])
	assert.EqualValues(t, 3, details["requested"])

	rec = a.do(http.MethodGet, orderPath, nil, dan)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decodeBody[OrderDTO](t, rec)
	assert.Len(t, order.Lines, 1)
	assert.True(t, order.Price.Equal(decimal.NewFromInt(10)))
}

func TestMenuAndReviews_Public(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()
	dan := a.signUp("Dan Brown", "dan@example.com")

	for _, name := range []string{"Risotto", "Lasagne"} {
		rec := a.do(http.MethodPost, base+"/menu", MenuItemRequest{Section: "Mains", Name: name, Price: decimal.NewFromInt(10)}, manager)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := a.do(http.MethodGet, base+"/menu", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	menu := decodeBody[[]MenuItemDTO](t, rec)
	require.Len(t, menu, 2)
	assert.Equal(t, "Lasagne", menu[0].Name)

	rec = a.do(http.MethodDelete, fmt.Sprintf("%s/menu/%d", base, menu[0].ID), nil, manager)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodPost, base+"/reviews", ReviewRequest{Rating: 4, Title: "Lovely"}, dan)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodPost, base+"/reviews", ReviewRequest{Rating: 9}, dan)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, base+"/reviews", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeBody[[]ReviewDTO](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Dan Brown", reviews[0].UserName)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestAPI(t)
	manager, base := a.openRestaurant()

	rec := a.do(http.MethodGet, base+"/metrics", nil, manager)

	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody[MetricsDTO](t, rec)
	assert.Empty(t, m.HourlyReservations)
	assert.Empty(t, m.HourlyWaitingTimes)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{dining.ErrTableNotFound, http.StatusNotFound},
		{dining.ErrDateInPast, http.StatusBadRequest},
		{dining.ErrNoTablesAvailable, http.StatusConflict},
		{&dining.StorageError{Op: "x", Err: io.ErrUnexpectedEOF}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
