package dining_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/dining-engine/dining"
	"github.com/tablenest/dining-engine/store/sqlite"
)

// Sunday noon. The next day is a Monday.
var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

const (
	today    = "2026-10-18"
	monday   = "2026-10-19"
	tuesday  = "2026-10-20"
	saturday = "2026-10-17"
)

// recorder is a Notifier that keeps every message.
type recorder struct {
	mu    sync.Mutex
	notes []dining.Notification
	err   error
}

func (r *recorder) Notify(_ context.Context, recipient, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, dining.Notification{Recipient: recipient, Subject: subject, Body: body})
	return r.err
}

func (r *recorder) sent() []dining.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dining.Notification(nil), r.notes...)
}

type fixture struct {
	ctx        context.Context
	svc        *dining.Service
	store      *sqlite.Store
	notes      *recorder
	manager    dining.UserID
	diner      dining.UserID
	restaurant dining.RestaurantID
}

// newFixture creates a restaurant open Mondays 09:00-22:00 with no tables,
// managed by one user, plus a second user who books and orders.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	notes := &recorder{}
	svc := dining.NewService(store, notes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return testNow }
	svc.Location = time.UTC

	f := &fixture{ctx: context.Background(), svc: svc, store: store, notes: notes}

	manager, err := svc.CreateUser(f.ctx, "Maria Rossi", "maria@example.com")
	require.NoError(t, err)
	diner, err := svc.CreateUser(f.ctx, "Dan Brown", "dan@example.com")
	require.NoError(t, err)
	f.manager, f.diner = manager.ID, diner.ID

	r, err := svc.CreateRestaurant(f.ctx, f.manager, dining.RestaurantInput{
		Name:     "Trattoria Nest",
		Category: "Italian",
		Location: "51.5072,-0.1276",
	})
	require.NoError(t, err)
	f.restaurant = r.ID

	f.setHours(t, map[string]dining.HoursInput{"1": {OpeningTime: "09:00", ClosingTime: "22:00"}})
	return f
}

func (f *fixture) setHours(t *testing.T, hours map[string]dining.HoursInput) []dining.BookedReservation {
	t.Helper()
	cancelled, err := f.svc.SetOpeningPeriods(f.ctx, f.restaurant, hours)
	require.NoError(t, err)
	return cancelled
}

func (f *fixture) table(t *testing.T, number, capacity int) *dining.Table {
	t.Helper()
	table, err := f.svc.CreateTable(f.ctx, f.restaurant, number, capacity)
	require.NoError(t, err)
	return table
}

func (f *fixture) book(t *testing.T, date, clock string, persons int) *dining.BookedReservation {
	t.Helper()
	r, err := f.svc.MakeReservation(f.ctx, f.diner, f.restaurant, date, clock, persons)
	require.NoError(t, err)
	return r
}

func (f *fixture) menuItem(t *testing.T, name, price string) *dining.MenuItem {
	t.Helper()
	item, err := f.svc.AddMenuItem(f.ctx, f.restaurant, dining.MenuItemInput{
		Section: "Mains",
		Name:    name,
		Price:   decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return item
}

// waitNotes waits for background notifications and returns them.
func (f *fixture) waitNotes() []dining.Notification {
	f.svc.Wait()
	return f.notes.sent()
}
