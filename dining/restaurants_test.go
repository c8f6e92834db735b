package dining_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/dining-engine/dining"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.CreateUser(f.ctx, "  Ann Lee ", "Ann.Lee@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.Name)
	assert.Equal(t, "ann.lee@example.com", u.Email)
	assert.False(t, u.Professional)

	_, err = f.svc.CreateUser(f.ctx, "Ann Again", "ann.lee@example.com")
	assert.ErrorIs(t, err, dining.ErrDuplicateEmail)

	_, err = f.svc.CreateUser(f.ctx, "Nobody", "not-an-email")
	assert.ErrorIs(t, err, dining.ErrValidation)

	_, err = f.svc.GetUser(f.ctx, 999)
	assert.ErrorIs(t, err, dining.ErrUserNotFound)
}

func TestCreateRestaurant_ManagerBecomesProfessional(t *testing.T) {
	f := newFixture(t)

	manager, err := f.svc.GetUser(f.ctx, f.manager)
	require.NoError(t, err)
	assert.True(t, manager.Professional)

	managed, err := f.svc.ManagedRestaurant(f.ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, f.restaurant, managed.ID)
	assert.InDelta(t, 51.5072, managed.Location.Latitude, 1e-9)

	// One restaurant per manager
	_, err = f.svc.CreateRestaurant(f.ctx, f.manager, dining.RestaurantInput{Name: "Second", Location: "0,0"})
	assert.ErrorIs(t, err, dining.ErrAlreadyManager)

	_, err = f.svc.ManagedRestaurant(f.ctx, f.diner)
	assert.ErrorIs(t, err, dining.ErrRestaurantNotFound)
}

func TestRestaurantInputValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   dining.RestaurantInput
	}{
		{"empty name", dining.RestaurantInput{Location: "1,1"}},
		{"long name", dining.RestaurantInput{Name: "A restaurant name that is far too long to be accepted", Location: "1,1"}},
		{"long category", dining.RestaurantInput{Name: "Ok", Category: "A category name that is far too long to be accepted", Location: "1,1"}},
		{"one coordinate", dining.RestaurantInput{Name: "Ok", Location: "51.5"}},
		{"not numbers", dining.RestaurantInput{Name: "Ok", Location: "north,west"}},
		{"latitude out of range", dining.RestaurantInput{Name: "Ok", Location: "91,0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateRestaurant(f.ctx, f.manager, tt.in)
			assert.ErrorIs(t, err, dining.ErrValidation)
		})
	}
}

func TestUpdateRestaurant(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.UpdateRestaurant(f.ctx, f.manager, dining.RestaurantInput{
		Name: "Nest Osteria", Category: "Italian", Location: "45.4642,9.19",
	})
	require.NoError(t, err)
	assert.Equal(t, f.restaurant, r.ID)

	all, err := f.svc.ListRestaurants(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Nest Osteria", all[0].Name)

	_, err = f.svc.UpdateRestaurant(f.ctx, f.diner, dining.RestaurantInput{Name: "Hijack", Location: "0,0"})
	assert.ErrorIs(t, err, dining.ErrRestaurantNotFound)
}

func TestReviews(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MakeReview(f.ctx, f.diner, f.restaurant, 6, "Great", "")
	assert.ErrorIs(t, err, dining.ErrValidation)

	_, err = f.svc.MakeReview(f.ctx, f.diner, 999, 5, "Great", "")
	assert.ErrorIs(t, err, dining.ErrRestaurantNotFound)

	rv, err := f.svc.MakeReview(f.ctx, f.diner, f.restaurant, 5, "Great pasta", "Would book again.")
	require.NoError(t, err)
	assert.Equal(t, "Dan Brown", rv.UserName)

	reviews, err := f.svc.Reviews(f.ctx, f.restaurant)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, "Dan Brown", reviews[0].UserName)
}

func TestMetrics(t *testing.T) {
	// GIVEN: Today (Sunday) a reservation at 18:00 and two orders placed
	// in the noon hour, fulfilled after 20 and 31 minutes
	f := newFixture(t)
	table := f.table(t, 1, 4)
	f.book(t, today, "18:00", 2)
	f.book(t, monday, "18:00", 2)

	for _, wait := range []time.Duration{20 * time.Minute, 31*time.Minute + 40*time.Second} {
		f.svc.Now = func() time.Time { return testNow }
		o, err := f.svc.CreateOrder(f.ctx, f.diner, f.restaurant, table.ID)
		require.NoError(t, err)
		f.svc.Now = func() time.Time { return testNow.Add(wait) }
		require.NoError(t, o.SetStatus(f.ctx, false, true, false))
	}
	f.svc.Now = func() time.Time { return testNow }

	// WHEN
	m, err := f.svc.Metrics(f.ctx, f.restaurant)
	require.NoError(t, err)

	// THEN: Tomorrow's booking is not counted; waits are whole minutes
	assert.Equal(t, map[int]int{18: 1}, m.HourlyReservations)
	assert.Equal(t, map[int]float64{12: 25.5}, m.HourlyWaitingTimes)
}
