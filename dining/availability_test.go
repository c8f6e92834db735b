package dining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/dining-engine/dining"
)

func TestAvailableStartTimes_ClosedDay(t *testing.T) {
	// GIVEN: A restaurant open only on Mondays
	f := newFixture(t)
	f.table(t, 1, 4)

	// WHEN: Asking for a Tuesday
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, tuesday, 2)

	// THEN: Empty, not an error
	require.NoError(t, err)
	assert.NotNil(t, times)
	assert.Empty(t, times)
}

func TestAvailableStartTimes_HalfHourSlotsUntilCutoff(t *testing.T) {
	// GIVEN: Monday 09:00-22:00 and a free table
	f := newFixture(t)
	f.table(t, 1, 4)

	// WHEN
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 4)
	require.NoError(t, err)

	// THEN: Every half hour from opening to two hours before closing
	require.Len(t, times, 23)
	assert.Equal(t, "09:00", times[0])
	assert.Equal(t, "09:30", times[1])
	assert.Equal(t, "20:00", times[len(times)-1])
	for _, s := range times {
		c, err := dining.ParseClockTime(s)
		require.NoError(t, err)
		assert.True(t, c.OnSlot(), s)
		assert.LessOrEqual(t, int(c), int(dining.NewClockTime(20, 0)), s)
	}
}

func TestAvailableStartTimes_UnalignedOpening(t *testing.T) {
	// GIVEN: Opening at 09:15, closing at 12:00
	f := newFixture(t)
	f.table(t, 1, 4)
	f.setHours(t, map[string]dining.HoursInput{"1": {OpeningTime: "09:15", ClosingTime: "12:00"}})

	// WHEN
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 2)

	// THEN: The first aligned slot after opening, up to 10:00
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "10:00"}, times)
}

func TestAvailableStartTimes_PeriodShorterThanCutoff(t *testing.T) {
	f := newFixture(t)
	f.table(t, 1, 4)
	f.setHours(t, map[string]dining.HoursInput{"1": {OpeningTime: "09:00", ClosingTime: "10:30"}})

	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 2)

	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestAvailableStartTimes_TodayOnlyFutureSlots(t *testing.T) {
	// GIVEN: Open today (Sunday) and the clock at 12:00
	f := newFixture(t)
	f.table(t, 1, 4)
	f.setHours(t, map[string]dining.HoursInput{
		"1": {OpeningTime: "09:00", ClosingTime: "22:00"},
		"7": {OpeningTime: "09:00", ClosingTime: "22:00"},
	})

	// WHEN
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, today, 2)

	// THEN: 12:00 itself is not strictly later than now
	require.NoError(t, err)
	require.NotEmpty(t, times)
	assert.Equal(t, "12:30", times[0])
	assert.NotContains(t, times, "12:00")
}

func TestAvailableStartTimes_DateInPast(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, saturday, 2)

	assert.ErrorIs(t, err, dining.ErrDateInPast)
	assert.ErrorIs(t, err, dining.ErrValidation)
}

func TestAvailableStartTimes_InvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		date    string
		persons int
	}{
		{"zero persons", monday, 0},
		{"bad date", "19/10/2026", 2},
		{"empty date", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, tt.date, tt.persons)
			assert.ErrorIs(t, err, dining.ErrValidation)
		})
	}
}

func TestAvailableStartTimes_UnknownRestaurant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AvailableStartTimes(f.ctx, 999, monday, 2)

	assert.ErrorIs(t, err, dining.ErrRestaurantNotFound)
	assert.True(t, dining.IsNotFound(err))
}

func TestAvailableStartTimes_NoTableLargeEnough(t *testing.T) {
	f := newFixture(t)
	f.table(t, 1, 4)

	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 5)

	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestAvailableStartTimes_CollisionWindow(t *testing.T) {
	// GIVEN: The only table booked at 18:00 by a party of 2
	f := newFixture(t)
	f.table(t, 1, 4)
	f.book(t, monday, "18:00", 2)

	// WHEN
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 2)
	require.NoError(t, err)

	// THEN: Starts exactly two hours away remain, anything closer is gone
	assert.Contains(t, times, "16:00")
	assert.Contains(t, times, "20:00")
	for _, blocked := range []string{"16:30", "17:00", "18:00", "19:00", "19:30"} {
		assert.NotContains(t, times, blocked)
	}
}

func TestAvailableStartTimes_OtherTableKeepsSlotOpen(t *testing.T) {
	// GIVEN: Two tables, one booked at 18:00
	f := newFixture(t)
	f.table(t, 1, 2)
	f.table(t, 2, 4)
	f.book(t, monday, "18:00", 2)

	// WHEN
	times, err := f.svc.AvailableStartTimes(f.ctx, f.restaurant, monday, 2)
	require.NoError(t, err)

	// THEN: 18:00 is still offered on the other table
	assert.Contains(t, times, "18:00")
}
