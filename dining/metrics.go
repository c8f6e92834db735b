package dining

import (
	"context"
	"time"
)

// Metrics summarises today's activity of a restaurant, keyed by hour of day.
type Metrics struct {
	// HourlyReservations counts reservations starting in each hour.
	HourlyReservations map[int]int
	// HourlyWaitingTimes is the mean minutes from order to fulfilment for
	// orders placed in each hour and fulfilled today.
	HourlyWaitingTimes map[int]float64
}

func (s *Service) Metrics(ctx context.Context, restaurantID RestaurantID) (*Metrics, error) {
	from := StartOfDay(s.now(), s.loc())
	to := from.AddDate(0, 0, 1)

	var (
		reservations []Reservation
		fulfilled    []FoodOrder
	)
	err := s.inTx(ctx, "calculating metrics", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		var err error
		if reservations, err = st.ReservationsBetween(ctx, restaurantID, from, to.Add(-time.Second)); err != nil {
			return err
		}
		fulfilled, err = st.FulfilledOrdersBetween(ctx, restaurantID, from, to.Add(-time.Second))
		return err
	})
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		HourlyReservations: make(map[int]int),
		HourlyWaitingTimes: make(map[int]float64),
	}
	for _, r := range reservations {
		m.HourlyReservations[r.StartsAt.In(s.loc()).Hour()]++
	}

	orders := make(map[int]int)
	for _, o := range fulfilled {
		hour := o.OrderedAt.In(s.loc()).Hour()
		m.HourlyWaitingTimes[hour] += float64(int(o.FulfilledAt.Sub(o.OrderedAt) / time.Minute))
		orders[hour]++
	}
	for hour, n := range orders {
		m.HourlyWaitingTimes[hour] /= float64(n)
	}
	return m, nil
}
