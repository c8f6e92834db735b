/*
Package dining provides the restaurant reservation and ordering engine.

PURPOSE:
  Diners find restaurants, check table availability, book tables, order
  food and review restaurants. Managers (professional users) administer
  their restaurant's tables, opening hours and menu, and follow the live
  order queue.

KEY CONCEPTS IN THIS FILE (types.go):
  - Typed identifiers for every row kind
  - Restaurant, Table, OpeningPeriod, Reservation
  - MenuItem, FoodOrder, OrderItem, Review

ENGINE CONSTANTS:
  CollisionWindow   two reservations on one table must start at least 2h apart
  ClosingCutoff     no reservation may start within 2h of closing
  SlotGranularity   reservations start on the hour or half hour
  HoursSafetyMargin existing bookings survive an hours change only if they
                    start at least 1h before the new closing time

SEE ALSO:
  - store.go: persistence interfaces
  - availability.go: start time computation
  - allocator.go: best-fit table allocation
  - orders.go: order lifecycle
*/
package dining

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CollisionWindow   = 2 * time.Hour
	ClosingCutoff     = 2 * time.Hour
	SlotGranularity   = 30 * time.Minute
	HoursSafetyMargin = time.Hour
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	UserID        int64
	RestaurantID  int64
	TableID       int64
	ReservationID int64
	MenuItemID    int64
	OrderID       int64
	ReviewID      int64
)

// =============================================================================
// USERS & RESTAURANTS
// =============================================================================

// User is a diner. A professional user manages exactly one restaurant.
type User struct {
	ID           UserID
	Name         string
	Email        string
	Professional bool
	CreatedAt    time.Time
}

type Location struct {
	Latitude  float64
	Longitude float64
}

type Restaurant struct {
	ID          RestaurantID
	Name        string
	Description string
	Category    string
	Location    Location
	ManagerID   UserID
}

// =============================================================================
// TABLES & HOURS
// =============================================================================

type Table struct {
	ID           TableID
	RestaurantID RestaurantID
	Number       int
	Capacity     int
}

// OpeningPeriod is the single open/close window of a restaurant on a weekday.
type OpeningPeriod struct {
	RestaurantID RestaurantID
	Day          Weekday
	Opens        ClockTime
	Closes       ClockTime
}

// Contains reports whether a reservation starting at c stays inside the
// period once the given margin before closing is reserved for service.
func (p OpeningPeriod) Contains(c ClockTime, margin time.Duration) bool {
	return c >= p.Opens && c <= p.Closes.Add(-margin)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

type Reservation struct {
	ID           ReservationID
	RestaurantID RestaurantID
	TableID      TableID
	UserID       UserID
	Persons      int
	StartsAt     time.Time
}

// Collides reports whether two start times fall inside the collision window.
func Collides(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < CollisionWindow
}

// BookedReservation is a reservation joined with its owner and table, as
// shown to managers and used to address notifications.
type BookedReservation struct {
	Reservation
	TableNumber    int
	UserName       string
	UserEmail      string
	RestaurantName string
}

// =============================================================================
// MENU & ORDERS
// =============================================================================

type MenuItem struct {
	ID           MenuItemID
	RestaurantID RestaurantID
	Section      string
	Name         string
	Description  string
	Calories     int
	Price        decimal.Decimal
}

type OrderStatus string

const (
	OrderOpen      OrderStatus = "open"
	OrderConfirmed OrderStatus = "confirmed"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderPaid      OrderStatus = "paid"
)

// FoodOrder is the stored order row. Price is a running total maintained as
// items are added.
type FoodOrder struct {
	ID           OrderID
	UserID       UserID
	RestaurantID RestaurantID
	TableID      TableID
	Price        decimal.Decimal
	OrderedAt    time.Time
	FulfilledAt  *time.Time
	Confirmed    bool
	Paid         bool
}

// Status derives the lifecycle state from the stored flags. Fulfilment wins
// over payment, as it does when the state is set.
func (o FoodOrder) Status() OrderStatus {
	switch {
	case o.FulfilledAt != nil:
		return OrderFulfilled
	case o.Paid:
		return OrderPaid
	case o.Confirmed:
		return OrderConfirmed
	default:
		return OrderOpen
	}
}

// OrderLine is one ordered unit joined with its menu item.
type OrderLine struct {
	ID         int64
	OrderID    OrderID
	MenuItemID MenuItemID
	Name       string
	Section    string
	Price      decimal.Decimal
}

// QueuedOrder is an order with its lines, as shown in queues and bills.
type QueuedOrder struct {
	FoodOrder
	Lines []OrderLine
}

// =============================================================================
// REVIEWS
// =============================================================================

type Review struct {
	ID           ReviewID
	RestaurantID RestaurantID
	UserID       UserID
	UserName     string
	Rating       int
	Title        string
	Body         string
}
