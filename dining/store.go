/*
store.go - Persistence interfaces for the dining engine

PURPOSE:
  Defines the boundary between engine logic and the relational store. All
  queries are parameterized by the implementation; the engine never builds
  SQL from caller input.

LOOKUP CONVENTION:
  Get and ...By lookups return (nil, nil) when no row matches. Mutations that
  target a single row by ID return the matching *NotFoundError sentinel when
  nothing was affected.

TRANSACTIONS:
  TxStore.WithTx runs fn against a Store bound to one transaction. The
  transaction commits when fn returns nil and rolls back on any error or
  panic. Implementations must give the winning transaction a consistent
  view for select-then-insert sequences (the allocator depends on it), and
  report lock contention as ErrConcurrentModification.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go
*/
package dining

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	CreateUser(ctx context.Context, u User) (UserID, error)
	GetUser(ctx context.Context, id UserID) (*User, error)
	SetProfessional(ctx context.Context, id UserID) error
}

type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, r Restaurant) (RestaurantID, error)
	GetRestaurant(ctx context.Context, id RestaurantID) (*Restaurant, error)
	RestaurantByManager(ctx context.Context, manager UserID) (*Restaurant, error)
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	UpdateRestaurant(ctx context.Context, r Restaurant) error
}

type TableStore interface {
	CreateTable(ctx context.Context, t Table) (TableID, error)
	GetTable(ctx context.Context, id TableID) (*Table, error)
	TableByNumber(ctx context.Context, restaurantID RestaurantID, number int) (*Table, error)
	UpdateTable(ctx context.Context, t Table) error
	ListTables(ctx context.Context, restaurantID RestaurantID) ([]Table, error)

	// OpeningPeriods returns the periods of one weekday ordered by opening time.
	OpeningPeriods(ctx context.Context, restaurantID RestaurantID, day Weekday) ([]OpeningPeriod, error)
	ListOpeningPeriods(ctx context.Context, restaurantID RestaurantID) ([]OpeningPeriod, error)
	// ReplaceOpeningPeriods deletes every stored period of the restaurant and
	// inserts the given ones.
	ReplaceOpeningPeriods(ctx context.Context, restaurantID RestaurantID, periods []OpeningPeriod) error
}

type ReservationStore interface {
	// FreeTables returns the restaurant's tables seating at least persons that
	// hold no reservation colliding with at, smallest capacity first.
	FreeTables(ctx context.Context, restaurantID RestaurantID, at time.Time, persons int) ([]Table, error)
	ReservationsBetween(ctx context.Context, restaurantID RestaurantID, from, to time.Time) ([]Reservation, error)
	InsertReservation(ctx context.Context, r Reservation) (ReservationID, error)
	GetReservation(ctx context.Context, id ReservationID) (*BookedReservation, error)
	DeleteReservation(ctx context.Context, id ReservationID) error
	ListReservations(ctx context.Context, restaurantID RestaurantID) ([]BookedReservation, error)
	UserReservations(ctx context.Context, userID UserID) ([]BookedReservation, error)
	// FutureReservations returns reservations of the restaurant starting after t.
	FutureReservations(ctx context.Context, restaurantID RestaurantID, after time.Time) ([]BookedReservation, error)
	// OversizedReservations returns reservations on the table starting after t
	// whose party exceeds capacity.
	OversizedReservations(ctx context.Context, tableID TableID, capacity int, after time.Time) ([]BookedReservation, error)
}

type MenuStore interface {
	CreateMenuItem(ctx context.Context, m MenuItem) (MenuItemID, error)
	GetMenuItem(ctx context.Context, restaurantID RestaurantID, id MenuItemID) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, m MenuItem) error
	DeleteMenuItem(ctx context.Context, restaurantID RestaurantID, id MenuItemID) error
	// ListMenuItems returns the menu ordered by section, then name.
	ListMenuItems(ctx context.Context, restaurantID RestaurantID) ([]MenuItem, error)
	// DeleteOrderLinesForItem removes every ordered unit of the menu item.
	DeleteOrderLinesForItem(ctx context.Context, id MenuItemID) (int64, error)
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o FoodOrder) (OrderID, error)
	GetOrder(ctx context.Context, id OrderID) (*FoodOrder, error)
	InsertOrderLine(ctx context.Context, orderID OrderID, itemID MenuItemID) error
	SetOrderPrice(ctx context.Context, id OrderID, price decimal.Decimal) error
	ConfirmOrder(ctx context.Context, id OrderID) error
	FulfillOrder(ctx context.Context, id OrderID, at time.Time) error
	PayOrder(ctx context.Context, id OrderID) error
	DeleteOrder(ctx context.Context, id OrderID) error
	DeleteOrderLines(ctx context.Context, id OrderID) error
	OrderLines(ctx context.Context, id OrderID) ([]OrderLine, error)
	// UnfulfilledOrders returns the restaurant's unfulfilled orders with an ID
	// greater than after, oldest first.
	UnfulfilledOrders(ctx context.Context, restaurantID RestaurantID, after OrderID) ([]FoodOrder, error)
	// UnpaidOrders returns the table's unpaid orders, newest first.
	UnpaidOrders(ctx context.Context, tableID TableID) ([]FoodOrder, error)
	FulfilledOrdersBetween(ctx context.Context, restaurantID RestaurantID, from, to time.Time) ([]FoodOrder, error)
}

type ReviewStore interface {
	InsertReview(ctx context.Context, r Review) (ReviewID, error)
	ListReviews(ctx context.Context, restaurantID RestaurantID) ([]Review, error)
}

// Store is the full accessor used by the engine.
type Store interface {
	UserStore
	RestaurantStore
	TableStore
	ReservationStore
	MenuStore
	OrderStore
	ReviewStore
}

// TxStore wraps Store with scoped transactions.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
