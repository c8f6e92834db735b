/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the dining domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required fields, lengths, ranges). Business rules stay in the dining
  package, which validates again and owns the error messages for them.

TIMES:
  Reservation and order timestamps are RFC 3339 in the restaurants' zone.
  Dates are "2006-01-02" and clock times "15:04".

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Professional bool   `json:"professional"`
	CreatedAt    string `json:"created_at"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Email string `json:"email" validate:"required,email"`
}

// CreateUserResponse carries the bearer token the client sends back with
// X-User-ID on authenticated routes.
type CreateUserResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// =============================================================================
// RESTAURANTS
// =============================================================================

type RestaurantDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	ManagerID   int64  `json:"manager_id"`
}

type RestaurantRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=50"`
	Location    string `json:"location" validate:"required"`
}

type ReviewDTO struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"max=50"`
	Body   string `json:"body"`
}

// =============================================================================
// TABLES & HOURS
// =============================================================================

type TableDTO struct {
	ID       int64 `json:"id"`
	Number   int   `json:"table_number"`
	Capacity int   `json:"capacity"`
}

type TableRequest struct {
	Number   int `json:"table_number" validate:"required,min=1"`
	Capacity int `json:"capacity" validate:"required,min=1"`
}

// HoursDTO is one weekday's hours. Requests send a map of these keyed by
// day number, "1" for Monday through "7" for Sunday.
type HoursDTO struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

type OpeningPeriodDTO struct {
	Day         int    `json:"day"`
	DayName     string `json:"day_name"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// EditTableResponse lists the reservations cancelled by the change.
type EditTableResponse struct {
	Table     TableDTO         `json:"table"`
	Cancelled []ReservationDTO `json:"cancelled"`
}

type SetHoursResponse struct {
	Hours     []OpeningPeriodDTO `json:"hours"`
	Cancelled []ReservationDTO   `json:"cancelled"`
}

// =============================================================================
// RESERVATIONS
// =============================================================================

type ReservationDTO struct {
	ID             int64  `json:"id"`
	RestaurantID   int64  `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	TableID        int64  `json:"table_id"`
	TableNumber    int    `json:"table_number"`
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	Persons        int    `json:"persons"`
	StartsAt       string `json:"starts_at"`
}

type ReservationRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Persons int    `json:"persons" validate:"required,min=1"`
}

type AvailabilityResponse struct {
	Date       string   `json:"date"`
	Persons    int      `json:"persons"`
	StartTimes []string `json:"start_times"`
}

// =============================================================================
// MENU & ORDERS
// =============================================================================

type MenuItemDTO struct {
	ID          int64           `json:"id"`
	Section     string          `json:"section"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Calories    int             `json:"calories"`
	Price       decimal.Decimal `json:"price"`
}

type MenuItemRequest struct {
	Section     string          `json:"section" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=50"`
	Description string          `json:"description"`
	Calories    int             `json:"calories" validate:"min=0"`
	Price       decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	TableID int64 `json:"table_id" validate:"required,min=1"`
}

type AddItemRequest struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required,min=1"`
	Quantity   int   `json:"quantity" validate:"required,min=1,max=100"`
}

type OrderStatusRequest struct {
	Confirmed bool `json:"confirmed"`
	Fulfilled bool `json:"fulfilled"`
	Paid      bool `json:"paid"`
}

type OrderLineDTO struct {
	MenuItemID int64           `json:"menu_item_id"`
	Name       string          `json:"name"`
	Section    string          `json:"section"`
	Price      decimal.Decimal `json:"price"`
}

type OrderDTO struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	RestaurantID int64           `json:"restaurant_id"`
	TableID      int64           `json:"table_id"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	OrderedAt    string          `json:"ordered_at"`
	FulfilledAt  *string         `json:"fulfilled_at,omitempty"`
	Confirmed    bool            `json:"confirmed"`
	Paid         bool            `json:"paid"`
	Lines        []OrderLineDTO  `json:"lines"`
}

type BillDTO struct {
	TableID int64           `json:"table_id"`
	Orders  []OrderDTO      `json:"orders"`
	Total   decimal.Decimal `json:"total"`
}

type MetricsDTO struct {
	HourlyReservations map[int]int     `json:"hourly_reservations"`
	HourlyWaitingTimes map[int]float64 `json:"hourly_waiting_times"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u *dining.User) UserDTO {
	return UserDTO{
		ID:           int64(u.ID),
		Name:         u.Name,
		Email:        u.Email,
		Professional: u.Professional,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}

func toRestaurantDTO(r dining.Restaurant) RestaurantDTO {
	return RestaurantDTO{
		ID:          int64(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Location:    r.Location.String(),
		ManagerID:   int64(r.ManagerID),
	}
}

func toTableDTO(t dining.Table) TableDTO {
	return TableDTO{ID: int64(t.ID), Number: t.Number, Capacity: t.Capacity}
}

func toPeriodDTOs(periods []dining.OpeningPeriod) []OpeningPeriodDTO {
	dtos := make([]OpeningPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = OpeningPeriodDTO{
			Day:         int(p.Day),
			DayName:     p.Day.String(),
			OpeningTime: p.Opens.String(),
			ClosingTime: p.Closes.String(),
		}
	}
	return dtos
}

func toReservationDTOs(rs []dining.BookedReservation, loc *time.Location) []ReservationDTO {
	dtos := make([]ReservationDTO, len(rs))
	for i, r := range rs {
		dtos[i] = ReservationDTO{
			ID:             int64(r.ID),
			RestaurantID:   int64(r.RestaurantID),
			RestaurantName: r.RestaurantName,
			TableID:        int64(r.TableID),
			TableNumber:    r.TableNumber,
			UserID:         int64(r.UserID),
			UserName:       r.UserName,
			UserEmail:      r.UserEmail,
			Persons:        r.Persons,
			StartsAt:       r.StartsAt.In(loc).Format(time.RFC3339),
		}
	}
	return dtos
}

func toMenuItemDTO(m dining.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:          int64(m.ID),
		Section:     m.Section,
		Name:        m.Name,
		Description: m.Description,
		Calories:    m.Calories,
		Price:       m.Price,
	}
}

func toOrderDTO(o dining.FoodOrder, lines []dining.OrderLine, loc *time.Location) OrderDTO {
	dto := OrderDTO{
		ID:           int64(o.ID),
		UserID:       int64(o.UserID),
		RestaurantID: int64(o.RestaurantID),
		TableID:      int64(o.TableID),
		Price:        o.Price,
		Status:       string(o.Status()),
		OrderedAt:    o.OrderedAt.In(loc).Format(time.RFC3339),
		Confirmed:    o.Confirmed,
		Paid:         o.Paid,
		Lines:        make([]OrderLineDTO, len(lines)),
	}
	if o.FulfilledAt != nil {
		s := o.FulfilledAt.In(loc).Format(time.RFC3339)
		dto.FulfilledAt = &s
	}
	for i, l := range lines {
		dto.Lines[i] = OrderLineDTO{
			MenuItemID: int64(l.MenuItemID),
			Name:       l.Name,
			Section:    l.Section,
			Price:      l.Price,
		}
	}
	return dto
}

func toQueuedOrderDTOs(orders []dining.QueuedOrder, loc *time.Location) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o.FoodOrder, o.Lines, loc)
	}
	return dtos
}
