package api

import (
	"net/http"
	"strconv"

	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// MENU
// =============================================================================

// GetMenu returns the menu ordered by section then name.
// GET /api/restaurants/{restaurantID}/menu
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	items, err := h.Service.Menu(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get menu", err)
		return
	}

	dtos := make([]MenuItemDTO, len(items))
	for i, m := range items {
		dtos[i] = toMenuItemDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMenuItem adds an item to the menu.
// POST /api/restaurants/{restaurantID}/menu
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req MenuItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.Service.AddMenuItem(r.Context(), dining.RestaurantID(id), menuInput(req))
	if err != nil {
		h.writeDomainError(w, "Failed to add menu item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemDTO(*item))
}

// UpdateMenuItem replaces a menu item.
// PUT /api/restaurants/{restaurantID}/menu/{itemID}
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req MenuItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.Service.ChangeMenuItem(r.Context(), dining.RestaurantID(restaurantID), dining.MenuItemID(itemID), menuInput(req))
	if err != nil {
		h.writeDomainError(w, "Failed to change menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemDTO(*item))
}

// DeleteMenuItem removes an item and every ordered unit of it.
// DELETE /api/restaurants/{restaurantID}/menu/{itemID}
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.Service.DeleteMenuItem(r.Context(), dining.RestaurantID(restaurantID), dining.MenuItemID(itemID)); err != nil {
		h.writeDomainError(w, "Failed to delete menu item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func menuInput(req MenuItemRequest) dining.MenuItemInput {
	return dining.MenuItemInput{
		Section:     req.Section,
		Name:        req.Name,
		Description: req.Description,
		Calories:    req.Calories,
		Price:       req.Price,
	}
}

// =============================================================================
// ORDERS
// =============================================================================

// CreateOrder opens an empty order at a table.
// POST /api/restaurants/{restaurantID}/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), currentUser(r.Context()), dining.RestaurantID(id), dining.TableID(req.TableID))
	if err != nil {
		h.writeDomainError(w, "Failed to create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(order.Snapshot(), nil, h.loc()))
}

// GetOrder returns an order with its lines to its owner or the manager.
// GET /api/orders/{orderID}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r, false)
	if !ok {
		return
	}
	h.writeOrder(w, r, order, http.StatusOK)
}

// AddOrderItem adds units of a menu item to the caller's order.
// POST /api/orders/{orderID}/items
func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r, false)
	if !ok {
		return
	}
	if order.Snapshot().UserID != currentUser(r.Context()) {
		writeError(w, http.StatusForbidden, "Only the customer who placed the order may add to it", nil)
		return
	}
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := order.AddItem(r.Context(), dining.MenuItemID(req.MenuItemID), req.Quantity); err != nil {
		h.writeDomainError(w, "Failed to add item", err)
		return
	}
	h.writeOrder(w, r, order, http.StatusOK)
}

// SetOrderStatus moves an order through its lifecycle. With no flag set the
// order is rejected and deleted.
// PUT /api/orders/{orderID}/status
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r, true)
	if !ok {
		return
	}
	var req OrderStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := order.SetStatus(r.Context(), req.Confirmed, req.Fulfilled, req.Paid); err != nil {
		h.writeDomainError(w, "Failed to update order status", err)
		return
	}
	if !req.Confirmed && !req.Fulfilled && !req.Paid {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeOrder(w, r, order, http.StatusOK)
}

// loadOrder resolves {orderID} and checks the caller may see it: the owner
// or the restaurant's manager, or only the manager when managerOnly is set.
func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request, managerOnly bool) (*dining.Order, bool) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return nil, false
	}

	ctx := r.Context()
	order, err := h.Service.LoadOrder(ctx, dining.OrderID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get order", err)
		return nil, false
	}
	if !managerOnly && order.Snapshot().UserID == currentUser(ctx) {
		return order, true
	}

	manager, err := h.manages(ctx, order.RestaurantID())
	if err != nil {
		h.writeDomainError(w, "Failed to get restaurant", err)
		return nil, false
	}
	if !manager {
		writeError(w, http.StatusForbidden, "Not allowed to access this order", nil)
		return nil, false
	}
	return order, true
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, order *dining.Order, status int) {
	lines, err := order.Lines(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to get order items", err)
		return
	}
	writeJSON(w, status, toOrderDTO(order.Snapshot(), lines, h.loc()))
}

// =============================================================================
// MANAGER VIEWS
// =============================================================================

// GetOrderQueue returns unfulfilled orders above the after cursor.
// GET /api/restaurants/{restaurantID}/queue?after=12
func (h *Handler) GetOrderQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	var after int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		var err error
		if after, err = strconv.ParseInt(raw, 10, 64); err != nil || after < 0 {
			writeError(w, http.StatusBadRequest, "after must be a non-negative integer", err)
			return
		}
	}

	queue, err := h.Service.OrderQueue(r.Context(), dining.RestaurantID(id), dining.OrderID(after))
	if err != nil {
		h.writeDomainError(w, "Failed to get order queue", err)
		return
	}
	writeJSON(w, http.StatusOK, toQueuedOrderDTOs(queue, h.loc()))
}

// GetTableBill returns a table's unpaid orders and total.
// GET /api/restaurants/{restaurantID}/tables/{tableID}/bill
func (h *Handler) GetTableBill(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}
	tableID, ok := pathID(w, r, "tableID")
	if !ok {
		return
	}

	bill, err := h.Service.TableBill(r.Context(), dining.RestaurantID(restaurantID), dining.TableID(tableID))
	if err != nil {
		h.writeDomainError(w, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, BillDTO{
		TableID: int64(bill.TableID),
		Orders:  toQueuedOrderDTOs(bill.Orders, h.loc()),
		Total:   bill.Total,
	})
}

// GetMetrics returns today's hourly reservation counts and waiting times.
// GET /api/restaurants/{restaurantID}/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "restaurantID")
	if !ok {
		return
	}

	m, err := h.Service.Metrics(r.Context(), dining.RestaurantID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, MetricsDTO{
		HourlyReservations: m.HourlyReservations,
		HourlyWaitingTimes: m.HourlyWaitingTimes,
	})
}
