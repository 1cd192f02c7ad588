package handlers

import (
	"net/http"

	"hospital-meal-api/models"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

// PlaceOrder creates an order for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor := actorOf(c)
	req.UserID = actor.UserID
	if actor.Role != models.RoleAdmin {
		// Payment and progress are the cashier's call.
		req.Status = models.StatusReceived
		req.IsPaid = false
	}

	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"order_id": order.ID,
		"order":    order,
	})
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.svc.Orders.GetMyOrders(c.Request.Context(), actorOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one order with its status history. Customers and
// doctors only see their own.
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"history": order.StatusHistory,
	})
}

// RateOrderItem rates a dish from one of the caller's orders
func (h *Handler) RateOrderItem(c *gin.Context) {
	var req services.RateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	req.OrderID = order.ID

	menu, err := h.svc.Ratings.RateMenu(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thanks for your rating", "menu": menu})
}

func (h *Handler) visibleOrder(c *gin.Context) (*models.Order, bool) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	actor := actorOf(c)
	switch actor.Role {
	case models.RoleCustomer, models.RoleDoctor:
		if order.UserID != actor.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this order"})
			return nil, false
		}
	}
	return order, true
}

// GetFavorites returns the ids of the caller's favorite dishes
func (h *Handler) GetFavorites(c *gin.Context) {
	ids, err := h.svc.Favorites.GetFavorites(c.Request.Context(), actorOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ids), "favorites": ids})
}

// ToggleFavorite flips a dish in or out of the caller's favorites
func (h *Handler) ToggleFavorite(c *gin.Context) {
	menuID := c.Param("menuId")
	on, err := h.svc.Favorites.ToggleFavorite(c.Request.Context(), actorOf(c).UserID, menuID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_id": menuID, "favorited": on})
}
