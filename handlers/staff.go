package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"hospital-meal-api/models"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

type UpdateOrderDetailsRequest struct {
	MRN         string `json:"mrn"`
	Description string `json:"description"`
}

// GetStaffOrders lists orders for the cashier, kitchen and waiter dashboards.
// Filters: status (comma separated), user_id, order_type, from and to (YYYY-MM-DD, inclusive).
func (h *Handler) GetStaffOrders(c *gin.Context) {
	var filter services.OrderFilter
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, models.OrderStatus(strings.TrimSpace(s)))
		}
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			return
		}
		filter.UserID = uint(id)
	}
	filter.OrderType = models.OrderType(c.Query("order_type"))

	from, ok := h.parseDay(c, "from")
	if !ok {
		return
	}
	to, ok := h.parseDay(c, "to")
	if !ok {
		return
	}
	filter.From = from
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	orders, err := h.svc.Orders.GetOrders(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Group counts by status for the dashboard header
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// UpdateOrderStatus moves an order along the pipeline for the calling staff member
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req services.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	orderID := c.Param("id")
	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), actorOf(c), orderID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Order status updated",
		"order_id":       order.ID,
		"current_status": order.Status,
		"order":          order,
	})
}

// UpdateOrderDetails edits the MRN and notes of an order
func (h *Handler) UpdateOrderDetails(c *gin.Context) {
	var req UpdateOrderDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.svc.Orders.UpdateOrderDetails(c.Request.Context(), c.Param("id"), req.MRN, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

// DeleteOrder removes an order and its items
func (h *Handler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")
	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": orderID})
}
