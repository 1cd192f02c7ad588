package handlers

import (
	"net/http"

	"hospital-meal-api/models"
	"hospital-meal-api/services"
	"hospital-meal-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListMenus returns the catalog (public)
func (h *Handler) ListMenus(c *gin.Context) {
	filter := services.MenuFilter{
		MenuType: models.MenuType(c.Query("menu_type")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	items, err := h.svc.Catalog.ListMenus(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"menus": items,
	})
}

// GetMenu returns a single dish
func (h *Handler) GetMenu(c *gin.Context) {
	item, err := h.svc.Catalog.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": item})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range models.Statuses {
		if s.Terminal() {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"statuses":        models.Statuses,
		"terminal_states": terminal,
		"description":     "Hospital Meal Order Lifecycle State Machine",
	})
}
