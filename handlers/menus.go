package handlers

import (
	"net/http"

	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

// AddMenuItem adds a dish to the catalog
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req services.MenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.Catalog.AddMenu(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "menu": item})
}

// UpdateMenuItem replaces a dish's details; ratings are kept
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req services.MenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.Catalog.UpdateMenu(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "menu": item})
}

// DeleteMenuItem removes a dish from the catalog
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	if err := h.svc.Catalog.DeleteMenu(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
