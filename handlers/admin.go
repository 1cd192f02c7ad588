package handlers

import (
	"net/http"
	"time"

	"hospital-meal-api/models"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

type ForceStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Reason string             `json:"reason"`
}

// AdminCreateUser creates an account with any role. Admin only.
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Accounts.Register(c.Request.Context(), req, true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created", "user": user.Profile()})
}

// AdminIssuePasswordReset issues a reset token for an account so staff can
// hand it over in person
func (h *Handler) AdminIssuePasswordReset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	token, err := h.svc.Accounts.RequestPasswordReset(c.Request.Context(), user.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Password reset issued",
		"user_id":     user.ID,
		"reset_token": token,
	})
}

// AdminGetDoctors lists doctor accounts, newest first
func (h *Handler) AdminGetDoctors(c *gin.Context) {
	doctors, err := h.svc.Accounts.GetDoctors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	profiles := make([]models.Profile, len(doctors))
	for i := range doctors {
		profiles[i] = doctors[i].Profile()
	}
	c.JSON(http.StatusOK, gin.H{"count": len(profiles), "doctors": profiles})
}

// AdminUpdateDoctor edits a doctor's name, picture or employee id
func (h *Handler) AdminUpdateDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Accounts.UpdateDoctor(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor updated", "doctor": user.Profile()})
}

// AdminDeleteDoctor removes a doctor account
func (h *Handler) AdminDeleteDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Accounts.DeleteDoctor(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor deleted"})
}

// AdminForceOrderStatus lets admin override any order state (emergency use)
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.svc.Orders.ForceOrderStatus(c.Request.Context(), actorOf(c), c.Param("id"), req.Status, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order status force-updated by admin",
		"order_id":   order.ID,
		"new_status": order.Status,
	})
}

// AdminReport summarizes orders for a period: all, daily, monthly or yearly,
// around date (YYYY-MM-DD, default today)
func (h *Handler) AdminReport(c *gin.Context) {
	at := time.Now().In(h.loc)
	day, ok := h.parseDay(c, "date")
	if !ok {
		return
	}
	if day != nil {
		at = *day
	}
	report, err := h.svc.Reports.Report(c.Request.Context(), services.ReportPeriod(c.DefaultQuery("period", "all")), at)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
