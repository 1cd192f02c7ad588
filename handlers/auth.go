package handlers

import (
	"net/http"

	"hospital-meal-api/models"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a customer account (or a role guessed from the email when
// auto-role is on) and logs it in
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Accounts.Register(c.Request.Context(), req, false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, "Account created successfully", user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, msg string, user *models.User) {
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"message": msg,
		"token":   token,
		"user":    user.Profile(),
	})
}

// GetProfile returns the caller's current account. Clients poll it to pick
// up role changes.
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.svc.Accounts.GetUser(c.Request.Context(), actorOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Profile()})
}

// UpdateProfile changes the caller's name or picture
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Accounts.UpdateProfile(c.Request.Context(), actorOf(c).UserID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user.Profile()})
}

// RequestPasswordReset issues a reset token for the account
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	token, err := h.svc.Accounts.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp := gin.H{"message": "Password reset requested"}
	if h.exposeResetTokens {
		resp["reset_token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPasswordReset sets a new password using a reset token
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.Accounts.ResetPasswordWithToken(c.Request.Context(), req.Token, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
