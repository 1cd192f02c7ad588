package routes

import (
	"hospital-meal-api/handlers"
	"hospital-meal-api/middleware"
	"hospital-meal-api/models"

	"github.com/gin-gonic/gin"
)

// staffRoles run the order pipeline.
var staffRoles = []models.UserRole{models.RoleCashier, models.RoleCatering, models.RoleWaiter, models.RoleAdmin}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/password-reset", h.RequestPasswordReset)
		public.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)

		// Catalog (no auth needed)
		public.GET("/menus", h.ListMenus)
		public.GET("/menus/:id", h.GetMenu)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth.AuthRequired())
	{
		authed.GET("/profile", h.GetProfile)
		authed.PUT("/profile", h.UpdateProfile)
		authed.GET("/favorites", h.GetFavorites)
		authed.POST("/favorites/:menuId/toggle", h.ToggleFavorite)
		authed.GET("/orders/:id", h.GetOrderDetail)
	}

	// ── Ordering routes ────────────────────────────────────────────
	ordering := r.Group("/api/orders")
	ordering.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleCustomer, models.RoleDoctor, models.RoleAdmin))
	{
		ordering.POST("", h.PlaceOrder)
		ordering.GET("/mine", h.GetMyOrders)
		ordering.POST("/:id/rating", h.RateOrderItem)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := r.Group("/api/staff")
	staff.Use(auth.AuthRequired(), middleware.RoleRequired(staffRoles...))
	{
		staff.GET("/orders", h.GetStaffOrders)
		staff.PUT("/orders/:id/status", h.UpdateOrderStatus)

		// Cashier desk
		cashier := staff.Group("", middleware.RoleRequired(models.RoleCashier, models.RoleAdmin))
		cashier.PUT("/orders/:id/details", h.UpdateOrderDetails)
		cashier.DELETE("/orders/:id", h.DeleteOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		// Menu management
		admin.POST("/menus", h.AddMenuItem)
		admin.PUT("/menus/:id", h.UpdateMenuItem)
		admin.DELETE("/menus/:id", h.DeleteMenuItem)

		// Accounts
		admin.POST("/users", h.AdminCreateUser)
		admin.POST("/users/:id/password-reset", h.AdminIssuePasswordReset)
		admin.GET("/doctors", h.AdminGetDoctors)
		admin.PUT("/doctors/:id", h.AdminUpdateDoctor)
		admin.DELETE("/doctors/:id", h.AdminDeleteDoctor)

		// Orders
		admin.PUT("/orders/:id/force-status", h.AdminForceOrderStatus)
		admin.GET("/reports", h.AdminReport)
	}
}
