package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ribat/admissions/internal/app/controllers"
	"github.com/ribat/admissions/internal/middleware"
	"github.com/ribat/admissions/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	Applications *controllers.ApplicationController
	Catalog      *controllers.CatalogController
	Dashboard    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", ctrl.Catalog.Health)
	v1.GET("/catalog", ctrl.Catalog.GetCatalog)
	v1.POST("/admissions", ctrl.Applications.Submit)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/signup", ctrl.Auth.Signup)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.GET("/me", ctrl.Auth.Me)
	}

	// --- Staff routes, checked against the RBAC policy ---
	staff := v1.Group("")
	staff.Use(authMiddleware.JWTAuth(), authMiddleware.PolicyRequired())
	{
		applications := staff.Group("/applications")
		{
			applications.GET("", ctrl.Applications.List)
			// static segments before /:id
			applications.GET("/stats", ctrl.Applications.Stats)
			applications.GET("/export", ctrl.Applications.Export)

			applications.GET("/:id", ctrl.Applications.Get)
			applications.PUT("/:id", ctrl.Applications.Update)
			applications.DELETE("/:id", ctrl.Applications.Delete)
			applications.POST("/:id/approve", ctrl.Applications.Approve)
			applications.POST("/:id/reject", ctrl.Applications.Reject)
		}

		staff.GET("/dashboard/ws", ctrl.Dashboard.HandleConnection)
	}
}
