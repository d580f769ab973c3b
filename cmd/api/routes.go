package main

import (
	"disposal-platform/internal/httpapi"
	"disposal-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)
		v1.GET("/methods", h.ListMethods)
		v1.GET("/export/csv", h.ExportCSV)

		// Item registration and planning.
		itemsGroup := v1.Group("/items")
		{
			itemsGroup.GET("", h.ListItems)
			itemsGroup.GET("/:id", h.GetItem)
			itemsGroup.GET("/:id/recommendation", h.GetRecommendation)

			plan := rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleApprover)
			itemsGroup.POST("", plan, h.CreateItem)
			itemsGroup.POST("/:id/method", plan, h.SelectMethod)
			itemsGroup.POST("/:id/recommendation", plan, h.ApplyRecommendation)

			// Review and execution are approver decisions.
			review := rbac.RequireAnyRole(rbac.RoleApprover)
			itemsGroup.POST("/:id/approve", review, h.ApproveItem)
			itemsGroup.POST("/:id/reject", review, h.RejectItem)
			itemsGroup.POST("/:id/reset", review, h.ResetItem)
			itemsGroup.POST("/:id/execute", review, h.ExecuteItem)

			// Deletion is destructive even though history survives in the
			// audit trail, so admins only.
			itemsGroup.DELETE("/:id", rbac.RequireAnyRole(rbac.RoleAdmin), h.DeleteItem)
		}

		// Bulk planning job. Kept off /items to keep the job namespace
		// separate from resource routes.
		v1.POST("/jobs/auto-plan", rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleApprover), h.AutoPlan)

		// Audit trail is reviewer-facing.
		v1.GET("/audit", rbac.RequireAnyRole(rbac.RoleApprover), h.ListAudit)
	}
}
