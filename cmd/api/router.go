package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/shared/middleware"
	"library-api/internal/shared/response"
	"library-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCatalogRoutes(v1, c)
		setupAdminCatalogRoutes(v1, c)
	}

	return router
}

// ========================================
// CATALOG ROUTES (PUBLIC)
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.CatalogHandler.ListBooks)
		books.GET("/:id/history", c.CatalogHandler.BookHistory)
	}

	authors := v1.Group("/authors")
	{
		authors.GET("/dropdown", c.CatalogHandler.AuthorDropdown)
	}
}

// ========================================
// ADMIN CATALOG ROUTES
// ========================================
func setupAdminCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/catalog")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		admin.POST("/upsert", c.AdminHandler.Upsert)
		admin.POST("/import", c.AdminHandler.Import)
		admin.GET("/export", c.AdminHandler.Export)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.Fail(ctx, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		response.OK(ctx, gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
		}, "")
	}
}
