// Package server assembles the HTTP router from the resource handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/admin"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/blogs"
	"github.com/mikepea/orgblog/pkg/orgblog/comments"
	"github.com/mikepea/orgblog/pkg/orgblog/config"
	"github.com/mikepea/orgblog/pkg/orgblog/departments"
	"github.com/mikepea/orgblog/pkg/orgblog/likes"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/organizations"
	"github.com/mikepea/orgblog/pkg/orgblog/tags"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"github.com/mikepea/orgblog/pkg/orgblog/verification"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// NewRouter builds the engine with every route registered. The caller owns
// gin mode and validator registration.
func NewRouter(db *gorm.DB, cfg *config.Config, store uploads.Store) *gin.Engine {
	r := gin.New()
	r.Use(logger.Middleware(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stored images
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "orgblog",
			})
		})

		auth.NewHandler(db).RegisterRoutes(api.Group("/auth"))

		// Content routes pick their own auth per endpoint
		blogs.NewHandler(db, store).RegisterRoutes(api)
		comments.NewHandler(db).RegisterRoutes(api)
		likes.NewHandler(db).RegisterRoutes(api)
		tags.NewHandler(db).RegisterRoutes(api)

		organizations.NewHandler(db, store).RegisterRoutes(api.Group("/organizations"))
		departments.NewHandler(db, store).RegisterRoutes(api)

		verification.NewHandler(db).RegisterRoutes(api.Group("/verifications"))
		uploads.NewHandler(db, store, cfg.UploadMaxBytes).RegisterRoutes(api.Group("/uploads"))

		// Admin routes (super admin only)
		admin.NewHandler(db, store).RegisterRoutes(api.Group("/admin"))
	}

	return r
}
