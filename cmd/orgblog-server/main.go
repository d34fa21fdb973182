package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/config"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/server"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"github.com/mikepea/orgblog/pkg/orgblog/validation"
	"gorm.io/gorm"

	_ "github.com/mikepea/orgblog/api/swagger"
)

//go:generate swag init -g main.go -d ./,../../pkg/orgblog -o ../../api/swagger

// @title OrgBlog API
// @version 1.0
// @description Multi-tenant blogging for organizations and their departments, with verified membership and moderation.

// @contact.name OrgBlog Support
// @contact.url https://github.com/mikepea/orgblog

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	}); err != nil {
		logger.Get().Fatalf("Failed to initialize logger: %v", err)
	}
	log := logger.Get()

	auth.Configure(cfg.JWTSecret, cfg.JWTTTL)
	validation.MustRegister()
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	// Create the bootstrap super admin if none exists
	if err := ensureSuperAdminExists(database.GetDB(), cfg); err != nil {
		log.Fatalf("Failed to ensure super admin exists: %v", err)
	}

	store := uploads.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes)
	r := server.NewRouter(database.GetDB(), cfg, store)

	log.WithField("port", cfg.Port).Info("Starting OrgBlog server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureSuperAdminExists creates the configured super admin when no user
// holds that role. The account has no affiliation.
func ensureSuperAdminExists(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        auth.NormalizeEmail(cfg.AdminEmail),
		Name:         cfg.AdminName,
		PasswordHash: hashedPassword,
		Role:         models.RoleSuperAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Get().WithField("email", admin.Email).Warn("Created default super admin, change its password")
	return nil
}
