package app

import (
	"fmt"
	"time"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/config"
	"cutordie_backend/internal/drive"
	"cutordie_backend/internal/email"
	"cutordie_backend/internal/googleauth"
	"cutordie_backend/internal/handlers"
	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/middleware"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/payment"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/internal/routes"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/validator"
	"cutordie_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Run wires the whole application together and starts the HTTP server.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")

	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	container := initializeServices(cfg, tokens)
	appHandlers := initializeHandlers(container)

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Error("failed to seed first admin", "error", err)
	}

	router := buildRouter(cfg, gormDB, tokens, appHandlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "addr", addr, "env", cfg.Server.Env)
	return router.Run(addr)
}

func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Purchase{},
	); err != nil {
		return nil, err
	}

	// The locale fields are one embedded struct, so a uniqueIndex tag
	// would merge en_name and ua_name into a single composite index.
	// Each name is unique on its own; create the indexes explicitly.
	for _, stmt := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_courses_en_name ON courses (en_name)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_courses_ua_name ON courses (ua_name)",
	} {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return nil, err
		}
	}
	return gormDB, nil
}

func initializeServices(cfg *config.Config, tokens *auth.TokenIssuer) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	courseRepo := repositories.NewCourseRepository()
	purchaseRepo := repositories.NewPurchaseRepository()

	var emailProvider email.Provider
	if cfg.Email.Enabled {
		emailProvider = email.NewSMTPProvider(cfg)
	} else {
		emailProvider = email.NewLogProvider()
	}

	paymentClient := payment.NewHTTPClient(cfg.Payment.BaseURL, cfg.Payment.Token)
	googleVerifier := googleauth.NewHTTPClient(cfg.Google.UserInfoURL)
	driveGateway := drive.NewClient(drive.Config{
		BaseURL:      cfg.Drive.BaseURL,
		TokenURL:     cfg.Drive.TokenURL,
		ClientID:     cfg.Drive.ClientID,
		ClientSecret: cfg.Drive.ClientSecret,
		RefreshToken: cfg.Drive.RefreshToken,
	})

	settings := services.PaymentSettings{
		RedirectURL: cfg.Payment.RedirectTo,
		WebhookURL:  cfg.Payment.PublicURL + "/api/v1/courses/webhook/payment",
		ValiditySec: cfg.Payment.ValiditySec,
	}

	return &services.ServiceContainer{
		AuthService:     services.NewAuthService(userRepo, tokens, emailProvider, googleVerifier, cfg.Admin.BootstrapKey),
		UserService:     services.NewUserService(userRepo),
		CourseService:   services.NewCourseService(courseRepo),
		PurchaseService: services.NewPurchaseService(purchaseRepo, userRepo, courseRepo, paymentClient, driveGateway, settings),
		EmailProvider:   emailProvider,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New())
	return &handlers.AppHandlers{
		Auth:     handlers.NewAuthHandler(base, container.AuthService),
		User:     handlers.NewUserHandler(base, container.UserService),
		Course:   handlers.NewCourseHandler(base, container.CourseService),
		Purchase: handlers.NewPurchaseHandler(base, container.PurchaseService),
	}
}

func buildRouter(cfg *config.Config, gormDB *gorm.DB, tokens *auth.TokenIssuer, appHandlers *handlers.AppHandlers) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(gormDB))
	router.Use(middleware.NewRateLimiter(cfg.RateLimit.MaxPerHour).Middleware())

	userRepo := repositories.NewUserRepository()
	authMW := middleware.AuthMiddleware(tokens, userRepo)

	routes.RegisterRoutes(router, appHandlers, authMW)
	return router
}

// seedFirstAdmin creates the configured bootstrap admin account when no
// admin exists yet. Safe to run on every start.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.FirstEmail == "" || cfg.Admin.FirstPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.FirstPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		UserName:     "admin",
		Email:        cfg.Admin.FirstEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	logger.Info("first admin account seeded", "email", cfg.Admin.FirstEmail)
	return nil
}
