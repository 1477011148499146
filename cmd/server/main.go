package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/bookingapi"
	"github.com/smarttransit/walkin-pos/internal/config"
	"github.com/smarttransit/walkin-pos/internal/database"
	"github.com/smarttransit/walkin-pos/internal/handlers"
	"github.com/smarttransit/walkin-pos/internal/middleware"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/services"
	"github.com/smarttransit/walkin-pos/internal/session"
	"github.com/smarttransit/walkin-pos/internal/wizard"
	"github.com/smarttransit/walkin-pos/pkg/jwt"
	"github.com/smarttransit/walkin-pos/pkg/ticket"
	"github.com/smarttransit/walkin-pos/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SmartTransit Walk-in POS")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Sales ledger is optional
	var db database.DB
	var salesStore services.SalesStore
	if cfg.Database.Enabled() {
		logger.Info("Connecting to sales ledger database...")
		conn, err := database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = database.EnsureSchema(ctx, conn)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to prepare sales ledger schema: %v", err)
		}

		db = conn
		salesStore = database.NewSalesRepository(conn)
		logger.Info("Sales ledger enabled")
	} else {
		logger.Info("DATABASE_URL not set, sales ledger disabled")
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, 0)
	bookingClient := bookingapi.New(bookingapi.Config{
		BaseURL: cfg.BookingService.URL,
		Timeout: cfg.BookingService.Timeout,
	}, logger)
	renderer := ticket.NewPDFRenderer(
		ticket.WithCompanyName(cfg.Ticket.CompanyName),
		ticket.WithCurrency(cfg.Ticket.Currency),
		ticket.WithUTF8Font(cfg.Ticket.FontPath),
	)
	phoneValidator := validator.NewPhoneValidator()
	sessionStore := session.NewStore()
	salesService := services.NewSalesService(salesStore, logger)

	newWizard := func(auth models.AuthContext) (*wizard.Wizard, session.AuthRefresher) {
		client := bookingClient.ForUser(auth)
		w := wizard.New(client, renderer, wizard.Options{
			ReturnURL:      cfg.Payment.ReturnURL,
			PhoneValidator: phoneValidator,
			StrictPhone:    cfg.Validation.StrictPhone,
			Logger:         logger.WithField("ticketer_id", auth.UserID),
		})
		return w, client
	}

	// Initialize and start cron service
	cronService := services.NewCronService(sessionStore, cfg.Session.IdleTimeout, cfg.Session.SweepSchedule, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	walkInHandler := handlers.NewWalkInHandler(sessionStore, newWizard, renderer, salesService, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db, cfg.BookingService.URL, sessionStore, cronService))

	v1 := router.Group("/api/v1")
	{
		walkIn := v1.Group("/walk-in")
		walkIn.Use(middleware.AuthMiddleware(jwtService, logger))
		walkIn.Use(middleware.RequireWalkInAccess())
		walkInHandler.RegisterRoutes(walkIn)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BookingService.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}

		if userID, exists := c.Get("user_id"); exists {
			fields["user_id"] = userID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint. db is nil when the
// sales ledger is disabled.
func healthCheckHandler(db database.DB, bookingServiceURL string, store *session.Store, cronService *services.CronService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "disabled"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unhealthy",
					"error":    err.Error(),
				})
				return
			}
			dbStatus = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"database":        dbStatus,
			"booking_service": bookingServiceURL,
			"active_sessions": store.Len(),
			"jobs":            cronService.GetJobStatus(),
			"version":         version,
			"timestamp":       time.Now().Unix(),
		})
	}
}
