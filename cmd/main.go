package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ernest-money/ernest-oracle/internal/config"
	"github.com/ernest-money/ernest-oracle/internal/database"
	"github.com/ernest-money/ernest-oracle/internal/feeds"
	"github.com/ernest-money/ernest-oracle/internal/handlers"
	"github.com/ernest-money/ernest-oracle/internal/jobs"
	"github.com/ernest-money/ernest-oracle/internal/oracle"
	"github.com/ernest-money/ernest-oracle/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize signer and repository
	signer, err := oracle.NewSigner(cfg.Oracle.SecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize signer: %v", err)
	}
	repo, err := repository.New(database.GetDB())
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	// Initialize oracle service
	oracleService := oracle.New(repo, signer, cfg.Oracle.Name, cfg.Oracle.DigitBase, cfg.Oracle.NbDigits)

	// Initialize mempool.space feed client
	feedClient := feeds.NewClient(cfg.Mempool.BaseURL)

	// Initialize handlers
	oracleHandler := handlers.NewOracleHandler(oracleService, feedClient)

	// Start matured-event watcher
	watcher := jobs.NewWatcher(oracleService, feedClient)
	watcher.Start(cfg.Oracle.WatcherInterval)
	log.Println("Matured-event watcher started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ernest oracle")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Oracle routes
	router.GET("/info", oracleHandler.Info)
	router.GET("/list-events", oracleHandler.ListEvents)
	router.GET("/available-events", oracleHandler.AvailableEvents)
	router.POST("/create-event", oracleHandler.CreateEvent)
	router.GET("/event", oracleHandler.GetEvent)
	router.POST("/sign-event", oracleHandler.SignEvent)
	router.GET("/attestation", oracleHandler.GetAttestation)
	router.GET("/attestation-outcome", oracleHandler.GetAttestationOutcome)
	router.GET("/parlay-contract", oracleHandler.GetParlayContract)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Oracle server starting on port %s", cfg.Server.Port)
		log.Printf("Oracle pubkey: %s", oracleService.PublicKeyHex())

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
