package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playRushAPI/handlers"
	"playRushAPI/internal/notification"
	"playRushAPI/internal/workers"
	"playRushAPI/middleware"
	"playRushAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	progressService     *services.ProgressService
	leaderboardService  *services.LeaderboardService
	adConfigService     *services.AdConfigService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	userService = services.NewUserService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	progressService = services.NewProgressService(dbPool, notificationService)
	leaderboardService = services.NewLeaderboardService(dbPool)

	adConfigPath := os.Getenv("AD_CONFIG_PATH")
	if adConfigPath == "" {
		adConfigPath = "./ads.toml"
	}
	adConfigService = services.NewAdConfigService(adConfigPath)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	progressHandler := handlers.NewProgressHandler(progressService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	adsHandler := handlers.NewAdsHandler(adConfigService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workers.StartTokenCleanupWorker(workerCtx, dbPool)

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "playRush-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// Clients fetch ad config before login and cache it ~1h.
	r.HandleFunc("/ads/config", adsHandler.GetConfig).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/users/me", progressHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/users/game-complete", progressHandler.CompleteGame).Methods("POST")
	protected.HandleFunc("/users/streak-freeze", progressHandler.UseStreakFreeze).Methods("POST")
	protected.HandleFunc("/users/bonus-points", progressHandler.AddBonusPoints).Methods("POST")
	protected.HandleFunc("/users/coins/add", progressHandler.AddCoins).Methods("POST")
	protected.HandleFunc("/users/coins/spend", progressHandler.SpendCoins).Methods("POST")
	protected.HandleFunc("/users/reset", progressHandler.Reset).Methods("POST")

	protected.HandleFunc("/leaderboard/submit", leaderboardHandler.Submit).Methods("POST")
	protected.HandleFunc("/leaderboard/{weekId}", leaderboardHandler.GetBoard).Methods("GET")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
