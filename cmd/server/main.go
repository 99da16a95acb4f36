package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"lendbook/internal/auth"
	"lendbook/internal/config"
	"lendbook/internal/handler"
	"lendbook/internal/repository"
	"lendbook/internal/service"
	"lendbook/internal/watch"
	"lendbook/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	notifier := watch.NewRedisNotifier(redisClient)
	hub := watch.NewHub(memberRepo, txRepo, notifier)

	ledgerService := service.NewLedgerService(memberRepo, txRepo, notifier)
	dashboardService := service.NewDashboardService(memberRepo, txRepo)
	authService := service.NewAuthService(userRepo, jwtManager)

	authHandler := handler.NewAuthHandler(authService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, hub)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(authHandler, ledgerHandler, dashboardHandler, healthHandler, jwtManager)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	authHandler *handler.AuthHandler,
	ledgerHandler *handler.LedgerHandler,
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
	jwtManager *auth.JWTManager,
) *mux.Router {
	router := mux.NewRouter()

	// Health check and metrics
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public auth routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(handler.RequireAuth(jwtManager))

	protected.HandleFunc("/members", ledgerHandler.CreateMember).Methods("POST")
	protected.HandleFunc("/members", ledgerHandler.ListMembers).Methods("GET")
	protected.HandleFunc("/members/{memberId}", ledgerHandler.GetMember).Methods("GET")
	protected.HandleFunc("/members/{memberId}", ledgerHandler.DeleteMember).Methods("DELETE")
	protected.HandleFunc("/members/{memberId}/payments", ledgerHandler.RecordPayment).Methods("POST")
	protected.HandleFunc("/members/{memberId}/transactions", ledgerHandler.MemberTransactions).Methods("GET")
	protected.HandleFunc("/transactions", ledgerHandler.ListTransactions).Methods("GET")
	protected.HandleFunc("/dashboard", dashboardHandler.Summary).Methods("GET")
	protected.HandleFunc("/stream", dashboardHandler.Stream).Methods("GET")

	return router
}
