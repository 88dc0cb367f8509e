package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/lendcore/loan-engine/internal/config"
	"github.com/lendcore/loan-engine/internal/handler"
	"github.com/lendcore/loan-engine/internal/repository"
	"github.com/lendcore/loan-engine/internal/service"
	"github.com/lendcore/loan-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	store := repository.NewStore(db)
	repaymentService := service.NewRepaymentService(store, redisClient, cfg, nil)
	repaymentHandler := handler.NewRepaymentHandler(repaymentService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(repaymentHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
}

func setupRoutes(repaymentHandler *handler.RepaymentHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	/// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/repayments", repaymentHandler.CreateRepayment).Methods("POST")
	api.HandleFunc("/repayments/bulk", repaymentHandler.CreateBulkRepayments).Methods("POST")
	api.HandleFunc("/repayments/settlement", repaymentHandler.CreateSettlement).Methods("POST")
	api.HandleFunc("/repayments/remove-penalty", repaymentHandler.RemovePenalty).Methods("POST")
	api.HandleFunc("/repayments/bulk-delete", repaymentHandler.BulkDeleteRepayments).Methods("POST")
	api.HandleFunc("/repayments/{repaymentId}", repaymentHandler.UpdateRepayment).Methods("PUT")
	api.HandleFunc("/repayments/{repaymentId}", repaymentHandler.DeleteRepayment).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/repayments", repaymentHandler.GetRepaymentHistory).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedules", repaymentHandler.GetLoanSchedules).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule-preview", repaymentHandler.PreviewSchedule).Methods("POST")
	api.HandleFunc("/schedules/{scheduleId}", repaymentHandler.GetScheduleDetails).Methods("GET")

	return router
}
