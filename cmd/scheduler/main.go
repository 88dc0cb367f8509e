package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/lendcore/loan-engine/internal/config"
	"github.com/lendcore/loan-engine/internal/repository"
	"github.com/lendcore/loan-engine/internal/service"
	"github.com/lendcore/loan-engine/pkg/utils"
)

func main() {
	log.Println("Starting loan scheduler...")

	// .env is optional outside of local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	repaymentService := service.NewRepaymentService(store, nil, cfg, nil)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithLocation(location))
	setupCronJobs(c, cfg, repaymentService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, svc *service.RepaymentService) {
	// Daily interest maturity accrual
	_, err := c.AddFunc(cfg.Scheduler.AccrualCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		asOf := utils.TruncateToDay(time.Now())
		log.Printf("Running interest maturity accrual job for %s...", utils.FormatDate(asOf))
		n, err := svc.AccrueMatureInterest(ctx, asOf)
		if err != nil {
			log.Printf("Interest accrual job failed: %v", err)
			return
		}
		log.Printf("Interest accrual job done, %d installments accrued", n)
	})
	if err != nil {
		log.Printf("Error scheduling interest accrual job: %v", err)
	}

	// Daily late penalty application
	_, err = c.AddFunc(cfg.Scheduler.PenaltyCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		asOf := utils.TruncateToDay(time.Now())
		log.Printf("Running late penalty job for %s...", utils.FormatDate(asOf))
		n, err := svc.ApplyLatePenalties(ctx, asOf)
		if err != nil {
			log.Printf("Late penalty job failed: %v", err)
			return
		}
		log.Printf("Late penalty job done, %d installments penalized", n)
	})
	if err != nil {
		log.Printf("Error scheduling late penalty job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
