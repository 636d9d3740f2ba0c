package main

import (
	"context"
	"flag"
	"log"
	"time"

	"swadiq-lms/app/config"
	"swadiq-lms/app/services"
)

// Runs the monthly payroll close once, for cron hosts that do not run the server scheduler.
func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	month := flag.Int("month", 0, "month to close (defaults to the previous month)")
	year := flag.Int("year", 0, "year of the month to close")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	time.Local = cfg.Server.Location()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, closeStore, err := config.OpenStore(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Cannot establish database connection: %v", err)
	}
	defer closeStore()

	svc := services.NewService(store, cfg.ServiceOptions())

	var summary *services.CloseSummary
	if *month == 0 {
		summary, err = svc.ClosePreviousMonth(ctx)
	} else {
		summary, err = svc.CloseMonth(ctx, services.SystemActor, *month, *year)
	}
	if err != nil {
		log.Fatalf("Monthly close failed: %v", err)
	}
	log.Printf("Closed %04d-%02d (%s): %d written, %d skipped",
		summary.Year, summary.Month, summary.PayModel, summary.Written, summary.Skipped)
}
