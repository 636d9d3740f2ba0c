package main

import (
	"context"
	"flag"
	"log"
	"time"

	"swadiq-lms/app/config"
	"swadiq-lms/app/database"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	log.Println("Starting manual migration...")

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		log.Fatalf("Migrations need db.driver=%s, got %s", config.DriverPostgres, cfg.DB.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := config.OpenDB(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Manual migration completed successfully!")
}
