package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"swadiq-lms/app/config"
	"swadiq-lms/app/logger"
	"swadiq-lms/app/routes/auth"
	"swadiq-lms/app/routes/events"
	"swadiq-lms/app/routes/payroll"
	"swadiq-lms/app/routes/teachers"
	"swadiq-lms/app/services"
)

var version = "dev"

// customErrorHandler returns the JSON error envelope and reports server errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		logger.RequestError(c, err)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// NewApp builds the HTTP application around the payroll service
func NewApp(svc *services.Service, jwtSecret string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Swadiq LMS",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   svc.Location().String(),
		Format:     "[${time}] ${ip} - ${method} ${path} - ${status} - ${latency}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "pay_model": svc.PayModel()})
	})

	authMiddleware := auth.AuthMiddleware(jwtSecret)

	// Setup events routes
	events.SetupEventsRoutes(app, events.NewHandler(svc), authMiddleware)

	// Setup teachers routes
	teachers.SetupTeachersRoutes(app, teachers.NewHandler(svc), authMiddleware)

	// Setup payroll routes
	payroll.SetupPayrollRoutes(app, payroll.NewHandler(svc), authMiddleware)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})

	return app
}

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Set global time zone
	time.Local = cfg.Server.Location()
	log.Printf("Application time zone set to: %s", time.Local.String())

	logger.Setup(cfg.Rollbar.Token, cfg.Rollbar.Environment, version)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, closeStore, err := config.OpenStore(ctx, cfg.DB)
	if err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}
	defer closeStore()

	svc := services.NewService(store, cfg.ServiceOptions())

	// Start background scheduler
	if cfg.Payroll.AutoClose {
		scheduler, err := services.StartScheduler(svc, cfg.Payroll.CloseSchedule)
		if err != nil {
			log.Fatal("Failed to start scheduler: ", err)
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	app := NewApp(svc, cfg.Auth.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on %s", cfg.Server.Address)
	if err := app.Listen(cfg.Server.Address); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
