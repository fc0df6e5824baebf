package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tuition_marketplace/configs"
	"github.com/anjiri1684/tuition_marketplace/database"
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/jobs"
	"github.com/anjiri1684/tuition_marketplace/notifications"
	"github.com/anjiri1684/tuition_marketplace/routes"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/anjiri1684/tuition_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Printf("🔥 Failed to seed admin user: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	var publisher notifications.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := notifications.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("⚠️ Event publishing disabled: %v", err)
		} else {
			defer p.Close()
			publisher = p
			log.Println("✅ Event publisher connected.")
		}
	} else {
		log.Println("⚠️ AMQP_URL not set, event publishing disabled.")
	}
	notifier := notifications.NewNotifier(
		notifications.NewMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName),
		publisher,
		hub,
	)

	payments := services.NewPaymentService(db)
	h := &handlers.Handler{
		Accounts:      services.NewAccountService(db, cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour),
		Tuitions:      services.NewTuitionService(db, cfg.MinTuitionBudget),
		Applications:  services.NewApplicationService(db),
		Approvals:     services.NewApprovalService(db),
		Payments:      payments,
		Revenue:       services.NewRevenueService(payments),
		Notifier:      notifier,
		Hub:           hub,
		WebhookSecret: cfg.PaymentWebhookSecret,
	}
	if cfg.PaymentWebhookSecret == "" {
		log.Println("⚠️ PAYMENT_WEBHOOK_SECRET not set, payment webhooks will be refused.")
	}

	scheduler := cron.New()
	if err := jobs.Schedule(scheduler, payments, time.Duration(cfg.StalePaymentHours)*time.Hour); err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:       "Tuition Marketplace",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Webhook-Secret, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.LogTimeZone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Tuition Marketplace API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, h, cfg.JWTSecret)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("🔥 Server shutdown failed: %v", err)
		}
	}()

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}

	notifier.Wait()
	hub.Stop()
}
