package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/solacejournal/solace-backend/internal/bot"
	"github.com/solacejournal/solace-backend/internal/config"
	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/handlers"
	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/routes"
	"github.com/solacejournal/solace-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := services.EnsureNotificationIndexes(ctx); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure notification log indexes: %v", err)
	} else {
		log.Println("✅ MongoDB notification log indexes ensured")
	}

	handlers.InviteTTL = cfg.InviteTTL

	// Telegram bot: without a token there is no delivery channel, so the
	// notification scheduler stays off and entry hooks become no-ops. In
	// production that is a deployment mistake, not a mode.
	if cfg.TelegramBotToken == "" {
		if cfg.IsProduction() {
			log.Fatal("❌ TELEGRAM_BOT_TOKEN not set. Refusing to start in production without a delivery channel.")
		}
		log.Println("⚠️  WARNING: TELEGRAM_BOT_TOKEN not set. Notifications are disabled.")
	} else {
		tg, err := bot.New(cfg.TelegramBotToken, cfg.MiniAppURL)
		if err != nil {
			log.Fatal("Failed to initialize Telegram bot:", err)
		}

		dispatcher := &services.Dispatcher{
			Messenger:   tg,
			Log:         services.NewNotificationLog(),
			ResolveChat: services.TelegramChatID,
			SendTimeout: 10 * time.Second,
		}
		notifier := &services.Notifier{
			Store:      services.NewNotifierStore(),
			Dispatcher: dispatcher,
			MiniAppURL: cfg.MiniAppURL,
		}
		services.DefaultNotifier = notifier

		scheduler := &services.Scheduler{
			Sweeper:       notifier,
			ReminderEvery: cfg.ReminderSweepEvery,
			DigestEvery:   cfg.DigestSweepEvery,
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("✅ Notification scheduler started (reminders every %s, digests every %s)",
			cfg.ReminderSweepEvery, cfg.DigestSweepEvery)

		go tg.Listen(ctx)
	}

	// Fan entry events out to connected therapist feeds
	services.StartEntryFeedSubscriber(ctx)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimitMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Solace backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
