package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leadhub/internal/infra/database"
	"github.com/xavierca1/leadhub/internal/infra/http/handlers"
	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/infra/mail"
	"github.com/xavierca1/leadhub/internal/infra/queue"
	"github.com/xavierca1/leadhub/internal/infra/signer"
	"github.com/xavierca1/leadhub/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	resetRepo := database.NewPasswordResetRepository(db)
	leadRepo := database.NewLeadRepository(db)

	// 2. Mail pipeline: producer publishes, the worker drains the queue
	// and talks SMTP. Requests never wait on mail.
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"),
		envIntOr("MAIL_PORT", 587),
		os.Getenv("MAIL_USER"),
		os.Getenv("MAIL_PASS"),
		envOr("MAIL_FROM", "no-reply@leadhub.local"),
	)
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go worker.Start(queue.QueueName)

	// 3. Signed verification links
	linkSigner := signer.New(os.Getenv("APP_KEY"), time.Hour)
	appURL := envOr("APP_URL", "http://localhost:8080")

	// 4. UseCases
	authUC := usecase.NewAuthUseCase(userRepo, sessionRepo, resetRepo, producer, linkSigner, appURL)
	settingsUC := usecase.NewSettingsUseCase(userRepo, producer, linkSigner, appURL)
	leadUC := usecase.NewLeadUseCase(leadRepo)

	// 5. Handlers
	authHandler := handlers.NewAuthHandler(authUC)
	settingsHandler := handlers.NewSettingsHandler(settingsUC)
	leadHandler := handlers.NewLeadHandler(leadUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	sessionAuth := middleware.NewSessionAuth(sessionRepo, userRepo)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{envOr("FRONTEND_URL", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/logout", authHandler.HandleLogout)
	r.Post("/auth/forgot-password", authHandler.HandleForgotPassword)
	r.Post("/password/reset", authHandler.HandleResetPassword)
	r.Post("/email/verify/{id}/{email}/{signature}", authHandler.HandleVerifyEmail)

	r.Group(func(r chi.Router) {
		r.Use(sessionAuth.RequireUser)

		r.Get("/auth/user", authHandler.HandleCurrentUser)
		r.Post("/settings/security/email-verification", authHandler.HandleResendVerification)
		r.Put("/settings/security/username", settingsHandler.HandleChangeUsername)
		r.Put("/settings/security/email", settingsHandler.HandleChangeEmail)
		r.Put("/settings/security/password", settingsHandler.HandleChangePassword)

		r.Get("/leads", leadHandler.HandleList)
		r.Post("/leads", leadHandler.HandleCreate)
		r.Put("/leads/{id}", leadHandler.HandleUpdate)
		r.Put("/leads/{id}/status", leadHandler.HandleUpdateStatus)
		r.Delete("/leads/{id}", leadHandler.HandleDelete)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("🔥 leadhub API listening on %s", port)
	http.ListenAndServe(port, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
