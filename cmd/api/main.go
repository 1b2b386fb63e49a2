package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openclinic/medscout/internal/infra/database"
	"github.com/openclinic/medscout/internal/infra/http/handlers"
	"github.com/openclinic/medscout/internal/infra/http/middleware"
	"github.com/openclinic/medscout/internal/infra/integration/apollo"
	"github.com/openclinic/medscout/internal/infra/integration/nppes"
	"github.com/openclinic/medscout/internal/infra/mail"
	"github.com/openclinic/medscout/internal/infra/queue"
	"github.com/openclinic/medscout/internal/usecase"
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
	leadRepo := database.NewLeadRepository(db)
	outreachRepo := database.NewOutreachRepository(db)

	// 2. Gateways and adapters
	directory := nppes.NewClient()
	enricher := apollo.NewClient(
		os.Getenv("APOLLO_API_KEY"),
		os.Getenv("APOLLO_URL"),
		envInt("APOLLO_CREDITS", 100),
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), envInt("MAIL_PORT", 587),
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	// 3. Worker: consumes the outreach queue, sends over SMTP, records
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender, outreachRepo, leadRepo)
	go worker.Start(queue.QueueName)

	// 4. UseCases
	recruitUC := usecase.NewRecruitLeadsUseCase(leadRepo, directory, enricher)
	statsUC := usecase.NewDashboardStatsUseCase(leadRepo, outreachRepo)
	sendUC := usecase.NewSendOutreachUseCase(leadRepo, producer)

	// 5. Handlers
	recruitHandler := handlers.NewRecruitHandler(recruitUC)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsUC)
	emailHandler := handlers.NewEmailHandler(sendUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/leads/recruit", recruitHandler.Handle)
		r.Post("/leads/load", recruitHandler.HandleLoad)
		r.Get("/leads", leadHandler.HandleList)
		r.Get("/leads/{npi}", leadHandler.HandleGet)

		r.Get("/dashboard/stats", dashboardHandler.HandleStats)
		r.Get("/dashboard/main-stats", dashboardHandler.HandleMainStats)
		r.Get("/dashboard/with-email-stats", dashboardHandler.HandleWithEmailStats)
		r.Get("/dashboard/without-email-stats", dashboardHandler.HandleWithoutEmailStats)

		r.Post("/emails/send", emailHandler.Handle)
		r.Get("/health", healthHandler.Handle)
	})
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("medscout api listening on %s", port)
	http.ListenAndServe(port, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
