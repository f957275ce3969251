package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/clientpro/clientpro-backend/internal/config"
	"github.com/clientpro/clientpro-backend/internal/cron"
	"github.com/clientpro/clientpro-backend/internal/db"
	"github.com/clientpro/clientpro-backend/internal/email"
	"github.com/clientpro/clientpro-backend/internal/handler"
	"github.com/clientpro/clientpro-backend/internal/metrics"
	"github.com/clientpro/clientpro-backend/internal/queue"
	"github.com/clientpro/clientpro-backend/internal/repository"
	"github.com/clientpro/clientpro-backend/internal/service"
	"github.com/clientpro/clientpro-backend/internal/sms"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("connected to database")

	agentRepo := &repository.AgentRepository{DB: pool}
	clientRepo := &repository.ClientRepository{DB: pool}
	messageRepo := &repository.MessageRepository{DB: pool}
	templateRepo := &repository.TemplateRepository{DB: pool}
	referralRepo := &repository.ReferralRepository{DB: pool}

	// Provider capabilities are built once here and injected; absence is a
	// nil capability, not a lazily created global.
	sender := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	var senderIface sms.Sender
	if sender != nil {
		senderIface = sender
	} else {
		log.Println("twilio not configured; due messages will fail permanently")
	}
	notifier := email.NewResendNotifier(cfg.ResendAPIKey, cfg.FromEmail)
	var notifierIface email.Notifier
	if notifier != nil {
		notifierIface = notifier
	} else {
		log.Println("resend not configured; reply notifications disabled")
	}

	// With RabbitMQ available the sweep publishes claims for cmd/worker;
	// without it the sweep delivers inline.
	var q queue.Queue
	if amqpQueue, err := queue.DialAMQP(cfg.AMQPURL); err != nil {
		log.Println("amqp unavailable, delivering inline:", err)
	} else {
		q = amqpQueue
		defer amqpQueue.Close()
	}

	scheduler := service.NewScheduler(templateRepo, messageRepo)
	dispatcher := service.NewDispatcher(messageRepo, senderIface, q)
	correlator := service.NewCorrelator(agentRepo, clientRepo, messageRepo, notifierIface)
	scorer := service.NewEngagementScorer(clientRepo, messageRepo)
	clientService := &service.ClientService{
		Agents:    agentRepo,
		Clients:   clientRepo,
		Messages:  messageRepo,
		Scheduler: scheduler,
	}
	referralService := &service.ReferralService{Referrals: referralRepo, Clients: clientRepo}

	jobs := []cron.Job{
		{Name: "dispatch_due_messages", Expr: "*/15 * * * *", Run: dispatcher.Sweep},
		{Name: "update_engagement_scores", Expr: "0 2 * * *", Run: func(ctx context.Context) {
			if _, err := scorer.Run(ctx); err != nil {
				log.Println("engagement score job:", err)
			}
		}},
	}
	if err := cron.Start(ctx, jobs); err != nil {
		log.Fatal(err)
	}

	webhookHandler := &handler.WebhookHandler{Correlator: correlator, Messages: messageRepo}
	messageHandler := &handler.MessageHandler{Messages: messageRepo}
	clientHandler := &handler.ClientHandler{
		Clients:   clientRepo,
		Service:   clientService,
		Referrals: referralService,
	}

	r := chi.NewRouter()

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/api/twilio/incoming", webhookHandler.Incoming)
	r.Post("/api/twilio/status", webhookHandler.Status)

	r.Get("/api/messages", messageHandler.List)
	r.Get("/api/messages/upcoming", messageHandler.Upcoming)
	r.Get("/api/messages/replies", messageHandler.UnreadReplies)
	r.Put("/api/messages/{id}", messageHandler.UpdateText)
	r.Put("/api/messages/{id}/read", messageHandler.MarkRead)
	r.Delete("/api/messages/{id}", messageHandler.Cancel)

	r.Post("/api/clients", clientHandler.Create)
	r.Get("/api/clients", clientHandler.List)
	r.Delete("/api/clients/{id}", clientHandler.Remove)
	r.Post("/api/referrals", clientHandler.CreateReferral)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server running on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	srv.Shutdown(context.Background())
}
