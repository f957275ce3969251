package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clientpro/clientpro-backend/internal/config"
	"github.com/clientpro/clientpro-backend/internal/db"
	"github.com/clientpro/clientpro-backend/internal/queue"
	"github.com/clientpro/clientpro-backend/internal/repository"
	"github.com/clientpro/clientpro-backend/internal/service"
	"github.com/clientpro/clientpro-backend/internal/sms"
)

// The worker consumes claimed message IDs off RabbitMQ and performs the
// actual provider calls, keeping slow deliveries out of the API process.
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

	messageRepo := &repository.MessageRepository{DB: pool}

	sender := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	var senderIface sms.Sender
	if sender != nil {
		senderIface = sender
	} else {
		log.Println("twilio not configured; claimed messages will fail permanently")
	}

	amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatal(err)
	}
	defer amqpQueue.Close()

	dispatcher := service.NewDispatcher(messageRepo, senderIface, nil)

	go func() {
		<-ctx.Done()
		amqpQueue.Close()
	}()

	log.Println("worker running, waiting for messages")
	if err := amqpQueue.Subscribe(queue.TopicMessageSends, func(job queue.Job) error {
		return dispatcher.HandleJob(ctx, job)
	}); err != nil {
		log.Fatal(err)
	}
}
