package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clientpro/clientpro-backend/internal/metrics"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/queue"
	"github.com/clientpro/clientpro-backend/internal/repository"
	"github.com/clientpro/clientpro-backend/internal/sms"
)

const (
	// DefaultBatchSize bounds how many due messages one sweep picks up.
	DefaultBatchSize = 100
	// DefaultMaxRetries is the delivery attempt ceiling per message.
	DefaultMaxRetries = 3
	// DefaultAttemptTimeout bounds a single provider call.
	DefaultAttemptTimeout = 15 * time.Second
	// DefaultStaleAfter is how long a row may sit in sending before the
	// sweep assumes the attempt died and reclaims it.
	DefaultStaleAfter = 10 * time.Minute

	deliverConcurrency = 4
)

// Dispatcher finds due messages and moves them through delivery. When Queue
// is set, claimed messages are published for an external worker; otherwise
// they are delivered inline with bounded concurrency.
type Dispatcher struct {
	Messages       repository.MessageRepositoryInterface
	Sender         sms.Sender // nil when no transport is provisioned
	Queue          queue.Queue
	BatchSize      int
	MaxRetries     int
	AttemptTimeout time.Duration
	StaleAfter     time.Duration
	Now            func() time.Time
}

func NewDispatcher(messages repository.MessageRepositoryInterface, sender sms.Sender, q queue.Queue) *Dispatcher {
	return &Dispatcher{
		Messages:       messages,
		Sender:         sender,
		Queue:          q,
		BatchSize:      DefaultBatchSize,
		MaxRetries:     DefaultMaxRetries,
		AttemptTimeout: DefaultAttemptTimeout,
		StaleAfter:     DefaultStaleAfter,
		Now:            time.Now,
	}
}

// Sweep is one dispatcher run: reclaim stale in-flight rows, select the due
// batch, claim each row, and hand the claimed rows off for delivery. Each
// message is processed independently; one failure never blocks the rest.
func (d *Dispatcher) Sweep(ctx context.Context) {
	reclaimed, err := d.Messages.ReclaimStale(d.Now().Add(-d.StaleAfter))
	if err != nil {
		log.Println("reclaim stale sending rows:", err)
	} else if reclaimed > 0 {
		log.Printf("reclaimed %d messages stuck in sending", reclaimed)
	}

	due, err := d.Messages.FindDue(d.MaxRetries, d.BatchSize)
	if err != nil {
		log.Println("find due messages:", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Printf("dispatcher sweep: %d due messages", len(due))

	var claimed []repository.DueMessage
	for _, msg := range due {
		ok, err := d.Messages.Claim(msg.ID)
		if err != nil {
			log.Printf("claim message %s: %v", msg.ID, err)
			continue
		}
		if !ok {
			// Another sweep got there first.
			continue
		}
		if d.Queue != nil {
			if err := d.Queue.Publish(queue.TopicMessageSends, queue.Job{MessageID: msg.ID}); err != nil {
				log.Printf("publish message %s: %v", msg.ID, err)
				if err := d.Messages.Reschedule(msg.ID); err != nil {
					log.Printf("reschedule message %s after publish failure: %v", msg.ID, err)
				}
			}
			continue
		}
		claimed = append(claimed, msg)
	}

	if len(claimed) == 0 {
		return
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(deliverConcurrency)
	for _, msg := range claimed {
		msg := msg
		g.Go(func() error {
			if err := d.Deliver(gCtx, &msg); err != nil {
				log.Printf("deliver message %s: %v", msg.ID, err)
			}
			return nil
		})
	}
	g.Wait()
}

// HandleJob is the queue-worker entry point: it re-loads the claimed row and
// attempts delivery. Rows no longer in sending (cancelled meanwhile, or
// reclaimed and re-dispatched) are skipped.
func (d *Dispatcher) HandleJob(ctx context.Context, job queue.Job) error {
	due, err := d.Messages.GetForDelivery(job.MessageID)
	if err != nil {
		return fmt.Errorf("load message %s: %w", job.MessageID, err)
	}
	if due == nil {
		log.Printf("message %s not found, dropping job", job.MessageID)
		return nil
	}
	if due.Status != model.StatusSending {
		log.Printf("message %s in status %s, skipping delivery", due.ID, due.Status)
		return nil
	}
	return d.Deliver(ctx, due)
}

// Deliver performs one delivery attempt on a claimed (sending) row and
// commits the resulting transition: sent on success, scheduled for another
// try below the retry ceiling, failed otherwise. A missing sending number
// and an unconfigured transport are permanent failures; they still bump the
// retry counter so the attempt shows up in the row's history.
func (d *Dispatcher) Deliver(ctx context.Context, due *repository.DueMessage) error {
	if due.AgentSendNumber == nil || *due.AgentSendNumber == "" {
		return d.failPermanently(due, "agent has no provisioned sending number")
	}
	if d.Sender == nil {
		return d.failPermanently(due, "sms transport not configured")
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.AttemptTimeout)
	defer cancel()

	providerSID, sendErr := d.Sender.Send(attemptCtx, *due.AgentSendNumber, due.ClientPhone, due.MessageText)
	if sendErr != nil {
		retries, err := d.Messages.IncrementRetry(due.ID)
		if err != nil {
			return fmt.Errorf("increment retry: %w", err)
		}
		if retries >= d.MaxRetries {
			metrics.MessagesFailed.Inc()
			if err := d.Messages.MarkFailed(due.ID, sendErr.Error()); err != nil {
				return fmt.Errorf("mark failed: %w", err)
			}
			return fmt.Errorf("message failed after %d attempts: %w", retries, sendErr)
		}
		metrics.MessagesRetried.Inc()
		if err := d.Messages.Reschedule(due.ID); err != nil {
			return fmt.Errorf("reschedule: %w", err)
		}
		return fmt.Errorf("delivery attempt %d: %w", retries, sendErr)
	}

	if err := d.Messages.MarkSent(due.ID, providerSID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	metrics.MessagesSent.Inc()
	log.Printf("message %s sent, provider id %s", due.ID, providerSID)
	return nil
}

func (d *Dispatcher) failPermanently(due *repository.DueMessage, reason string) error {
	if _, err := d.Messages.IncrementRetry(due.ID); err != nil {
		return fmt.Errorf("increment retry: %w", err)
	}
	if err := d.Messages.MarkFailed(due.ID, reason); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	metrics.MessagesFailed.Inc()
	return nil
}
