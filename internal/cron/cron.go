package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"
)

// Job pairs a cron expression with the function it triggers. Run receives a
// context cancelled on shutdown; the function body is the same sweep that
// tests invoke directly with their own clock.
type Job struct {
	Name string
	Expr string
	Run  func(ctx context.Context)
}

// Start validates every expression and launches one scheduler goroutine per
// job. The returned error reports the first invalid expression; otherwise
// jobs run until ctx is cancelled.
func Start(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		if !gronx.IsValid(job.Expr) {
			return fmt.Errorf("invalid cron expression for %s: %q", job.Name, job.Expr)
		}
	}
	for _, job := range jobs {
		go run(ctx, job)
	}
	return nil
}

func run(ctx context.Context, job Job) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(job.Expr, now, false)
		if err != nil {
			log.Printf("cron %s: next tick: %v", job.Name, err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			log.Printf("cron %s: running", job.Name)
			job.Run(ctx)
		case <-ctx.Done():
			return
		}
	}
}
