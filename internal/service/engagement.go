package service

import (
	"context"
	"log"

	"github.com/clientpro/clientpro-backend/internal/repository"
)

const (
	baseEngagementScore  = 50
	replyEngagementBonus = 10
)

// EngagementScorer is the nightly batch that recomputes every active
// client's score from reply history. The recomputation is idempotent and
// order independent; it is the source of truth that overwrites the
// correlator's incremental bumps on each run.
type EngagementScorer struct {
	Clients  repository.ClientRepositoryInterface
	Messages repository.MessageRepositoryInterface
}

func NewEngagementScorer(clients repository.ClientRepositoryInterface, messages repository.MessageRepositoryInterface) *EngagementScorer {
	return &EngagementScorer{Clients: clients, Messages: messages}
}

// Run recomputes scores for all active clients, writing only rows whose
// score actually changed. Returns the number of clients updated.
func (e *EngagementScorer) Run(ctx context.Context) (int, error) {
	clients, err := e.Clients.ListActive()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, client := range clients {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		replies, err := e.Messages.ReplyCountByClient(client.ID)
		if err != nil {
			log.Printf("reply count for client %s: %v", client.ID, err)
			continue
		}

		score := baseEngagementScore + replies*replyEngagementBonus
		if score > 100 {
			score = 100
		}
		if score == client.EngagementScore {
			continue
		}
		if err := e.Clients.UpdateEngagementScore(client.ID, score); err != nil {
			log.Printf("update score for client %s: %v", client.ID, err)
			continue
		}
		updated++
	}

	log.Printf("engagement score update complete: %d clients updated", updated)
	return updated, nil
}
