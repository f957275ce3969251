package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clientpro/clientpro-backend/internal/email"
	"github.com/clientpro/clientpro-backend/internal/metrics"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// optOutKeywords are matched exactly against the normalized inbound body.
// Opt-out classification always wins over reply handling.
var optOutKeywords = map[string]bool{
	"stop":        true,
	"unsubscribe": true,
	"cancel":      true,
	"quit":        true,
	"end":         true,
}

// Correlator resolves inbound SMS events back to the agent and client that
// own them, and applies the opt-out or reply transition. Unresolvable
// events are logged and dropped: the sender gets no error and nothing is
// retried.
type Correlator struct {
	Agents   repository.AgentRepositoryInterface
	Clients  repository.ClientRepositoryInterface
	Messages repository.MessageRepositoryInterface
	Notifier email.Notifier // nil when email is not provisioned
}

func NewCorrelator(agents repository.AgentRepositoryInterface, clients repository.ClientRepositoryInterface, messages repository.MessageRepositoryInterface, notifier email.Notifier) *Correlator {
	return &Correlator{Agents: agents, Clients: clients, Messages: messages, Notifier: notifier}
}

// HandleInbound processes one inbound SMS event. A non-nil error means a
// storage failure; the webhook layer still acknowledges the provider.
func (c *Correlator) HandleInbound(ctx context.Context, from, to, body, providerSID string) error {
	log.Printf("inbound SMS from %s to %s", from, to)

	agent, err := c.Agents.FindBySendNumber(to)
	if err != nil {
		return fmt.Errorf("resolve agent by number: %w", err)
	}
	if agent == nil {
		log.Printf("no agent owns number %s, dropping inbound", to)
		metrics.InboundDropped.Inc()
		return nil
	}

	// A phone number may belong to clients of several agents; only the
	// match within this agent's book counts.
	candidates, err := c.Clients.FindByPhoneGlobal(from)
	if err != nil {
		return fmt.Errorf("resolve client by phone: %w", err)
	}
	var client *model.Client
	for i := range candidates {
		if candidates[i].AgentID == agent.ID {
			client = &candidates[i]
			break
		}
	}
	if client == nil {
		log.Printf("no client with phone %s for agent %s, dropping inbound", from, agent.ID)
		metrics.InboundDropped.Inc()
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(body))
	if optOutKeywords[normalized] {
		return c.handleOptOut(client)
	}
	return c.handleReply(ctx, agent, client, body)
}

// handleOptOut deactivates the client and cancels everything still
// scheduled. Both updates are conditional on current state, so a repeated
// STOP is a no-op.
func (c *Correlator) handleOptOut(client *model.Client) error {
	deactivated, err := c.Clients.SoftDelete(client.ID)
	if err != nil {
		return fmt.Errorf("deactivate client: %w", err)
	}
	cancelled, err := c.Messages.CancelScheduledForClient(client.ID)
	if err != nil {
		return fmt.Errorf("cancel scheduled messages: %w", err)
	}
	if deactivated {
		metrics.OptOuts.Inc()
	}
	log.Printf("client %s opted out, %d scheduled messages cancelled", client.ID, cancelled)
	return nil
}

func (c *Correlator) handleReply(ctx context.Context, agent *model.Agent, client *model.Client, body string) error {
	recent, err := c.Messages.FindRecentSent(client.ID)
	if err != nil {
		return fmt.Errorf("find recent sent message: %w", err)
	}
	if recent != nil {
		if err := c.Messages.MarkReplied(recent.ID, body); err != nil {
			return fmt.Errorf("mark replied: %w", err)
		}
		metrics.RepliesReceived.Inc()
	} else {
		// Accepted race: the reply can land between claim and the sent
		// commit. Treat it as unmatched rather than waiting.
		log.Printf("reply from client %s with no sent message to correlate", client.ID)
	}

	newScore := client.EngagementScore + 10
	if newScore > 100 {
		newScore = 100
	}
	if err := c.Clients.UpdateEngagementScore(client.ID, newScore); err != nil {
		return fmt.Errorf("update engagement score: %w", err)
	}

	// Notification is fire and forget: a failed email never unwinds the
	// reply that was just recorded.
	if c.Notifier != nil {
		subject := fmt.Sprintf("%s replied to your message", client.FullName())
		html := fmt.Sprintf(
			"<p>Hi %s,</p><p><strong>%s</strong> just replied:</p><blockquote>%s</blockquote><p>Log in to ClientPro to respond.</p>",
			agent.FirstName, client.FullName(), body,
		)
		if err := c.Notifier.Notify(ctx, agent.Email, subject, html); err != nil {
			log.Printf("notify agent %s: %v", agent.ID, err)
		}
	}

	log.Printf("reply processed for client %s, agent %s", client.ID, agent.ID)
	return nil
}
