package service

import (
	"log"
	"time"

	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// Scheduler fans a new client out into future-dated messages, one per
// active template. It runs once per client, synchronously with the
// creating request.
type Scheduler struct {
	Templates repository.TemplateRepositoryInterface
	Messages  repository.MessageRepositoryInterface
	Now       func() time.Time
}

func NewScheduler(templates repository.TemplateRepositoryInterface, messages repository.MessageRepositoryInterface) *Scheduler {
	return &Scheduler{Templates: templates, Messages: messages, Now: time.Now}
}

// ScheduleForClient creates one scheduled message per active template whose
// computed date is strictly in the future, and returns the count created.
// Past dates are skipped so importing a client with an old closing date does
// not generate messages that would fire immediately; zero is a normal
// result for very old closings.
func (s *Scheduler) ScheduleForClient(client *model.Client, agent *model.Agent) (int, error) {
	templates, err := s.Templates.ListActive()
	if err != nil {
		return 0, err
	}

	now := s.Now()
	scheduled := 0
	for _, tpl := range templates {
		scheduledFor := client.ClosingDate.AddDate(0, 0, tpl.TriggerDays)
		if !scheduledFor.After(now) {
			continue
		}

		msg := &model.Message{
			ClientID:     client.ID,
			AgentID:      agent.ID,
			MessageText:  Render(tpl.MessageTemplate, client, agent),
			ScheduledFor: scheduledFor,
			Status:       model.StatusScheduled,
		}
		if err := s.Messages.Create(msg); err != nil {
			// Each insert is independent; keep going so one bad row does
			// not lose the rest of the cadence.
			log.Printf("schedule message for client %s (template %s): %v", client.ID, tpl.Name, err)
			continue
		}
		scheduled++
	}

	log.Printf("scheduled %d messages for client %s", scheduled, client.ID)
	return scheduled, nil
}
