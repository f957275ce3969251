package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// ClientService is the lifecycle glue around clients: creation triggers the
// scheduler exactly once, removal cascades cancellation to everything still
// scheduled.
type ClientService struct {
	Agents    repository.AgentRepositoryInterface
	Clients   repository.ClientRepositoryInterface
	Messages  repository.MessageRepositoryInterface
	Scheduler *Scheduler
}

// NewClientInput is the subset of client fields accepted at creation.
type NewClientInput struct {
	FirstName       string
	LastName        string
	PhoneNumber     string
	Email           *string
	PropertyAddress *string
	City            *string
	State           *string
	Zip             *string
	PropertyType    model.PropertyType
	ClosingDate     time.Time
	Notes           *string
}

// Create adds a client under the agent's tier limit and schedules its
// message cadence. Returns the client and how many messages were scheduled.
func (s *ClientService) Create(agentID uuid.UUID, input NewClientInput) (*model.Client, int, error) {
	agent, err := s.Agents.GetByID(agentID)
	if err != nil {
		return nil, 0, err
	}
	if agent == nil {
		return nil, 0, fmt.Errorf("agent %s not found", agentID)
	}

	limits, ok := model.LimitsFor(agent.Tier)
	if !ok {
		return nil, 0, fmt.Errorf("agent %s has unknown tier %q", agentID, agent.Tier)
	}
	current, err := s.Clients.CountActiveByAgent(agentID)
	if err != nil {
		return nil, 0, err
	}
	if !limits.AllowsMoreClients(current) {
		return nil, 0, &appErrors.ErrClientLimit{Current: current, Limit: limits.MaxClients}
	}

	client := &model.Client{
		AgentID:         agentID,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		PhoneNumber:     input.PhoneNumber,
		Email:           input.Email,
		PropertyAddress: input.PropertyAddress,
		City:            input.City,
		State:           input.State,
		Zip:             input.Zip,
		PropertyType:    input.PropertyType,
		ClosingDate:     input.ClosingDate,
		Notes:           input.Notes,
	}
	if err := s.Clients.Create(client); err != nil {
		return nil, 0, err
	}

	scheduled, err := s.Scheduler.ScheduleForClient(client, agent)
	if err != nil {
		// The client exists; scheduling problems surface in logs and in
		// the empty upcoming-messages list, not as a failed create.
		log.Printf("schedule messages for client %s: %v", client.ID, err)
	}
	return client, scheduled, nil
}

// Remove soft-deletes a client and cancels its scheduled messages. In-flight
// sends finish on their own.
func (s *ClientService) Remove(clientID, agentID uuid.UUID) error {
	client, err := s.Clients.GetByIDAndAgent(clientID, agentID)
	if err != nil {
		return err
	}
	if client == nil {
		return appErrors.NewClientNotFound(clientID)
	}

	if _, err := s.Clients.SoftDelete(clientID); err != nil {
		return err
	}
	cancelled, err := s.Messages.CancelScheduledForClient(clientID)
	if err != nil {
		return err
	}
	log.Printf("client %s removed, %d scheduled messages cancelled", clientID, cancelled)
	return nil
}
