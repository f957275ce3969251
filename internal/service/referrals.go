package service

import (
	"github.com/google/uuid"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// ReferralService records leads passed along by existing clients. A referral
// is an engagement signal: the referring client gets the same +10 bump a
// reply earns.
type ReferralService struct {
	Referrals repository.ReferralRepositoryInterface
	Clients   repository.ClientRepositoryInterface
}

type NewReferralInput struct {
	ReferredByClientID uuid.UUID
	FirstName          string
	LastName           string
	Phone              *string
	Email              *string
	Notes              *string
}

func (s *ReferralService) Record(agentID uuid.UUID, input NewReferralInput) (*model.Referral, error) {
	client, err := s.Clients.GetByIDAndAgent(input.ReferredByClientID, agentID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, appErrors.NewClientNotFound(input.ReferredByClientID)
	}

	referral := &model.Referral{
		AgentID:            agentID,
		ReferredByClientID: client.ID,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Phone:              input.Phone,
		Email:              input.Email,
		Status:             model.ReferralNew,
		Notes:              input.Notes,
	}
	if err := s.Referrals.Create(referral); err != nil {
		return nil, err
	}

	newScore := client.EngagementScore + 10
	if newScore > 100 {
		newScore = 100
	}
	if err := s.Clients.UpdateEngagementScore(client.ID, newScore); err != nil {
		return nil, err
	}
	return referral, nil
}
