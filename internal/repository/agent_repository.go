package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/clientpro/clientpro-backend/internal/model"
)

type AgentRepositoryInterface interface {
	GetByID(id uuid.UUID) (*model.Agent, error)
	FindBySendNumber(number string) (*model.Agent, error)
}

type AgentRepository struct {
	DB *sql.DB
}

var _ AgentRepositoryInterface = (*AgentRepository)(nil)

const agentColumns = `id, email, first_name, last_name, company_name, send_number,
	subscription_tier, subscription_status, is_active, created_at`

func scanAgent(row interface{ Scan(...any) error }) (*model.Agent, error) {
	var a model.Agent
	err := row.Scan(
		&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.CompanyName,
		&a.SendNumber, &a.Tier, &a.SubscriptionStatus, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepository) GetByID(id uuid.UUID) (*model.Agent, error) {
	a, err := scanAgent(r.DB.QueryRow(`SELECT `+agentColumns+` FROM users WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// FindBySendNumber resolves the agent owning a provisioned sending number.
// Each number belongs to at most one agent.
func (r *AgentRepository) FindBySendNumber(number string) (*model.Agent, error) {
	a, err := scanAgent(r.DB.QueryRow(`SELECT `+agentColumns+` FROM users WHERE send_number=$1`, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}
