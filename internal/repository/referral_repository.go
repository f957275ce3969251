package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/clientpro/clientpro-backend/internal/model"
)

type ReferralRepositoryInterface interface {
	Create(ref *model.Referral) error
}

type ReferralRepository struct {
	DB *sql.DB
}

var _ ReferralRepositoryInterface = (*ReferralRepository)(nil)

func (r *ReferralRepository) Create(ref *model.Referral) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	if ref.Status == "" {
		ref.Status = model.ReferralNew
	}
	query := `
		INSERT INTO referrals (id, agent_id, referred_by_client_id, referral_first_name,
			referral_last_name, referral_phone, referral_email, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	return r.DB.QueryRow(query,
		ref.ID, ref.AgentID, ref.ReferredByClientID, ref.FirstName, ref.LastName,
		ref.Phone, ref.Email, ref.Status, ref.Notes,
	).Scan(&ref.CreatedAt)
}
