package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralNew       ReferralStatus = "new"
	ReferralContacted ReferralStatus = "contacted"
	ReferralQualified ReferralStatus = "qualified"
	ReferralConverted ReferralStatus = "converted"
	ReferralLost      ReferralStatus = "lost"
)

// Referral is a lead passed along by an existing client.
type Referral struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	AgentID            uuid.UUID      `db:"agent_id" json:"agent_id"`
	ReferredByClientID uuid.UUID      `db:"referred_by_client_id" json:"referred_by_client_id"`
	FirstName          string         `db:"referral_first_name" json:"referral_first_name"`
	LastName           string         `db:"referral_last_name" json:"referral_last_name"`
	Phone              *string        `db:"referral_phone" json:"referral_phone,omitempty"`
	Email              *string        `db:"referral_email" json:"referral_email,omitempty"`
	Status             ReferralStatus `db:"status" json:"status"`
	Notes              *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}
