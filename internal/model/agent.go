package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the billing webhook's view of an agent account.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Agent is the tenant: the paying real-estate professional who owns clients
// and messages. The core reads these fields; account management writes them.
type Agent struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	Email              string             `db:"email" json:"email"`
	FirstName          string             `db:"first_name" json:"first_name"`
	LastName           string             `db:"last_name" json:"last_name"`
	CompanyName        *string            `db:"company_name" json:"company_name,omitempty"`
	SendNumber         *string            `db:"send_number" json:"send_number,omitempty"`
	Tier               Tier               `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	IsActive           bool               `db:"is_active" json:"is_active"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
}

func (a *Agent) FullName() string {
	return a.FirstName + " " + a.LastName
}
