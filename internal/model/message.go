package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of delivery states for a Message.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusReplied   Status = "replied"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed next states for each status. failed and
// cancelled are terminal; replied is terminal for the outbound lifecycle.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusSending, StatusCancelled},
	StatusSending:   {StatusSent, StatusScheduled, StatusFailed},
	StatusSent:      {StatusDelivered, StatusReplied, StatusFailed},
	StatusDelivered: {StatusReplied},
}

// CanTransitionTo reports whether moving from s to next is a legal
// state-machine step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

type Message struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	AgentID      uuid.UUID  `db:"agent_id" json:"agent_id"`
	MessageText  string     `db:"message_text" json:"message_text"`
	ScheduledFor time.Time  `db:"scheduled_for" json:"scheduled_for"`
	SentAt       *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	Status       Status     `db:"status" json:"status"`
	ProviderSID  *string    `db:"provider_sid" json:"provider_sid,omitempty"`
	ReplyText    *string    `db:"reply_text" json:"reply_text,omitempty"`
	ReplyAt      *time.Time `db:"reply_at" json:"reply_at,omitempty"`
	IsRead       bool       `db:"is_read" json:"is_read"`
	FailedReason *string    `db:"failed_reason" json:"failed_reason,omitempty"`
	RetryCount   int        `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
