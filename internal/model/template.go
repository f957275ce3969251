package model

import (
	"time"

	"github.com/google/uuid"
)

// Template is a global, offset-based message blueprint. Messages are
// generated from templates once, at client-creation time.
type Template struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	TriggerDays     int       `db:"trigger_days_after_closing" json:"trigger_days_after_closing"`
	MessageTemplate string    `db:"message_template" json:"message_template"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
