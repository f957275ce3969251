package appErrors

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrMessageNotFound is returned when a message lookup misses or the row
// belongs to another agent.
type ErrMessageNotFound struct {
	MessageID uuid.UUID
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("message %s not found", e.MessageID)
}

func NewMessageNotFound(id uuid.UUID) error {
	return &ErrMessageNotFound{MessageID: id}
}

// ErrClientNotFound is returned when a client lookup misses or the row
// belongs to another agent.
type ErrClientNotFound struct {
	ClientID uuid.UUID
}

func (e *ErrClientNotFound) Error() string {
	return fmt.Sprintf("client %s not found", e.ClientID)
}

func NewClientNotFound(id uuid.UUID) error {
	return &ErrClientNotFound{ClientID: id}
}

// ErrClientLimit is returned when an agent's subscription tier does not
// allow adding another active client.
type ErrClientLimit struct {
	Current int
	Limit   int
}

func (e *ErrClientLimit) Error() string {
	return fmt.Sprintf("client limit reached: %d of %d", e.Current, e.Limit)
}
