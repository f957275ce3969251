package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusScheduled, StatusSending},
		{StatusScheduled, StatusCancelled},
		{StatusSending, StatusSent},
		{StatusSending, StatusScheduled},
		{StatusSending, StatusFailed},
		{StatusSent, StatusDelivered},
		{StatusSent, StatusReplied},
		{StatusSent, StatusFailed},
		{StatusDelivered, StatusReplied},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusScheduled, StatusSent},
		{StatusScheduled, StatusDelivered},
		{StatusSending, StatusCancelled},
		{StatusSent, StatusScheduled},
		{StatusFailed, StatusScheduled},
		{StatusCancelled, StatusScheduled},
		{StatusReplied, StatusSent},
		{StatusDelivered, StatusSent},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusFailed, StatusCancelled, StatusReplied} {
		assert.True(t, s.Terminal(), "%s is terminal", s)
	}
	for _, s := range []Status{StatusScheduled, StatusSending, StatusSent, StatusDelivered} {
		assert.False(t, s.Terminal(), "%s is not terminal", s)
	}
}
