package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(OrderStatusPending))
	assert.True(t, IsValidStatus(OrderStatusSentToSupplier))
	assert.True(t, IsValidStatus(OrderStatusCompleted))

	assert.False(t, IsValidStatus("canceled"))
	assert.False(t, IsValidStatus("PENDING"))
	assert.False(t, IsValidStatus(""))
}

func TestCanTransitionForwardOnly(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusSentToSupplier))
	assert.True(t, CanTransition(OrderStatusSentToSupplier, OrderStatusCompleted))

	// No skipping, no reversing, no self-loops.
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusCompleted))
	assert.False(t, CanTransition(OrderStatusSentToSupplier, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusCompleted, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusCompleted, OrderStatusSentToSupplier))
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusPending))
}
