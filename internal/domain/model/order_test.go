package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardAllowed(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPendingPayment, OrderStatusPlaced))
	assert.True(t, CanTransition(OrderStatusPlaced, OrderStatusProcessing))
	assert.True(t, CanTransition(OrderStatusProcessing, OrderStatusShipped))
	assert.True(t, CanTransition(OrderStatusShipped, OrderStatusDelivered))
}

func TestCanTransition_SkipForwardAllowed(t *testing.T) {
	//中間を飛ばす前進は許可
	assert.True(t, CanTransition(OrderStatusPlaced, OrderStatusShipped))
	assert.True(t, CanTransition(OrderStatusPendingPayment, OrderStatusDelivered))
}

func TestCanTransition_BackwardRejected(t *testing.T) {
	assert.False(t, CanTransition(OrderStatusShipped, OrderStatusPlaced))
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusShipped))
	assert.False(t, CanTransition(OrderStatusPlaced, OrderStatusPendingPayment))
}

func TestCanTransition_SameStatusRejected(t *testing.T) {
	assert.False(t, CanTransition(OrderStatusPlaced, OrderStatusPlaced))
}

func TestCanTransition_CanceledReachableFromAnyNonTerminal(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPendingPayment, OrderStatusCanceled))
	assert.True(t, CanTransition(OrderStatusPlaced, OrderStatusCanceled))
	assert.True(t, CanTransition(OrderStatusShipped, OrderStatusCanceled))
}

func TestCanTransition_TerminalStatesAreImmutable(t *testing.T) {
	assert.False(t, CanTransition(OrderStatusCanceled, OrderStatusPlaced))
	assert.False(t, CanTransition(OrderStatusCanceled, OrderStatusCanceled))
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusCanceled))
}

func TestCanTransition_UnknownStatusRejected(t *testing.T) {
	assert.False(t, CanTransition(OrderStatus("XXX"), OrderStatusPlaced))
	assert.False(t, CanTransition(OrderStatusPlaced, OrderStatus("XXX")))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPendingPayment))
	assert.True(t, ValidOrderStatus(OrderStatusCanceled))
	assert.False(t, ValidOrderStatus(OrderStatus("PAID")))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCOD))
	assert.True(t, ValidPaymentMethod(PaymentMethodGateway))
	assert.False(t, ValidPaymentMethod(PaymentMethod("card")))
}
