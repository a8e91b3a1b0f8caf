package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	o, err := order.NewOrder("CMD20240101120000001", uuid.New(), order.PaymentMethodWaveDirect, order.ShippingAddress{})
	require.NoError(t, err)
	o.Total = decimal.NewFromInt(11000)

	p, err := NewPayment(o)
	require.NoError(t, err)
	assert.Equal(t, o.ID, p.OrderID)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(11000)))
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, order.PaymentMethodWaveDirect, p.PaymentMethod)
	assert.Nil(t, p.CompletedAt)

	_, err = NewPayment(nil)
	assert.Error(t, err)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		orderStatus   order.PaymentStatus
		paymentStatus Status
	}{
		{order.PaymentStatusPending, StatusPending},
		{order.PaymentStatusPaid, StatusCompleted},
		{order.PaymentStatusFailed, StatusFailed},
		{order.PaymentStatusRefunded, StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(string(tt.orderStatus), func(t *testing.T) {
			assert.Equal(t, tt.paymentStatus, StatusForOrder(tt.orderStatus))
			assert.Equal(t, tt.orderStatus, OrderStatusFor(tt.paymentStatus))
			expected, ok := ExpectedStatusForOrder(tt.orderStatus)
			assert.True(t, ok)
			assert.Equal(t, tt.paymentStatus, expected)
		})
	}

	t.Run("defaults to pending", func(t *testing.T) {
		assert.Equal(t, StatusPending, StatusForOrder(order.PaymentStatusCashOnDelivery))
		assert.Equal(t, order.PaymentStatusPending, OrderStatusFor(Status("unknown")))
		_, ok := ExpectedStatusForOrder(order.PaymentStatusCashOnDelivery)
		assert.False(t, ok)
	})
}

func TestPayment_Transitions(t *testing.T) {
	p := &Payment{Status: StatusPending, PaymentMethod: order.PaymentMethodWaveDirect}
	assert.False(t, p.IsWavePendingValidation())

	p.WaveTransactionID = "T_123"
	assert.True(t, p.IsWavePendingValidation())

	now := time.Now()
	p.Complete(now)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, now, *p.CompletedAt)
	assert.False(t, p.IsWavePendingValidation())

	assert.Error(t, p.SetStatus(Status("lost")))
}
