package payment

import "github.com/maillots/storefront/internal/domain/order"

var orderToPayment = map[order.PaymentStatus]Status{
	order.PaymentStatusPending:  StatusPending,
	order.PaymentStatusPaid:     StatusCompleted,
	order.PaymentStatusFailed:   StatusFailed,
	order.PaymentStatusRefunded: StatusCancelled,
}

var paymentToOrder = map[Status]order.PaymentStatus{
	StatusPending:   order.PaymentStatusPending,
	StatusCompleted: order.PaymentStatusPaid,
	StatusFailed:    order.PaymentStatusFailed,
	StatusCancelled: order.PaymentStatusRefunded,
}

// StatusForOrder maps an order payment status to a payment status.
// Unmapped values (cash_on_delivery) fall back to pending.
func StatusForOrder(s order.PaymentStatus) Status {
	if st, ok := orderToPayment[s]; ok {
		return st
	}
	return StatusPending
}

// ExpectedStatusForOrder is StatusForOrder restricted to mapped values
func ExpectedStatusForOrder(s order.PaymentStatus) (Status, bool) {
	st, ok := orderToPayment[s]
	return st, ok
}

// OrderStatusFor maps a payment status to an order payment status, pending by default
func OrderStatusFor(s Status) order.PaymentStatus {
	if st, ok := paymentToOrder[s]; ok {
		return st
	}
	return order.PaymentStatusPending
}
