package order

// Status is the fulfilment status of an order. Admins may set any valid
// status; there is no enforced transition graph.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every order status in display order
var AllStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// PaymentStatus is the order-side view of payment progress
type PaymentStatus string

const (
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusRefunded       PaymentStatus = "refunded"
	PaymentStatusCashOnDelivery PaymentStatus = "cash_on_delivery"
)

// AllPaymentStatuses lists every order payment status
var AllPaymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCashOnDelivery,
}

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCashOnDelivery:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod is how the customer chose to pay
type PaymentMethod string

const (
	PaymentMethodPayDunya       PaymentMethod = "paydunya"
	PaymentMethodWaveDirect     PaymentMethod = "wave_direct"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPayDunya, PaymentMethodWaveDirect, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// IsOnline reports whether the method goes through a payment provider
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodPayDunya || m == PaymentMethodWaveDirect
}

// DisplayName is the customer-facing label
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentMethodPayDunya:
		return "PayDunya"
	case PaymentMethodWaveDirect:
		return "Wave"
	case PaymentMethodCashOnDelivery:
		return "Paiement à la livraison"
	}
	return string(m)
}
