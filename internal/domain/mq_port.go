package domain

// StatusChange describes one committed business-status transition for
// downstream consumers (audit, alerting, live notifications).
type StatusChange struct {
	Order         *Order
	OldStatus     OrderStatus
	NewStatus     OrderStatus
	PaymentStatus string
	Reason        string
	CorrelationID string
}

// EventPublisher is the outbound messaging port. Delivery is
// best-effort: implementations log failures and never make the caller
// roll back an already committed state change.
type EventPublisher interface {
	PublishStatusChanged(change StatusChange) error
	PublishPaymentSucceeded(orderNo, paymentID, provider string, amount float64, currency string) error
}
