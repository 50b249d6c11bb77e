package kafka

// OrderStatusChangedEvent is published on every committed business
// status transition and consumed by the audit, alerting and live
// notification collaborators.
type OrderStatusChangedEvent struct {
	EventID       string                    `json:"eventId"`
	EventType     string                    `json:"eventType"`
	SchemaVersion int                       `json:"schemaVersion"`
	AggregateType string                    `json:"aggregateType"`
	AggregateID   string                    `json:"aggregateId"`
	OccurredAt    string                    `json:"occurredAt"`
	CorrelationID string                    `json:"correlationId"`
	Payload       OrderStatusChangedPayload `json:"payload"`
}

type OrderStatusChangedPayload struct {
	OrderID       string `json:"orderId"`
	UserID        int64  `json:"userId"`
	OldStatus     string `json:"oldStatus"`
	NewStatus     string `json:"newStatus"`
	PaymentStatus string `json:"paymentStatus"`
	Reason        string `json:"reason"`
}

// PaymentSucceededEvent notifies downstream consumers that the gateway
// reported a successful capture, independently of the order lookup
// outcome on the reconciliation side.
type PaymentSucceededEvent struct {
	EventID    string  `json:"eventId"`
	EventType  string  `json:"eventType"`
	OrderID    string  `json:"orderId"`
	PaymentID  string  `json:"paymentId"`
	Provider   string  `json:"provider"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	OccurredAt string  `json:"occurredAt"`
}
