package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer             *kafka.Writer
	orderEventsTopic   string
	paymentEventsTopic string
}

func NewKafkaPublisher(brokers []string, orderEventsTopic, paymentEventsTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
		orderEventsTopic:   orderEventsTopic,
		paymentEventsTopic: paymentEventsTopic,
	}
}

func (k *KafkaPublisher) PublishStatusChanged(change domain.StatusChange) error {
	if change.Order == nil || change.Order.OrderNo == "" {
		return nil
	}

	eventID := uuid.NewString()
	correlationID := change.CorrelationID
	if correlationID == "" {
		correlationID = eventID
	}

	event := OrderStatusChangedEvent{
		EventID:       eventID,
		EventType:     "OrderStatusChanged",
		SchemaVersion: 1,
		AggregateType: "Order",
		AggregateID:   change.Order.OrderNo,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		CorrelationID: correlationID,
		Payload: OrderStatusChangedPayload{
			OrderID:       change.Order.OrderNo,
			UserID:        change.Order.UserID,
			OldStatus:     string(change.OldStatus),
			NewStatus:     string(change.NewStatus),
			PaymentStatus: change.PaymentStatus,
			Reason:        change.Reason,
		},
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: k.orderEventsTopic,
		Key:   []byte(change.Order.OrderNo),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *KafkaPublisher) PublishPaymentSucceeded(orderNo, paymentID, provider string, amount float64, currency string) error {
	event := PaymentSucceededEvent{
		EventID:    uuid.NewString(),
		EventType:  "PaymentSucceeded",
		OrderID:    orderNo,
		PaymentID:  paymentID,
		Provider:   provider,
		Amount:     amount,
		Currency:   currency,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: k.paymentEventsTopic,
		Key:   []byte(orderNo),
		Value: msg,
		Time:  time.Now(),
	})
}
