package mappers

import (
	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/hanamura/ec-order-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:        model.ID,
		OrderNo:   model.OrderNo,
		UserID:    model.UserID,
		ProductID: model.ProductID,
		Count:     model.Count,
		Amount:    model.Amount,
		Status:    model.Status,

		PaymentStatus:           model.PaymentStatus,
		PaymentURL:              model.PaymentURL,
		PaymentRequestedAt:      model.PaymentRequestedAt,
		PaymentExpiresAt:        model.PaymentExpiresAt,
		PaymentCompletedAt:      model.PaymentCompletedAt,
		PaymentChannelToken:     model.PaymentChannelToken,
		PaymentChannelExpiresAt: model.PaymentChannelExpiresAt,
		PaymentLastEventID:      model.PaymentLastEventID,

		FailCode:    model.FailCode,
		FailMessage: model.FailMessage,
		PaidAt:      model.PaidAt,
		FailedAt:    model.FailedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:        order.ID,
		OrderNo:   order.OrderNo,
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Count:     order.Count,
		Amount:    order.Amount,
		Status:    order.Status,

		PaymentStatus:           order.PaymentStatus,
		PaymentURL:              order.PaymentURL,
		PaymentRequestedAt:      order.PaymentRequestedAt,
		PaymentExpiresAt:        order.PaymentExpiresAt,
		PaymentCompletedAt:      order.PaymentCompletedAt,
		PaymentChannelToken:     order.PaymentChannelToken,
		PaymentChannelExpiresAt: order.PaymentChannelExpiresAt,
		PaymentLastEventID:      order.PaymentLastEventID,

		FailCode:    order.FailCode,
		FailMessage: order.FailMessage,
		PaidAt:      order.PaidAt,
		FailedAt:    order.FailedAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
