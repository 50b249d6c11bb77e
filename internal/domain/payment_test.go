package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "COMPLETED", NormalizeStatus("  completed "))
	assert.Equal(t, "TIMED_OUT", NormalizeStatus("Timed_Out"))
	assert.Equal(t, "", NormalizeStatus("   "))
}

func TestClassifyPaymentStatus(t *testing.T) {
	for _, s := range []string{"COMPLETED", "SUCCESS", "CAPTURED"} {
		assert.Equal(t, OutcomeSuccess, ClassifyPaymentStatus(s), s)
	}
	for _, s := range []string{"FAILED", "FAILURE", "DECLINED", "CANCELED", "CANCELLED", "TIMED_OUT", "EXPIRED"} {
		assert.Equal(t, OutcomeFailure, ClassifyPaymentStatus(s), s)
	}
	for _, s := range []string{"", "PENDING", "AUTHORIZED", "REFUNDED"} {
		assert.Equal(t, OutcomeUnknown, ClassifyPaymentStatus(s), s)
	}
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "a", FirstNonBlank("", "  ", "a", "b"))
	assert.Equal(t, "", FirstNonBlank("", "   "))
}

func TestPaymentStatusEventHasEventID(t *testing.T) {
	assert.False(t, PaymentStatusEvent{}.HasEventID())
	assert.False(t, PaymentStatusEvent{EventID: "  "}.HasEventID())
	assert.True(t, PaymentStatusEvent{EventID: "E1"}.HasEventID())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusWaitingPayment.Terminal())
}
