package domain

import "strings"

// PaymentOutcome is the bucket a normalized gateway status falls into.
type PaymentOutcome int

const (
	OutcomeUnknown PaymentOutcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o PaymentOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

var successStatuses = map[string]struct{}{
	"COMPLETED": {},
	"SUCCESS":   {},
	"CAPTURED":  {},
}

var failureStatuses = map[string]struct{}{
	"FAILED":    {},
	"FAILURE":   {},
	"DECLINED":  {},
	"CANCELED":  {},
	"CANCELLED": {},
	"TIMED_OUT": {},
	"EXPIRED":   {},
}

// NormalizeStatus trims and uppercases a raw gateway status string.
func NormalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// ClassifyPaymentStatus buckets an already normalized status.
func ClassifyPaymentStatus(normalized string) PaymentOutcome {
	if _, ok := successStatuses[normalized]; ok {
		return OutcomeSuccess
	}
	if _, ok := failureStatuses[normalized]; ok {
		return OutcomeFailure
	}
	return OutcomeUnknown
}

// PaymentStatusEvent is the normalized shape both the webhook path and
// the poll path hand to the reconciliation engine. EventID is empty for
// poll-sourced events.
type PaymentStatusEvent struct {
	Status    string
	Code      string
	Message   string
	EventID   string
	EventTime string
}

func (e PaymentStatusEvent) HasEventID() bool {
	return strings.TrimSpace(e.EventID) != ""
}

// FirstNonBlank returns the first value with non-whitespace content.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
