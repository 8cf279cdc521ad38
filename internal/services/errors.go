package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited is the only failure that crosses component boundaries. It
	// halts the current enrichment and every batch driving it.
	ErrRateLimited = errors.New("rate limited")
	// ErrSourceUnavailable marks a provider-side outage (5xx or open breaker).
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNotFound          = errors.New("not found")
	ErrMalformed         = errors.New("malformed response")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Outcome is the tagged result of a single source interaction.
type Outcome int

const (
	// OutcomeOK means the source answered (possibly with nothing useful).
	OutcomeOK Outcome = iota
	// OutcomeSoft means the failure is absorbed and the source contributes an empty record.
	OutcomeSoft
	// OutcomeRateLimited aborts the enrichment and the batch around it.
	OutcomeRateLimited
	// OutcomeCanceled means the caller's context ended before the source answered.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSoft:
		return "soft_failure"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome must stop the surrounding enrichment.
func (o Outcome) Fatal() bool {
	return o == OutcomeRateLimited || o == OutcomeCanceled
}

// Classify reduces err to an Outcome. Rate limiting wins over cancellation so
// an abort triggered by a throttled sibling is still reported as throttling.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeSoft
	}
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrSourceUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, used in logs and
// metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
