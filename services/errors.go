package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyOrder              = errors.New("empty order")
	ErrCrossVendorItem         = errors.New("cross-vendor item")
	ErrInvalidQuantity         = errors.New("quantity must be a positive integer")
	ErrUnknownItem             = errors.New("unknown item")
	ErrUnknownItemKind         = errors.New("unknown item kind")
	ErrItemUnavailable         = errors.New("item unavailable")
	ErrComboRequirements       = errors.New("custom combo requirements not met")
	ErrVendorNotFound          = errors.New("vendor not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCustomComboNotFound     = errors.New("custom combo not found")
	ErrComboRuleNotFound       = errors.New("combo rule not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidInput            = errors.New("invalid input")
	ErrVendorCodeExhausted     = errors.New("vendor code allocation exhausted retries")
)

// problem is one validation failure: a sentinel plus the message shown to
// the caller.
type problem struct {
	kind error
	msg  string
}

func (p problem) Error() string { return p.msg }
func (p problem) Unwrap() error { return p.kind }

// ValidationError carries every problem found while validating an order.
// errors.Is matches any of the underlying sentinels.
type ValidationError struct {
	problems []error
}

func (e *ValidationError) add(kind error, format string, args ...interface{}) {
	e.problems = append(e.problems, problem{kind: kind, msg: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) empty() bool { return len(e.problems) == 0 }

func (e *ValidationError) Error() string {
	return "order validation failed: " + strings.Join(e.Messages(), "; ")
}

func (e *ValidationError) Unwrap() []error { return e.problems }

// Messages returns the distinct problem messages in the order they were found.
func (e *ValidationError) Messages() []string {
	seen := make(map[string]bool, len(e.problems))
	out := make([]string, 0, len(e.problems))
	for _, p := range e.problems {
		m := p.Error()
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
