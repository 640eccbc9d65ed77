// Package domainerr holds the error kinds shared by the calculators, the
// storage layer and the HTTP surface.
package domainerr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrSubscriptionRequired = errors.New("an active subscription is required")
)

// InvalidInputError reports a missing or out-of-range input field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for constructing an *InvalidInputError.
func Invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// PlanLimitExceededError is returned when a property count goes past the hard
// cap of a subscription plan. Callers render it as an upgrade prompt.
type PlanLimitExceededError struct {
	PlanID        int64
	PlanName      string
	MaxProperties int
	Requested     int
}

func (e *PlanLimitExceededError) Error() string {
	return fmt.Sprintf("plan %q allows at most %d properties, %d requested",
		e.PlanName, e.MaxProperties, e.Requested)
}

// DomainWarning flags a derived value that fell outside its expected range.
// It never aborts a computation.
type DomainWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w DomainWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// IsInvalidInput reports whether err wraps an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// AsPlanLimit extracts a *PlanLimitExceededError from err's chain.
func AsPlanLimit(err error) (*PlanLimitExceededError, bool) {
	var target *PlanLimitExceededError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
