package domain

import "errors"

var (
	// ErrInvalidInput is a malformed PlanSpec. Raised before any construction.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsatisfiableConstraint means the minimal week skeleton (long run,
	// one quality day, one rest day) cannot fit even after relaxation.
	ErrUnsatisfiableConstraint = errors.New("unsatisfiable constraint")

	// ErrTemplateUnavailable means no registry template satisfies phase and
	// hard constraints for a quality slot. The generator degrades on it.
	ErrTemplateUnavailable = errors.New("template unavailable")

	// ErrInvariantViolation is a generated plan that breaks a structural rule.
	ErrInvariantViolation = errors.New("invariant violation")
)
