// Package catalog provides the immutable registry of onboarding actions,
// UI screens and API endpoints.
package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrActionNotFound indicates no action exists for the given id.
	ErrActionNotFound = errors.New("action not found")

	// ErrUINotFound indicates no UI screen exists for the given id.
	ErrUINotFound = errors.New("ui screen not found")

	// ErrAPINotFound indicates no API endpoint exists for the given id.
	ErrAPINotFound = errors.New("api endpoint not found")
)

// NotFoundError wraps a lookup miss with the offending id.
type NotFoundError struct {
	Kind string // "action", "ui", "api"
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsActionNotFound checks if an error indicates a missing action.
func IsActionNotFound(err error) bool {
	return errors.Is(err, ErrActionNotFound)
}

// IsUINotFound checks if an error indicates a missing UI screen.
func IsUINotFound(err error) bool {
	return errors.Is(err, ErrUINotFound)
}

// IsAPINotFound checks if an error indicates a missing API endpoint.
func IsAPINotFound(err error) bool {
	return errors.Is(err, ErrAPINotFound)
}

// ValidationError reports every integrity problem found at load time. Load
// fails fast: the server must not bind its port over a broken catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed with %d problem(s): %s",
		len(e.Problems), joinProblems(e.Problems))
}

func joinProblems(problems []string) string {
	out := ""

	for i, p := range problems {
		if i > 0 {
			out += "; "
		}

		out += p
	}

	return out
}
