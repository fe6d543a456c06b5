package check

import (
	"errors"
	"fmt"

	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Check is a single assertion or extraction over an operation result.
// The zero value is invalid; use the package constructors or New.
type Check struct {
	desc string
	fn   func(res *ports.Result, s *domain.Session) (*domain.Session, error)
}

// New builds a custom check. fn may return a derived session to fold its
// mutation into the chain, or the session it was given unchanged.
func New(desc string, fn func(res *ports.Result, s *domain.Session) (*domain.Session, error)) Check {
	return Check{desc: desc, fn: fn}
}

// Describe returns the human-readable description of the check.
func (c Check) Describe() string {
	return c.desc
}

// Run applies all checks in declaration order. Session mutations fold left to
// right; every check runs regardless of earlier failures and failures are
// aggregated into a single error naming each failed check.
func Run(checks []Check, res *ports.Result, s *domain.Session) (*domain.Session, error) {
	var errs []error
	for _, c := range checks {
		next, err := c.fn(res, s)
		if err != nil {
			errs = append(errs, fmt.Errorf("check %q: %w", c.desc, err))
			continue
		}
		if next != nil {
			s = next
		}
	}
	return s, errors.Join(errs...)
}
