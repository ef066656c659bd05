// Package errs defines the fatal error kinds raised while building query templates.
package errs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ConfigError reports an invalid or unsatisfiable configuration fragment.
type ConfigError struct {
	Fragment string
	Msg      string
}

func (e *ConfigError) Error() string {
	if e.Fragment == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Msg, e.Fragment)
}

// Configf builds a ConfigError for the offending fragment.
func Configf(fragment any, format string, args ...any) error {
	return errors.WithStack(&ConfigError{Fragment: describe(fragment), Msg: fmt.Sprintf(format, args...)})
}

// FeasibilityLookupError reports a function or kind missing from the feasibility matrix.
// The matrix and the function catalogs are out of sync when this happens.
type FeasibilityLookupError struct {
	Function string
	Kinds    []string
}

func (e *FeasibilityLookupError) Error() string {
	if len(e.Kinds) == 0 {
		return fmt.Sprintf("feasibility: no matrix entry for function %q", e.Function)
	}
	return fmt.Sprintf("feasibility: no matrix entry for function %q with kinds [%s]", e.Function, strings.Join(e.Kinds, ", "))
}

// NewFeasibilityLookup builds a FeasibilityLookupError.
func NewFeasibilityLookup(fn string, kinds ...string) error {
	return errors.WithStack(&FeasibilityLookupError{Function: fn, Kinds: kinds})
}

// IsConfig reports whether err wraps a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsFeasibilityLookup reports whether err wraps a FeasibilityLookupError.
func IsFeasibilityLookup(err error) bool {
	var target *FeasibilityLookupError
	return errors.As(err, &target)
}

func describe(fragment any) string {
	switch v := fragment.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%+v", v)
	}
}
