// Package feasibility answers which functions are valid for which JSON value kinds.
package feasibility

import "strings"

// Standard placeholder names bound to the catalog lists in standalone configs.
const (
	PlaceholderAggregate    = "AGGREGATE_FCT"
	PlaceholderUnary        = "UNARY_FCT"
	PlaceholderBinaryPrefix = "BINARY_FCT_PREFIX"
	PlaceholderBinaryInfix  = "BINARY_FCT_INFIX"
)

// Catalog lists the function names the generator may emit, by class.
type Catalog struct {
	Aggregate    []string
	Unary        []string
	BinaryPrefix []string
	BinaryInfix  []string
}

// DefaultCatalog returns the built-in function lists.
func DefaultCatalog() Catalog {
	return Catalog{
		Aggregate: []string{"COUNT", "SUM", "AVG", "MIN", "MAX"},
		Unary: []string{
			"ABS", "ACOS", "ASIN", "ATAN", "COS", "LN", "SIN", "TAN",
			"LENGTH", "LOWER", "UPPER", "TO_BIGINT", "TO_DOUBLE", "TO_VARCHAR",
		},
		BinaryPrefix: []string{"ATAN2", "MOD", "POWER", "ROUND", "CONCAT", "LOG"},
		BinaryInfix:  []string{"+", "-", "*", "/"},
	}
}

// StandardPlaceholders maps the standard placeholder names to copies of the catalog lists.
func (c Catalog) StandardPlaceholders() map[string][]string {
	return map[string][]string{
		PlaceholderAggregate:    append([]string(nil), c.Aggregate...),
		PlaceholderUnary:        append([]string(nil), c.Unary...),
		PlaceholderBinaryPrefix: append([]string(nil), c.BinaryPrefix...),
		PlaceholderBinaryInfix:  append([]string(nil), c.BinaryInfix...),
	}
}

// IsAggregate reports whether name is an aggregate function.
func (c Catalog) IsAggregate(name string) bool { return contains(c.Aggregate, name) }

// IsUnary reports whether name is a unary function.
func (c Catalog) IsUnary(name string) bool { return contains(c.Unary, name) }

// IsInfix reports whether name is a binary infix operator.
func (c Catalog) IsInfix(name string) bool { return contains(c.BinaryInfix, name) }

// IsPrefix reports whether name is a binary prefix function.
func (c Catalog) IsPrefix(name string) bool { return contains(c.BinaryPrefix, name) }

// IsBinary reports whether name is a binary function of either form.
func (c Catalog) IsBinary(name string) bool { return c.IsInfix(name) || c.IsPrefix(name) }

// Known reports whether name belongs to any class.
func (c Catalog) Known(name string) bool {
	return c.IsAggregate(name) || c.IsUnary(name) || c.IsBinary(name)
}

func contains(list []string, name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, item := range list {
		if item == upper {
			return true
		}
	}
	return false
}
