// Package schema defines the document schema paths that query templates are built from.
package schema

import (
	"fmt"
	"strings"
)

// ValueKind enumerates the JSON value categories indexed by the feasibility matrix.
type ValueKind string

// Value kinds known to the feasibility matrix.
const (
	KindNumber  ValueKind = "number"
	KindString  ValueKind = "string"
	KindBoolean ValueKind = "boolean"
	KindNull    ValueKind = "null"
	KindArray   ValueKind = "array"
	KindObject  ValueKind = "object"
)

// AllKinds lists every value kind in matrix order.
var AllKinds = []ValueKind{KindNumber, KindString, KindBoolean, KindNull, KindArray, KindObject}

// Valid reports whether k is one of the known kinds.
func (k ValueKind) Valid() bool {
	for _, kind := range AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// numericMarkers are substrings of generator directives that yield numbers.
var numericMarkers = []string{
	"random_number",
	"random_int",
	"random_digit",
	"pyint",
	"pyfloat",
	"pydecimal",
	"latitude",
	"longitude",
}

// booleanMarkers are substrings of generator directives that yield booleans.
var booleanMarkers = []string{
	"pybool",
	"boolean",
}

// Path is one forced path of the schema description.
type Path struct {
	Segments  []string `yaml:"path" json:"path"`
	ValueType string   `yaml:"valueType" json:"valueType"`
	Operator  string   `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value     any      `yaml:"value,omitempty" json:"value,omitempty"`
	Num       int      `yaml:"num,omitempty" json:"num,omitempty"`
}

// String renders the path segments for messages.
func (p Path) String() string {
	return "[" + strings.Join(p.Segments, ", ") + "]"
}

// IsArray reports whether any segment carries an array-size annotation.
func (p Path) IsArray() bool {
	for _, seg := range p.Segments {
		if strings.Contains(seg, "[") {
			return true
		}
	}
	return false
}

// HasOperator reports whether the path declares an equality constraint.
func (p Path) HasOperator() bool {
	return p.Operator != ""
}

// Matches reports whether the path has exactly the given segments.
func (p Path) Matches(segments []string) bool {
	if len(p.Segments) != len(segments) {
		return false
	}
	for i := range segments {
		if p.Segments[i] != segments[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	out := p
	out.Segments = append([]string(nil), p.Segments...)
	return out
}

// Classify maps a path to the value kind used by the feasibility matrix.
// Array annotations win over the value type; unknown value types are strings.
func Classify(p Path) ValueKind {
	if p.IsArray() {
		return KindArray
	}
	tag := strings.ToLower(p.ValueType)
	for _, marker := range numericMarkers {
		if strings.Contains(tag, marker) {
			return KindNumber
		}
	}
	for _, marker := range booleanMarkers {
		if strings.Contains(tag, marker) {
			return KindBoolean
		}
	}
	return KindString
}

// Expr renders the SQL path expression, e.g. "coll"."a"."b".
func Expr(collection string, p Path) string {
	var b strings.Builder
	b.WriteString(QuoteIdent(collection))
	for _, seg := range p.Segments {
		b.WriteString(".")
		b.WriteString(QuoteIdent(StripAnnotation(seg)))
	}
	return b.String()
}

// StripAnnotation removes bracketed array-size annotations from a segment.
func StripAnnotation(seg string) string {
	var b strings.Builder
	depth := 0
	for _, ch := range seg {
		switch {
		case ch == '[':
			depth++
		case ch == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// Literal renders a filter value. String kinds are single-quoted.
func Literal(kind ValueKind, v any) string {
	if v == nil {
		return "NULL"
	}
	if kind == KindString {
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
	return fmt.Sprint(v)
}

// QuoteIdent double-quotes an identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
