package generator

import (
	"fmt"
	"strings"
)

// SQLBuilder assembles a template statement.
type SQLBuilder struct {
	sb strings.Builder
}

// Write appends raw SQL text to the builder.
func (b *SQLBuilder) Write(s string) {
	b.sb.WriteString(s)
}

// Writef appends formatted SQL text to the builder.
func (b *SQLBuilder) Writef(format string, args ...any) {
	fmt.Fprintf(&b.sb, format, args...)
}

// String returns the assembled SQL statement.
func (b *SQLBuilder) String() string {
	return b.sb.String()
}

// Marker renders the {{name}} marker of a placeholder.
func Marker(name string) string {
	return placeholderOpen + name + placeholderClose
}
