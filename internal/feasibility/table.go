package feasibility

import (
	"fmt"
	"io"
	"strings"

	"jqgen/internal/schema"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteTables renders the single-operand entries as a function x kind grid and
// lists the feasible operand pairs of every two-operand entry.
func (m *Matrix) WriteTables(w io.Writer) {
	unary := table.NewWriter()
	unary.SetOutputMirror(w)
	unary.SetStyle(table.StyleLight)
	header := table.Row{"Function"}
	for _, kind := range schema.AllKinds {
		header = append(header, string(kind))
	}
	unary.AppendHeader(header)
	for _, fn := range m.UnaryFunctions() {
		row := table.Row{fn}
		for _, kind := range schema.AllKinds {
			row = append(row, mark(m.unary[fn], kind))
		}
		unary.AppendRow(row)
	}
	unary.Render()
	_, _ = fmt.Fprintln(w)

	binary := table.NewWriter()
	binary.SetOutputMirror(w)
	binary.SetStyle(table.StyleLight)
	binary.AppendHeader(table.Row{"Function", "Feasible operands"})
	for _, fn := range m.BinaryFunctions() {
		pairs := make([]string, 0)
		for _, lhs := range schema.AllKinds {
			for _, rhs := range schema.AllKinds {
				if m.binary[fn][lhs][rhs] {
					pairs = append(pairs, fmt.Sprintf("%s,%s", lhs, rhs))
				}
			}
		}
		if len(pairs) == 0 {
			pairs = append(pairs, "-")
		}
		binary.AppendRow(table.Row{fn, strings.Join(pairs, " ")})
	}
	binary.Render()
}

func mark(row map[schema.ValueKind]bool, kind schema.ValueKind) string {
	verdict, ok := row[kind]
	switch {
	case !ok:
		return "?"
	case verdict:
		return "yes"
	default:
		return "no"
	}
}
