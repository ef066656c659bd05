package feasibility

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"jqgen/internal/errs"
	"jqgen/internal/schema"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed matrix.json
var defaultMatrix []byte

// Matrix is the function x kind feasibility table keyed by canonical function name.
type Matrix struct {
	unary  map[string]map[schema.ValueKind]bool
	binary map[string]map[schema.ValueKind]map[schema.ValueKind]bool
}

// DefaultMatrix parses the embedded matrix.
func DefaultMatrix() (*Matrix, error) {
	return ParseMatrix(defaultMatrix)
}

// LoadMatrix reads a matrix from a JSON or YAML file.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read feasibility matrix")
	}
	m, err := ParseMatrix(data)
	if err != nil {
		return nil, errors.Wrapf(err, "feasibility matrix %s", path)
	}
	return m, nil
}

// ParseMatrix decodes a nested mapping of function -> kind -> verdict (unary)
// or function -> kind -> kind -> verdict (binary). Verdicts are SUCCESS/FAIL
// strings or booleans.
func ParseMatrix(data []byte) (*Matrix, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Configf("", "malformed feasibility matrix: %v", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errs.Configf("", "feasibility matrix must be a mapping")
	}
	m := &Matrix{
		unary:  make(map[string]map[schema.ValueKind]bool),
		binary: make(map[string]map[schema.ValueKind]map[schema.ValueKind]bool),
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := Canonical(root.Content[i].Value)
		entry := root.Content[i+1]
		if entry.Kind != yaml.MappingNode || len(entry.Content) == 0 {
			return nil, errs.Configf(root.Content[i].Value, "matrix entry must be a non-empty mapping")
		}
		if entry.Content[1].Kind == yaml.MappingNode {
			row, err := parseBinaryRow(root.Content[i].Value, entry)
			if err != nil {
				return nil, err
			}
			m.binary[name] = row
			continue
		}
		row, err := parseUnaryRow(root.Content[i].Value, entry)
		if err != nil {
			return nil, err
		}
		m.unary[name] = row
	}
	return m, nil
}

func parseUnaryRow(fn string, node *yaml.Node) (map[schema.ValueKind]bool, error) {
	row := make(map[schema.ValueKind]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		kind := schema.ValueKind(strings.ToLower(node.Content[i].Value))
		if !kind.Valid() {
			return nil, errs.Configf(fn, "unknown value kind %q", node.Content[i].Value)
		}
		verdict, err := parseVerdict(fn, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		row[kind] = verdict
	}
	return row, nil
}

func parseBinaryRow(fn string, node *yaml.Node) (map[schema.ValueKind]map[schema.ValueKind]bool, error) {
	row := make(map[schema.ValueKind]map[schema.ValueKind]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		kind := schema.ValueKind(strings.ToLower(node.Content[i].Value))
		if !kind.Valid() {
			return nil, errs.Configf(fn, "unknown value kind %q", node.Content[i].Value)
		}
		if node.Content[i+1].Kind != yaml.MappingNode {
			return nil, errs.Configf(fn, "binary entry for %s must be a mapping", kind)
		}
		inner, err := parseUnaryRow(fn, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		row[kind] = inner
	}
	return row, nil
}

func parseVerdict(fn string, node *yaml.Node) (bool, error) {
	if node.Kind != yaml.ScalarNode {
		return false, errs.Configf(fn, "verdict must be a scalar")
	}
	switch strings.ToUpper(node.Value) {
	case "SUCCESS", "TRUE":
		return true, nil
	case "FAIL", "FALSE":
		return false, nil
	default:
		return false, errs.Configf(fn, "unknown verdict %q", node.Value)
	}
}

// Canonical strips parenthesised argument decoration and case-folds a function name,
// so "ABS(:1)" becomes "abs" and "(:1)+(:2)" becomes "+".
func Canonical(name string) string {
	var b strings.Builder
	depth := 0
	for _, ch := range name {
		switch {
		case ch == '(':
			depth++
		case ch == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(ch)
		}
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// Unary reports whether fn accepts an operand of kind.
func (m *Matrix) Unary(fn string, kind schema.ValueKind) (bool, error) {
	row, ok := m.unary[Canonical(fn)]
	if !ok {
		return false, errs.NewFeasibilityLookup(fn, string(kind))
	}
	verdict, ok := row[kind]
	if !ok {
		return false, errs.NewFeasibilityLookup(fn, string(kind))
	}
	return verdict, nil
}

// Binary reports whether fn accepts operands of kinds lhs and rhs.
func (m *Matrix) Binary(fn string, lhs, rhs schema.ValueKind) (bool, error) {
	row, ok := m.binary[Canonical(fn)]
	if !ok {
		return false, errs.NewFeasibilityLookup(fn, string(lhs), string(rhs))
	}
	inner, ok := row[lhs]
	if !ok {
		return false, errs.NewFeasibilityLookup(fn, string(lhs), string(rhs))
	}
	verdict, ok := inner[rhs]
	if !ok {
		return false, errs.NewFeasibilityLookup(fn, string(lhs), string(rhs))
	}
	return verdict, nil
}

// UnaryFunctions returns the canonical names of the single-operand entries, sorted.
func (m *Matrix) UnaryFunctions() []string {
	return sortedKeys(m.unary)
}

// BinaryFunctions returns the canonical names of the two-operand entries, sorted.
func (m *Matrix) BinaryFunctions() []string {
	return sortedKeys(m.binary)
}

// Check verifies that every catalog function has a complete entry of the right arity.
func (m *Matrix) Check(c Catalog) error {
	single := append(append([]string(nil), c.Aggregate...), c.Unary...)
	for _, fn := range single {
		for _, kind := range schema.AllKinds {
			if _, err := m.Unary(fn, kind); err != nil {
				return err
			}
		}
	}
	pair := append(append([]string(nil), c.BinaryPrefix...), c.BinaryInfix...)
	for _, fn := range pair {
		for _, lhs := range schema.AllKinds {
			for _, rhs := range schema.AllKinds {
				if _, err := m.Binary(fn, lhs, rhs); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortedKeys[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
