package feasibility

import (
	"jqgen/internal/schema"
)

// Feasibility binds a matrix to the function catalog the generator draws from.
type Feasibility struct {
	Matrix  *Matrix
	Catalog Catalog
}

// New validates that m covers every function of c.
func New(m *Matrix, c Catalog) (*Feasibility, error) {
	if err := m.Check(c); err != nil {
		return nil, err
	}
	return &Feasibility{Matrix: m, Catalog: c}, nil
}

// Default builds the embedded matrix with the default catalog.
func Default() (*Feasibility, error) {
	m, err := DefaultMatrix()
	if err != nil {
		return nil, err
	}
	return New(m, DefaultCatalog())
}

// FeasibleUnary lists the unary functions valid for kind, in catalog order.
func (f *Feasibility) FeasibleUnary(kind schema.ValueKind) ([]string, error) {
	return f.filterUnary(f.Catalog.Unary, kind)
}

// FeasibleInfix lists the infix operators valid for lhs and rhs.
func (f *Feasibility) FeasibleInfix(lhs, rhs schema.ValueKind) ([]string, error) {
	return f.filterBinary(f.Catalog.BinaryInfix, lhs, rhs)
}

// FeasiblePrefix lists the prefix functions valid for lhs and rhs.
func (f *Feasibility) FeasiblePrefix(lhs, rhs schema.ValueKind) ([]string, error) {
	return f.filterBinary(f.Catalog.BinaryPrefix, lhs, rhs)
}

// Unary reports whether fn accepts kind.
func (f *Feasibility) Unary(fn string, kind schema.ValueKind) (bool, error) {
	return f.Matrix.Unary(fn, kind)
}

// Binary reports whether fn accepts lhs and rhs.
func (f *Feasibility) Binary(fn string, lhs, rhs schema.ValueKind) (bool, error) {
	return f.Matrix.Binary(fn, lhs, rhs)
}

func (f *Feasibility) filterUnary(names []string, kind schema.ValueKind) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, fn := range names {
		ok, err := f.Matrix.Unary(fn, kind)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, fn)
		}
	}
	return out, nil
}

func (f *Feasibility) filterBinary(names []string, lhs, rhs schema.ValueKind) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, fn := range names {
		ok, err := f.Matrix.Binary(fn, lhs, rhs)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, fn)
		}
	}
	return out, nil
}
