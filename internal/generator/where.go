package generator

import (
	"strings"

	"jqgen/internal/config"
	"jqgen/internal/errs"
	"jqgen/internal/schema"
	"jqgen/internal/util"
)

// whereClause renders forced filters followed by random ones, joined by a single
// operator drawn from the allow-list.
func (b *build) whereClause(pool schema.Pool) (string, error) {
	w := b.g.Query.WhereClause
	filters := make([]string, 0, len(w.Forced)+w.RandomRange().Max())
	for _, ref := range w.Forced {
		idx := pool.Index(ref.Path)
		if idx < 0 {
			return "", b.missingFilter(ref)
		}
		var p schema.Path
		pool, p = pool.Remove(idx)
		b.consumed = append(b.consumed, p)
		f, err := b.filter(p)
		if err != nil {
			return "", err
		}
		filters = append(filters, f)
	}

	r := b.g.Rand
	n := util.RandFromRange(r, w.RandomRange(), len(pool))
	for i := 0; i < n; i++ {
		var p schema.Path
		pool, p = pool.Remove(r.Intn(len(pool)))
		b.consumed = append(b.consumed, p)
		f, err := b.filter(p)
		if err != nil {
			return "", err
		}
		filters = append(filters, f)
	}
	if len(filters) == 0 {
		return "", nil
	}
	op := w.Operators[r.Intn(len(w.Operators))]
	return strings.Join(filters, " "+op+" "), nil
}

// missingFilter explains why a forced filter path is not in the filter pool.
func (b *build) missingFilter(ref config.FilterRef) error {
	for _, p := range b.g.Schema.ForcedPaths {
		if !p.Matches(ref.Path) {
			continue
		}
		if p.HasOperator() && !p.IsArray() {
			return errs.Configf(ref, "where clause path is used twice")
		}
		return errs.Configf(ref, "specified where clause path is not viable as where clause")
	}
	return errs.Configf(ref, "where clause path is not in the schema description")
}

// filter renders path<op>value.
func (b *build) filter(p schema.Path) (string, error) {
	op, ok := filterOperators[p.Operator]
	if !ok {
		return "", errs.Configf(p, "unknown operator %q", p.Operator)
	}
	return b.expr(p) + op + schema.Literal(schema.Classify(p), p.Value), nil
}
