package generator

import (
	"jqgen/internal/errs"
	"jqgen/internal/schema"
	"jqgen/internal/util"
)

// randomProjections spends a budget drawn from number_total on aggregate, unary and
// binary applications in a shuffled class order, then fills the rest with plain paths.
func (b *build) randomProjections(pool schema.Pool) ([]string, schema.Pool, error) {
	cfg := b.g.Query.Projection.Random
	r := b.g.Rand
	total := util.RandFromRange(r, cfg.NumberTotal, len(pool))
	left := total
	items := make([]string, 0, total)

	for _, class := range util.Shuffled(r, functionClasses) {
		var (
			out  []string
			used int
			err  error
		)
		switch class {
		case classAggregate:
			out, pool, used = b.randomAggregates(pool, left)
		case classUnary:
			out, pool, used, err = b.randomUnaries(pool, left)
		case classBinary:
			out, pool, used, err = b.randomBinaries(pool, left)
		}
		if err != nil {
			return nil, nil, err
		}
		items = append(items, out...)
		left -= used
	}

	plain := left
	if plain > len(pool) {
		b.warn("projection", "only %d path(s) left for %d plain projection(s)", len(pool), plain)
		plain = len(pool)
	}
	for i := 0; i < plain; i++ {
		var p schema.Path
		pool, p = pool.Remove(r.Intn(len(pool)))
		b.consumed = append(b.consumed, p)
		items = append(items, b.expr(p))
	}
	return items, pool, nil
}

// randomAggregates applies aggregate placeholders to number paths.
func (b *build) randomAggregates(pool schema.Pool, left int) ([]string, schema.Pool, int) {
	r := b.g.Rand
	viable := len(pool.IndexesOf(schema.KindNumber))
	bound := viable
	if left < bound {
		bound = left
	}
	n := util.RandFromRange(r, b.g.Query.Projection.Random.NumberAggregate, bound)
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := pool.IndexesOf(schema.KindNumber)
		var p schema.Path
		pool, p = pool.Remove(idx[r.Intn(len(idx))])
		b.consumed = append(b.consumed, p)
		name := b.nextPlaceholder(b.g.Feasibility.Catalog.Aggregate)
		items = append(items, Marker(name)+"("+b.expr(p)+")")
	}
	return items, pool, n
}

// randomUnaries applies unary placeholders bound to the functions feasible for each path.
func (b *build) randomUnaries(pool schema.Pool, left int) ([]string, schema.Pool, int, error) {
	r := b.g.Rand
	bound := len(pool)
	if left < bound {
		bound = left
	}
	n := util.RandFromRange(r, b.g.Query.Projection.Random.NumberUnary, bound)
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var p schema.Path
		pool, p = pool.Remove(r.Intn(len(pool)))
		b.consumed = append(b.consumed, p)
		fns, err := b.g.Feasibility.FeasibleUnary(schema.Classify(p))
		if err != nil {
			return nil, nil, 0, err
		}
		if len(fns) == 0 {
			return nil, nil, 0, errs.Configf(p, "no feasible unary function for kind %s", schema.Classify(p))
		}
		name := b.nextPlaceholder(fns)
		items = append(items, Marker(name)+"("+b.expr(p)+")")
	}
	return items, pool, n, nil
}

type binaryPair struct {
	lhs, rhs      int
	infix, prefix []string
}

// viablePairs lists every ordered pool pair with at least one feasible binary function.
func (b *build) viablePairs(pool schema.Pool) ([]binaryPair, error) {
	f := b.g.Feasibility
	out := make([]binaryPair, 0)
	for i, lhs := range pool {
		for j, rhs := range pool {
			lk, rk := schema.Classify(lhs), schema.Classify(rhs)
			infix, err := f.FeasibleInfix(lk, rk)
			if err != nil {
				return nil, err
			}
			prefix, err := f.FeasiblePrefix(lk, rk)
			if err != nil {
				return nil, err
			}
			if len(infix) > 0 || len(prefix) > 0 {
				out = append(out, binaryPair{lhs: i, rhs: j, infix: infix, prefix: prefix})
			}
		}
	}
	return out, nil
}

// randomBinaries applies infix or prefix placeholders to viable path pairs. It stops
// with a warning once no viable pair is left. A pair may take two paths for one unit
// of budget, so the count is capped at half of what is left.
func (b *build) randomBinaries(pool schema.Pool, left int) ([]string, schema.Pool, int, error) {
	r := b.g.Rand
	n := util.RandFromRange(r, b.g.Query.Projection.Random.NumberBinary, left/2)
	items := make([]string, 0, n)
	used := 0
	for i := 0; i < n; i++ {
		pairs, err := b.viablePairs(pool)
		if err != nil {
			return nil, nil, 0, err
		}
		if len(pairs) == 0 {
			b.warn("binary", "no viable path combination for binary function found")
			break
		}
		pair := pairs[r.Intn(len(pairs))]
		lhs, rhs := pool[pair.lhs], pool[pair.rhs]
		pool = pool.RemovePair(pair.lhs, pair.rhs)
		b.consumed = append(b.consumed, lhs)
		if pair.lhs != pair.rhs {
			b.consumed = append(b.consumed, rhs)
		}
		used++

		if util.PickWeighted(r, []int{len(pair.infix), len(pair.prefix)}) == 0 {
			name := b.nextPlaceholder(pair.infix)
			items = append(items, b.expr(lhs)+Marker(name)+b.expr(rhs))
			continue
		}
		name := b.nextPlaceholder(pair.prefix)
		items = append(items, Marker(name)+"("+b.expr(lhs)+","+b.expr(rhs)+")")
	}
	return items, pool, used, nil
}
