package generator

import (
	"strings"

	"jqgen/internal/config"
	"jqgen/internal/errs"
	"jqgen/internal/schema"
	"jqgen/internal/util"
)

// forcedProjections renders every pinned projection entry in config order.
func (b *build) forcedProjections(pool schema.Pool) ([]string, schema.Pool, error) {
	items := make([]string, 0, len(b.g.Query.Projection.Forced))
	for _, entry := range b.g.Query.Projection.Forced {
		var (
			item string
			err  error
		)
		switch fp := entry.(type) {
		case config.FixedPathProjection:
			item, pool, err = b.fixedPath(fp, pool)
		case config.VariableFunctionProjection:
			item, pool, err = b.variableFunction(fp, pool)
		case config.VariablePathProjection:
			item, err = b.variablePath(fp, pool)
		default:
			err = errs.Configf(entry, "unsupported forced projection")
		}
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, pool, nil
}

// takePaths looks up the pinned paths in the pool and removes them.
func (b *build) takePaths(entry config.ForcedProjection, paths [][]string, pool schema.Pool) ([]schema.Path, schema.Pool, error) {
	idx := make([]int, len(paths))
	for i, segments := range paths {
		idx[i] = pool.Index(segments)
		if idx[i] < 0 {
			return nil, nil, errs.Configf(entry, "path %s is not in the schema description or already used", "["+strings.Join(segments, ", ")+"]")
		}
	}
	out := make([]schema.Path, len(idx))
	for i, j := range idx {
		out[i] = pool[j]
	}
	if len(idx) == 1 {
		pool, _ = pool.Remove(idx[0])
		b.consumed = append(b.consumed, out[0])
		return out, pool, nil
	}
	pool = pool.RemovePair(idx[0], idx[1])
	b.consumed = append(b.consumed, out[0])
	if idx[0] != idx[1] {
		b.consumed = append(b.consumed, out[1])
	}
	return out, pool, nil
}

// fixedPath renders pinned paths with a fixed function, an enumerated function
// placeholder or no function at all.
func (b *build) fixedPath(fp config.FixedPathProjection, pool schema.Pool) (string, schema.Pool, error) {
	paths, pool, err := b.takePaths(fp, fp.Paths, pool)
	if err != nil {
		return "", nil, err
	}
	if len(paths) == 1 {
		item, err := b.fixedSingle(fp, paths[0])
		return item, pool, err
	}
	item, err := b.fixedPair(fp, paths[0], paths[1])
	return item, pool, err
}

func (b *build) fixedSingle(fp config.FixedPathProjection, p schema.Path) (string, error) {
	expr := b.expr(p)
	if fp.Plain {
		return expr, nil
	}
	c := b.g.Feasibility.Catalog
	kind := schema.Classify(p)
	for _, fn := range fp.Functions {
		if !c.IsUnary(fn) && !c.IsAggregate(fn) {
			return "", errs.Configf(fp, "%s does not take a single argument", fn)
		}
		ok, err := b.g.Feasibility.Unary(fn, kind)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errs.Configf(fp, "forced path with function %s not feasible for kind %s", fn, kind)
		}
	}
	if !fp.Enumerated {
		return fp.Functions[0] + "(" + expr + ")", nil
	}
	name := b.nextPlaceholder(fp.Functions)
	return Marker(name) + "(" + expr + ")", nil
}

func (b *build) fixedPair(fp config.FixedPathProjection, lhs, rhs schema.Path) (string, error) {
	if fp.Plain {
		return "", errs.Configf(fp, "two paths need a function")
	}
	infix, err := b.binaryForm(fp, fp.Functions)
	if err != nil {
		return "", err
	}
	lk, rk := schema.Classify(lhs), schema.Classify(rhs)
	for _, fn := range fp.Functions {
		ok, err := b.g.Feasibility.Binary(fn, lk, rk)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errs.Configf(fp, "forced path with function %s not feasible for kinds %s, %s", fn, lk, rk)
		}
	}
	l, r := b.expr(lhs), b.expr(rhs)
	if !fp.Enumerated {
		return renderBinary(infix, fp.Functions[0], l, r), nil
	}
	name := b.nextPlaceholder(fp.Functions)
	return renderBinary(infix, Marker(name), l, r), nil
}

// binaryForm reports whether fns are all infix. Mixed or non-binary lists are rejected.
func (b *build) binaryForm(entry config.ForcedProjection, fns []string) (bool, error) {
	c := b.g.Feasibility.Catalog
	allInfix, allPrefix := true, true
	for _, fn := range fns {
		allInfix = allInfix && c.IsInfix(fn)
		allPrefix = allPrefix && c.IsPrefix(fn)
	}
	switch {
	case allInfix:
		return true, nil
	case allPrefix:
		return false, nil
	default:
		return false, errs.Configf(entry, "forced functions must either all be infix or all prefix binary functions")
	}
}

// variableFunction renders pinned paths with a placeholder over the feasible functions.
func (b *build) variableFunction(fp config.VariableFunctionProjection, pool schema.Pool) (string, schema.Pool, error) {
	paths, pool, err := b.takePaths(fp, fp.Paths, pool)
	if err != nil {
		return "", nil, err
	}
	f := b.g.Feasibility
	if len(paths) == 1 {
		p := paths[0]
		fns, err := f.FeasibleUnary(schema.Classify(p))
		if err != nil {
			return "", nil, err
		}
		if len(fns) == 0 {
			return "", nil, errs.Configf(fp, "no feasible functions for forced path")
		}
		name := b.nextPlaceholder(fns)
		return Marker(name) + "(" + b.expr(p) + ")", pool, nil
	}
	lhs, rhs := paths[0], paths[1]
	lk, rk := schema.Classify(lhs), schema.Classify(rhs)
	infix, err := f.FeasibleInfix(lk, rk)
	if err != nil {
		return "", nil, err
	}
	prefix, err := f.FeasiblePrefix(lk, rk)
	if err != nil {
		return "", nil, err
	}
	if len(infix) == 0 && len(prefix) == 0 {
		return "", nil, errs.Configf(fp, "no feasible function for forced paths")
	}
	l, r := b.expr(lhs), b.expr(rhs)
	if util.PickWeighted(b.g.Rand, []int{len(infix), len(prefix)}) == 0 {
		name := b.nextPlaceholder(infix)
		return renderBinary(true, Marker(name), l, r), pool, nil
	}
	name := b.nextPlaceholder(prefix)
	return renderBinary(false, Marker(name), l, r), pool, nil
}

// variablePath renders a pinned function over placeholder paths. Candidates come from
// the paths still in the pool, which is scanned but not consumed. Feasibility is
// checked against the first function only.
func (b *build) variablePath(fp config.VariablePathProjection, pool schema.Pool) (string, error) {
	c := b.g.Feasibility.Catalog
	first := fp.Functions[0]
	if c.IsUnary(first) || c.IsAggregate(first) {
		for _, fn := range fp.Functions {
			if !c.IsUnary(fn) && !c.IsAggregate(fn) {
				return "", errs.Configf(fp, "enumerated functions mix single and two argument functions")
			}
		}
		paths, err := b.feasibleSingles(first, pool)
		if err != nil {
			return "", err
		}
		if len(paths) == 0 {
			return "", errs.Configf(fp, "no path in the schema description is feasible for %s", first)
		}
		if !fp.Enumerated {
			name := b.nextPlaceholder(paths)
			return first + "(" + Marker(name) + ")", nil
		}
		fn := b.nextPlaceholder(fp.Functions)
		path := b.nextPlaceholder(paths)
		return Marker(fn) + "(" + Marker(path) + ")", nil
	}

	infix, err := b.binaryForm(fp, fp.Functions)
	if err != nil {
		return "", err
	}
	lhs, rhs, err := b.feasiblePairs(first, pool)
	if err != nil {
		return "", err
	}
	if len(lhs) == 0 {
		return "", errs.Configf(fp, "no path pair in the schema description is feasible for %s", first)
	}
	l := b.nextPlaceholder(lhs)
	fn := first
	if fp.Enumerated {
		fn = Marker(b.nextPlaceholder(fp.Functions))
	}
	r := b.nextPlaceholder(rhs)
	return renderBinary(infix, fn, Marker(l), Marker(r)), nil
}

// feasibleSingles lists the expressions of pool paths fn accepts, without duplicates.
func (b *build) feasibleSingles(fn string, pool schema.Pool) ([]string, error) {
	out := make([]string, 0, len(pool))
	seen := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		ok, err := b.g.Feasibility.Unary(fn, schema.Classify(p))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = appendUnique(out, seen, b.expr(p))
	}
	return out, nil
}

// feasiblePairs lists the left and right expressions of the pool pairs fn accepts.
// The two sides are deduplicated independently and expand as a cross product, so a
// matrix that is not rectangular for fn can yield operand pairs it never accepted.
func (b *build) feasiblePairs(fn string, pool schema.Pool) ([]string, []string, error) {
	lhs := make([]string, 0, len(pool))
	rhs := make([]string, 0, len(pool))
	seenL := make(map[string]struct{}, len(pool))
	seenR := make(map[string]struct{}, len(pool))
	for _, l := range pool {
		for _, r := range pool {
			ok, err := b.g.Feasibility.Binary(fn, schema.Classify(l), schema.Classify(r))
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			lhs = appendUnique(lhs, seenL, b.expr(l))
			rhs = appendUnique(rhs, seenR, b.expr(r))
		}
	}
	return lhs, rhs, nil
}

func appendUnique(out []string, seen map[string]struct{}, v string) []string {
	if _, ok := seen[v]; ok {
		return out
	}
	seen[v] = struct{}{}
	return append(out, v)
}

// renderBinary writes lhs<op>rhs for infix operators and FN(lhs,rhs) otherwise.
func renderBinary(infix bool, fn, lhs, rhs string) string {
	if infix {
		return lhs + fn + rhs
	}
	return fn + "(" + lhs + "," + rhs + ")"
}
