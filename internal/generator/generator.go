package generator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"jqgen/internal/config"
	"jqgen/internal/feasibility"
	"jqgen/internal/schema"
	"jqgen/internal/util"
)

// Generator composes query templates from a schema description and a query config.
// It is not safe for concurrent use; give each worker its own Generator.
type Generator struct {
	Rand        *rand.Rand
	Query       config.QueryConfig
	Schema      schema.Description
	Feasibility *feasibility.Feasibility

	projections schema.Pool
	filters     schema.Pool
}

// Template is one composed SQL template and the candidates of its placeholders.
type Template struct {
	SQL          string
	Placeholders map[string][]string
	// Order lists placeholder names in emission order.
	Order []string
	// Consumed lists the projection and filter paths taken from the pools.
	Consumed []schema.Path
	Warnings []Warning
}

// Standalone converts the template into a standalone config.
func (t Template) Standalone(combinations config.Combinations) config.StandaloneConfig {
	placeholders := make(map[string][]string, len(t.Placeholders))
	for name, values := range t.Placeholders {
		placeholders[name] = append([]string(nil), values...)
	}
	return config.StandaloneConfig{
		Template:     t.SQL,
		Combinations: combinations,
		Placeholders: placeholders,
	}
}

// Warning reports a random selection step that ran out of candidates.
type Warning struct {
	Step    string
	Message string
}

func (w Warning) String() string {
	return w.Step + ": " + w.Message
}

// New returns a Generator. The projection and filter pools are derived from desc once
// and cloned for every template.
func New(r *rand.Rand, query config.QueryConfig, desc schema.Description, f *feasibility.Feasibility) *Generator {
	return &Generator{
		Rand:        r,
		Query:       query,
		Schema:      desc,
		Feasibility: f,
		projections: desc.ProjectionPool(),
		filters:     desc.FilterPool(),
	}
}

// BuildAll composes number_of_different_queries templates.
func (g *Generator) BuildAll() ([]Template, error) {
	out := make([]Template, 0, g.Query.NumberOfDifferentQueries)
	for i := 0; i < g.Query.NumberOfDifferentQueries; i++ {
		tmpl, err := g.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// Build composes one template. Pools and placeholder names start fresh on every call.
func (g *Generator) Build() (Template, error) {
	b := g.newBuild()
	projection, _, err := b.projectionClause(g.projections.Clone())
	if err != nil {
		return Template{}, err
	}
	var sql SQLBuilder
	sql.Write("SELECT ")
	sql.Write(projection)
	sql.Write(" FROM ")
	sql.Write(schema.QuoteIdent(g.Query.Collection))

	if g.shouldFilter() {
		where, err := b.whereClause(g.filters.Clone())
		if err != nil {
			return Template{}, err
		}
		if where != "" {
			sql.Write(" WHERE ")
			sql.Write(where)
		}
	}
	if g.Query.Limit != nil {
		sql.Writef(" LIMIT %d", *g.Query.Limit)
	}
	sql.Write(";")

	for _, w := range b.warnings {
		util.Warnf("template: %s", w)
	}
	return Template{
		SQL:          sql.String(),
		Placeholders: b.placeholders,
		Order:        b.order,
		Consumed:     b.consumed,
		Warnings:     b.warnings,
	}, nil
}

// shouldFilter decides whether this template gets a WHERE clause.
func (g *Generator) shouldFilter() bool {
	w := g.Query.WhereClause
	if w == nil {
		return false
	}
	if !w.HasForced() && w.RandomRange().Max() <= 0 {
		return false
	}
	return util.Bernoulli(g.Rand, w.Probability)
}

// build holds the per-template state.
type build struct {
	g            *Generator
	seq          int
	placeholders map[string][]string
	order        []string
	consumed     []schema.Path
	warnings     []Warning
}

func (g *Generator) newBuild() *build {
	return &build{
		g:            g,
		placeholders: make(map[string][]string),
	}
}

// nextPlaceholder allocates the next placeholder name and binds its candidates.
func (b *build) nextPlaceholder(candidates []string) string {
	name := placeholderPrefix + strconv.Itoa(b.seq)
	b.seq++
	b.placeholders[name] = append([]string(nil), candidates...)
	b.order = append(b.order, name)
	return name
}

func (b *build) warn(step, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{Step: step, Message: fmt.Sprintf(format, args...)})
}

func (b *build) expr(p schema.Path) string {
	return schema.Expr(b.g.Query.Collection, p)
}

// projectionClause renders forced projections first, then random ones.
func (b *build) projectionClause(pool schema.Pool) (string, schema.Pool, error) {
	items := make([]string, 0, 4)
	var err error
	if len(b.g.Query.Projection.Forced) > 0 {
		var forced []string
		forced, pool, err = b.forcedProjections(pool)
		if err != nil {
			return "", nil, err
		}
		items = append(items, forced...)
	}
	if b.g.Query.Projection.Random != nil {
		var random []string
		random, pool, err = b.randomProjections(pool)
		if err != nil {
			return "", nil, err
		}
		items = append(items, random...)
	}
	if len(items) == 0 {
		b.warn("projection", "no projection produced, falling back to *")
		items = append(items, "*")
	}
	return strings.Join(items, ", "), pool, nil
}
