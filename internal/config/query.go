package config

import (
	"fmt"
	"os"
	"strings"

	"jqgen/internal/errs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive [min, max] count range.
type Range [2]int

// Min returns the lower bound.
func (r Range) Min() int { return r[0] }

// Max returns the upper bound.
func (r Range) Max() int { return r[1] }

// UnmarshalYAML accepts a two-element integer list with min <= max.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	var raw []int
	if err := node.Decode(&raw); err != nil {
		return errs.Configf(nodeText(node), "range must be a list of two integers")
	}
	if len(raw) != 2 {
		return errs.Configf(nodeText(node), "range must be a list of two integers")
	}
	if raw[0] < 0 || raw[0] > raw[1] {
		return errs.Configf(nodeText(node), "range must satisfy 0 <= min <= max")
	}
	*r = Range{raw[0], raw[1]}
	return nil
}

// QueryConfig describes the shape of the generated query templates.
type QueryConfig struct {
	Collection               string           `yaml:"collection"`
	NumberOfDifferentQueries int              `yaml:"number_of_different_queries"`
	CombinationsPerQuery     Combinations     `yaml:"combinations_per_query"`
	Projection               ProjectionConfig `yaml:"projection"`
	WhereClause              *WhereConfig     `yaml:"where_clause"`
	Limit                    *int             `yaml:"limit"`
}

// ProjectionConfig lists forced projections and the random projection budget.
type ProjectionConfig struct {
	Forced ForcedList        `yaml:"forced"`
	Random *RandomProjection `yaml:"random"`
}

// RandomProjection holds the count ranges for randomly selected projections.
type RandomProjection struct {
	NumberTotal     Range `yaml:"number_total"`
	NumberUnary     Range `yaml:"number_unary_fct"`
	NumberBinary    Range `yaml:"number_binary_fct"`
	NumberAggregate Range `yaml:"number_aggregate_fct"`
}

// UnmarshalYAML requires number_total; the per-class ranges default to [0, 0].
func (r *RandomProjection) UnmarshalYAML(node *yaml.Node) error {
	if !hasKey(node, "number_total") {
		return errs.Configf(nodeText(node), "projection.random needs number_total")
	}
	type plain RandomProjection
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*r = RandomProjection(out)
	return nil
}

// WhereConfig configures the optional WHERE clause.
type WhereConfig struct {
	Forced      []FilterRef   `yaml:"forced"`
	Random      *RandomFilter `yaml:"random"`
	Operators   []string      `yaml:"operators"`
	Probability float64       `yaml:"probability"`
}

// RandomFilter holds the count range for randomly selected filters.
type RandomFilter struct {
	NumberTotal Range `yaml:"number_total"`
}

// UnmarshalYAML requires number_total.
func (r *RandomFilter) UnmarshalYAML(node *yaml.Node) error {
	if !hasKey(node, "number_total") {
		return errs.Configf(nodeText(node), "where_clause.random needs number_total")
	}
	type plain RandomFilter
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*r = RandomFilter(out)
	return nil
}

// UnmarshalYAML applies the where clause defaults before decoding.
func (w *WhereConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain WhereConfig
	out := plain{
		Operators:   []string{"AND", "OR"},
		Probability: 1,
	}
	if err := node.Decode(&out); err != nil {
		return err
	}
	for i, op := range out.Operators {
		out.Operators[i] = strings.ToUpper(strings.TrimSpace(op))
	}
	*w = WhereConfig(out)
	return nil
}

// HasForced reports whether any filter is pinned.
func (w *WhereConfig) HasForced() bool {
	return w != nil && len(w.Forced) > 0
}

// RandomRange returns the random filter count range, [0, 0] without a random section.
func (w *WhereConfig) RandomRange() Range {
	if w == nil || w.Random == nil {
		return Range{0, 0}
	}
	return w.Random.NumberTotal
}

// FilterRef names a schema path used as a forced filter. It decodes from a
// segment list or from a mapping with a path key.
type FilterRef struct {
	Path []string
}

// UnmarshalYAML accepts ["a", "b"] or {path: ["a", "b"]}.
func (f *FilterRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&f.Path)
	case yaml.MappingNode:
		var raw struct {
			Path []string `yaml:"path"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		f.Path = raw.Path
		return nil
	default:
		return errs.Configf(nodeText(node), "where clause forced entry must be a path")
	}
}

// String renders the path for messages.
func (f FilterRef) String() string {
	return "[" + strings.Join(f.Path, ", ") + "]"
}

// LoadQuery reads and validates a query config from a JSON or YAML file.
func LoadQuery(path string, functions FunctionSet) (QueryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QueryConfig{}, errors.Wrap(err, "read query config")
	}
	cfg, err := ParseQuery(data, functions)
	if err != nil {
		return QueryConfig{}, errors.Wrapf(err, "query config %s", path)
	}
	return cfg, nil
}

// FunctionSet tells the validator which function names exist.
type FunctionSet interface {
	Known(name string) bool
}

// ParseQuery decodes and validates a query config.
func ParseQuery(data []byte, functions FunctionSet) (QueryConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return QueryConfig{}, errs.Configf("", "malformed query config: %v", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	for _, key := range []string{"collection", "number_of_different_queries", "combinations_per_query", "projection"} {
		if !hasKey(doc, key) {
			return QueryConfig{}, errs.Configf(key, "missing required key")
		}
	}
	var cfg QueryConfig
	if err := doc.Decode(&cfg); err != nil {
		if errs.IsConfig(err) {
			return QueryConfig{}, err
		}
		return QueryConfig{}, errs.Configf("", "invalid query config: %v", err)
	}
	if err := cfg.Validate(functions); err != nil {
		return QueryConfig{}, err
	}
	return cfg, nil
}

// Validate checks the invariants that decoding cannot express.
func (q QueryConfig) Validate(functions FunctionSet) error {
	if strings.TrimSpace(q.Collection) == "" {
		return errs.Configf("collection", "collection must be a non-empty string")
	}
	if q.NumberOfDifferentQueries <= 0 {
		return errs.Configf(q.NumberOfDifferentQueries, "number_of_different_queries must be positive")
	}
	if !q.CombinationsPerQuery.Valid() {
		return errs.Configf("combinations_per_query", "must be an integer >= 1 or \"all\"")
	}
	if len(q.Projection.Forced) == 0 && q.Projection.Random == nil {
		return errs.Configf("projection", "needs a non-empty forced list or a random section")
	}
	if functions != nil {
		for _, fp := range q.Projection.Forced {
			for _, fn := range functionsOf(fp) {
				if !functions.Known(fn) {
					return errs.Configf(fp, "unknown function %s", fn)
				}
			}
		}
	}
	if q.Limit != nil && *q.Limit < 0 {
		return errs.Configf(*q.Limit, "limit must not be negative")
	}
	if w := q.WhereClause; w != nil {
		if !w.HasForced() && w.Random == nil {
			return errs.Configf("where_clause", "needs a non-empty forced list or a random section")
		}
		if w.Probability < 0 || w.Probability > 1 {
			return errs.Configf(w.Probability, "where_clause.probability must be within [0, 1]")
		}
		if len(w.Operators) == 0 {
			return errs.Configf("where_clause.operators", "needs at least one operator")
		}
		for _, op := range w.Operators {
			if op != "AND" && op != "OR" {
				return errs.Configf(op, "where_clause operator must be AND or OR")
			}
		}
		for _, f := range w.Forced {
			if len(f.Path) == 0 {
				return errs.Configf(f, "where_clause forced path is empty")
			}
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func nodeText(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Sprintf("line %d", node.Line)
	}
	return strings.TrimSpace(string(data))
}
