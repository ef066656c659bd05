package config

import (
	"os"
	"path/filepath"
	"testing"

	"jqgen/internal/errs"
)

type knownFunctions map[string]bool

func (k knownFunctions) Known(name string) bool { return k[name] }

var testFunctions = knownFunctions{"ABS": true, "ROUND": true, "+": true, "COUNT": true, "CONCAT": true}

func TestLoadDefaults(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := tmp.WriteString(""); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}

	cfg, err := Load(tmp.Name())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Mode != ModeSchema {
		t.Fatalf("unexpected mode: %s", cfg.Mode)
	}
	if cfg.Workers != 1 {
		t.Fatalf("unexpected workers: %d", cfg.Workers)
	}
	if cfg.QueryBaseName != "query" {
		t.Fatalf("unexpected query base name: %s", cfg.QueryBaseName)
	}
	if cfg.OutputDir != "output" {
		t.Fatalf("unexpected output dir: %s", cfg.OutputDir)
	}
	if cfg.Storage.S3.Region != "us-east-1" {
		t.Fatalf("unexpected s3 region: %s", cfg.Storage.S3.Region)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `mode: Standalone
workers: 0
workbook: /bench/
standalone_file: sa.json
storage:
  gcs:
    enabled: true
    bucket: b
    prefix: /runs/
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Mode != ModeStandalone {
		t.Fatalf("unexpected mode: %s", cfg.Mode)
	}
	if cfg.Workers != 1 {
		t.Fatalf("workers not normalized: %d", cfg.Workers)
	}
	if cfg.Workbook != "bench" {
		t.Fatalf("workbook not trimmed: %q", cfg.Workbook)
	}
	if cfg.Storage.GCS.Prefix != "runs" {
		t.Fatalf("gcs prefix not trimmed: %q", cfg.Storage.GCS.Prefix)
	}
	if got := cfg.WorkbookDir(); got != filepath.Join("output", "bench") {
		t.Fatalf("unexpected workbook dir: %s", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsPrintAndPrintOnly(t *testing.T) {
	cfg := Default()
	cfg.SchemaFile = "s.json"
	cfg.QueryFile = "q.json"
	cfg.PrintQueries = true
	cfg.PrintOnly = true
	if err := cfg.Validate(); !errs.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestParseQueryDefaults(t *testing.T) {
	data := []byte(`{
		"collection": "coll",
		"number_of_different_queries": 3,
		"combinations_per_query": "all",
		"projection": {"random": {"number_total": [1, 4]}},
		"where_clause": {"forced": [["x"]]}
	}`)
	cfg, err := ParseQuery(data, testFunctions)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if !cfg.CombinationsPerQuery.All {
		t.Fatalf("expected all combinations, got %s", cfg.CombinationsPerQuery)
	}
	rnd := cfg.Projection.Random
	if rnd == nil || rnd.NumberTotal != (Range{1, 4}) {
		t.Fatalf("unexpected random projection: %+v", rnd)
	}
	if rnd.NumberUnary != (Range{0, 0}) || rnd.NumberBinary != (Range{0, 0}) || rnd.NumberAggregate != (Range{0, 0}) {
		t.Fatalf("unexpected default ranges: %+v", rnd)
	}
	w := cfg.WhereClause
	if w == nil {
		t.Fatalf("expected where clause")
	}
	if w.Probability != 1 {
		t.Fatalf("unexpected default probability: %v", w.Probability)
	}
	if len(w.Operators) != 2 || w.Operators[0] != "AND" || w.Operators[1] != "OR" {
		t.Fatalf("unexpected default operators: %v", w.Operators)
	}
	if w.Random != nil || w.RandomRange() != (Range{0, 0}) {
		t.Fatalf("unexpected default filter range: %v", w.RandomRange())
	}
	if len(w.Forced) != 1 || w.Forced[0].Path[0] != "x" {
		t.Fatalf("unexpected forced filters: %v", w.Forced)
	}
	if cfg.Limit != nil {
		t.Fatalf("unexpected limit: %v", *cfg.Limit)
	}
}

func TestParseQueryForcedVariants(t *testing.T) {
	data := []byte(`
collection: coll
number_of_different_queries: 1
combinations_per_query: 2
limit: 10
projection:
  forced:
    - {path: [a], fct: abs}
    - {path: [[a], [b]], fct: ["+"]}
    - {path: [c], fct: null}
    - {path: [[a], [b]]}
    - {fct: ROUND}
    - {fct: [COUNT, ABS]}
`)
	cfg, err := ParseQuery(data, testFunctions)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	forced := cfg.Projection.Forced
	if len(forced) != 6 {
		t.Fatalf("unexpected forced count: %d", len(forced))
	}
	fixed, ok := forced[0].(FixedPathProjection)
	if !ok || fixed.Enumerated || fixed.Functions[0] != "ABS" || len(fixed.Paths) != 1 {
		t.Fatalf("unexpected fixed projection: %#v", forced[0])
	}
	pair, ok := forced[1].(FixedPathProjection)
	if !ok || !pair.Enumerated || len(pair.Paths) != 2 {
		t.Fatalf("unexpected enumerated binary projection: %#v", forced[1])
	}
	plain, ok := forced[2].(FixedPathProjection)
	if !ok || !plain.Plain {
		t.Fatalf("unexpected plain projection: %#v", forced[2])
	}
	if vf, ok := forced[3].(VariableFunctionProjection); !ok || len(vf.Paths) != 2 {
		t.Fatalf("unexpected variable function projection: %#v", forced[3])
	}
	if vp, ok := forced[4].(VariablePathProjection); !ok || vp.Enumerated {
		t.Fatalf("unexpected variable path projection: %#v", forced[4])
	}
	if vp, ok := forced[5].(VariablePathProjection); !ok || !vp.Enumerated || len(vp.Functions) != 2 {
		t.Fatalf("unexpected enumerated variable path projection: %#v", forced[5])
	}
	if cfg.CombinationsPerQuery.N != 2 {
		t.Fatalf("unexpected combinations: %s", cfg.CombinationsPerQuery)
	}
	if cfg.Limit == nil || *cfg.Limit != 10 {
		t.Fatalf("unexpected limit: %v", cfg.Limit)
	}
}

func TestParseQueryErrors(t *testing.T) {
	cases := map[string]string{
		"missing collection": `{"number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}}`,
		"zero combinations":  `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 0, "projection": {"random": {"number_total": [1, 1]}}}`,
		"string count":       `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": "3", "projection": {"random": {"number_total": [1, 1]}}}`,
		"bad range":          `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [3, 1]}}}`,
		"short range":        `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [3]}}}`,
		"no total":           `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_unary_fct": [1, 1]}}}`,
		"empty projection":   `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"forced": []}}`,
		"no queries":         `{"collection": "c", "number_of_different_queries": 0, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}}`,
		"unknown function":   `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"forced": [{"fct": "NOPE"}]}}`,
		"three paths":        `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"forced": [{"path": [["a"], ["b"], ["c"]]}]}}`,
		"empty entry":        `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"forced": [{}]}}`,
		"bad operator":       `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}, "where_clause": {"forced": [["a"]], "operators": ["XOR"]}}`,
		"bad probability":    `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}, "where_clause": {"forced": [["a"]], "probability": 2}}`,
		"empty where":        `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}, "where_clause": {"probability": 1}}`,
		"empty where forced": `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}, "where_clause": {"forced": []}}`,
		"where no total":     `{"collection": "c", "number_of_different_queries": 1, "combinations_per_query": 1, "projection": {"random": {"number_total": [1, 1]}}, "where_clause": {"random": {}}}`,
	}
	for name, doc := range cases {
		if _, err := ParseQuery([]byte(doc), testFunctions); !errs.IsConfig(err) {
			t.Fatalf("%s: expected config error, got %v", name, err)
		}
	}
}

func TestParseStandalone(t *testing.T) {
	data := []byte(`{"template": "SELECT {{UNARY_FCT}}(\"c\".\"a\") FROM \"c\";", "combinations": 2, "placeholders": {"UNARY_FCT": ["ABS"]}}`)
	cfg, err := ParseStandalone(data)
	if err != nil {
		t.Fatalf("parse standalone: %v", err)
	}
	if cfg.Combinations.N != 2 {
		t.Fatalf("unexpected combinations: %s", cfg.Combinations)
	}
	merged := cfg.WithDefaults(map[string][]string{"UNARY_FCT": {"ABS", "LN"}, "AGGREGATE_FCT": {"COUNT"}})
	if len(merged["UNARY_FCT"]) != 1 {
		t.Fatalf("user placeholders should win: %v", merged["UNARY_FCT"])
	}
	if len(merged["AGGREGATE_FCT"]) != 1 {
		t.Fatalf("defaults should be merged: %v", merged)
	}

	if _, err := ParseStandalone([]byte(`{"template": "SELECT 1;"}`)); !errs.IsConfig(err) {
		t.Fatalf("expected missing combinations error, got %v", err)
	}
}

func TestCombinationsJSON(t *testing.T) {
	all, err := AllCombinations.MarshalJSON()
	if err != nil || string(all) != `"all"` {
		t.Fatalf("unexpected all encoding: %s %v", all, err)
	}
	n, err := Count(3).MarshalJSON()
	if err != nil || string(n) != "3" {
		t.Fatalf("unexpected count encoding: %s %v", n, err)
	}
}
