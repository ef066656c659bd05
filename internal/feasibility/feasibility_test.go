package feasibility

import (
	"bytes"
	"testing"

	"jqgen/internal/errs"
	"jqgen/internal/schema"

	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	require.Equal(t, "abs", Canonical("ABS(:1)"))
	require.Equal(t, "+", Canonical("(:1)+(:2)"))
	require.Equal(t, "atan2", Canonical("ATAN2(:1,:2)"))
	require.Equal(t, "round", Canonical("ROUND"))
}

func TestDefaultCoversCatalog(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	numeric, err := f.FeasibleUnary(schema.KindNumber)
	require.NoError(t, err)
	require.Contains(t, numeric, "ABS")
	require.NotContains(t, numeric, "LOWER")

	text, err := f.FeasibleUnary(schema.KindString)
	require.NoError(t, err)
	require.Equal(t, []string{"LENGTH", "LOWER", "UPPER", "TO_VARCHAR"}, text)

	infix, err := f.FeasibleInfix(schema.KindNumber, schema.KindNumber)
	require.NoError(t, err)
	require.Equal(t, []string{"+", "-", "*", "/"}, infix)

	infix, err = f.FeasibleInfix(schema.KindString, schema.KindNumber)
	require.NoError(t, err)
	require.Empty(t, infix)

	prefix, err := f.FeasiblePrefix(schema.KindString, schema.KindString)
	require.NoError(t, err)
	require.Equal(t, []string{"CONCAT"}, prefix)
}

func TestParseMatrixVerdictForms(t *testing.T) {
	m, err := ParseMatrix([]byte(`{
		"FOO(:1)": {"number": "SUCCESS", "string": false},
		"(:1)#(:2)": {"number": {"number": true}}
	}`))
	require.NoError(t, err)

	ok, err := m.Unary("foo", schema.KindNumber)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Unary("FOO", schema.KindString)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = m.Binary("#", schema.KindNumber, schema.KindNumber)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMissingEntryIsLookupError(t *testing.T) {
	m, err := ParseMatrix([]byte(`{"FOO(:1)": {"number": "SUCCESS"}}`))
	require.NoError(t, err)

	_, err = m.Unary("FOO", schema.KindString)
	require.True(t, errs.IsFeasibilityLookup(err))

	_, err = m.Unary("BAR", schema.KindNumber)
	require.True(t, errs.IsFeasibilityLookup(err))

	_, err = m.Binary("FOO", schema.KindNumber, schema.KindNumber)
	require.True(t, errs.IsFeasibilityLookup(err))

	_, err = New(m, DefaultCatalog())
	require.True(t, errs.IsFeasibilityLookup(err))
}

func TestParseMatrixRejectsUnknownVerdict(t *testing.T) {
	_, err := ParseMatrix([]byte(`{"FOO(:1)": {"number": "MAYBE"}}`))
	require.True(t, errs.IsConfig(err))

	_, err = ParseMatrix([]byte(`{"FOO(:1)": {"tuple": "SUCCESS"}}`))
	require.True(t, errs.IsConfig(err))
}

func TestCatalogClasses(t *testing.T) {
	c := DefaultCatalog()
	require.True(t, c.IsAggregate("count"))
	require.True(t, c.IsUnary("abs"))
	require.True(t, c.IsInfix("+"))
	require.True(t, c.IsPrefix("Concat"))
	require.False(t, c.Known("NOPE"))
	require.True(t, c.Known(" to_varchar "))

	std := c.StandardPlaceholders()
	std[PlaceholderAggregate][0] = "changed"
	require.Equal(t, "COUNT", c.Aggregate[0])
}

func TestWriteTables(t *testing.T) {
	m, err := DefaultMatrix()
	require.NoError(t, err)
	var buf bytes.Buffer
	m.WriteTables(&buf)
	out := buf.String()
	require.Contains(t, out, "abs")
	require.Contains(t, out, "number,number")
}
