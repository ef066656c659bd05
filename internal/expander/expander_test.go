package expander

import (
	"math/rand"
	"testing"

	"jqgen/internal/config"
	"jqgen/internal/errs"

	"github.com/stretchr/testify/require"
)

func TestUniquifyNumbersOccurrences(t *testing.T) {
	pool := map[string][]string{"X": {"a", "b"}}
	u, err := Uniquify("{{X}}+{{X}}-{{X}}", pool)
	require.NoError(t, err)
	require.Equal(t, "{{X_0}}+{{X_1}}-{{X_2}}", u.Template)
	require.Equal(t, []string{"X_0", "X_1", "X_2"}, u.Names)
	require.Equal(t, []string{"X", "X", "X"}, u.Originals)
}

func TestUniquifyMatchesWholeMarkers(t *testing.T) {
	pool := map[string][]string{"p1": {"A"}, "p10": {"B"}}
	u, err := Uniquify("SELECT {{p10}}, {{p1}}, {{p10}};", pool)
	require.NoError(t, err)
	require.Equal(t, "SELECT {{p10_0}}, {{p1_0}}, {{p10_1}};", u.Template)
	require.Equal(t, []string{"p10", "p1", "p10"}, u.Originals)

	sql, err := Render(u, []string{"x", "y", "z"})
	require.NoError(t, err)
	require.Equal(t, "SELECT x, y, z;", sql)
}

func TestUniquifyRejectsUnknownMarker(t *testing.T) {
	_, err := Uniquify("SELECT {{nope}}(a);", map[string][]string{"p0": {"ABS"}})
	require.Error(t, err)
	require.True(t, errs.IsConfig(err))
}

func TestCombinationsAllIsFullProduct(t *testing.T) {
	pool := map[string][]string{"A": {"1", "2", "3"}, "B": {"x", "y"}}
	u, err := Uniquify("{{A}}{{B}}{{A}}", pool)
	require.NoError(t, err)
	combos, err := Combinations(u, pool, config.AllCombinations, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, combos, 18)
	require.Equal(t, []string{"1", "x", "1"}, combos[0])
	require.Equal(t, []string{"1", "x", "2"}, combos[1])
	require.Equal(t, []string{"3", "y", "3"}, combos[17])

	seen := map[string]bool{}
	for _, c := range combos {
		key := c[0] + c[1] + c[2]
		require.False(t, seen[key])
		seen[key] = true
	}
}

func TestCombinationsSampleBound(t *testing.T) {
	pool := map[string][]string{"A": {"1", "2", "3", "4"}, "B": {"x", "y", "z"}}
	u, err := Uniquify("{{A}}{{B}}", pool)
	require.NoError(t, err)
	all, err := Combinations(u, pool, config.AllCombinations, nil)
	require.NoError(t, err)

	for seed := int64(1); seed <= 50; seed++ {
		combos, err := Combinations(u, pool, config.Count(5), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Len(t, combos, 5)
		seen := map[string]bool{}
		for _, c := range combos {
			require.Contains(t, all, c)
			require.False(t, seen[c[0]+c[1]])
			seen[c[0]+c[1]] = true
		}
	}

	combos, err := Combinations(u, pool, config.Count(100), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, all, combos)
}

func TestCombinationsEdgeCases(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	u, err := Uniquify("SELECT 1;", nil)
	require.NoError(t, err)
	combos, err := Combinations(u, nil, config.Count(3), r)
	require.NoError(t, err)
	require.Equal(t, [][]string{{}}, combos)

	pool := map[string][]string{"A": {}}
	u, err = Uniquify("{{A}}", pool)
	require.NoError(t, err)
	combos, err = Combinations(u, pool, config.AllCombinations, r)
	require.NoError(t, err)
	require.Empty(t, combos)

	_, err = Combinations(u, pool, config.Count(0), r)
	require.True(t, errs.IsConfig(err))
}

func TestExpandSingleUnaryTemplate(t *testing.T) {
	sc := config.StandaloneConfig{
		Template:     `SELECT {{p0}}("coll"."a") FROM "coll";`,
		Combinations: config.AllCombinations,
		Placeholders: map[string][]string{"p0": {"ABS", "ROUND"}},
	}
	out, err := Expand(sc, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, []string{
		`SELECT ABS("coll"."a") FROM "coll";`,
		`SELECT ROUND("coll"."a") FROM "coll";`,
	}, out)
}

func TestExpandSampleIsDeterministic(t *testing.T) {
	sc := config.StandaloneConfig{
		Template:     "SELECT {{F}}(x), {{F}}(y) FROM t;",
		Combinations: config.Count(4),
		Placeholders: map[string][]string{"F": {"ABS", "LN", "SIN", "COS"}},
	}
	first, err := Expand(sc, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	second, err := Expand(sc, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.Equal(t, first, second)
}
