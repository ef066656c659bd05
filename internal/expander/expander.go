// Package expander turns a standalone template into concrete SQL statements.
package expander

import (
	"math"
	"math/rand"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"jqgen/internal/config"
	"jqgen/internal/errs"
)

var markerPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Unique is a template whose placeholder occurrences each carry their own name.
type Unique struct {
	// Template has every occurrence of X rewritten to {{X_<n>}}.
	Template string
	// Names lists the rewritten names in template order.
	Names []string
	// Originals holds the pool key of each entry in Names.
	Originals []string

	// literals has len(Names)+1 entries: the text around each marker.
	literals []string
}

// Uniquify gives the n-th occurrence of {{X}} the name X_<n-1>. Occurrences are
// matched as whole markers, so p1 never matches inside p10. Markers that name no
// entry of pool are rejected.
func Uniquify(template string, pool map[string][]string) (Unique, error) {
	matches := markerPattern.FindAllStringSubmatchIndex(template, -1)
	u := Unique{
		Names:     make([]string, 0, len(matches)),
		Originals: make([]string, 0, len(matches)),
		literals:  make([]string, 0, len(matches)+1),
	}
	counts := make(map[string]int, len(pool))
	var out strings.Builder
	last := 0
	for _, m := range matches {
		name := template[m[2]:m[3]]
		if _, ok := pool[name]; !ok {
			return Unique{}, errs.Configf(template[m[0]:m[1]], "placeholder has no candidates")
		}
		unique := name + "_" + strconv.Itoa(counts[name])
		counts[name]++

		u.literals = append(u.literals, template[last:m[0]])
		out.WriteString(template[last:m[0]])
		out.WriteString("{{" + unique + "}}")
		u.Names = append(u.Names, unique)
		u.Originals = append(u.Originals, name)
		last = m[1]
	}
	u.literals = append(u.literals, template[last:])
	out.WriteString(template[last:])
	u.Template = out.String()
	return u, nil
}

// Size returns the number of combinations of u over pool, saturating at math.MaxInt64.
func (u Unique) Size(pool map[string][]string) int64 {
	size := int64(1)
	for _, name := range u.Originals {
		n := int64(len(pool[name]))
		if n == 0 {
			return 0
		}
		if size > math.MaxInt64/n {
			return math.MaxInt64
		}
		size *= n
	}
	return size
}

// Combinations picks the candidate values of each unique placeholder. "all" walks the
// full product with the last placeholder varying fastest; a count draws min(N, size)
// distinct product indices and returns them in product order.
func Combinations(u Unique, pool map[string][]string, mode config.Combinations, r *rand.Rand) ([][]string, error) {
	if !mode.Valid() {
		return nil, errs.Configf(mode.String(), "combinations must be an integer >= 1 or \"all\"")
	}
	size := u.Size(pool)
	if size == 0 {
		return nil, nil
	}
	if mode.All {
		return odometer(u, pool, size)
	}
	n := int64(mode.N)
	if n >= size {
		return odometer(u, pool, size)
	}
	idx := sampleIndexes(r, size, n)
	out := make([][]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, decode(u, pool, i))
	}
	return out, nil
}

func odometer(u Unique, pool map[string][]string, size int64) ([][]string, error) {
	if size > math.MaxInt32 {
		return nil, errs.Configf(u.Template, "full product of %d combinations is too large", size)
	}
	out := make([][]string, 0, size)
	digits := make([]int, len(u.Originals))
	for {
		combo := make([]string, len(digits))
		for i, d := range digits {
			combo[i] = pool[u.Originals[i]][d]
		}
		out = append(out, combo)

		i := len(digits) - 1
		for ; i >= 0; i-- {
			digits[i]++
			if digits[i] < len(pool[u.Originals[i]]) {
				break
			}
			digits[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// sampleIndexes draws n distinct values from [0, size) with Floyd's algorithm.
func sampleIndexes(r *rand.Rand, size, n int64) []int64 {
	seen := make(map[int64]struct{}, n)
	out := make([]int64, 0, n)
	for j := size - n; j < size; j++ {
		t := r.Int63n(j + 1)
		if _, ok := seen[t]; ok {
			t = j
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// decode maps a product index to its values, last placeholder least significant.
func decode(u Unique, pool map[string][]string, idx int64) []string {
	combo := make([]string, len(u.Originals))
	for i := len(u.Originals) - 1; i >= 0; i-- {
		values := pool[u.Originals[i]]
		n := int64(len(values))
		combo[i] = values[idx%n]
		idx /= n
	}
	return combo
}

// Render substitutes one combination into the template.
func Render(u Unique, combo []string) (string, error) {
	if len(combo) != len(u.Names) {
		return "", errs.Configf(u.Template, "expected %d values, got %d", len(u.Names), len(combo))
	}
	var sb strings.Builder
	for i, value := range combo {
		sb.WriteString(u.literals[i])
		sb.WriteString(value)
	}
	sb.WriteString(u.literals[len(u.literals)-1])
	return sb.String(), nil
}

// Expand renders every selected combination of a standalone config.
func Expand(sc config.StandaloneConfig, r *rand.Rand) ([]string, error) {
	u, err := Uniquify(sc.Template, sc.Placeholders)
	if err != nil {
		return nil, err
	}
	combos, err := Combinations(u, sc.Placeholders, sc.Combinations, r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(combos))
	for _, combo := range combos {
		sql, err := Render(u, combo)
		if err != nil {
			return nil, err
		}
		out = append(out, sql)
	}
	return out, nil
}
