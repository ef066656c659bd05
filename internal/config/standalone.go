package config

import (
	"encoding/json"
	"os"
	"strconv"

	"jqgen/internal/errs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Combinations is either a positive count or "all" for the full product.
type Combinations struct {
	All bool
	N   int
}

// AllCombinations requests the full cartesian product.
var AllCombinations = Combinations{All: true}

// Count returns a Combinations limited to n.
func Count(n int) Combinations {
	return Combinations{N: n}
}

// Valid reports whether c is "all" or at least 1.
func (c Combinations) Valid() bool {
	return c.All || c.N >= 1
}

func (c Combinations) String() string {
	if c.All {
		return "all"
	}
	return strconv.Itoa(c.N)
}

// UnmarshalYAML accepts an integer >= 1 or the literal "all".
func (c *Combinations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errs.Configf(nodeText(node), "combinations must be an integer >= 1 or \"all\"")
	}
	if node.ShortTag() == "!!str" && node.Value == "all" {
		*c = AllCombinations
		return nil
	}
	if node.ShortTag() != "!!int" {
		return errs.Configf(node.Value, "combinations must be an integer >= 1 or \"all\"")
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil || n < 1 {
		return errs.Configf(node.Value, "combinations must be an integer >= 1 or \"all\"")
	}
	*c = Count(n)
	return nil
}

// MarshalJSON writes "all" or the count.
func (c Combinations) MarshalJSON() ([]byte, error) {
	if c.All {
		return json.Marshal("all")
	}
	return json.Marshal(c.N)
}

// MarshalYAML writes "all" or the count.
func (c Combinations) MarshalYAML() (any, error) {
	if c.All {
		return "all", nil
	}
	return c.N, nil
}

// StandaloneConfig is a template with its placeholder candidates, ready for expansion.
type StandaloneConfig struct {
	Template     string              `json:"template" yaml:"template"`
	Combinations Combinations        `json:"combinations" yaml:"combinations"`
	Placeholders map[string][]string `json:"placeholders" yaml:"placeholders"`
}

// LoadStandalone reads a standalone config from a JSON or YAML file.
func LoadStandalone(path string) (StandaloneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StandaloneConfig{}, errors.Wrap(err, "read standalone config")
	}
	cfg, err := ParseStandalone(data)
	if err != nil {
		return StandaloneConfig{}, errors.Wrapf(err, "standalone config %s", path)
	}
	return cfg, nil
}

// ParseStandalone decodes a standalone config. template and combinations are required.
func ParseStandalone(data []byte) (StandaloneConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return StandaloneConfig{}, errs.Configf("", "malformed standalone config: %v", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	for _, key := range []string{"template", "combinations"} {
		if !hasKey(doc, key) {
			return StandaloneConfig{}, errs.Configf(key, "key is missing in standalone config")
		}
	}
	var cfg StandaloneConfig
	if err := doc.Decode(&cfg); err != nil {
		if errs.IsConfig(err) {
			return StandaloneConfig{}, err
		}
		return StandaloneConfig{}, errs.Configf("", "invalid standalone config: %v", err)
	}
	return cfg, nil
}

// WithDefaults returns the placeholders merged over defaults; user entries win.
func (s StandaloneConfig) WithDefaults(defaults map[string][]string) map[string][]string {
	out := make(map[string][]string, len(defaults)+len(s.Placeholders))
	for name, values := range defaults {
		out[name] = append([]string(nil), values...)
	}
	for name, values := range s.Placeholders {
		out[name] = append([]string(nil), values...)
	}
	return out
}
