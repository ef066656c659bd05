package schema

import (
	"os"

	"jqgen/internal/errs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Description is the schema description shared with the document generator.
// Only forcedPaths drives query generation; the sizing fields are kept for
// the manifest.
type Description struct {
	ForcedPaths []Path `yaml:"forcedPaths" json:"forcedPaths"`
	NumFields   int    `yaml:"numFields,omitempty" json:"numFields,omitempty"`
	LenFields   int    `yaml:"lenFields,omitempty" json:"lenFields,omitempty"`
	NumLevels   int    `yaml:"numLevels,omitempty" json:"numLevels,omitempty"`
	NumSamples  int    `yaml:"numSamples,omitempty" json:"numSamples,omitempty"`
}

// LoadDescription reads a schema description from a JSON or YAML file.
func LoadDescription(path string) (Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Description{}, errors.Wrap(err, "read schema description")
	}
	desc, err := ParseDescription(data)
	if err != nil {
		return Description{}, errors.Wrapf(err, "schema description %s", path)
	}
	return desc, nil
}

// ParseDescription decodes and validates a schema description.
func ParseDescription(data []byte) (Description, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Description{}, errs.Configf("", "malformed schema description: %v", err)
	}
	for _, p := range desc.ForcedPaths {
		if len(p.Segments) == 0 {
			return Description{}, errs.Configf(p, "forced path without segments")
		}
		for _, seg := range p.Segments {
			if StripAnnotation(seg) == "" {
				return Description{}, errs.Configf(p, "forced path has an empty segment")
			}
		}
	}
	return desc, nil
}

// ProjectionPool returns every non-array forced path.
func (d Description) ProjectionPool() Pool {
	out := make(Pool, 0, len(d.ForcedPaths))
	for _, p := range d.ForcedPaths {
		if Classify(p) == KindArray {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// FilterPool returns the non-array forced paths that declare an operator.
func (d Description) FilterPool() Pool {
	out := make(Pool, 0, len(d.ForcedPaths))
	for _, p := range d.ForcedPaths {
		if !p.HasOperator() || Classify(p) == KindArray {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
