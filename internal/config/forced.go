package config

import (
	"strings"

	"jqgen/internal/errs"

	"gopkg.in/yaml.v3"
)

// ForcedProjection is one pinned projection entry. The concrete type is
// decided when the config is loaded from which keys the entry carries.
type ForcedProjection interface {
	forcedProjection()
	String() string
}

// FixedPathProjection pins one or two paths and the function applied to them.
// Functions holds one fixed name or, when Enumerated, the candidate names.
// Plain marks a single path projected without a function.
type FixedPathProjection struct {
	Paths      [][]string
	Functions  []string
	Enumerated bool
	Plain      bool
}

// VariableFunctionProjection pins one or two paths and leaves the function open.
type VariableFunctionProjection struct {
	Paths [][]string
}

// VariablePathProjection pins the function and leaves the path(s) open.
type VariablePathProjection struct {
	Functions  []string
	Enumerated bool
}

func (FixedPathProjection) forcedProjection()        {}
func (VariableFunctionProjection) forcedProjection() {}
func (VariablePathProjection) forcedProjection()     {}

func (p FixedPathProjection) String() string {
	return "{path: " + renderPaths(p.Paths) + ", fct: " + renderFunctions(p.Functions, p.Enumerated, p.Plain) + "}"
}

func (p VariableFunctionProjection) String() string {
	return "{path: " + renderPaths(p.Paths) + "}"
}

func (p VariablePathProjection) String() string {
	return "{fct: " + renderFunctions(p.Functions, p.Enumerated, false) + "}"
}

// ForcedList decodes projection.forced entries into their variants.
type ForcedList []ForcedProjection

// UnmarshalYAML resolves every entry to a ForcedProjection variant.
func (l *ForcedList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errs.Configf(nodeText(node), "projection.forced must be a list")
	}
	out := make(ForcedList, 0, len(node.Content))
	for _, item := range node.Content {
		fp, err := decodeForced(item)
		if err != nil {
			return err
		}
		out = append(out, fp)
	}
	*l = out
	return nil
}

func decodeForced(node *yaml.Node) (ForcedProjection, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errs.Configf(nodeText(node), "forced projection must be a mapping")
	}
	var pathNode, fctNode *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "path":
			pathNode = node.Content[i+1]
		case "fct":
			fctNode = node.Content[i+1]
		}
	}
	switch {
	case pathNode != nil && fctNode != nil:
		paths, err := decodePaths(pathNode)
		if err != nil {
			return nil, err
		}
		if isNull(fctNode) {
			if len(paths) != 1 {
				return nil, errs.Configf(nodeText(node), "a projection without function takes exactly one path")
			}
			return FixedPathProjection{Paths: paths, Plain: true}, nil
		}
		fns, enumerated, err := decodeFunctions(fctNode)
		if err != nil {
			return nil, err
		}
		return FixedPathProjection{Paths: paths, Functions: fns, Enumerated: enumerated}, nil
	case pathNode != nil:
		paths, err := decodePaths(pathNode)
		if err != nil {
			return nil, err
		}
		return VariableFunctionProjection{Paths: paths}, nil
	case fctNode != nil:
		if isNull(fctNode) {
			return nil, errs.Configf(nodeText(node), "fct must name a function when no path is given")
		}
		fns, enumerated, err := decodeFunctions(fctNode)
		if err != nil {
			return nil, err
		}
		return VariablePathProjection{Functions: fns, Enumerated: enumerated}, nil
	default:
		return nil, errs.Configf(nodeText(node), `neither "fct" nor "path" in forced projection`)
	}
}

// decodePaths accepts one segment list or a list of one or two segment lists.
func decodePaths(node *yaml.Node) ([][]string, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil, errs.Configf(nodeText(node), "path must be a non-empty list")
	}
	if node.Content[0].Kind == yaml.ScalarNode {
		var single []string
		if err := node.Decode(&single); err != nil {
			return nil, errs.Configf(nodeText(node), "path must be a list of segments")
		}
		return [][]string{single}, nil
	}
	var multi [][]string
	if err := node.Decode(&multi); err != nil {
		return nil, errs.Configf(nodeText(node), "path must be a list of segment lists")
	}
	if len(multi) > 2 {
		return nil, errs.Configf(nodeText(node), "forced projection has more than 2 paths")
	}
	for _, p := range multi {
		if len(p) == 0 {
			return nil, errs.Configf(nodeText(node), "path must not be empty")
		}
	}
	return multi, nil
}

func decodeFunctions(node *yaml.Node) ([]string, bool, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		name := normalizeFunction(node.Value)
		if name == "" {
			return nil, false, errs.Configf(nodeText(node), "fct must not be empty")
		}
		return []string{name}, false, nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return nil, false, errs.Configf(nodeText(node), "fct list must hold function names")
		}
		if len(names) == 0 {
			return nil, false, errs.Configf(nodeText(node), "fct list must not be empty")
		}
		for i := range names {
			names[i] = normalizeFunction(names[i])
		}
		return names, true, nil
	default:
		return nil, false, errs.Configf(nodeText(node), "fct must be a name or a list of names")
	}
}

func functionsOf(fp ForcedProjection) []string {
	switch v := fp.(type) {
	case FixedPathProjection:
		return v.Functions
	case VariablePathProjection:
		return v.Functions
	default:
		return nil
	}
}

func normalizeFunction(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func renderPaths(paths [][]string) string {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, "["+strings.Join(p, ", ")+"]")
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func renderFunctions(fns []string, enumerated, plain bool) string {
	switch {
	case plain:
		return "null"
	case enumerated:
		return "[" + strings.Join(fns, ", ") + "]"
	case len(fns) == 1:
		return fns[0]
	default:
		return ""
	}
}
