// Package document parses an input file's bytes into the tagged-union
// value.Value model, preserving map key order (significant for `let`
// bindings and ordered process declarations).
package document

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"texest/internal/value"
)

// Parse decodes a single YAML document's bytes into a value.Value.
func Parse(filename string, data []byte) (value.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return value.Value{}, fmt.Errorf("%s: %s", filename, err)
	}
	if len(root.Content) == 0 {
		return value.MapOf(value.NewMap()), nil
	}
	return nodeToValue(root.Content[0])
}

func nodeToValue(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return nodeToValue(n.Content[0])

	case yaml.AliasNode:
		return nodeToValue(n.Alias)

	case yaml.ScalarNode:
		return scalarToValue(n)

	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.SeqOf(items), nil

	case yaml.MappingNode:
		m := value.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			valNode := n.Content[i+1]
			key, err := scalarToValue(keyNode)
			if err != nil {
				return value.Value{}, err
			}
			if key.Kind != value.KindString {
				return value.Value{}, fmt.Errorf("line %d: map keys must be strings", keyNode.Line)
			}
			v, err := nodeToValue(valNode)
			if err != nil {
				return value.Value{}, err
			}
			m.Set(key.String, v)
		}
		return value.MapOf(m), nil

	default:
		return value.Null(), nil
	}
}

func scalarToValue(n *yaml.Node) (value.Value, error) {
	switch n.Tag {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return value.Int(i), nil
		}
		if u, err := strconv.ParseUint(n.Value, 0, 64); err == nil {
			return value.Uint(u), nil
		}
		return value.Value{}, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	default:
		return value.Str(n.Value), nil
	}
}
