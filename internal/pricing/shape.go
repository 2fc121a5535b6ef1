package pricing

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Price wraps an authored PriceShape so catalog records can decode either
// variant from YAML or JSON. A "setup" key selects Legacy; anything else is
// Canonical.
type Price struct {
	Shape PriceShape
}

// IsSet reports whether a price was authored at all.
func (p Price) IsSet() bool {
	return p.Shape != nil
}

// Normalize is NormalizeMoney over the wrapped shape.
func (p Price) Normalize() (Money, bool) {
	return NormalizeMoney(p.Shape)
}

func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: price must be a mapping", node.Line)
	}
	if hasYAMLKey(node, "setup") {
		var legacy Legacy
		if err := node.Decode(&legacy); err != nil {
			return err
		}
		p.Shape = legacy
		return nil
	}
	var canonical Canonical
	if err := node.Decode(&canonical); err != nil {
		return err
	}
	p.Shape = canonical
	return nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("price must be an object: %w", err)
	}
	if _, ok := keys["setup"]; ok {
		var legacy Legacy
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		p.Shape = legacy
		return nil
	}
	var canonical Canonical
	if err := json.Unmarshal(data, &canonical); err != nil {
		return err
	}
	p.Shape = canonical
	return nil
}

// MarshalJSON always emits the canonical shape.
func (p Price) MarshalJSON() ([]byte, error) {
	m, ok := p.Normalize()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

func hasYAMLKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
