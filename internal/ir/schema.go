package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

// Schema is an insertion-ordered mapping from model name to Model.
//
// Schema is copy-on-write: With and Without return a new Schema and leave
// the receiver untouched, so a Schema held by a history snapshot stays valid.
// The zero value is an empty schema.
type Schema struct {
	names  []string
	models map[string]Model
}

// NamedModel pairs a model with its schema key.
type NamedModel struct {
	Name  string
	Model Model
}

// NewSchema builds a schema from entries in order.
// A repeated name overwrites the earlier value and keeps its position.
func NewSchema(entries ...NamedModel) Schema {
	var s Schema
	for _, e := range entries {
		s = s.With(e.Name, e.Model)
	}
	return s
}

// Len returns the number of models.
func (s Schema) Len() int {
	return len(s.names)
}

// Names returns model names in insertion order.
func (s Schema) Names() []string {
	return slices.Clone(s.names)
}

// Has reports whether a model named name exists.
func (s Schema) Has(name string) bool {
	_, ok := s.models[name]
	return ok
}

// Get returns a copy of the named model.
func (s Schema) Get(name string) (Model, bool) {
	m, ok := s.models[name]
	if !ok {
		return Model{}, false
	}
	return m.Clone(), true
}

// All iterates models in insertion order. Yielded models are copies.
func (s Schema) All() iter.Seq2[string, Model] {
	return func(yield func(string, Model) bool) {
		for _, name := range s.names {
			if !yield(name, s.models[name].Clone()) {
				return
			}
		}
	}
}

// With returns a schema where name maps to m.
// An existing name keeps its position; a new name is appended.
func (s Schema) With(name string, m Model) Schema {
	out := s.Clone()
	if out.models == nil {
		out.models = make(map[string]Model)
	}
	if _, exists := out.models[name]; !exists {
		out.names = append(out.names, name)
	}
	out.models[name] = m.Clone()
	return out
}

// Without returns a schema with name removed. Missing names are ignored.
func (s Schema) Without(name string) Schema {
	if !s.Has(name) {
		return s.Clone()
	}
	if len(s.names) == 1 {
		return Schema{}
	}
	out := Schema{
		names:  make([]string, 0, len(s.names)-1),
		models: make(map[string]Model, len(s.models)-1),
	}
	for _, n := range s.names {
		if n == name {
			continue
		}
		out.names = append(out.names, n)
		out.models[n] = s.models[n].Clone()
	}
	return out
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if len(s.names) == 0 {
		return Schema{}
	}
	out := Schema{
		names:  slices.Clone(s.names),
		models: make(map[string]Model, len(s.models)),
	}
	for name, m := range s.models {
		out.models[name] = m.Clone()
	}
	return out
}

// MarshalJSON encodes the schema as an object in insertion order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeNoEscape(name)
		if err != nil {
			return nil, fmt.Errorf("schema key %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := encodeNoEscape(s.models[name])
		if err != nil {
			return nil, fmt.Errorf("schema model %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, preserving key order.
// A duplicated key keeps its first position and its last value.
// Unknown keys inside a model are errors.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if tok == nil {
		*s = Schema{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: expected object, got %v", tok)
	}

	var out Schema
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schema: expected string key, got %v", keyTok)
		}
		var m Model
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("schema model %q: %w", name, err)
		}
		out = out.With(name, m)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	*s = out
	return nil
}

// MarshalYAML encodes the schema as a mapping in insertion order.
func (s Schema) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range s.names {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		val := &yaml.Node{}
		if err := val.Encode(s.models[name]); err != nil {
			return nil, fmt.Errorf("schema model %q: %w", name, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping, preserving key order.
// Unknown keys inside a model are errors.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*s = Schema{}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: line %d: expected mapping", value.Line)
	}

	var out Schema
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		m, err := decodeModelYAML(valNode)
		if err != nil {
			return fmt.Errorf("schema model %q (line %d): %w", keyNode.Value, valNode.Line, err)
		}
		out = out.With(keyNode.Value, m)
	}

	*s = out
	return nil
}

// decodeModelYAML decodes node strictly. yaml.Node.Decode does not carry
// the outer decoder's KnownFields setting, so the node is re-encoded and
// decoded with its own strict decoder.
func decodeModelYAML(node *yaml.Node) (Model, error) {
	data, err := yaml.Marshal(node)
	if err != nil {
		return Model{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Model
	if err := dec.Decode(&m); err != nil {
		return Model{}, err
	}
	return m, nil
}

// encodeNoEscape marshals v without HTML escaping and without the trailing newline.
func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
