package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MissingFieldError is returned when a path through the state tree does not
// lead to a value of the requested type.
type MissingFieldError struct {
	Path   string
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing field %s", e.Path)
	}
	return fmt.Sprintf("field %s: %s", e.Path, e.Reason)
}

// Node is a position in a decoded JSON tree. Navigating past a missing key
// or index yields a missing Node, the first miss is remembered so that the
// error names the exact path that broke.
type Node struct {
	value   any
	path    string
	missing bool
}

// NewNode wraps a value decoded with UseNumber.
func NewNode(value any) Node {
	return Node{value: value}
}

// Missing returns a missing node at path.
func Missing(path string) Node {
	return Node{path: path, missing: true}
}

// DecodeNode decodes a single JSON value, numbers are kept as json.Number.
func DecodeNode(data []byte) (Node, error) {
	var value any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	err := decoder.Decode(&value)
	if err != nil {
		return Node{}, err
	}
	return NewNode(value), nil
}

func (n Node) child(step string) string {
	if n.path == "" {
		return step
	}
	return n.path + "." + step
}

func (n Node) Get(key string) Node {
	if n.missing {
		return n
	}
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{path: n.child(key), missing: true}
	}
	v, ok := obj[key]
	if !ok {
		return Node{path: n.child(key), missing: true}
	}
	return Node{value: v, path: n.child(key)}
}

func (n Node) At(i int) Node {
	if n.missing {
		return n
	}
	path := fmt.Sprintf("%s[%d]", n.path, i)
	list, ok := n.value.([]any)
	if !ok || i < 0 || i >= len(list) {
		return Node{path: path, missing: true}
	}
	return Node{value: list[i], path: path}
}

// Lookup walks a path of string keys and int indices.
func (n Node) Lookup(steps ...any) Node {
	current := n
	for _, step := range steps {
		switch s := step.(type) {
		case string:
			current = current.Get(s)
		case int:
			current = current.At(s)
		default:
			panic(fmt.Sprintf("invalid lookup step %T", step))
		}
	}
	return current
}

func (n Node) Exists() bool {
	return !n.missing
}

func (n Node) Path() string {
	return n.path
}

// Value returns the raw decoded value, nil when missing.
func (n Node) Value() any {
	return n.value
}

// Err is nil for present nodes.
func (n Node) Err() error {
	if !n.missing {
		return nil
	}
	return &MissingFieldError{Path: n.path}
}

func (n Node) typeErr(expected string) error {
	return &MissingFieldError{
		Path:   n.path,
		Reason: fmt.Sprintf("expected %s, got %T", expected, n.value),
	}
}

// Str accepts strings and numbers, numbers are returned in their JSON
// form.
func (n Node) Str() (string, error) {
	if n.missing {
		return "", n.Err()
	}
	switch v := n.value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", n.typeErr("string")
}

func (n Node) StrOr(fallback string) string {
	s, err := n.Str()
	if err != nil {
		return fallback
	}
	return s
}

func (n Node) Bool() (bool, error) {
	if n.missing {
		return false, n.Err()
	}
	v, ok := n.value.(bool)
	if !ok {
		return false, n.typeErr("bool")
	}
	return v, nil
}

func (n Node) BoolOr(fallback bool) bool {
	v, err := n.Bool()
	if err != nil {
		return fallback
	}
	return v
}

func (n Node) Int() (int64, error) {
	if n.missing {
		return 0, n.Err()
	}
	switch v := n.value.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, n.typeErr("integer")
		}
		return i, nil
	case float64:
		return int64(v), nil
	}
	return 0, n.typeErr("integer")
}

func (n Node) List() ([]Node, error) {
	if n.missing {
		return nil, n.Err()
	}
	list, ok := n.value.([]any)
	if !ok {
		return nil, n.typeErr("list")
	}
	out := make([]Node, len(list))
	for i, v := range list {
		out[i] = Node{value: v, path: fmt.Sprintf("%s[%d]", n.path, i)}
	}
	return out, nil
}

// ListOr returns nil when the node is missing or not a list.
func (n Node) ListOr() []Node {
	out, _ := n.List()
	return out
}

// Keys returns the keys of an object node in no particular order.
func (n Node) Keys() []string {
	obj, ok := n.value.(map[string]any)
	if !ok || n.missing {
		return nil
	}
	out := make([]string, 0, len(obj))
	for k := range obj {
		out = append(out, k)
	}
	return out
}

// Has reports whether an object node contains key.
func (n Node) Has(key string) bool {
	return n.Get(key).Exists()
}

// Decode re-encodes the node and decodes it into out.
func (n Node) Decode(out any) error {
	if n.missing {
		return n.Err()
	}
	data, err := json.Marshal(n.value)
	if err != nil {
		return err
	}
	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", n.path, err)
	}
	return nil
}
