package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrymomot/postbox/pkg/sanitizer"
)

// ParamType names the expected JSON type of a template parameter.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "int"
	ParamNumber ParamType = "number"
	ParamBool   ParamType = "bool"
	ParamList   ParamType = "list"
	ParamAny    ParamType = "any"
)

// Schema declares the parameters a template accepts.
// Declared parameters that are absent or null take their zero value;
// undeclared keys are dropped. A template without a schema receives the
// payload as is.
type Schema map[string]ParamType

func (s Schema) validate() error {
	for name, typ := range s {
		switch typ {
		case ParamString, ParamInt, ParamNumber, ParamBool, ParamList, ParamAny:
		default:
			return fmt.Errorf("%w: parameter %q has unknown type %q", ErrInvalidFrontmatter, name, typ)
		}
	}
	return nil
}

// Decode parses a JSON parameter payload and checks it against the schema.
// An empty payload or JSON null is treated as an empty object.
func (s Schema) Decode(raw json.RawMessage) (map[string]any, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	if len(s) == 0 {
		for name, v := range payload {
			payload[name] = normalize(v)
		}
		return payload, nil
	}

	values := make(map[string]any, len(s))
	for _, name := range slices.Sorted(maps.Keys(s)) {
		typ := s[name]
		v, ok := payload[name]
		if !ok || v == nil {
			values[name] = typ.zero()
			continue
		}
		cv, err := typ.coerce(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrTemplateParams, name, err)
		}
		values[name] = cv
	}
	return values, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParams, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after parameters object", ErrTemplateParams)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrTemplateParams, jsonKind(v))
	}
	return obj, nil
}

func (t ParamType) zero() any {
	switch t {
	case ParamString:
		return ""
	case ParamInt:
		return int64(0)
	case ParamNumber:
		return float64(0)
	case ParamBool:
		return false
	case ParamList:
		return []any{}
	default:
		return ""
	}
}

func (t ParamType) coerce(v any) (any, error) {
	switch t {
	case ParamString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case ParamInt:
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			return nil, fmt.Errorf("expected an integer, got %s", n)
		}
	case ParamNumber:
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("expected a number, got %s", n)
			}
			return f, nil
		}
	case ParamBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case ParamList:
		if l, ok := v.([]any); ok {
			return normalize(l), nil
		}
	case ParamAny:
		return normalize(v), nil
	}
	return nil, fmt.Errorf("expected %s, got %s", t, jsonKind(v))
}

// normalize converts json.Number values to int64 or float64.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// sanitizeValues returns a copy of values with every string made safe for
// interpolation into markdown.
func sanitizeValues(v any) any {
	switch x := v.(type) {
	case string:
		return sanitizer.Markdown(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = sanitizeValues(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = sanitizeValues(e)
		}
		return out
	default:
		return v
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
