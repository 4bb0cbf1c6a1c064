// Package config provides the property bag, file loaders and XDG path helpers.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMissingKey is returned when a required property is absent.
	ErrMissingKey = errors.New("missing property")

	// ErrWrongType is returned when a property holds a value of an unexpected type.
	ErrWrongType = errors.New("wrong property type")
)

// Properties is a flat, dotted-key property bag.
type Properties map[string]any

// Flatten turns nested tables into dotted keys: {"CRD": {"title": "x"}} becomes {"CRD.title": "x"}.
func Flatten(raw map[string]any) Properties {
	out := Properties{}
	flattenInto(out, "", raw)
	return out
}

func flattenInto(out Properties, prefix string, raw map[string]any) {
	for key, value := range raw {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenInto(out, full, v)
		case Properties:
			flattenInto(out, full, v)
		default:
			out[full] = value
		}
	}
}

// Has reports whether key is set.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String fetches a string property.
func (p Properties) String(key string) (string, error) {
	value, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrWrongType, key, value)
	}
	return s, nil
}

// StringOr fetches a string property, returning def when the key is absent.
func (p Properties) StringOr(key, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.String(key)
}

// BoolOr fetches a boolean property, returning def when the key is absent.
// String values are parsed with strconv.ParseBool.
func (p Properties) BoolOr(key string, def bool) (bool, error) {
	value, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is %q, want bool", ErrWrongType, key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrWrongType, key, value)
	}
}

// Strings fetches an ordered list of strings. A single string is a one-element list.
func (p Properties) Strings(key string) ([]string, error) {
	value, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q[%d] is %T, want string", ErrWrongType, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is %T, want list of strings", ErrWrongType, key, value)
	}
}

// Export copies every property starting with prefix, stripping the prefix from the key.
func (p Properties) Export(prefix string) Properties {
	out := Properties{}
	for key, value := range p {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			continue
		}
		out[rest] = value
	}
	return out
}

// Keys returns the sorted keys.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
