package a2ui

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned for malformed or unusable JSON Pointer paths.
var ErrInvalidPath = errors.New("a2ui: invalid data path")

// SetPointer sets value in data at a JSON Pointer path ("/user/name").
// Missing intermediate keys are created as objects; an existing non-object
// intermediate is an error. Replacing the root is not supported.
func SetPointer(data map[string]any, path string, value any) error {
	parts, err := splitPointer(path)
	if err != nil {
		return err
	}

	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: segment %q is not an object", ErrInvalidPath, part)
		}
		current = child
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// GetPointer resolves a JSON Pointer path against data.
func GetPointer(data map[string]any, path string) (any, bool) {
	parts, err := splitPointer(path)
	if err != nil {
		return nil, false
	}

	var current any = data
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func splitPointer(path string) ([]string, error) {
	if path == "" || path == "/" {
		return nil, fmt.Errorf("%w: cannot replace root object", ErrInvalidPath)
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, path)
	}

	parts := strings.Split(path[1:], "/")
	for i, p := range parts {
		// RFC 6901 escapes: ~1 is '/', ~0 is '~'.
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}
	return parts, nil
}

// CloneMap deep-copies a data model. Nested maps and slices are copied;
// scalar values are shared.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
