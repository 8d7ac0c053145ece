// Package binding resolves ${path} placeholders against map/slice data trees.
package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate replaces ${path.to.value} in text with values from data.
// Placeholders that do not resolve are left in place.
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data)
	return out
}

// InterpolateStrict is Interpolate that reports the first unresolved path.
func InterpolateStrict(text string, data any) (string, error) {
	out, missing := interpolate(text, data)
	if missing != "" {
		return out, fmt.Errorf("binding: unresolved ${%s}", missing)
	}
	return out, nil
}

func interpolate(text string, data any) (string, string) {
	var (
		b       strings.Builder
		missing string
		last    int
	)
	for _, m := range exprPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		last = m[1]
		path := strings.TrimSpace(text[m[2]:m[3]])
		if val, ok := Lookup(data, path); ok && val != nil && path != "" {
			b.WriteString(Format(val))
			continue
		}
		if missing == "" {
			missing = path
		}
		b.WriteString(text[m[0]:m[1]])
	}
	b.WriteString(text[last:])
	return b.String(), missing
}

// Format renders a resolved value. Whole floats print without a fraction so
// JSON numbers such as 40 stay "40".
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// Lookup resolves a dotted path with optional [n] indexes, e.g. "items[0].name".
func Lookup(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if current, ok = st.apply(current); !ok {
			return nil, false
		}
	}
	return current, true
}

// Truthy reports whether v should enable a conditional section: nil, false,
// zero numbers, blank strings and empty collections are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return strings.TrimSpace(x) != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Items returns the elements of a list value.
func Items(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out, true
	case nil:
		return nil, true
	}
	return nil, false
}

// With returns data extended with name bound to value. The original map is
// not modified.
func With(data any, name string, value any) map[string]any {
	out := map[string]any{}
	if m, ok := data.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	out[name] = value
	return out
}

// step is one hop of a path: a map key, or a list index when key is empty.
type step struct {
	key   string
	index int
}

func (st step) apply(v any) (any, bool) {
	if st.key == "" {
		items, ok := Items(v)
		if !ok || st.index < 0 || st.index >= len(items) {
			return nil, false
		}
		return items[st.index], true
	}
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[st.key]
		return val, ok
	case map[string]string:
		val, ok := m[st.key]
		return val, ok
	}
	return nil, false
}

// splitPath turns "a.b[1][2].c" into its steps.
func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			continue
		}
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n})
		}
	}
	return steps, true
}
