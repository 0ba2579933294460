package catalog

import "strings"

// GetPath reads a dot-separated key from nested parameter maps.
func GetPath(params map[string]any, path string) (any, bool) {
	cur := any(params)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath writes a dot-separated key, creating intermediate maps. A
// non-map value in the way is replaced.
func SetPath(params map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	m := params
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}

// MissingRequired returns the required keys of e that are absent, nil or an
// empty string in params.
func (e Entry) MissingRequired(params map[string]any) []string {
	var out []string
	for _, key := range e.Required {
		v, ok := GetPath(params, key)
		if s, isStr := v.(string); !ok || v == nil || (isStr && s == "") {
			out = append(out, key)
		}
	}
	return out
}

// Placeholder is the value used for a required parameter the draft did not
// supply: an expression reading the same-named field of the incoming item.
func Placeholder(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	return "={{ $json." + key + " }}"
}

// SwitchOutputs returns the number of outputs a switch node declares through
// its rules, or 0 when the parameters declare none.
func SwitchOutputs(params map[string]any) int {
	if v, ok := GetPath(params, "rules.values"); ok {
		if list, ok := v.([]any); ok {
			return len(list)
		}
	}
	if v, ok := GetPath(params, "numberOutputs"); ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return 0
}
