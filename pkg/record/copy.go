package record

// CopyMap returns a deep copy of m. A nil map copies to nil.
func CopyMap[M ~map[string]any](m M) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepCopy(v)
	}
	return out
}

// DeepCopy copies the map and list containers of a decoded wire value.
// Scalars are returned as is.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = DeepCopy(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []int:
		out := make([]int, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
