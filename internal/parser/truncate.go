package parser

import (
	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
)

// TruncatedKey and TruncatedValue form the marker that replaces objects
// nested deeper than the depth limit.
const (
	TruncatedKey   = "..."
	TruncatedValue = "truncated"
)

// Limits bounds the size of response examples.
type Limits struct {
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
	MaxKeys  int `json:"max_keys" yaml:"max_keys"`
	MaxItems int `json:"max_items" yaml:"max_items"`
}

// DefaultLimits returns the standard limits: depth 3, 10 keys, 2 items.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth: 3,
		MaxKeys:  10,
		MaxItems: 2,
	}
}

// Truncate bounds a decoded JSON value. Objects keep their first MaxKeys
// keys, arrays their first MaxItems elements, and an object reached with no
// depth left collapses to {"...": "truncated"}. Each object level consumes
// one unit of depth; array elements inherit the depth of their array.
func Truncate(v any, limits Limits) any {
	return truncate(v, limits, limits.MaxDepth)
}

func truncate(v any, limits Limits, depth int) any {
	switch val := v.(type) {
	case *jsonvalue.Object:
		if depth <= 0 {
			return TruncatedMarker()
		}
		out := jsonvalue.NewObject()
		for i, key := range val.Keys() {
			if i >= limits.MaxKeys {
				break
			}
			child, _ := val.Get(key)
			out.Set(key, truncate(child, limits, depth-1))
		}
		return out
	case []any:
		n := len(val)
		if n > limits.MaxItems {
			n = limits.MaxItems
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = truncate(val[i], limits, depth)
		}
		return out
	default:
		return v
	}
}

// TruncatedMarker returns a fresh {"...": "truncated"} object.
func TruncatedMarker() *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	obj.Set(TruncatedKey, TruncatedValue)
	return obj
}
