package generator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
)

// pythonKeywords cannot be used as identifiers in generated code.
var pythonKeywords = map[string]bool{
	"false": true, "none": true, "true": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// pyString renders s as a double-quoted Python string literal. Go escape
// sequences produced by strconv.Quote are all valid in Python.
func pyString(s string) string {
	return strconv.Quote(s)
}

// pyLiteral renders a decoded JSON value as a Python expression.
func pyLiteral(v any) string {
	var b strings.Builder
	writePy(&b, v)
	return b.String()
}

func writePy(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if val {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(pyString(val))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(pyFloat(val))
	case *jsonvalue.Object:
		b.WriteByte('{')
		for i, key := range val.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			child, _ := val.Get(key)
			b.WriteString(pyString(key))
			b.WriteString(": ")
			writePy(b, child)
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			writePy(b, item)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := jsonvalue.NewObject()
		for _, k := range keys {
			obj.Set(k, val[k])
		}
		writePy(b, obj)
	default:
		b.WriteString("None")
	}
}

// pyFloat keeps a decimal point so the value stays a Python float.
func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// pyDoc makes text safe inside a triple-quoted docstring.
func pyDoc(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

// handlerName returns the Python function name of a tool handler.
func handlerName(toolName string) string {
	return "handle_" + pyIdent(toolName)
}

// pyIdent converts a name into a safe lower-case Python identifier.
func pyIdent(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" || (id[0] >= '0' && id[0] <= '9') {
		id = "_" + id
	}
	if pythonKeywords[id] {
		id += "_"
	}
	return id
}
