// Package redact scrubs credentials out of example values before they are
// stored in the service model. Matching uses RE2 regexps, so it runs in
// linear time on arbitrary payloads.
package redact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
)

// SecretPlaceholder replaces the value of a secret-named key.
const SecretPlaceholder = "<redacted>"

// Pattern is a user-supplied redaction rule.
type Pattern struct {
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

type compiledPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// builtinPatterns are always active.
var builtinPatterns = []struct {
	name    string
	pattern string
}{
	{
		name:    "private-key",
		pattern: `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`,
	},
	{
		name:    "jwt",
		pattern: `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+`,
	},
	{
		name:    "bearer-token",
		pattern: `(?i)bearer [A-Za-z0-9\-._~+/]+=*`,
	},
	{
		name:    "basic-auth",
		pattern: `(?i)basic [A-Za-z0-9+/]{8,}=*`,
	},
	{
		name:    "aws-key",
		pattern: `AKIA[0-9A-Z]{16}`,
	},
	{
		name:    "github-pat",
		pattern: `(ghp_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9_]{36,})`,
	},
	{
		name:    "api-key",
		pattern: `(?i)(api[_-]?key|apikey|secret[_-]?key)\s*[:=]\s*[^\s&"']+`,
	},
}

// secretKeyFragments mark object keys and query parameter names whose
// values are credentials. Keys are lower-cased and '-' becomes '_' first.
var secretKeyFragments = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"credential",
	"private_key",
	"session_id",
}

// Engine applies compiled patterns to strings and JSON values.
type Engine struct {
	patterns []compiledPattern
}

// New creates an engine with the built-in patterns plus any custom ones.
func New(custom ...Pattern) (*Engine, error) {
	e := &Engine{}

	for _, bp := range builtinPatterns {
		e.patterns = append(e.patterns, compiledPattern{
			name:        bp.name,
			regex:       regexp.MustCompile(bp.pattern),
			replacement: "[REDACTED:" + bp.name + "]",
		})
	}

	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("redaction pattern %q: %w", p.Name, err)
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "[REDACTED:" + p.Name + "]"
		}
		e.patterns = append(e.patterns, compiledPattern{
			name:        p.Name,
			regex:       re,
			replacement: replacement,
		})
	}

	return e, nil
}

// Redact applies all patterns to a string and reports how many matched.
func (e *Engine) Redact(input string) (string, int) {
	if input == "" {
		return "", 0
	}

	result := input
	hits := 0
	for _, p := range e.patterns {
		n := len(p.regex.FindAllStringIndex(result, -1))
		if n == 0 {
			continue
		}
		hits += n
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result, hits
}

// IsSecretKey reports whether a key or parameter name denotes a credential.
func IsSecretKey(key string) bool {
	k := strings.ReplaceAll(strings.ToLower(key), "-", "_")
	for _, frag := range secretKeyFragments {
		if strings.Contains(k, frag) {
			return true
		}
	}
	return false
}

// Value returns a redacted copy of a decoded JSON value. String values of
// secret-named keys become <redacted>; every other string is run through the
// patterns. The input is not modified.
func (e *Engine) Value(v any) (any, int) {
	switch val := v.(type) {
	case *jsonvalue.Object:
		out := jsonvalue.NewObject()
		total := 0
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			if s, ok := child.(string); ok && s != "" && IsSecretKey(key) {
				out.Set(key, SecretPlaceholder)
				total++
				continue
			}
			redacted, n := e.Value(child)
			out.Set(key, redacted)
			total += n
		}
		return out, total
	case []any:
		out := make([]any, len(val))
		total := 0
		for i, item := range val {
			var n int
			out[i], n = e.Value(item)
			total += n
		}
		return out, total
	case string:
		s, n := e.Redact(val)
		return s, n
	default:
		return v, 0
	}
}

// Param redacts a query or path parameter example given its name.
func (e *Engine) Param(name string, example any) (any, int) {
	s, ok := example.(string)
	if !ok || s == "" {
		return example, 0
	}
	if IsSecretKey(name) {
		return SecretPlaceholder, 1
	}
	return e.Redact(s)
}
