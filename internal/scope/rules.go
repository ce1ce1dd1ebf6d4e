package scope

import (
	"strings"
)

// DefaultStaticExtensions contains file extensions of static assets
// (scripts, stylesheets, images, fonts, source maps).
var DefaultStaticExtensions = []string{
	".js", ".css",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".avif",
	".woff", ".woff2", ".ttf", ".eot",
	".map",
}

// DefaultStaticDirs contains path segments that hold static assets.
var DefaultStaticDirs = []string{
	"/_next/static",
	"/static/",
	"/assets/",
	"/public/",
}

// DefaultAPISegments contains path segments that indicate an API call.
var DefaultAPISegments = []string{
	"/api/",
	"/v1/",
	"/v2/",
}

// DefaultJSONMediaTypes contains media types treated as JSON. Structured
// syntax suffixes (+json) are matched separately.
var DefaultJSONMediaTypes = []string{
	"application/json",
}

// DefaultRules returns the built-in tables.
func DefaultRules() Rules {
	return NewRuleBuilder().Build()
}

// RuleBuilder helps build classification rules.
type RuleBuilder struct {
	rules Rules
}

// NewRuleBuilder creates a builder seeded with the default tables.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{
		rules: Rules{
			StaticExtensions: append([]string(nil), DefaultStaticExtensions...),
			StaticDirs:       append([]string(nil), DefaultStaticDirs...),
			APISegments:      append([]string(nil), DefaultAPISegments...),
			JSONMediaTypes:   append([]string(nil), DefaultJSONMediaTypes...),
		},
	}
}

// WithStaticExtensions adds static-asset extensions.
func (b *RuleBuilder) WithStaticExtensions(exts ...string) *RuleBuilder {
	b.rules.StaticExtensions = append(b.rules.StaticExtensions, lower(exts)...)
	return b
}

// WithStaticDirs adds static-asset directory segments.
func (b *RuleBuilder) WithStaticDirs(dirs ...string) *RuleBuilder {
	b.rules.StaticDirs = append(b.rules.StaticDirs, lower(dirs)...)
	return b
}

// WithAPISegments adds API-indicating path segments.
func (b *RuleBuilder) WithAPISegments(segments ...string) *RuleBuilder {
	b.rules.APISegments = append(b.rules.APISegments, lower(segments)...)
	return b
}

// Build returns the configured rules.
func (b *RuleBuilder) Build() Rules {
	return b.rules
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// IsJSONMediaType reports whether a Content-Type or Accept value declares JSON.
func (r Rules) IsJSONMediaType(value string) bool {
	value = strings.ToLower(value)
	for _, mt := range r.JSONMediaTypes {
		if strings.Contains(value, mt) {
			return true
		}
	}
	return strings.Contains(value, "+json")
}
