package parser

import (
	"net/url"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// SkipQueryParams contains framework query parameters that are never
// modelled. Names starting with '_' are skipped as well.
var SkipQueryParams = map[string]bool{
	"rsc":      true,
	"callback": true,
	"jsonp":    true,
}

// IsSkippedQueryParam reports whether a query parameter is framework noise.
func IsSkippedQueryParam(name string) bool {
	return strings.HasPrefix(name, "_") || SkipQueryParams[name]
}

// ExtractQueryParams parses a raw query string into optional query
// parameters in order of first appearance. The first non-empty value of a
// name is its example; names whose values are all empty are dropped.
func ExtractQueryParams(rawQuery string) []model.Parameter {
	var params []model.Parameter
	seen := make(map[string]bool)

	for _, pair := range splitQuery(rawQuery) {
		if seen[pair.name] || IsSkippedQueryParam(pair.name) {
			continue
		}
		seen[pair.name] = true

		params = append(params, model.Parameter{
			Name:        pair.name,
			Class:       model.QueryParam,
			Example:     pair.value,
			Required:    false,
			Description: "Query parameter: " + pair.name,
		})
	}

	return params
}

type queryPair struct {
	name  string
	value string
}

// splitQuery decodes name=value pairs in order, keeping only pairs with a
// non-empty name and value.
func splitQuery(rawQuery string) []queryPair {
	var pairs []queryPair

	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		name = unescape(name)
		value = unescape(value)
		if name == "" || value == "" {
			continue
		}
		pairs = append(pairs, queryPair{name: name, value: value})
	}

	return pairs
}

// unescape decodes a query component, leaving it untouched if malformed.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
