package parser

import (
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// SkipHeaders contains browser-specific headers that say nothing about the API.
var SkipHeaders = map[string]bool{
	"accept-encoding":           true,
	"accept-language":           true,
	"cache-control":             true,
	"pragma":                    true,
	"sec-ch-ua":                 true,
	"sec-ch-ua-mobile":          true,
	"sec-ch-ua-platform":        true,
	"sec-fetch-dest":            true,
	"sec-fetch-mode":            true,
	"sec-fetch-site":            true,
	"sec-gpc":                   true,
	"user-agent":                true,
	"upgrade-insecure-requests": true,
	"connection":                true,
	":method":                   true,
	":path":                     true,
	":scheme":                   true,
	":authority":                true,
	":status":                   true,
	"priority":                  true,
	"dnt":                       true,
	"te":                        true,
	"if-none-match":             true,
	"if-modified-since":         true,
}

// DefaultContentType is assumed when a request declares none.
const DefaultContentType = "application/json"

// FilterHeaders keeps the representative request headers: browser noise and
// any header for which drop returns true are removed. A repeated name keeps
// its first position and its last value.
func FilterHeaders(headers []har.Header, drop func(name string) bool) []model.Header {
	var out []model.Header
	index := make(map[string]int)

	for _, h := range headers {
		lower := strings.ToLower(h.Name)
		if SkipHeaders[lower] || (drop != nil && drop(lower)) {
			continue
		}
		if i, ok := index[h.Name]; ok {
			out[i].Value = h.Value
			continue
		}
		index[h.Name] = len(out)
		out = append(out, model.Header{Name: h.Name, Value: h.Value})
	}

	return out
}

// ContentType returns the Content-Type among filtered headers, or the default.
func ContentType(headers []model.Header) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			return h.Value
		}
	}
	return DefaultContentType
}
