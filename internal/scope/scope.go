// Package scope decides which trace records are API calls worth modelling.
package scope

import (
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/har"
)

// Classifier is a pure predicate over trace records.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier for the given rules.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefaultClassifier creates a classifier with the built-in tables.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

// Rules returns the classifier's tables.
func (c *Classifier) Rules() Rules {
	return c.rules
}

// IsStatic checks whether a URL path points at a static asset.
func (c *Classifier) IsStatic(path string) bool {
	path = strings.ToLower(path)

	for _, ext := range c.rules.StaticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	for _, dir := range c.rules.StaticDirs {
		if strings.Contains(path, dir) {
			return true
		}
	}

	return false
}

// IsAPIPath checks whether a path contains an API-indicating segment.
func (c *Classifier) IsAPIPath(path string) bool {
	path = strings.ToLower(path)

	for _, seg := range c.rules.APISegments {
		if strings.Contains(path, seg) {
			return true
		}
	}
	return false
}

// IsAPICall checks the path segments, then the request Accept and
// Content-Type headers, then the response content type for JSON.
func (c *Classifier) IsAPICall(r *har.Record) bool {
	if c.IsAPIPath(r.Path()) {
		return true
	}

	if v, ok := r.RequestHeader("Accept"); ok && c.rules.IsJSONMediaType(v) {
		return true
	}
	if v, ok := r.RequestHeader("Content-Type"); ok && c.rules.IsJSONMediaType(v) {
		return true
	}

	return c.rules.IsJSONMediaType(r.ResponseContentType())
}

// Classify returns the reason a record is or is not relevant.
func (c *Classifier) Classify(r *har.Record) Reason {
	if r.ParsedURL() == nil || r.Host() == "" {
		return ReasonInvalidURL
	}
	if c.IsStatic(r.Path()) {
		return ReasonStatic
	}
	if !c.IsAPICall(r) {
		return ReasonNotAPI
	}
	return ReasonRelevant
}

// IsRelevant reports whether a record is a non-static API call.
func (c *Classifier) IsRelevant(r *har.Record) bool {
	return c.Classify(r) == ReasonRelevant
}
