// Package auth detects credential-carrying request headers and records them
// as masked authentication patterns.
package auth

import (
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// Masked examples. The observed credential never leaves this package.
const (
	MaskedBearer  = "Bearer <token>"
	MaskedAPIKey  = "<api_key>"
	MaskedCookie  = "<session_cookie>"
	CookieHeader  = "Cookie"
	bearerPrefix  = "bearer "
	cookieHeaderL = "cookie"
)

// HeaderSchemes maps lower-cased header names to the scheme they carry.
var HeaderSchemes = map[string]model.AuthScheme{
	"authorization":  model.SchemeBearer,
	"x-api-key":      model.SchemeAPIKey,
	"api-key":        model.SchemeAPIKey,
	"x-auth-token":   model.SchemeCustomHeader,
	"x-access-token": model.SchemeCustomHeader,
}

// SessionCookieMarkers flag a Cookie header as carrying a session.
var SessionCookieMarkers = []string{"session", "auth", "token", "jwt"}

// credentialHeaders are never kept as representative headers.
var credentialHeaders = map[string]bool{
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
}

// Detector finds authentication patterns in trace records.
type Detector struct {
	schemes map[string]model.AuthScheme
	markers []string
}

// NewDetector creates a detector using the default tables.
func NewDetector() *Detector {
	return &Detector{
		schemes: HeaderSchemes,
		markers: SessionCookieMarkers,
	}
}

// Detect returns the auth patterns carried by one record's request headers.
// Header patterns come first in header order, followed by at most one cookie
// pattern.
func (d *Detector) Detect(r *har.Record) []model.AuthPattern {
	var patterns []model.AuthPattern

	for _, h := range r.RequestHeaders {
		scheme, ok := d.schemes[strings.ToLower(h.Name)]
		if !ok {
			continue
		}
		patterns = append(patterns, model.AuthPattern{
			Scheme:     scheme,
			HeaderName: h.Name,
			Example:    Mask(h.Value),
			Location:   model.LocationHeader,
		})
	}

	for _, h := range r.RequestHeaders {
		if strings.ToLower(h.Name) != cookieHeaderL {
			continue
		}
		if d.isSessionCookie(h.Value) {
			patterns = append(patterns, model.AuthPattern{
				Scheme:     model.SchemeCookie,
				HeaderName: CookieHeader,
				Example:    MaskedCookie,
				Location:   model.LocationCookie,
			})
			break
		}
	}

	return patterns
}

func (d *Detector) isSessionCookie(value string) bool {
	v := strings.ToLower(value)
	for _, m := range d.markers {
		if strings.Contains(v, m) {
			return true
		}
	}
	return false
}

// Mask replaces a credential value with its placeholder.
func Mask(value string) string {
	if strings.HasPrefix(strings.ToLower(value), bearerPrefix) {
		return MaskedBearer
	}
	return MaskedAPIKey
}

// IsCredentialHeader reports whether a lower-cased header name carries
// credentials and must not be stored verbatim.
func IsCredentialHeader(name string) bool {
	if _, ok := HeaderSchemes[name]; ok {
		return true
	}
	return credentialHeaders[name]
}
