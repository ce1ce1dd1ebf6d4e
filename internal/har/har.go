// Package har loads HTTP Archive (HAR) traces and exposes their entries as
// flat request/response records.
package har

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Load reads a HAR file. Gzip-compressed traces (.har.gz) are detected by
// their magic bytes and decompressed transparently.
func Load(path string) (*HAR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputError(path, err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		data, err = gunzip(data)
		if err != nil {
			return nil, errors.NewInputError(path, err)
		}
	}

	h, err := Parse(data)
	if err != nil {
		return nil, errors.NewParseError(path, err)
	}
	return h, nil
}

// Parse decodes HAR JSON.
func Parse(data []byte) (*HAR, error) {
	var h HAR
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func gunzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}

// Record is one captured exchange, flattened for classification.
type Record struct {
	Index           int
	Method          string
	URL             string
	RequestHeaders  []Header
	PostData        *PostData
	Status          int
	ResponseHeaders []Header
	ResponseMime    string
	ResponseText    string

	parsed *url.URL
}

// Records returns one Record per entry, in archive order.
func (h *HAR) Records() []Record {
	records := make([]Record, 0, len(h.Log.Entries))
	for i, e := range h.Log.Entries {
		records = append(records, NewRecord(i, e))
	}
	return records
}

// NewRecord flattens an entry. A missing method defaults to GET and
// base64-encoded response content is decoded.
func NewRecord(index int, e Entry) Record {
	method := strings.ToUpper(e.Request.Method)
	if method == "" {
		method = "GET"
	}

	text := e.Response.Content.Text
	if strings.EqualFold(e.Response.Content.Encoding, "base64") {
		if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
			text = string(decoded)
		}
	}

	r := Record{
		Index:           index,
		Method:          method,
		URL:             e.Request.URL,
		RequestHeaders:  e.Request.Headers,
		PostData:        e.Request.PostData,
		Status:          e.Response.Status,
		ResponseHeaders: e.Response.Headers,
		ResponseMime:    e.Response.Content.MimeType,
		ResponseText:    text,
	}
	if u, err := url.Parse(e.Request.URL); err == nil {
		r.parsed = u
	}
	return r
}

// ParsedURL returns the request URL, or nil if it could not be parsed.
func (r *Record) ParsedURL() *url.URL {
	return r.parsed
}

// Path returns the URL path.
func (r *Record) Path() string {
	if r.parsed == nil {
		return ""
	}
	return r.parsed.Path
}

// Host returns the URL host including any port.
func (r *Record) Host() string {
	if r.parsed == nil {
		return ""
	}
	return r.parsed.Host
}

// BaseURL returns scheme://host.
func (r *Record) BaseURL() string {
	if r.parsed == nil || r.parsed.Host == "" {
		return ""
	}
	return r.parsed.Scheme + "://" + r.parsed.Host
}

// RawQuery returns the encoded query string without the leading '?'.
func (r *Record) RawQuery() string {
	if r.parsed == nil {
		return ""
	}
	return r.parsed.RawQuery
}

// RequestHeader returns the first request header with the given name,
// compared case-insensitively.
func (r *Record) RequestHeader(name string) (string, bool) {
	return lookup(r.RequestHeaders, name)
}

// ResponseHeader returns the first response header with the given name.
func (r *Record) ResponseHeader(name string) (string, bool) {
	return lookup(r.ResponseHeaders, name)
}

// ResponseContentType returns the response Content-Type header, falling back
// to the archived content mime type.
func (r *Record) ResponseContentType() string {
	if v, ok := r.ResponseHeader("Content-Type"); ok {
		return v
	}
	return r.ResponseMime
}

func lookup(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
