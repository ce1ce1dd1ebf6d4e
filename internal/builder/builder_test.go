package builder

import (
	"context"
	"strings"
	"testing"

	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
	"github.com/PentesterFlow/mcpcreator/internal/metrics"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
)

type entryOpt func(*har.Entry)

func withHeader(name, value string) entryOpt {
	return func(e *har.Entry) {
		e.Request.Headers = append(e.Request.Headers, har.Header{Name: name, Value: value})
	}
}

func withBody(mime, text string) entryOpt {
	return func(e *har.Entry) {
		e.Request.PostData = &har.PostData{MimeType: mime, Text: text}
	}
}

func withResponse(mime, text string) entryOpt {
	return func(e *har.Entry) {
		e.Response.Content = har.Content{MimeType: mime, Text: text}
	}
}

func entry(method, url string, opts ...entryOpt) har.Entry {
	e := har.Entry{
		Request:  har.Request{Method: method, URL: url},
		Response: har.Response{Status: 200},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func records(entries ...har.Entry) []har.Record {
	h := &har.HAR{Log: har.Log{Entries: entries}}
	return h.Records()
}

func build(t *testing.T, opts Options, entries ...har.Entry) *Result {
	t.Helper()
	res, err := New(opts).Build(context.Background(), records(entries...))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return res
}

// =============================================================================
// Build Tests
// =============================================================================

func TestBuild_Empty(t *testing.T) {
	res := build(t, Options{})

	m := res.Model
	if m.Name != "unknown" {
		t.Errorf("Name = %q, want unknown", m.Name)
	}
	if m.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", m.BaseURL)
	}
	if m.Description != "API service for unknown" {
		t.Errorf("Description = %q", m.Description)
	}
	if len(m.Endpoints) != 0 || len(m.AuthPatterns) != 0 {
		t.Errorf("Build() = %d endpoints, %d auth patterns, want none", len(m.Endpoints), len(m.AuthPatterns))
	}
	if m.Endpoints == nil || m.AuthPatterns == nil {
		t.Error("empty model should have non-nil slices")
	}
}

func TestBuild_StaticExcluded(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://cdn.example.com/static/app.js", withHeader("Accept", "application/json")),
		entry("GET", "https://example.com/logo.png"),
		entry("GET", "https://example.com/about", withResponse("text/html", "<html></html>")),
	)

	if len(res.Model.Endpoints) != 0 {
		t.Errorf("Endpoints = %d, want 0", len(res.Model.Endpoints))
	}
	if res.Stats.RecordsSkipped["static"] != 2 {
		t.Errorf("skipped static = %d, want 2", res.Stats.RecordsSkipped["static"])
	}
	if res.Stats.RecordsSkipped["not_api"] != 1 {
		t.Errorf("skipped not_api = %d, want 1", res.Stats.RecordsSkipped["not_api"])
	}
	if res.Model.Name != "unknown" {
		t.Errorf("Name = %q, want unknown", res.Model.Name)
	}
}

func TestBuild_NumericDedup(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://canvas.example.com/api/v1/courses/12/modules"),
		entry("GET", "https://canvas.example.com/api/v1/courses/77/modules"),
	)

	eps := res.Model.Endpoints
	if len(eps) != 1 {
		t.Fatalf("Endpoints = %d, want 1", len(eps))
	}
	ep := eps[0]
	if ep.Path != "/api/v1/courses/{id}/modules" {
		t.Errorf("Path = %q", ep.Path)
	}
	if len(ep.PathParams) != 1 || ep.PathParams[0].Example != "12" {
		t.Errorf("PathParams = %+v, want id=12", ep.PathParams)
	}
	if ep.Observations != 2 {
		t.Errorf("Observations = %d, want 2", ep.Observations)
	}
	if res.Stats.Merges != 1 {
		t.Errorf("Stats.Merges = %d, want 1", res.Stats.Merges)
	}
}

func TestBuild_QueryMerge(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://api.example.com/api/items?page=1"),
		entry("GET", "https://api.example.com/api/items?page=2&search=x&_=123"),
	)

	if len(res.Model.Endpoints) != 1 {
		t.Fatalf("Endpoints = %d, want 1", len(res.Model.Endpoints))
	}
	ep := res.Model.Endpoints[0]
	if len(ep.QueryParams) != 2 {
		t.Fatalf("QueryParams = %+v, want page and search", ep.QueryParams)
	}
	if ep.QueryParams[0].Name != "page" || ep.QueryParams[0].Example != "1" {
		t.Errorf("QueryParams[0] = %+v, want page=1", ep.QueryParams[0])
	}
	if ep.QueryParams[1].Name != "search" || ep.QueryParams[1].Example != "x" {
		t.Errorf("QueryParams[1] = %+v, want search=x", ep.QueryParams[1])
	}
}

func TestBuild_RepeatKeepsFirstBody(t *testing.T) {
	res := build(t, Options{},
		entry("POST", "https://api.example.com/api/items?dry=1",
			withBody("application/json", `{"name":"first"}`),
			withResponse("application/json", `{"id":1}`),
		),
		entry("POST", "https://api.example.com/api/items?dry=0&trace=on",
			withBody("application/json", `{"name":"second"}`),
			withResponse("application/json", `{"id":2}`),
		),
	)

	if len(res.Model.Endpoints) != 1 {
		t.Fatalf("Endpoints = %d, want 1", len(res.Model.Endpoints))
	}
	ep := res.Model.Endpoints[0]
	body, _ := jsonvalue.Marshal(ep.RequestBody)
	if string(body) != `{"name":"first"}` {
		t.Errorf("RequestBody = %s, want first observation", body)
	}
	resp, _ := jsonvalue.Marshal(ep.ResponseExample)
	if string(resp) != `{"id":1}` {
		t.Errorf("ResponseExample = %s, want first observation", resp)
	}
	if len(ep.QueryParams) != 2 || ep.QueryParams[1].Name != "trace" {
		t.Errorf("QueryParams = %+v, want dry and trace", ep.QueryParams)
	}
	if res.Stats.Merges != 1 {
		t.Errorf("Merges = %d, want 1", res.Stats.Merges)
	}
}

func TestBuild_ServiceIdentity(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://www.example.com/v1/config"),
		entry("GET", "https://api.example.com/v1/users"),
	)

	if res.Model.Name != "example" {
		t.Errorf("Name = %q, want example", res.Model.Name)
	}
	if res.Model.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want https://api.example.com", res.Model.BaseURL)
	}
}

func TestBuild_FirstHostWithoutAPI(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://my.site.io/v1/a"),
		entry("GET", "https://other.net/v1/b"),
	)

	if res.Model.Name != "my-site" {
		t.Errorf("Name = %q, want my-site", res.Model.Name)
	}
	if res.Model.BaseURL != "https://my.site.io" {
		t.Errorf("BaseURL = %q", res.Model.BaseURL)
	}
}

func TestBuild_NameOverride(t *testing.T) {
	res := build(t, Options{Name: "custom"},
		entry("GET", "https://api.example.com/v1/users"),
	)

	if res.Model.Name != "custom" {
		t.Errorf("Name = %q, want custom", res.Model.Name)
	}
	if res.Model.Description != "API service for custom" {
		t.Errorf("Description = %q", res.Model.Description)
	}
}

func TestBuild_BearerMasked(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://api.example.com/v1/me", withHeader("Authorization", "Bearer abc123")),
		entry("GET", "https://api.example.com/v1/me/courses", withHeader("Authorization", "Bearer abc123")),
	)

	m := res.Model
	if len(m.AuthPatterns) != 1 {
		t.Fatalf("AuthPatterns = %d, want 1", len(m.AuthPatterns))
	}
	if m.AuthPatterns[0].Example != "Bearer <token>" {
		t.Errorf("Example = %q, want Bearer <token>", m.AuthPatterns[0].Example)
	}
	for _, ep := range m.Endpoints {
		for _, h := range ep.Headers {
			if strings.Contains(h.Value, "abc123") {
				t.Errorf("header %s leaks the token", h.Name)
			}
		}
	}
}

func TestBuild_Bodies(t *testing.T) {
	res := build(t, Options{},
		entry("POST", "https://api.example.com/v1/items",
			withHeader("Content-Type", "application/json"),
			withBody("application/json", `{"name":"a","count":1}`),
			withResponse("application/json", `{"id":5,"name":"a"}`),
		),
	)

	ep := res.Model.Endpoints[0]
	body, _ := jsonvalue.Marshal(ep.RequestBody)
	if string(body) != `{"name":"a","count":1}` {
		t.Errorf("RequestBody = %s", body)
	}
	resp, _ := jsonvalue.Marshal(ep.ResponseExample)
	if string(resp) != `{"id":5,"name":"a"}` {
		t.Errorf("ResponseExample = %s", resp)
	}
	if ep.ContentType != "application/json" {
		t.Errorf("ContentType = %q", ep.ContentType)
	}
}

func TestBuild_Redaction(t *testing.T) {
	engine, err := redact.New()
	if err != nil {
		t.Fatalf("redact.New() error = %v", err)
	}

	e := entry("POST", "https://api.example.com/v1/login?access_token=qqq",
		withBody("application/json", `{"user":"a","password":"hunter2"}`),
		withResponse("application/json", `{"token":"abc.def"}`),
	)

	redacted := build(t, Options{Redactor: engine}, e).Model.Endpoints[0]
	body, _ := jsonvalue.Marshal(redacted.RequestBody)
	if strings.Contains(string(body), "hunter2") {
		t.Errorf("RequestBody leaks password: %s", body)
	}
	resp, _ := jsonvalue.Marshal(redacted.ResponseExample)
	if strings.Contains(string(resp), "abc.def") {
		t.Errorf("ResponseExample leaks token: %s", resp)
	}
	if redacted.QueryParams[0].Example != redact.SecretPlaceholder {
		t.Errorf("query example = %v, want redacted", redacted.QueryParams[0].Example)
	}

	plain := build(t, Options{}, e).Model.Endpoints[0]
	body, _ = jsonvalue.Marshal(plain.RequestBody)
	if !strings.Contains(string(body), "hunter2") {
		t.Error("nil Redactor should leave bodies unchanged")
	}
}

func TestBuild_Truncation(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < 20; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"k`)
		b.WriteByte(byte('a' + i))
		b.WriteString(`":1`)
	}
	b.WriteString("}")

	res := build(t, Options{},
		entry("GET", "https://api.example.com/v1/wide", withResponse("application/json", b.String())),
	)

	obj, ok := res.Model.Endpoints[0].ResponseExample.(*jsonvalue.Object)
	if !ok {
		t.Fatalf("ResponseExample type = %T", res.Model.Endpoints[0].ResponseExample)
	}
	if obj.Len() != 10 {
		t.Errorf("ResponseExample keys = %d, want 10", obj.Len())
	}
}

func TestBuild_SiteTitle(t *testing.T) {
	res := build(t, Options{},
		entry("GET", "https://www.example.com/", withResponse("text/html", "<html><head><title>Example Learning</title></head></html>")),
		entry("GET", "https://api.example.com/v1/users"),
	)

	want := "API service for example (Example Learning)"
	if res.Model.Description != want {
		t.Errorf("Description = %q, want %q", res.Model.Description, want)
	}
}

func TestBuild_Metrics(t *testing.T) {
	m := metrics.New()
	build(t, Options{Metrics: m},
		entry("GET", "https://api.example.com/v1/a"),
		entry("GET", "https://api.example.com/v1/a"),
		entry("GET", "https://api.example.com/app.css"),
		entry("GET", "not a url"),
	)

	snap := m.Snapshot()
	if snap.RecordsTotal != 4 {
		t.Errorf("RecordsTotal = %d, want 4", snap.RecordsTotal)
	}
	if snap.EndpointsTotal != 1 || snap.MergesTotal != 1 {
		t.Errorf("endpoints = %d, merges = %d, want 1 and 1", snap.EndpointsTotal, snap.MergesTotal)
	}
	if snap.RecordsSkipped["static"] != 1 || snap.RecordsSkipped["invalid_url"] != 1 {
		t.Errorf("RecordsSkipped = %v", snap.RecordsSkipped)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Build(ctx, records(entry("GET", "https://api.example.com/v1/a")))
	if err == nil {
		t.Error("Build() with cancelled context should fail")
	}
}

// =============================================================================
// Host Tests
// =============================================================================

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"API.Example.com", "api.example.com"},
		{"localhost:8080", "localhost:8080"},
		{"b\u00fccher.example", "xn--bcher-kva.example"},
		{"B\u00fccher.example:443", "xn--bcher-kva.example:443"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeHost(tt.host); got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestPickServiceHost(t *testing.T) {
	tests := []struct {
		hosts []string
		want  string
	}{
		{nil, ""},
		{[]string{"www.example.com"}, "www.example.com"},
		{[]string{"www.example.com", "api.example.com"}, "api.example.com"},
		{[]string{"myapi.io", "api.example.com"}, "myapi.io"},
	}

	for _, tt := range tests {
		if got := PickServiceHost(tt.hosts); got != tt.want {
			t.Errorf("PickServiceHost(%v) = %q, want %q", tt.hosts, got, tt.want)
		}
	}
}
