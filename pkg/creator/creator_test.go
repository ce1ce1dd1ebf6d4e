package creator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/internal/parser"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
)

func jsonEntry(method, url, response string, headers ...har.Header) har.Entry {
	return har.Entry{
		Request: har.Request{Method: method, URL: url, Headers: headers},
		Response: har.Response{
			Status:  200,
			Content: har.Content{MimeType: "application/json", Text: response},
		},
	}
}

func writeTrace(t *testing.T, entries ...har.Entry) string {
	t.Helper()
	data, err := json.Marshal(har.HAR{Log: har.Log{Version: "1.2", Entries: entries}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "trace.har")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func canvasTrace(t *testing.T) string {
	auth := har.Header{Name: "Authorization", Value: "Bearer abc123"}
	post := jsonEntry("POST", "https://api.canvas.com/api/v1/courses", `{"id": 9}`, auth)
	post.Request.PostData = &har.PostData{MimeType: "application/json", Text: `{"name": "Intro"}`}

	return writeTrace(t,
		jsonEntry("GET", "https://api.canvas.com/api/v1/courses/123?page=1", `{"id": 123, "name": "Math"}`, auth),
		jsonEntry("GET", "https://api.canvas.com/api/v1/courses/456?per_page=10", `{"id": 456}`, auth),
		har.Entry{
			Request:  har.Request{Method: "GET", URL: "https://api.canvas.com/static/app.js"},
			Response: har.Response{Status: 200, Content: har.Content{MimeType: "application/javascript", Text: "x"}},
		},
		post,
	)
}

func newCreator(t *testing.T, opts ...Option) *Creator {
	t.Helper()
	base := []Option{
		WithLogger(logger.Nop()),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return files
}

// =============================================================================
// Config Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Prefix != "iblai" {
		t.Errorf("Prefix = %q, want iblai", cfg.Prefix)
	}
	if cfg.Truncation != parser.DefaultLimits() {
		t.Errorf("Truncation = %+v", cfg.Truncation)
	}
	if !cfg.Redaction.Enabled || !cfg.OpenAPI {
		t.Error("redaction and openapi should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"valid name", func(c *Config) { c.Name = "my-api.v2" }, false},
		{"name with slash", func(c *Config) { c.Name = "a/b" }, true},
		{"name starting with dash", func(c *Config) { c.Name = "-x" }, true},
		{"empty output", func(c *Config) { c.OutputDir = "" }, true},
		{"zero depth", func(c *Config) { c.Truncation.MaxDepth = 0 }, true},
		{"zero keys", func(c *Config) { c.Truncation.MaxKeys = 0 }, true},
		{"negative items", func(c *Config) { c.Truncation.MaxItems = -1 }, true},
		{"bad pattern", func(c *Config) {
			c.Redaction.Patterns = append(c.Redaction.Patterns, redactPattern("bad", "(unclosed"))
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.GetErrorType(err) != errors.Config {
				t.Errorf("error type = %v, want config", errors.GetErrorType(err))
			}
		})
	}
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	os.WriteFile(yamlPath, []byte("name: canvas\noutput_dir: out\ntruncation:\n  max_depth: 2\n  max_keys: 5\n  max_items: 1\n"), 0644)

	cfg, err := LoadFromFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Name != "canvas" || cfg.OutputDir != "out" || cfg.Truncation.MaxDepth != 2 {
		t.Errorf("LoadFromFile() = %+v", cfg)
	}
	if cfg.Prefix != "iblai" {
		t.Errorf("unset fields should keep defaults, Prefix = %q", cfg.Prefix)
	}

	jsonPath := filepath.Join(dir, "config.json")
	os.WriteFile(jsonPath, []byte(`{"name": "api", "openapi": false}`), 0644)

	cfg, err = LoadFromFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Name != "api" || cfg.OpenAPI {
		t.Errorf("LoadFromFile() = %+v", cfg)
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}
}

func TestConfig_SaveToFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Name = "saved"
			cfg.StateFile = "state.db"

			path := filepath.Join(dir, name)
			if err := cfg.SaveToFile(path); err != nil {
				t.Fatalf("SaveToFile() error = %v", err)
			}
			loaded, err := LoadFromFile(path)
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			if loaded.Name != "saved" || loaded.StateFile != "state.db" || loaded.Truncation != cfg.Truncation {
				t.Errorf("round trip = %+v", loaded)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redaction.Patterns = append(cfg.Redaction.Patterns, redactPattern("x", "x+"))

	clone := cfg.Clone()
	clone.Name = "other"
	clone.Redaction.Patterns[0].Name = "changed"

	if cfg.Name == "other" || cfg.Redaction.Patterns[0].Name != "x" {
		t.Error("Clone() should not share state with the original")
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestNew_StripsPrefixFromName(t *testing.T) {
	c := newCreator(t, WithName("iblai-canvas"))
	if got := c.Config().Name; got != "canvas" {
		t.Errorf("Name = %q, want canvas", got)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithLogger(logger.Nop()), WithName("bad name"))
	if err == nil {
		t.Fatal("New() expected error")
	}
	if errors.GetErrorType(err) != errors.Config {
		t.Errorf("error type = %v, want config", errors.GetErrorType(err))
	}
}

func TestOptions(t *testing.T) {
	c := newCreator(t,
		WithOutputDir("out"),
		WithPrefix("acme"),
		WithTruncation(parser.Limits{MaxDepth: 1, MaxKeys: 2, MaxItems: 3}),
		WithStateFile("s.db"),
		WithMetricsFile("m.prom"),
		WithoutRedaction(),
		WithOpenAPI(false),
		WithVerbose(true),
		WithDebug(true),
	)

	cfg := c.Config()
	if cfg.OutputDir != "out" || cfg.Prefix != "acme" || cfg.StateFile != "s.db" || cfg.MetricsFile != "m.prom" {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.Truncation.MaxItems != 3 || cfg.Redaction.Enabled || cfg.OpenAPI || !cfg.Verbose || !cfg.Debug {
		t.Errorf("Config() = %+v", cfg)
	}
}

func TestWithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "fromconfig"

	c := newCreator(t, WithConfig(cfg), WithOutputDir("later"))
	got := c.Config()
	if got.Name != "fromconfig" || got.OutputDir != "later" {
		t.Errorf("Config() = %+v", got)
	}
	if cfg.OutputDir == "later" {
		t.Error("WithConfig should copy the configuration")
	}
}

// =============================================================================
// Pipeline Tests
// =============================================================================

func TestCreate_EndToEnd(t *testing.T) {
	out := t.TempDir()
	c := newCreator(t, WithOutputDir(out))

	res, err := c.Create(context.Background(), canvasTrace(t))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if res.ServerDir != filepath.Join(out, "iblai-canvas") {
		t.Errorf("ServerDir = %q", res.ServerDir)
	}
	if res.ServerName() != "iblai-canvas" || res.EnvPrefix() != "CANVAS" {
		t.Errorf("ServerName() = %q, EnvPrefix() = %q", res.ServerName(), res.EnvPrefix())
	}
	if len(res.Files) != 8 {
		t.Errorf("len(Files) = %d, want 8", len(res.Files))
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	stats := res.Stats
	if stats.RecordsSeen != 4 || stats.RecordsRelevant != 3 || stats.RecordsSkipped["static"] != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.Endpoints != 2 || stats.Merges != 1 {
		t.Errorf("Stats = %+v, want 2 endpoints and 1 merge", stats)
	}

	files := readTree(t, res.ServerDir)
	server := files["iblai_canvas/server.py"]
	for _, want := range []string{
		"async def handle_get_api_v1_courses_id(",
		`query_params["page"] = arguments["page"]`,
		`query_params["per_page"] = arguments["per_page"]`,
		"async def handle_create_api_v1_courses(",
	} {
		if !strings.Contains(server, want) {
			t.Errorf("server.py missing %q", want)
		}
	}
	if strings.Contains(server, "app.js") {
		t.Error("static assets must not produce tools")
	}

	for path, content := range files {
		if strings.Contains(content, "abc123") {
			t.Errorf("%s leaks the bearer secret", path)
		}
	}
	if !strings.Contains(files["README.md"], "Bearer <token>") {
		t.Error("README.md should show the masked bearer example")
	}
}

func TestCreate_Idempotent(t *testing.T) {
	trace := canvasTrace(t)
	out := t.TempDir()

	first := newCreator(t, WithOutputDir(out))
	res, err := first.Create(context.Background(), trace)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before := readTree(t, res.ServerDir)

	second := newCreator(t, WithOutputDir(out), WithClock(func() time.Time { return time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC) }))
	if _, err := second.Create(context.Background(), trace); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	after := readTree(t, res.ServerDir)

	if len(before) != len(after) {
		t.Fatalf("file count changed: %d -> %d", len(before), len(after))
	}
	for path, content := range before {
		if stripGenerated(content) != stripGenerated(after[path]) {
			t.Errorf("%s changed between runs", path)
		}
	}
	if before["iblai_canvas/server.py"] == after["iblai_canvas/server.py"] {
		t.Error("Generated on line should reflect the clock")
	}
}

func stripGenerated(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "Generated on:") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func TestCreate_EmptyTrace(t *testing.T) {
	out := t.TempDir()
	c := newCreator(t, WithOutputDir(out))

	res, err := c.Create(context.Background(), writeTrace(t))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Model.Name != "unknown" {
		t.Errorf("Name = %q, want unknown", res.Model.Name)
	}

	files := readTree(t, filepath.Join(out, "iblai-unknown"))
	if !strings.Contains(files["iblai_unknown/server.py"], "TOOLS: list[dict[str, Any]] = [\n]") {
		t.Error("empty trace should produce an empty catalog")
	}
	if !strings.Contains(files[".env.example"], "No authentication was detected") {
		t.Error(".env.example should state that no authentication was detected")
	}
}

func TestCreate_InputErrors(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.har")
	os.WriteFile(malformed, []byte(`{"log": {"entries": [`), 0644)

	tests := []struct {
		name     string
		path     string
		wantType errors.ErrorType
	}{
		{"missing file", filepath.Join(dir, "missing.har"), errors.Input},
		{"malformed json", malformed, errors.Parse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			c := newCreator(t, WithOutputDir(out))

			_, err := c.Create(context.Background(), tt.path)
			if err == nil {
				t.Fatal("Create() expected error")
			}
			if got := errors.GetErrorType(err); got != tt.wantType {
				t.Errorf("error type = %v, want %v", got, tt.wantType)
			}
			if !errors.IsInputError(err) {
				t.Error("IsInputError() = false")
			}

			entries, _ := os.ReadDir(out)
			if len(entries) != 0 {
				t.Errorf("output dir has %d entries, want none", len(entries))
			}
		})
	}
}

func TestCreate_WithWriter(t *testing.T) {
	w := output.NewMemoryWriter()
	c := newCreator(t, WithWriter(w), WithOpenAPI(false))

	res, err := c.Create(context.Background(), canvasTrace(t))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(res.Files) != 7 {
		t.Errorf("len(Files) = %d, want 7", len(res.Files))
	}
	if _, ok := w.File("iblai-canvas/iblai_canvas/server.py"); !ok {
		t.Errorf("Paths() = %v", w.Paths())
	}
}

func TestCreate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := t.TempDir()
	c := newCreator(t, WithOutputDir(out))
	if _, err := c.Create(ctx, canvasTrace(t)); err == nil {
		t.Fatal("Create() expected error for cancelled context")
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Error("cancelled run should write nothing")
	}
}

func TestAnalyze_Truncation(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"nested": {"a": {"b": {"c": 1}}}, "list": [1, 2, 3]`)
	for i := 0; i < 15; i++ {
		b.WriteString(`, "k` + string(rune('a'+i)) + `": 1`)
	}
	b.WriteString("}")

	trace := writeTrace(t, jsonEntry("GET", "https://api.x.com/api/data", b.String()))
	c := newCreator(t)

	a, err := c.Analyze(context.Background(), trace)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	example := a.Model.Endpoints[0].ResponseExample.(*jsonvalue.Object)
	if example.Len() != 10 {
		t.Errorf("response keys = %d, want 10", example.Len())
	}

	got, _ := jsonvalue.Marshal(example)
	if !strings.Contains(string(got), `"nested":{"a":{"b":{"...":"truncated"}}}`) {
		t.Errorf("deep object not truncated: %s", got)
	}
	if !strings.Contains(string(got), `"list":[1,2]`) {
		t.Errorf("array not truncated: %s", got)
	}
}

func TestAnalyze_NumericDedup(t *testing.T) {
	trace := writeTrace(t,
		jsonEntry("GET", "https://api.x.com/api/users/1", `{}`),
		jsonEntry("GET", "https://api.x.com/api/users/2", `{}`),
		jsonEntry("GET", "https://api.x.com/api/users/3", `{}`),
	)

	a, err := newCreator(t).Analyze(context.Background(), trace)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Model.Endpoints) != 1 || a.Model.Endpoints[0].Path != "/api/users/{id}" {
		t.Errorf("Endpoints = %+v", a.Model.Endpoints)
	}
}

func TestAnalyze_Scope(t *testing.T) {
	rest := har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://api.x.com/rest/items"},
		Response: har.Response{Status: 200, Content: har.Content{MimeType: "text/plain", Text: "ok"}},
	}
	vendor := jsonEntry("GET", "https://api.x.com/vendor/app.bundle", `{}`)
	vendor.Request.Headers = []har.Header{{Name: "Accept", Value: "application/json"}}

	tests := []struct {
		name      string
		scope     ScopeConfig
		wantPaths []string
	}{
		{"defaults", ScopeConfig{}, []string{"/vendor/app.bundle"}},
		{"extra tables", ScopeConfig{
			StaticExtensions: []string{".bundle"},
			APISegments:      []string{"/REST/"},
		}, []string{"/rest/items"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := newCreator(t, WithScope(tt.scope)).Analyze(context.Background(), writeTrace(t, rest, vendor))
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			var got []string
			for _, ep := range a.Model.Endpoints {
				got = append(got, ep.Path)
			}
			if strings.Join(got, ",") != strings.Join(tt.wantPaths, ",") {
				t.Errorf("paths = %v, want %v", got, tt.wantPaths)
			}
		})
	}
}

func TestConfig_LoadScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "scope:\n  api_segments: [\"/rest/\"]\n  static_dirs: [\"/cdn/\"]\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if len(cfg.Scope.APISegments) != 1 || cfg.Scope.APISegments[0] != "/rest/" {
		t.Errorf("Scope.APISegments = %v", cfg.Scope.APISegments)
	}
	if len(cfg.Scope.StaticDirs) != 1 || cfg.Scope.StaticDirs[0] != "/cdn/" {
		t.Errorf("Scope.StaticDirs = %v", cfg.Scope.StaticDirs)
	}
}

func TestAnalyze_StateFile(t *testing.T) {
	for _, name := range []string{"state.db", "state.json", "state.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			c := newCreator(t, WithStateFile(path))

			a, err := c.Analyze(context.Background(), canvasTrace(t))
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			snap, err := LoadSnapshot(path)
			if err != nil {
				t.Fatalf("LoadSnapshot() error = %v", err)
			}
			if snap.RunID != a.RunID || snap.Model.Name != "canvas" || len(snap.Model.Endpoints) != 2 {
				t.Errorf("snapshot = %+v", snap)
			}
			if snap.Stats.RecordsSeen != 4 {
				t.Errorf("snapshot stats = %+v", snap.Stats)
			}
		})
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "none.json"))
	if errors.GetErrorType(err) != errors.State {
		t.Errorf("LoadSnapshot() error = %v, want state error", err)
	}
}

func TestCreate_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	c := newCreator(t, WithOutputDir(t.TempDir()), WithMetricsFile(path))

	if _, err := c.Create(context.Background(), canvasTrace(t)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"mcpcreator_records_total 4", "mcpcreator_artifacts_written_total 8", `mcpcreator_records_skipped_total{reason="static"} 1`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
}

func TestAnalysis_Report(t *testing.T) {
	a, err := newCreator(t).Analyze(context.Background(), canvasTrace(t))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	r := a.Report()
	if r.MCPName != "iblai-canvas" || r.RunID != a.RunID || r.Stats == nil {
		t.Errorf("Report() = %+v", r)
	}
	if len(r.AuthPatterns) != 1 || r.AuthPatterns[0].Type != "bearer" {
		t.Errorf("AuthPatterns = %+v", r.AuthPatterns)
	}
	if len(r.Endpoints) != 2 || r.Endpoints[0].ToolName != "get_api_v1_courses_id" {
		t.Errorf("Endpoints = %+v", r.Endpoints)
	}
}

func redactPattern(name, pattern string) redact.Pattern {
	return redact.Pattern{Name: name, Pattern: pattern}
}
