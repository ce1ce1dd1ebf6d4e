// Package model defines the inferred service description shared by every
// pipeline stage: parameters, auth patterns, endpoints and the service model
// handed to the code generator.
package model

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
)

// DefaultPrefix is prepended to the service name to form the server name.
const DefaultPrefix = "iblai"

// ParamClass says where a request parameter travels.
type ParamClass string

const (
	PathParam  ParamClass = "path"
	QueryParam ParamClass = "query"
)

// Parameter is a path or query parameter observed in the trace.
type Parameter struct {
	Name        string     `json:"name"`
	Class       ParamClass `json:"class"`
	Example     any        `json:"example,omitempty"`
	Required    bool       `json:"required"`
	Description string     `json:"description"`
}

// AuthScheme tags the credential mechanism an AuthPattern describes.
type AuthScheme string

const (
	SchemeBearer       AuthScheme = "bearer"
	SchemeAPIKey       AuthScheme = "api_key"
	SchemeCustomHeader AuthScheme = "custom_header"
	SchemeCookie       AuthScheme = "cookie"
)

// AuthLocation says where a credential is carried.
type AuthLocation string

const (
	LocationHeader AuthLocation = "header"
	LocationCookie AuthLocation = "cookie"
)

// AuthPattern is a credential-carrying mechanism with its secret masked.
type AuthPattern struct {
	Scheme     AuthScheme   `json:"type"`
	HeaderName string       `json:"header"`
	Example    string       `json:"example"`
	Location   AuthLocation `json:"location"`
}

// Key identifies the pattern for de-duplication.
func (a AuthPattern) Key() string {
	return string(a.Scheme) + ":" + a.HeaderName
}

// Header is a request header kept as a representative example.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Endpoint is one logical (method, normalized path) operation.
//
// RequestBody and ResponseExample hold ordered JSON values (see jsonvalue);
// nil means nothing was observed.
type Endpoint struct {
	Method          string      `json:"method"`
	Path            string      `json:"path"`
	BaseURL         string      `json:"base_url"`
	PathParams      []Parameter `json:"path_params"`
	QueryParams     []Parameter `json:"query_params"`
	Headers         []Header    `json:"headers,omitempty"`
	ContentType     string      `json:"content_type"`
	RequestBody     any         `json:"request_body,omitempty"`
	ResponseExample any         `json:"response_example,omitempty"`
	ResponseStatus  int         `json:"response_status"`
	Observations    int         `json:"observations"`
}

// Key is the aggregation key: method, base URL and normalized path.
func (e *Endpoint) Key() string {
	return EndpointKey(e.Method, e.BaseURL, e.Path)
}

// EndpointKey builds the aggregation key for an observation.
func EndpointKey(method, baseURL, path string) string {
	return method + ":" + baseURL + path
}

// Params returns path parameters followed by query parameters.
func (e *Endpoint) Params() []Parameter {
	params := make([]Parameter, 0, len(e.PathParams)+len(e.QueryParams))
	params = append(params, e.PathParams...)
	return append(params, e.QueryParams...)
}

// HasBody reports whether a request body was observed.
func (e *Endpoint) HasBody() bool {
	return e.RequestBody != nil
}

// HasResponseExample reports whether a JSON response was observed.
func (e *Endpoint) HasResponseExample() bool {
	return e.ResponseExample != nil
}

// UnmarshalJSON restores RequestBody and ResponseExample as ordered values.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	type plain Endpoint
	aux := struct {
		*plain
		RequestBody     json.RawMessage `json:"request_body,omitempty"`
		ResponseExample json.RawMessage `json:"response_example,omitempty"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.RequestBody, err = decodeRaw(aux.RequestBody); err != nil {
		return err
	}
	e.ResponseExample, err = decodeRaw(aux.ResponseExample)
	return err
}

func decodeRaw(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return jsonvalue.Decode(raw)
}

var (
	placeholderRe = regexp.MustCompile(`\{(\w+)\}`)
	nonAlnumRe    = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// methodVerbs maps HTTP methods to tool-name verbs.
var methodVerbs = map[string]string{
	"GET":    "get",
	"POST":   "create",
	"PUT":    "update",
	"PATCH":  "patch",
	"DELETE": "delete",
}

// Verb returns the tool-name verb for an HTTP method.
func Verb(method string) string {
	if v, ok := methodVerbs[strings.ToUpper(method)]; ok {
		return v
	}
	return strings.ToLower(method)
}

// ToolName derives the snake_case tool name for the endpoint, for example
// GET /api/v1/courses/{id}/modules becomes get_api_v1_courses_id_modules.
func (e *Endpoint) ToolName() string {
	return ToolName(e.Method, e.Path)
}

// ToolName derives a tool name from a method and a normalized path.
func ToolName(method, path string) string {
	p := strings.Trim(path, "/")
	p = placeholderRe.ReplaceAllString(p, "$1")
	p = nonAlnumRe.ReplaceAllString(p, "_")
	p = strings.ToLower(strings.Trim(p, "_"))

	verb := Verb(method)
	if p == "" {
		return verb
	}
	return verb + "_" + p
}

// ToolNames returns one tool name per endpoint. Names that collide with an
// earlier endpoint get a numeric suffix: _2, _3, ...
func ToolNames(endpoints []Endpoint) []string {
	names := make([]string, len(endpoints))
	used := make(map[string]bool, len(endpoints))

	for i := range endpoints {
		base := endpoints[i].ToolName()
		name := base
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// ServiceModel is the complete inferred description of an API surface.
type ServiceModel struct {
	Name         string        `json:"name"`
	BaseURL      string        `json:"base_url"`
	Description  string        `json:"description"`
	AuthPatterns []AuthPattern `json:"auth_patterns"`
	Endpoints    []Endpoint    `json:"endpoints"`
}

// ServerName returns the generated package name, e.g. iblai-canvas.
func (m *ServiceModel) ServerName(prefix string) string {
	return ServerName(prefix, m.Name)
}

// EnvPrefix returns the environment-variable prefix for the service.
func (m *ServiceModel) EnvPrefix() string {
	return EnvPrefix(m.Name)
}

// ServerName joins a prefix and service name.
func ServerName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "-" + name
}

// StripPrefix removes a leading "<prefix>-" from a user-supplied name.
func StripPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimPrefix(name, prefix+"-")
}

// EnvPrefix upper-cases a service name and turns '-' and '.' into '_'.
func EnvPrefix(name string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(name))
}

var nonIdentRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// PythonIdentifier converts a name into a lower-case Python identifier.
func PythonIdentifier(name string) string {
	safe := nonIdentRe.ReplaceAllString(name, "_")
	if safe != "" && safe[0] >= '0' && safe[0] <= '9' {
		safe = "_" + safe
	}
	return strings.ToLower(safe)
}

var (
	hostPrefixRe = regexp.MustCompile(`^(www\.|api\.|blog\.)`)
	hostTLDRe    = regexp.MustCompile(`\.(com|org|net|io|ai|dev)$`)
	nonNameRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// HostToName converts a host into a service name:
// api.example.com becomes example, my.site.io becomes my-site.
func HostToName(host string) string {
	name := strings.ToLower(host)
	name = hostPrefixRe.ReplaceAllString(name, "")
	name = hostTLDRe.ReplaceAllString(name, "")
	name = nonNameRe.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}
