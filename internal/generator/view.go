package generator

import (
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/schema"
)

// DefaultAPIKeyHeader is the api_key header of the generated auth module
// when the trace shows no other. <PREFIX>_API_KEY_HEADER overrides it.
const DefaultAPIKeyHeader = "X-API-Key"

// serviceView is the data every template renders from.
type serviceView struct {
	ServerName   string
	PackageName  string
	ServiceName  string
	BaseURL      string
	Description  string
	EnvPrefix    string
	GeneratedOn  string
	APIKeyHeader string
	Auth         []authView
	Tools        []toolView
}

// authView is an auth pattern expressed as generated-runtime settings.
type authView struct {
	Type       string
	HeaderName string
	Example    string
	Location   string
	Detected   string
}

// CustomHeader reports whether the pattern is configured by header name.
func (a authView) CustomHeader() bool {
	return a.Type == string(model.SchemeCustomHeader)
}

// CustomAPIKeyHeader reports whether an api_key pattern uses a header other
// than the runtime default.
func (a authView) CustomAPIKeyHeader() bool {
	return a.Type == string(model.SchemeAPIKey) && a.HeaderName != "" && a.HeaderName != DefaultAPIKeyHeader
}

type toolView struct {
	Name            string
	Handler         string
	Method          string
	Path            string
	Description     string
	PathParams      []paramView
	QueryParams     []paramView
	Params          []paramView
	Schema          string
	ResponseExample string
}

type paramView struct {
	Name        string
	Description string
	Required    bool
}

// newServiceView flattens a model into template data.
func newServiceView(m *model.ServiceModel, prefix, generatedOn string) *serviceView {
	serverName := m.ServerName(prefix)
	v := &serviceView{
		ServerName:   serverName,
		PackageName:  model.PythonIdentifier(serverName),
		ServiceName:  m.Name,
		BaseURL:      m.BaseURL,
		Description:  m.Description,
		EnvPrefix:    m.EnvPrefix(),
		GeneratedOn:  generatedOn,
		APIKeyHeader: DefaultAPIKeyHeader,
	}
	if v.Description == "" {
		v.Description = "API service for " + m.Name
	}

	for _, a := range m.AuthPatterns {
		av := newAuthView(a)
		if av.CustomAPIKeyHeader() && v.APIKeyHeader == DefaultAPIKeyHeader {
			v.APIKeyHeader = av.HeaderName
		}
		v.Auth = append(v.Auth, av)
	}

	names := model.ToolNames(m.Endpoints)
	for i := range m.Endpoints {
		v.Tools = append(v.Tools, newToolView(&m.Endpoints[i], names[i]))
	}
	return v
}

// newAuthView maps a detected pattern onto a runtime auth type. The runtime
// has no cookie type, so session cookies are configured as a Cookie header.
func newAuthView(a model.AuthPattern) authView {
	av := authView{
		Type:       string(a.Scheme),
		HeaderName: a.HeaderName,
		Example:    a.Example,
		Location:   string(a.Location),
		Detected:   string(a.Scheme),
	}
	if a.Scheme == model.SchemeCookie {
		av.Type = string(model.SchemeCustomHeader)
		if av.HeaderName == "" {
			av.HeaderName = "Cookie"
		}
	}
	return av
}

func newToolView(ep *model.Endpoint, name string) toolView {
	tv := toolView{
		Name:        name,
		Handler:     handlerName(name),
		Method:      ep.Method,
		Path:        ep.Path,
		Description: ToolDescription(ep),
		PathParams:  paramViews(ep.PathParams),
		QueryParams: paramViews(ep.QueryParams),
		Params:      paramViews(ep.Params()),
		Schema:      pyLiteral(schema.InputSchema(ep).Value()),
	}
	if ep.HasResponseExample() {
		if data, err := jsonvalue.MarshalIndent(ep.ResponseExample, "  "); err == nil {
			tv.ResponseExample = string(data)
		}
	}
	return tv
}

func paramViews(params []model.Parameter) []paramView {
	views := make([]paramView, 0, len(params))
	for _, p := range params {
		desc := p.Description
		if desc == "" {
			desc = "Parameter: " + p.Name
		}
		views = append(views, paramView{Name: p.Name, Description: desc, Required: p.Required})
	}
	return views
}

// ToolDescription builds the catalog description of an endpoint:
// "GET /x/{id} | Query params: a, b | Path params: id".
func ToolDescription(ep *model.Endpoint) string {
	parts := []string{ep.Method + " " + ep.Path}
	if len(ep.QueryParams) > 0 {
		parts = append(parts, "Query params: "+strings.Join(names(ep.QueryParams), ", "))
	}
	if len(ep.PathParams) > 0 {
		parts = append(parts, "Path params: "+strings.Join(names(ep.PathParams), ", "))
	}
	return strings.Join(parts, " | ")
}

func names(params []model.Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

// PrimaryAuth returns the first detected pattern, or nil. Example
// configurations only show this one.
func (v *serviceView) PrimaryAuth() *authView {
	if len(v.Auth) == 0 {
		return nil
	}
	return &v.Auth[0]
}

// Cookie reports whether the pattern was detected as a session cookie.
func (a authView) Cookie() bool {
	return a.Detected == string(model.SchemeCookie)
}
