package output

import (
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/state"
)

// NewReport summarizes a service model. Tool names carry the same collision
// suffixes as the generated package.
func NewReport(m *model.ServiceModel, prefix string) *Report {
	r := &Report{
		ServiceName:  m.Name,
		MCPName:      m.ServerName(prefix),
		BaseURL:      m.BaseURL,
		Description:  m.Description,
		AuthPatterns: make([]AuthSummary, 0, len(m.AuthPatterns)),
		Endpoints:    make([]EndpointSummary, 0, len(m.Endpoints)),
	}

	for _, a := range m.AuthPatterns {
		r.AuthPatterns = append(r.AuthPatterns, AuthSummary{
			Type:     string(a.Scheme),
			Header:   a.HeaderName,
			Location: string(a.Location),
		})
	}

	names := model.ToolNames(m.Endpoints)
	for i := range m.Endpoints {
		ep := &m.Endpoints[i]
		r.Endpoints = append(r.Endpoints, EndpointSummary{
			Method:             ep.Method,
			Path:               ep.Path,
			ToolName:           names[i],
			PathParams:         paramNames(ep.PathParams),
			QueryParams:        paramNames(ep.QueryParams),
			HasBody:            ep.HasBody(),
			HasResponseExample: ep.HasResponseExample(),
		})
	}

	return r
}

// WithRun attaches run metadata to the report.
func (r *Report) WithRun(runID string, stats *state.Stats) *Report {
	r.RunID = runID
	r.Stats = stats
	return r
}

func paramNames(params []model.Parameter) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}
