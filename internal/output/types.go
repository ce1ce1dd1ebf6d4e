package output

import "github.com/PentesterFlow/mcpcreator/internal/state"

// Artifact is one generated file, addressed relative to the output directory.
type Artifact struct {
	Path    string
	Content []byte
}

// Report is the machine-readable summary printed by analyze --json.
type Report struct {
	ServiceName  string            `json:"service_name"`
	MCPName      string            `json:"mcp_name"`
	BaseURL      string            `json:"base_url"`
	Description  string            `json:"description,omitempty"`
	AuthPatterns []AuthSummary     `json:"auth_patterns"`
	Endpoints    []EndpointSummary `json:"endpoints"`
	RunID        string            `json:"run_id,omitempty"`
	Stats        *state.Stats      `json:"stats,omitempty"`
}

// AuthSummary describes a detected credential mechanism.
type AuthSummary struct {
	Type     string `json:"type"`
	Header   string `json:"header"`
	Location string `json:"location"`
}

// EndpointSummary describes one endpoint and the tool generated for it.
type EndpointSummary struct {
	Method             string   `json:"method"`
	Path               string   `json:"path"`
	ToolName           string   `json:"tool_name"`
	PathParams         []string `json:"path_params"`
	QueryParams        []string `json:"query_params"`
	HasBody            bool     `json:"has_body"`
	HasResponseExample bool     `json:"has_response_example"`
}
