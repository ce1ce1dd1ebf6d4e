package generator

import (
	"bytes"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/schema"
)

// OpenAPIVersion is the document version emitted in openapi.yaml.
const OpenAPIVersion = "3.0.3"

// OpenAPI renders the model as an OpenAPI document. Paths and operations
// keep the order in which they were first observed.
func OpenAPI(m *model.ServiceModel, prefix string) ([]byte, error) {
	doc := mapping()

	info := mapping()
	addScalar(info, "title", m.ServerName(prefix))
	addScalar(info, "description", describe(m))
	addScalar(info, "version", "0.1.0")

	addScalar(doc, "openapi", OpenAPIVersion)
	addPair(doc, "info", info)

	if m.BaseURL != "" {
		server := mapping()
		addScalar(server, "url", m.BaseURL)
		addPair(doc, "servers", sequence(server))
	}

	security := securitySchemes(m.AuthPatterns)

	paths := mapping()
	pathItems := make(map[string]*yaml.Node)
	names := model.ToolNames(m.Endpoints)
	for i := range m.Endpoints {
		ep := &m.Endpoints[i]
		item, ok := pathItems[ep.Path]
		if !ok {
			item = mapping()
			pathItems[ep.Path] = item
			addPair(paths, ep.Path, item)
		}
		addPair(item, strings.ToLower(ep.Method), operation(ep, names[i], security))
	}
	addPair(doc, "paths", paths)

	if len(security) > 0 {
		schemes := mapping()
		for _, s := range security {
			addPair(schemes, s.name, s.node)
		}
		components := mapping()
		addPair(components, "securitySchemes", schemes)
		addPair(doc, "components", components)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describe(m *model.ServiceModel) string {
	if m.Description != "" {
		return m.Description
	}
	return "API service for " + m.Name
}

func operation(ep *model.Endpoint, toolName string, security []securityScheme) *yaml.Node {
	op := mapping()
	addScalar(op, "operationId", toolName)
	addScalar(op, "summary", ep.Method+" "+ep.Path)
	addScalar(op, "description", ToolDescription(ep))

	if params := ep.Params(); len(params) > 0 {
		list := sequence()
		for _, p := range params {
			param := mapping()
			addScalar(param, "name", p.Name)
			addScalar(param, "in", string(p.Class))
			addPair(param, "required", boolNode(p.Required))
			if p.Description != "" {
				addScalar(param, "description", p.Description)
			}
			paramSchema := mapping()
			addScalar(paramSchema, "type", schema.TypeOf(p.Example))
			addPair(param, "schema", paramSchema)
			if p.Example != nil {
				addPair(param, "example", valueNode(p.Example))
			}
			list.Content = append(list.Content, param)
		}
		addPair(op, "parameters", list)
	}

	if ep.HasBody() {
		media := mapping()
		addPair(media, "schema", valueNode(schema.Infer(ep.RequestBody).Value()))
		addPair(media, "example", valueNode(ep.RequestBody))
		content := mapping()
		addPair(content, mediaType(ep.ContentType), media)
		body := mapping()
		addPair(body, "content", content)
		addPair(op, "requestBody", body)
	}

	status := ep.ResponseStatus
	if status == 0 {
		status = 200
	}
	response := mapping()
	addScalar(response, "description", "Observed response")
	if ep.HasResponseExample() {
		media := mapping()
		addPair(media, "example", valueNode(ep.ResponseExample))
		content := mapping()
		addPair(content, "application/json", media)
		addPair(response, "content", content)
	}
	responses := mapping()
	addPair(responses, strconv.Itoa(status), response)
	addPair(op, "responses", responses)

	if len(security) > 0 {
		reqs := sequence()
		for _, s := range security {
			req := mapping()
			addPair(req, s.name, sequence())
			reqs.Content = append(reqs.Content, req)
		}
		addPair(op, "security", reqs)
	}

	return op
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(contentType string) string {
	mt := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if mt == "" {
		return "application/json"
	}
	return strings.ToLower(mt)
}

type securityScheme struct {
	name string
	node *yaml.Node
}

func securitySchemes(patterns []model.AuthPattern) []securityScheme {
	var out []securityScheme
	for _, a := range patterns {
		node := mapping()
		switch a.Scheme {
		case model.SchemeBearer:
			addScalar(node, "type", "http")
			addScalar(node, "scheme", "bearer")
		default:
			addScalar(node, "type", "apiKey")
			addScalar(node, "in", "header")
			addScalar(node, "name", a.HeaderName)
		}
		out = append(out, securityScheme{
			name: string(a.Scheme) + "_" + pyIdent(a.HeaderName),
			node: node,
		})
	}
	return out
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, stringNode(key), value)
}

func addScalar(m *yaml.Node, key, value string) {
	addPair(m, key, stringNode(value))
}

// valueNode converts a decoded JSON value into a YAML node, keeping key order.
func valueNode(v any) *yaml.Node {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return boolNode(val)
	case string:
		return stringNode(val)
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: pyFloat(val)}
	case *jsonvalue.Object:
		node := mapping()
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			addPair(node, key, valueNode(child))
		}
		return node
	case []any:
		node := sequence()
		for _, item := range val {
			node.Content = append(node.Content, valueNode(item))
		}
		return node
	default:
		return stringNode("")
	}
}
