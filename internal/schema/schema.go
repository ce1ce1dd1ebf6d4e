// Package schema infers shallow JSON Schemas from observed example values.
package schema

import (
	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// JSON Schema type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// BodyProperty is the input-schema property that carries a request body.
const BodyProperty = "body"

// BodyDescription describes the body property.
const BodyDescription = "Request body"

// Property is a named member of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is a JSON Schema fragment. Properties keep insertion order so the
// generated catalog is deterministic. A zero Schema renders as {}.
type Schema struct {
	Type        string
	Description string
	Properties  []Property
	Items       *Schema
	Required    []string
}

// Object creates an empty object schema.
func Object() *Schema {
	return &Schema{Type: TypeObject}
}

// Set adds or replaces a property.
func (s *Schema) Set(name string, prop *Schema) {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			s.Properties[i].Schema = prop
			return
		}
	}
	s.Properties = append(s.Properties, Property{Name: name, Schema: prop})
}

// Property returns the named property, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// Value converts the schema to an ordered JSON value with keys in the order
// type, description, properties, items, required.
func (s *Schema) Value() *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	if s == nil {
		return obj
	}
	if s.Type != "" {
		obj.Set("type", s.Type)
	}
	if s.Description != "" {
		obj.Set("description", s.Description)
	}
	if s.Type == TypeObject {
		props := jsonvalue.NewObject()
		for _, p := range s.Properties {
			props.Set(p.Name, p.Schema.Value())
		}
		obj.Set("properties", props)
	}
	if s.Type == TypeArray {
		obj.Set("items", s.Items.Value())
	}
	if len(s.Required) > 0 {
		required := make([]any, len(s.Required))
		for i, r := range s.Required {
			required[i] = r
		}
		obj.Set("required", required)
	}
	return obj
}

// MarshalJSON renders the schema with ordered keys.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return jsonvalue.Marshal(s.Value())
}

// TypeOf returns the JSON Schema type of a scalar example. Anything that is
// not a boolean or a number is a string.
func TypeOf(v any) string {
	switch v.(type) {
	case bool:
		return TypeBoolean
	case int, int64:
		return TypeInteger
	case float64:
		return TypeNumber
	default:
		return TypeString
	}
}

// Infer builds a schema from an observed value. Objects map every key, arrays
// take their item schema from the first element, and empty arrays get {}.
func Infer(v any) *Schema {
	switch val := v.(type) {
	case *jsonvalue.Object:
		s := Object()
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			s.Set(key, Infer(child))
		}
		return s
	case []any:
		s := &Schema{Type: TypeArray, Items: &Schema{}}
		if len(val) > 0 {
			s.Items = Infer(val[0])
		}
		return s
	default:
		return &Schema{Type: TypeOf(v)}
	}
}

// ParamSchema returns the schema of one request parameter.
func ParamSchema(p model.Parameter) *Schema {
	desc := p.Description
	if desc == "" {
		desc = "Parameter: " + p.Name
	}
	return &Schema{Type: TypeOf(p.Example), Description: desc}
}

// InputSchema builds the tool input schema of an endpoint: path parameters,
// then query parameters, then the request body when one was observed.
func InputSchema(ep *model.Endpoint) *Schema {
	s := Object()
	for _, p := range ep.Params() {
		s.Set(p.Name, ParamSchema(p))
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	if ep.HasBody() {
		body := Infer(ep.RequestBody)
		body.Description = BodyDescription
		s.Set(BodyProperty, body)
	}
	return s
}
