package provider

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tool describes a function the model may call. Parameters is a JSON
// Schema treated as opaque data and passed through to the provider's
// function-calling surface unchanged.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

var toolReflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// ReflectTool derives the parameter schema for a tool from the argument
// struct type A.
func ReflectTool[A any](name, description string) Tool {
	schema := toolReflector.Reflect(new(A))
	schema.Version = ""
	return Tool{Name: name, Description: description, Parameters: schema}
}

// Property pairs a parameter name with its schema for ObjectSchema.
type Property struct {
	Name   string
	Schema *jsonschema.Schema
}

// ObjectSchema builds an object parameter schema with the given properties,
// all of them required, preserving declaration order.
func ObjectSchema(props ...Property) *jsonschema.Schema {
	properties := orderedmap.New[string, *jsonschema.Schema]()
	required := make([]string, 0, len(props))
	for _, prop := range props {
		properties.Set(prop.Name, prop.Schema)
		required = append(required, prop.Name)
	}

	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}
