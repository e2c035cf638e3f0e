package provider

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectTool(t *testing.T) {
	type weatherArgs struct {
		City string `json:"city"`
		Unit string `json:"unit,omitempty"`
	}

	tool := ReflectTool[weatherArgs]("get_weather", "Look up the weather")
	assert.Equal(t, "get_weather", tool.Name)
	assert.Equal(t, "Look up the weather", tool.Description)
	require.NotNil(t, tool.Parameters)
	assert.Empty(t, tool.Parameters.Version)

	_, ok := tool.Parameters.Properties.Get("city")
	assert.True(t, ok)
}

func TestObjectSchema(t *testing.T) {
	schema := ObjectSchema(
		Property{Name: "city", Schema: &jsonschema.Schema{Type: "string"}},
		Property{Name: "days", Schema: &jsonschema.Schema{Type: "integer"}},
	)

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"city", "days"}, schema.Required)

	city, ok := schema.Properties.Get("city")
	require.True(t, ok)
	assert.Equal(t, "string", city.Type)
}

func TestObjectSchema_Empty(t *testing.T) {
	schema := ObjectSchema()
	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Required)
}
