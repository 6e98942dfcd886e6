package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{
  "type": "object",
  "required": ["id", "qty"],
  "properties": {
    "id": {"type": "string"},
    "qty": {"type": "integer", "minimum": 1}
  }
}`

func TestJSONSchema(t *testing.T) {
	schema, err := NewJSONSchema([]byte(orderSchema))
	require.NoError(t, err)

	assert.True(t, schema.Matches(body(`{"id":"o-1","qty":2}`)))
	assert.False(t, schema.Matches(body(`{"id":"o-1","qty":0}`)))
	assert.False(t, schema.Matches(body(`{"qty":2}`)))
	assert.False(t, schema.Matches(body(`not json`)))

	assert.Error(t, schema.Validate([]byte(`{"id":1,"qty":2}`)))
}

func TestJSONSchemaFromValue(t *testing.T) {
	schema, err := NewJSONSchemaFromValue(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"status"},
	})
	require.NoError(t, err)

	assert.True(t, schema.Matches(body(`{"status":"ok"}`)))
	assert.False(t, schema.Matches(body(`{}`)))
}

func TestJSONSchemaInvalid(t *testing.T) {
	_, err := NewJSONSchema([]byte(`{"type": 12}`))
	assert.Error(t, err)

	_, err = NewJSONSchema([]byte(`{not json`))
	assert.Error(t, err)
}
