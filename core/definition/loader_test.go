package definition_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/specx2/apimarshal/core/definition"
	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/marshal"
	"github.com/specx2/apimarshal/core/validate"
)

const petsDefinition = `
operations:
  getPet:
    method: get
    path: /pets/{id}
    summary: Fetch a pet
    input:
      id:
        in: path
        schema:
          type: integer
          minimum: 1
        example: 7
      zeta: {in: query}
      alpha: {in: query, name: a}
      mid: {in: query, required: true}
  uploadPhoto:
    method: PUT
    path: /pets/{id}/photo
    input:
      id: {in: path}
      photo: {in: body-binary, required: true}
`

func TestLoadPreservesOrder(t *testing.T) {
	ops, err := definition.Load([]byte(petsDefinition), "pets.yaml")
	require.NoError(t, err)
	require.Len(t, ops, 2)

	get := ops[0]
	assert.Equal(t, "getPet", get.ID)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "Fetch a pet", get.Summary)
	assert.Equal(t, "pets.yaml:3", get.Source)

	var properties []string
	for _, f := range get.Input.Fields() {
		properties = append(properties, f.Property)
	}
	assert.Equal(t, []string{"id", "zeta", "alpha", "mid"}, properties)

	id, _ := get.Input.Lookup("id")
	assert.True(t, id.Required)
	assert.Equal(t, "integer", id.Schema.Type())
	assert.Equal(t, 7, id.Example)
	assert.Equal(t, []interface{}{7}, validate.InputSchema(get.Input).Properties()["id"]["examples"])
	assert.Equal(t, float64(1), id.Schema["minimum"])

	alpha, _ := get.Input.Lookup("alpha")
	assert.Equal(t, "a", alpha.WireName("alpha"))
	mid, _ := get.Input.Lookup("mid")
	assert.True(t, mid.Required)

	upload := ops[1]
	prop, ok := upload.Input.BodyProperty()
	require.True(t, ok)
	assert.Equal(t, "photo", prop)
	photo, _ := upload.Input.Lookup(prop)
	assert.Equal(t, ir.BodyBinary, photo.BodyKind)
}

func TestLoadedDefinitionMarshalsInOrder(t *testing.T) {
	ops, err := definition.Load([]byte(petsDefinition), "")
	require.NoError(t, err)

	req, err := marshal.Marshal(ops[0], "https://api.test", map[string]interface{}{
		"id": 7, "mid": "m", "alpha": "x", "zeta": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://api.test/pets/7?zeta=true&a=x&mid=m", req.URL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains string
		count    int
	}{
		{name: "empty", doc: ``, contains: "no operations defined", count: 1},
		{name: "no path", doc: "operations:\n  a: {method: GET}\n", contains: `operation "a": path is required`, count: 1},
		{
			name:     "two bodies and bad location",
			doc:      "operations:\n  a:\n    path: /a\n    input:\n      x: {in: body}\n      y: {in: body-text}\n  b:\n    path: /b\n    input:\n      z: {in: form}\n",
			contains: "more than one body",
			count:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := definition.Load([]byte(tt.doc), "defs.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Len(t, multierr.Errors(err), tt.count)

			var loadErr *definition.LoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}
}

func TestLoadFileDispatchesOpenAPI(t *testing.T) {
	dir := t.TempDir()

	native := filepath.Join(dir, "native.yaml")
	require.NoError(t, os.WriteFile(native, []byte(petsDefinition), 0o600))
	ops, err := definition.LoadFile(native)
	require.NoError(t, err)
	assert.Len(t, ops, 2)

	openapi := filepath.Join(dir, "openapi.yaml")
	doc := "openapi: 3.1.0\ninfo: {title: t, version: '1'}\npaths:\n  /ping:\n    get: {operationId: ping}\n"
	require.NoError(t, os.WriteFile(openapi, []byte(doc), 0o600))
	ops, err = definition.LoadFile(openapi)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "ping", ops[0].ID)

	_, err = definition.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
