package marshal_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/marshal"
)

func TestClassifyEmptyInput(t *testing.T) {
	result := marshal.Classify(ir.MustInputDefinition(), map[string]interface{}{})
	assert.Equal(t, 0, result.Cookie.Len())
	assert.Equal(t, 0, result.Header.Len())
	assert.Equal(t, 0, result.Path.Len())
	assert.Equal(t, 0, result.Query.Len())
	assert.Nil(t, result.Body)
	assert.Equal(t, ir.ContentType(""), result.ContentType)
}

func TestClassifySimple(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("paramName", ir.InQuery()))
	result := marshal.Classify(def, map[string]interface{}{"paramName": "value"})
	assert.Equal(t, map[string]string{"paramName": "value"}, result.Query.Map())
}

func TestClassifyExtractsStringValue(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("paramName", ir.InPath()))
	result := marshal.Classify(def, map[string]interface{}{"paramName": 6})
	assert.Equal(t, map[string]string{"paramName": "6"}, result.Path.Map())
}

func TestClassifyFiltersAbsentValues(t *testing.T) {
	var nilMap map[string]interface{}
	def := ir.MustInputDefinition(
		ir.F("p1", ir.InHeader()),
		ir.F("p2", ir.InHeader()),
		ir.F("p3", ir.InCookie()),
		ir.F("p4", ir.InQuery()),
		ir.F("data", ir.InBody()),
	)
	result := marshal.Classify(def, map[string]interface{}{
		"p1":   nil,
		"p2":   "v2",
		"p4":   nilMap,
		"data": nil,
	})
	assert.Equal(t, map[string]string{"p2": "v2"}, result.Header.Map())
	assert.Equal(t, 0, result.Cookie.Len())
	assert.Equal(t, 0, result.Query.Len())
	assert.Nil(t, result.Body)
	assert.Equal(t, ir.ContentType(""), result.ContentType)
}

func TestClassifyIgnoresUndeclaredValues(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("p1", ir.InQuery()))
	result := marshal.Classify(def, map[string]interface{}{"p1": "v1", "extra": "x"})
	assert.Equal(t, []string{"p1"}, result.Query.Names())
}

func TestClassifyUsesWireName(t *testing.T) {
	def := ir.MustInputDefinition(
		ir.F("p1", ir.InQuery()),
		ir.F("p2", ir.InQuery().Named("newP2")),
	)
	result := marshal.Classify(def, map[string]interface{}{"p1": "v1", "p2": "v2"})
	assert.Equal(t, map[string]string{"p1": "v1", "newP2": "v2"}, result.Query.Map())
}

func TestClassifyKeepsDefinitionOrder(t *testing.T) {
	def := ir.MustInputDefinition(
		ir.F("z", ir.InQuery()),
		ir.F("a", ir.InQuery()),
		ir.F("m", ir.InQuery()),
	)
	result := marshal.Classify(def, map[string]interface{}{"a": 1, "m": 2, "z": 3})
	assert.Equal(t, []string{"z", "a", "m"}, result.Query.Names())
}

func TestClassifyRoutesLocations(t *testing.T) {
	def := ir.MustInputDefinition(
		ir.F("id", ir.InPath()),
		ir.F("q", ir.InQuery()),
		ir.F("trace", ir.InHeader().Named("X-Trace")),
		ir.F("session", ir.InCookie()),
	)
	result := marshal.Classify(def, map[string]interface{}{
		"id":      "u1",
		"q":       true,
		"trace":   12,
		"session": "s",
	})
	assert.Equal(t, map[string]string{"id": "u1"}, result.Path.Map())
	assert.Equal(t, map[string]string{"q": "true"}, result.Query.Map())
	assert.Equal(t, map[string]string{"X-Trace": "12"}, result.Header.Map())
	assert.Equal(t, map[string]string{"session": "s"}, result.Cookie.Map())
}

func TestClassifyBodyText(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("data", ir.InBodyText()))
	result := marshal.Classify(def, map[string]interface{}{"data": "value"})
	assert.Equal(t, "value", result.Body)
	assert.Equal(t, ir.ContentTypeText, result.ContentType)
}

func TestClassifyBodyBinary(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("data", ir.InBodyBinary()))

	payload := ir.Binary("value")
	result := marshal.Classify(def, map[string]interface{}{"data": payload})
	assert.Equal(t, payload, result.Body)
	assert.Equal(t, ir.ContentTypeOctetStream, result.ContentType)

	result = marshal.Classify(def, map[string]interface{}{"data": []byte{0, 1, 2}})
	assert.Equal(t, ir.Binary{0, 1, 2}, result.Body)

	reader := strings.NewReader("stream")
	result = marshal.Classify(def, map[string]interface{}{"data": reader})
	assert.Same(t, reader, result.Body)
}

func TestClassifyBodyJSON(t *testing.T) {
	def := ir.MustInputDefinition(ir.F("data", ir.InBody()))
	result := marshal.Classify(def, map[string]interface{}{"data": map[string]interface{}{"msg": "value"}})

	body, ok := result.Body.(string)
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, map[string]interface{}{"msg": "value"}, decoded)
	assert.Equal(t, ir.ContentTypeJSON, result.ContentType)
}
