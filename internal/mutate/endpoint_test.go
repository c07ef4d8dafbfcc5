package mutate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

func docWithEndpoints(endpoints ...ir.Endpoint) ir.Document {
	doc := ir.NewDocument()
	doc.Endpoints = endpoints
	return doc
}

func TestAddEndpointAppendsDefault(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	require.Len(t, doc.Endpoints, 1)
	e := doc.Endpoints[0]
	assert.Equal(t, ir.MethodGet, e.Method)
	assert.Equal(t, "/api/new-endpoint", e.Path)
	assert.Equal(t, "", e.Description)
	assert.Empty(t, e.Parameters)
	assert.Empty(t, e.Tags)
	assert.Equal(t, []string{"bearer"}, e.Security)

	_, err := validate.Endpoint(e)
	assert.NoError(t, err, "default endpoint must pass validation")
}

func TestAddEndpointDoesNotMutateInput(t *testing.T) {
	before := docWithEndpoints(NewEndpoint())
	after := AddEndpoint(before)

	assert.Len(t, before.Endpoints, 1)
	assert.Len(t, after.Endpoints, 2)
}

func TestUpdateEndpointMergesPatch(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	out, err := UpdateEndpoint(doc, 0, EndpointPatch{
		Method: Ptr(ir.MethodPost),
		Path:   Ptr("/api/orders"),
	})
	require.NoError(t, err)

	e := out.Endpoints[0]
	assert.Equal(t, ir.MethodPost, e.Method)
	assert.Equal(t, "/api/orders", e.Path)
	assert.Equal(t, []string{"bearer"}, e.Security, "untouched attributes survive")
	assert.Equal(t, "/api/new-endpoint", doc.Endpoints[0].Path, "input unchanged")
}

func TestUpdateEndpointInvalidMethodRejected(t *testing.T) {
	doc := docWithEndpoints(
		ir.Endpoint{Method: ir.MethodGet, Path: "/a", Parameters: []ir.Parameter{}, Tags: []string{}, Security: []string{}},
		ir.Endpoint{Method: ir.MethodPost, Path: "/b", Parameters: []ir.Parameter{}, Tags: []string{}, Security: []string{}},
	)

	out, err := UpdateEndpoint(doc, 1, EndpointPatch{Method: Ptr(ir.Method("INVALID"))})
	require.Error(t, err)
	assert.True(t, validate.IsValidationError(err))
	assert.Equal(t, doc, out, "endpoint list must be unchanged")
}

func TestUpdateEndpointIndexOutOfRange(t *testing.T) {
	doc := docWithEndpoints(NewEndpoint())

	_, err := UpdateEndpoint(doc, 3, EndpointPatch{})
	require.Error(t, err)

	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "endpoints", ie.Collection)
	assert.Equal(t, 3, ie.Index)
	assert.Equal(t, 1, ie.Len)
	assert.True(t, IsContractError(err))

	_, err = UpdateEndpoint(doc, -1, EndpointPatch{})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRemoveEndpointShiftsLater(t *testing.T) {
	doc := docWithEndpoints(
		ir.Endpoint{Method: ir.MethodGet, Path: "/a"},
		ir.Endpoint{Method: ir.MethodGet, Path: "/b"},
		ir.Endpoint{Method: ir.MethodGet, Path: "/c"},
	)

	out, err := RemoveEndpoint(doc, 1)
	require.NoError(t, err)
	require.Len(t, out.Endpoints, 2)
	assert.Equal(t, "/a", out.Endpoints[0].Path)
	assert.Equal(t, "/c", out.Endpoints[1].Path)
	assert.Len(t, doc.Endpoints, 3)
}

func TestParameterLifecycle(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	doc, err := AddParameter(doc, 0, ir.Parameter{Name: "page", Type: ir.TypeNumber})
	require.NoError(t, err)
	doc, err = AddParameter(doc, 0, ir.Parameter{Name: "limit", Type: ir.TypeNumber})
	require.NoError(t, err)

	doc, err = UpdateParameter(doc, 0, 0, ParameterPatch{
		Required:   Ptr(true),
		Validation: &ir.Constraints{Min: ir.Int64(1)},
	})
	require.NoError(t, err)

	params := doc.Endpoints[0].Parameters
	require.Len(t, params, 2)
	assert.True(t, params[0].Required)
	require.NotNil(t, params[0].Validation)
	assert.Equal(t, int64(1), *params[0].Validation.Min)

	doc, err = UpdateParameter(doc, 0, 0, ParameterPatch{ClearValidation: true})
	require.NoError(t, err)
	assert.Nil(t, doc.Endpoints[0].Parameters[0].Validation)

	doc, err = RemoveParameter(doc, 0, 0)
	require.NoError(t, err)
	require.Len(t, doc.Endpoints[0].Parameters, 1)
	assert.Equal(t, "limit", doc.Endpoints[0].Parameters[0].Name)
}

func TestAddParameterRequiresType(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	out, err := AddParameter(doc, 0, ir.Parameter{Name: "q"})
	require.Error(t, err)
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "parameter", ve.Object)
	assert.Equal(t, doc, out)
}

func TestUpdateParameterIndexOutOfRange(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	_, err := UpdateParameter(doc, 0, 0, ParameterPatch{})
	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "endpoints[0].parameters", ie.Collection)
}

func TestAddSuggestedParametersAllOrNothing(t *testing.T) {
	doc := AddEndpoint(ir.NewDocument())

	out, err := AddSuggestedParameters(doc, 0, []ir.Parameter{
		{Name: "page", Type: ir.TypeNumber},
		{Name: "limit"},
	})
	require.Error(t, err)
	assert.Equal(t, doc, out)

	out, err = AddSuggestedParameters(doc, 0, []ir.Parameter{
		{Name: "page", Type: ir.TypeNumber},
		{Name: "limit", Type: ir.TypeNumber},
	})
	require.NoError(t, err)
	require.Len(t, out.Endpoints[0].Parameters, 2)
	assert.Equal(t, "limit", out.Endpoints[0].Parameters[1].Name)
}
