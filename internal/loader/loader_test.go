package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"doc.json", FormatJSON},
		{"doc.yaml", FormatYAML},
		{"doc.YML", FormatYAML},
		{"dir/doc.cue", FormatCUE},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatOf("doc.txt")
	assert.ErrorContains(t, err, ".txt")
}

func TestLoadFormatsAgree(t *testing.T) {
	fromJSON, err := Load("testdata/shop.json")
	require.NoError(t, err)
	fromYAML, err := Load("testdata/shop.yaml")
	require.NoError(t, err)
	fromCUE, err := Load("testdata/shop.cue")
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "Category"}, fromJSON.Schema.Names())
	assert.Equal(t, []string{"Product", "Category"}, fromCUE.Schema.Names(), "CUE keeps declaration order")

	want := ir.MustDocumentHash(fromJSON)
	assert.Equal(t, want, ir.MustDocumentHash(fromYAML), "yaml")
	assert.Equal(t, want, ir.MustDocumentHash(fromCUE), "cue")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, validate.IsValidationError(err))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireDecodeFailure(t *testing.T, err error) {
	t.Helper()
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, []string{validate.ErrDecodeFailed}, ve.Codes())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeTemp(t, "doc.json", `{"endpoints":[],"schema":{},"extra":1}`))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.yaml", "endpoints: []\nstyle: dark\n"))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.cue", `endpoints: [], theme: "dark"`))
	requireDecodeFailure(t, err)
}

func TestDecodeRejectsUnknownModelKeys(t *testing.T) {
	_, err := Load(writeTemp(t, "doc.json",
		`{"endpoints":[],"schema":{"User":{"description":"u","fieldz":[{"name":"id","type":"string"}]}}}`))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.yaml",
		"endpoints: []\nschema:\n  User:\n    description: u\n    fieldz:\n      - {name: id, type: string}\n"))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.yaml",
		"schema:\n  User:\n    description: u\n    fields:\n      - {name: id, type: string, requird: true}\n"))
	requireDecodeFailure(t, err)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Load(writeTemp(t, "doc.json", `{"endpoints": [`))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.json", `{"endpoints":[]} {}`))
	requireDecodeFailure(t, err)

	_, err = Load(writeTemp(t, "doc.cue", `endpoints: [{method: 42}]`))
	requireDecodeFailure(t, err)
}

func TestDecodeCUEReportsPosition(t *testing.T) {
	_, err := Load(writeTemp(t, "bad.cue", "schema: User: {\n\tfields: []\n}\n"))
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok)
	// description is required by #Model and has no default
	assert.Contains(t, ve.Violations[0].Message, "description")
}

func TestDecodeRunsValidation(t *testing.T) {
	_, err := Load(writeTemp(t, "doc.yaml", "endpoints:\n  - method: FETCH\n"))
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "endpoints[0].method", ve.Violations[0].Field)
	assert.Equal(t, validate.ErrNotInEnum, ve.Violations[0].Code)
}

func TestDecodeEmptyYAML(t *testing.T) {
	doc, err := Decode(nil, FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, doc.Endpoints)
	assert.Equal(t, 0, doc.Schema.Len())
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("{}"), Format("toml"), "x.toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestWriteFileRoundTrip(t *testing.T) {
	doc, err := Load("testdata/shop.yaml")
	require.NoError(t, err)

	for _, ext := range []string{".json", ".yaml", ".cue"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, WriteFile(path, doc))

			back, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, ir.MustDocumentHash(doc), ir.MustDocumentHash(back))
		})
	}
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	doc := ir.Document{Endpoints: []ir.Endpoint{{Method: ir.MethodGet, Path: "/a?b=<c>&d"}}}
	out, err := Encode(doc, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), "/a?b=<c>&d")
}

func TestTemplates(t *testing.T) {
	assert.Equal(t, []string{"blank", "ecommerce"}, Templates())

	blank, err := Template(DefaultTemplate)
	require.NoError(t, err)
	assert.Empty(t, blank.Endpoints)
	assert.Equal(t, 0, blank.Schema.Len())

	_, err = Template("crm")
	assert.ErrorContains(t, err, "blank, ecommerce")
}

func TestEcommerceTemplate(t *testing.T) {
	doc, err := Template("ecommerce")
	require.NoError(t, err)

	require.Len(t, doc.Endpoints, 3)
	assert.Equal(t, ir.MethodGet, doc.Endpoints[0].Method)
	assert.Equal(t, "/api/products", doc.Endpoints[0].Path)
	assert.Equal(t, ir.MethodPost, doc.Endpoints[1].Method)
	assert.Equal(t, "/api/orders", doc.Endpoints[1].Path)
	assert.Equal(t, ir.MethodPut, doc.Endpoints[2].Method)
	assert.Equal(t, "/api/cart/{id}", doc.Endpoints[2].Path)

	var params []string
	for _, p := range doc.Endpoints[1].Parameters {
		params = append(params, p.Name)
		assert.True(t, p.Required)
	}
	assert.Equal(t, []string{"products", "shippingAddress", "paymentMethod"}, params)

	assert.Equal(t, []string{"Product", "Order"}, doc.Schema.Names())
	product, _ := doc.Schema.Get("Product")
	assert.Len(t, product.Fields, 5)

	assert.Empty(t, validate.References(doc))
}
