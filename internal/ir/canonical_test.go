package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Endpoints: []Endpoint{{
			Method:      MethodGet,
			Path:        "/api/products",
			Description: "List <all> products & more",
			Parameters: []Parameter{{
				Name:       "limit",
				Type:       TypeNumber,
				Validation: &Constraints{Min: Int64(1), Max: Int64(100)},
			}},
			ResponseSchema: "Product",
			Tags:           []string{"catalog"},
			Security:       []string{"bearer"},
		}},
		Schema: NewSchema(NamedModel{"Product", Model{
			Description: "A product",
			Fields:      []Field{{Name: "id", Type: TypeString, Required: true}},
		}}),
	}
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, string(data), "List <all> products & more")
	assert.NotContains(t, string(data), `\u003c`)
	assert.NotContains(t, string(data), "\n")
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	doc := sampleDocument()

	first, err := MarshalCanonical(doc)
	require.NoError(t, err)
	second, err := MarshalCanonical(doc.Clone())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as e + combining acute (NFD) vs precomposed (NFC)
	decomposed := sampleDocument()
	decomposed.Endpoints[0].Description = "cafe\u0301"
	composed := sampleDocument()
	composed.Endpoints[0].Description = "caf\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)

	assert.Equal(t, string(b), string(a))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	doc := sampleDocument()
	doc.Endpoints[0].Tags[0] = "cafe\u0301"

	_ = Normalize(doc)

	assert.Equal(t, "cafe\u0301", doc.Endpoints[0].Tags[0])
}

func TestMarshalCanonicalSchemaOrderMatters(t *testing.T) {
	a := Document{Schema: NewSchema(
		NamedModel{"A", Model{Description: "a"}},
		NamedModel{"B", Model{Description: "b"}},
	)}
	b := Document{Schema: NewSchema(
		NamedModel{"B", Model{Description: "b"}},
		NamedModel{"A", Model{Description: "a"}},
	)}

	ca, err := MarshalCanonical(a)
	require.NoError(t, err)
	cb, err := MarshalCanonical(b)
	require.NoError(t, err)

	assert.NotEqual(t, string(ca), string(cb))
}
