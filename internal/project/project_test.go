package project

import (
	"strings"
	"testing"

	"github.com/emicklei/proto"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/mutate"
)

// fixtureDocument covers every type tag, a dangling responseSchema, a
// path parameter segment and a trailing-slash path.
func fixtureDocument() ir.Document {
	return ir.Document{
		Endpoints: []ir.Endpoint{
			{
				Method: ir.MethodGet,
				Path:   "/api/products",
				Parameters: []ir.Parameter{
					{Name: "page", Type: ir.TypeNumber, Validation: &ir.Constraints{Min: ir.Int64(1)}},
					{Name: "limit", Type: ir.TypeNumber, Validation: &ir.Constraints{Min: ir.Int64(1), Max: ir.Int64(100)}},
					{Name: "category", Type: ir.TypeString},
				},
				ResponseSchema: "Product",
			},
			{
				Method: ir.MethodPost,
				Path:   "/api/orders",
				Parameters: []ir.Parameter{
					{Name: "productId", Type: ir.TypeString, Required: true},
					{Name: "quantity", Type: ir.TypeInteger, Required: true, Validation: &ir.Constraints{Min: ir.Int64(1)}},
					{Name: "note", Type: ir.TypeString, Validation: &ir.Constraints{Pattern: "^[a-z ]*$"}},
				},
				ResponseSchema: "Order",
			},
			{
				Method:     ir.MethodDelete,
				Path:       "/api/orders/{id}",
				Parameters: []ir.Parameter{{Name: "id", Type: ir.TypeString, Required: true}},
			},
			{
				Method:         ir.MethodPut,
				Path:           "/api/cart/",
				ResponseSchema: "Ghost",
			},
		},
		Schema: ir.NewSchema(
			ir.NamedModel{Name: "Product", Model: ir.Model{
				Description: "A product",
				Fields: []ir.Field{
					{Name: "id", Type: ir.TypeString, Required: true},
					{Name: "name", Type: ir.TypeString, Required: true},
					{Name: "price", Type: ir.TypeNumber, Required: true},
					{Name: "tags", Type: ir.TypeArray},
					{Name: "attributes", Type: ir.TypeObject},
					{Name: "createdAt", Type: ir.TypeDate, Required: true},
				},
			}},
			ir.NamedModel{Name: "Order", Model: ir.Model{
				Description: "An order",
				Fields: []ir.Field{
					{Name: "id", Type: ir.TypeString, Required: true},
					{Name: "quantity", Type: ir.TypeInteger, Required: true},
				},
				Relationships: []ir.Relationship{{Type: ir.ManyToOne, Model: "Product", Field: "id"}},
			}},
		),
	}
}

func TestGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, target := range Targets {
		t.Run(string(target), func(t *testing.T) {
			out, err := Generate(fixtureDocument(), target)
			require.NoError(t, err)
			g.Assert(t, "fixture_"+string(target), []byte(out))
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, target := range Targets {
		a, err := Generate(fixtureDocument(), target)
		require.NoError(t, err)
		b, err := Generate(fixtureDocument(), target)
		require.NoError(t, err)
		assert.Equal(t, a, b, "target %s", target)
	}
}

func TestGenerateUnknownTarget(t *testing.T) {
	_, err := Generate(fixtureDocument(), "wsdl")
	assert.Error(t, err)
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("GraphQL")
	require.NoError(t, err)
	assert.Equal(t, TargetGraphQL, got)

	_, err = ParseTarget("soap")
	assert.Error(t, err)
}

func TestGraphQLNewDocumentScenario(t *testing.T) {
	doc := mutate.AddEndpoint(ir.NewDocument())
	doc = mutate.AddModel(doc)
	doc, err := mutate.AddField(doc, "NewModel", ir.Field{Name: "id", Type: ir.TypeString, Required: true})
	require.NoError(t, err)

	out := GraphQL(doc)
	assert.Contains(t, out, "type NewModel {")
	assert.Contains(t, out, "id: String!")
	assert.Contains(t, out, "type Query {\n  newEndpoint: JSON\n}")
	assert.NotContains(t, out, "type Mutation")
}

func TestGraphQLOptionalFieldHasNoBang(t *testing.T) {
	doc := mutate.AddModel(ir.NewDocument())
	doc, err := mutate.AddField(doc, "NewModel", ir.Field{Name: "id", Type: ir.TypeString})
	require.NoError(t, err)

	out := GraphQL(doc)
	assert.Contains(t, out, "  id: String\n")
	assert.NotContains(t, out, "id: String!")
}

func TestTypeMaps(t *testing.T) {
	tests := []struct {
		typ     string
		graphQL string
		proto   string
		ts      string
	}{
		{"string", "String", "string", "string"},
		{"number", "Float", "double", "number"},
		{"integer", "Int", "int32", "number"},
		{"boolean", "Boolean", "bool", "boolean"},
		{"array", "[JSON]", "repeated string", "any[]"},
		{"object", "JSON", "map<string, string>", "Record<string, any>"},
		{"date", "String", "string", "string"},
		{"uuid", "String", "string", "any"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.graphQL, graphQLType(tt.typ, false))
			assert.Equal(t, tt.proto, protoType(tt.typ))
			assert.Equal(t, tt.ts, tsType(tt.typ))
		})
	}
}

func TestOperationNames(t *testing.T) {
	endpoints := []ir.Endpoint{
		{Path: "/api/users"},
		{Path: "/api/new-endpoint"},
		{Path: "/api/users/{id}"},
		{Path: ""},
		{Path: "/api/users"},
		{Path: "/v1/2fa"},
		{Path: "/api/Reports"},
	}
	assert.Equal(t,
		[]string{"users", "newEndpoint", "id", "endpoint3", "users2", "_2fa", "reports"},
		operationNames(endpoints))
}

func TestOperationNamesSkipTakenSuffixes(t *testing.T) {
	endpoints := []ir.Endpoint{
		{Path: "/users"},
		{Path: "/v2/users"},
		{Path: "/users2"},
		{Path: "/endpoint4"},
		{Path: ""},
		{Path: "/v3/users"},
	}
	names := operationNames(endpoints)
	assert.Equal(t, []string{"users", "users2", "users22", "endpoint4", "endpoint42", "users3"}, names)

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		assert.False(t, seen[name], "duplicate operation name %q", name)
		seen[name] = true
	}
}

func TestIDLParses(t *testing.T) {
	out := IDL(fixtureDocument(), WithPackage("shop"), WithService("ShopService"))

	def, err := proto.NewParser(strings.NewReader(out)).Parse()
	require.NoError(t, err)

	var pkg, service string
	var messages, rpcs []string
	proto.Walk(def,
		proto.WithPackage(func(p *proto.Package) { pkg = p.Name }),
		proto.WithService(func(s *proto.Service) { service = s.Name }),
		proto.WithMessage(func(m *proto.Message) { messages = append(messages, m.Name) }),
		proto.WithRPC(func(r *proto.RPC) { rpcs = append(rpcs, r.Name+"->"+r.ReturnsType) }),
	)

	assert.Equal(t, "shop", pkg)
	assert.Equal(t, "ShopService", service)
	assert.Equal(t, []string{
		"Product", "Order",
		"ProductsRequest", "OrdersRequest",
		"IdRequest", "IdResponse",
		"Endpoint3Request", "Endpoint3Response",
	}, messages)
	assert.Equal(t, []string{
		"Products->Product",
		"Orders->Order",
		"Id->IdResponse",
		"Endpoint3->Endpoint3Response",
	}, rpcs)
}

func TestIDLFieldNumbering(t *testing.T) {
	out := IDL(fixtureDocument())
	assert.Contains(t, out, "message Order {\n  string id = 1;\n  int32 quantity = 2;\n}\n")
}

func TestEmptyDocument(t *testing.T) {
	doc := ir.NewDocument()

	assert.Equal(t, "# GraphQL Schema\n\nscalar JSON\n", GraphQL(doc))
	assert.Equal(t, "syntax = \"proto3\";\n\npackage api;\n\nservice APIService {\n}\n", IDL(doc))
	assert.Equal(t, "// Generated TypeScript types\n\n// API Client\nclass ApiClient {\n}\n", Client(doc))
	assert.Equal(t, "import { z } from 'zod';\n", Zod(doc))
}

func TestClientQuotesUnusualKeys(t *testing.T) {
	doc := ir.Document{Endpoints: []ir.Endpoint{{
		Method:     ir.MethodGet,
		Path:       "/it's",
		Parameters: []ir.Parameter{{Name: "x-request-id", Type: ir.TypeString, Required: true}},
	}}}

	out := Client(doc)
	assert.Contains(t, out, `    "x-request-id": string;`)
	assert.Contains(t, out, `fetch('/it\'s', {`)
}

func TestZodSkipsConstraintsZodCannotExpress(t *testing.T) {
	p := ir.Parameter{Name: "flag", Type: ir.TypeBoolean, Required: true, Validation: &ir.Constraints{Min: ir.Int64(1), Pattern: "x"}}
	assert.Equal(t, "z.boolean()", zodSchema(p))

	p = ir.Parameter{Name: "path", Type: ir.TypeString, Validation: &ir.Constraints{Pattern: "^/a/b$", Min: ir.Int64(0)}}
	assert.Equal(t, `z.string().min(0).regex(/^\/a\/b$/).optional()`, zodSchema(p))
}

func TestProjectionsIgnoreUnnamedParameters(t *testing.T) {
	doc := ir.Document{Endpoints: []ir.Endpoint{{
		Method:     ir.MethodPost,
		Path:       "/api/things",
		Parameters: []ir.Parameter{{Name: "", Type: ir.TypeString}},
	}}}

	assert.Contains(t, GraphQL(doc), "  things: JSON\n")
	assert.Contains(t, Client(doc), "  async things(): Promise<any> {\n")
	assert.Contains(t, IDL(doc), "message ThingsRequest {\n}\n")
}
