package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

var graphQLTypes = map[string]string{
	ir.TypeString:  "String",
	ir.TypeNumber:  "Float",
	ir.TypeInteger: "Int",
	ir.TypeBoolean: "Boolean",
	ir.TypeArray:   "[JSON]",
	ir.TypeObject:  "JSON",
}

func graphQLType(t string, required bool) string {
	out, ok := graphQLTypes[t]
	if !ok {
		out = "String"
	}
	if required {
		out += "!"
	}
	return out
}

// GraphQL renders doc as GraphQL SDL: one type per model, a Query block for
// GET endpoints and a Mutation block for the rest. Mutations with
// parameters take a single input object. Empty Query and Mutation blocks
// are omitted.
func GraphQL(doc ir.Document) string {
	var b strings.Builder
	b.WriteString("# GraphQL Schema\n\nscalar JSON\n")

	for name, m := range doc.Schema.All() {
		fmt.Fprintf(&b, "\ntype %s {\n", typeName(name))
		for _, f := range m.Fields {
			if id := identifier(f.Name); id != "" {
				fmt.Fprintf(&b, "  %s: %s\n", id, graphQLType(f.Type, f.Required))
			}
		}
		b.WriteString("}\n")
	}

	names := operationNames(doc.Endpoints)
	var queries, mutations strings.Builder
	for i, e := range doc.Endpoints {
		result := responseModel(doc, e)
		if result == "" {
			result = "JSON"
		}
		params := namedParameters(e.Parameters)

		if e.Method == ir.MethodGet {
			fmt.Fprintf(&queries, "  %s%s: %s\n", names[i], graphQLArgs(params), result)
			continue
		}
		if len(params) == 0 {
			fmt.Fprintf(&mutations, "  %s: %s\n", names[i], result)
			continue
		}
		input := upperFirst(names[i]) + "Input"
		fmt.Fprintf(&b, "\ninput %s {\n", input)
		for _, p := range params {
			fmt.Fprintf(&b, "  %s: %s\n", identifier(p.Name), graphQLType(p.Type, p.Required))
		}
		b.WriteString("}\n")
		fmt.Fprintf(&mutations, "  %s(input: %s!): %s\n", names[i], input, result)
	}

	if queries.Len() > 0 {
		fmt.Fprintf(&b, "\ntype Query {\n%s}\n", queries.String())
	}
	if mutations.Len() > 0 {
		fmt.Fprintf(&b, "\ntype Mutation {\n%s}\n", mutations.String())
	}
	return b.String()
}

func graphQLArgs(params []ir.Parameter) string {
	if len(params) == 0 {
		return ""
	}
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = identifier(p.Name) + ": " + graphQLType(p.Type, p.Required)
	}
	return "(" + strings.Join(args, ", ") + ")"
}
