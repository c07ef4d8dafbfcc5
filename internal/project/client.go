package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

var tsTypes = map[string]string{
	ir.TypeString:  "string",
	ir.TypeNumber:  "number",
	ir.TypeInteger: "number",
	ir.TypeBoolean: "boolean",
	ir.TypeArray:   "any[]",
	ir.TypeObject:  "Record<string, any>",
	ir.TypeDate:    "string",
}

func tsType(t string) string {
	if out, ok := tsTypes[t]; ok {
		return out
	}
	return "any"
}

// tsKey returns name as a property key, quoted when it is not an identifier.
func tsKey(name string) string {
	if name != "" && name == identifier(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}

// tsString returns s as a single-quoted TypeScript string literal.
func tsString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func optional(required bool) string {
	if required {
		return ""
	}
	return "?"
}

// Client renders doc as TypeScript: an interface per model and an
// ApiClient class with one async method per endpoint.
func Client(doc ir.Document) string {
	var b strings.Builder
	b.WriteString("// Generated TypeScript types\n")

	for name, m := range doc.Schema.All() {
		fmt.Fprintf(&b, "\ninterface %s {\n", typeName(name))
		for _, f := range m.Fields {
			if f.Name == "" {
				continue
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", tsKey(f.Name), optional(f.Required), tsType(f.Type))
		}
		b.WriteString("}\n")
	}

	b.WriteString("\n// API Client\nclass ApiClient {\n")
	names := operationNames(doc.Endpoints)
	for i, e := range doc.Endpoints {
		if i > 0 {
			b.WriteString("\n")
		}
		writeClientMethod(&b, doc, e, names[i])
	}
	b.WriteString("}\n")
	return b.String()
}

func writeClientMethod(b *strings.Builder, doc ir.Document, e ir.Endpoint, name string) {
	result := responseModel(doc, e)
	if result == "" {
		result = "any"
	}

	var params []ir.Parameter
	for _, p := range e.Parameters {
		if p.Name != "" {
			params = append(params, p)
		}
	}

	fmt.Fprintf(b, "  async %s(", name)
	if len(params) > 0 {
		b.WriteString("params: {\n")
		for _, p := range params {
			fmt.Fprintf(b, "    %s%s: %s;\n", tsKey(p.Name), optional(p.Required), tsType(p.Type))
		}
		b.WriteString("  }")
	}
	fmt.Fprintf(b, "): Promise<%s> {\n", result)
	fmt.Fprintf(b, "    const res = await fetch(%s, {\n", tsString(e.Path))
	fmt.Fprintf(b, "      method: %s,\n", tsString(string(e.Method)))
	if len(params) > 0 && e.Method != ir.MethodGet {
		b.WriteString("      body: JSON.stringify(params),\n")
	}
	b.WriteString("    });\n    return res.json();\n  }\n")
}
