package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

var protoTypes = map[string]string{
	ir.TypeString:  "string",
	ir.TypeNumber:  "double",
	ir.TypeInteger: "int32",
	ir.TypeBoolean: "bool",
	ir.TypeArray:   "repeated string",
	ir.TypeObject:  "map<string, string>",
}

func protoType(t string) string {
	if out, ok := protoTypes[t]; ok {
		return out
	}
	return "string"
}

// IDL renders doc as a proto3 file: one message per model with fields
// numbered from 1 in order, a request message per endpoint built from its
// parameters, and one service with an rpc per endpoint. An endpoint whose
// responseSchema does not resolve returns an empty {Name}Response message.
func IDL(doc ir.Document, opts ...Option) string {
	o := buildOptions(opts)

	var b strings.Builder
	fmt.Fprintf(&b, "syntax = \"proto3\";\n\npackage %s;\n", o.Package)

	for name, m := range doc.Schema.All() {
		fields := make([]string, 0, len(m.Fields))
		for _, f := range m.Fields {
			if id := identifier(f.Name); id != "" {
				fields = append(fields, protoType(f.Type)+" "+id)
			}
		}
		writeMessage(&b, typeName(name), fields)
	}

	names := operationNames(doc.Endpoints)
	var rpcs strings.Builder
	for i, e := range doc.Endpoints {
		rpc := upperFirst(names[i])

		params := namedParameters(e.Parameters)
		fields := make([]string, len(params))
		for j, p := range params {
			fields[j] = protoType(p.Type) + " " + identifier(p.Name)
		}
		writeMessage(&b, rpc+"Request", fields)

		response := responseModel(doc, e)
		if response == "" {
			response = rpc + "Response"
			writeMessage(&b, response, nil)
		}
		fmt.Fprintf(&rpcs, "  rpc %s(%sRequest) returns (%s);\n", rpc, rpc, response)
	}

	fmt.Fprintf(&b, "\nservice %s {\n%s}\n", o.Service, rpcs.String())
	return b.String()
}

// writeMessage emits a message whose fields are "type name" pairs.
func writeMessage(b *strings.Builder, name string, fields []string) {
	fmt.Fprintf(b, "\nmessage %s {\n", name)
	for i, f := range fields {
		fmt.Fprintf(b, "  %s = %d;\n", f, i+1)
	}
	b.WriteString("}\n")
}
