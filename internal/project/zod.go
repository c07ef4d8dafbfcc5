package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

var zodTypes = map[string]string{
	ir.TypeString:  "z.string()",
	ir.TypeNumber:  "z.number()",
	ir.TypeInteger: "z.number().int()",
	ir.TypeBoolean: "z.boolean()",
	ir.TypeArray:   "z.array(z.any())",
	ir.TypeObject:  "z.record(z.any())",
	ir.TypeDate:    "z.string().datetime()",
}

// Constraint methods are only emitted where zod defines them.
var (
	zodSized   = map[string]bool{ir.TypeString: true, ir.TypeNumber: true, ir.TypeInteger: true, ir.TypeArray: true}
	zodPattern = map[string]bool{ir.TypeString: true}
)

// Zod renders one zod object schema per endpoint describing its
// parameters, named "{operation}Params".
func Zod(doc ir.Document) string {
	var b strings.Builder
	b.WriteString("import { z } from 'zod';\n")

	names := operationNames(doc.Endpoints)
	for i, e := range doc.Endpoints {
		fmt.Fprintf(&b, "\n// %s %s\n", e.Method, e.Path)
		fmt.Fprintf(&b, "export const %sParams = z.object({\n", names[i])
		for _, p := range e.Parameters {
			if p.Name == "" {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s,\n", tsKey(p.Name), zodSchema(p))
		}
		b.WriteString("});\n")
	}
	return b.String()
}

func zodSchema(p ir.Parameter) string {
	out, ok := zodTypes[p.Type]
	if !ok {
		out = "z.any()"
	}
	if c := p.Validation; c != nil {
		if zodSized[p.Type] {
			if c.Min != nil {
				out += fmt.Sprintf(".min(%d)", *c.Min)
			}
			if c.Max != nil {
				out += fmt.Sprintf(".max(%d)", *c.Max)
			}
		}
		if zodPattern[p.Type] && c.Pattern != "" {
			out += ".regex(/" + strings.ReplaceAll(c.Pattern, "/", `\/`) + "/)"
		}
	}
	if !p.Required {
		out += ".optional()"
	}
	return out
}
