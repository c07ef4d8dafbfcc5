package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

// lastSegment returns the text after the final "/" of a path.
func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// identifier turns s into an ASCII identifier. Characters outside
// [A-Za-z0-9_] separate words and the first letter of each later word is
// upper-cased: "new-endpoint" -> "newEndpoint", "{id}" -> "id".
// A leading digit is prefixed with "_".
func identifier(s string) string {
	var b strings.Builder
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isIdentChar(c) {
			upperNext = b.Len() > 0
			continue
		}
		if upperNext && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		b.WriteByte(c)
	}
	out := b.String()
	if out != "" && isDigit(out[0]) {
		out = "_" + out
	}
	return out
}

func isIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+('a'-'A')) + s[1:]
}

func upperFirst(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-('a'-'A')) + s[1:]
}

// typeName is the identifier used for a model in generated code.
func typeName(model string) string {
	return identifier(model)
}

// operationNames derives one method name per endpoint from the last path
// segment. An empty segment falls back to "endpoint{index}"; a repeated
// name gets the lowest numeric suffix not already taken ("users", "users2").
func operationNames(endpoints []ir.Endpoint) []string {
	names := make([]string, len(endpoints))
	used := make(map[string]bool, len(endpoints))
	next := make(map[string]int, len(endpoints))
	for i, e := range endpoints {
		base := lowerFirst(identifier(lastSegment(e.Path)))
		if base == "" {
			base = fmt.Sprintf("endpoint%d", i)
		}
		name := base
		if used[name] {
			n := next[base]
			if n < 2 {
				n = 2
			}
			for used[fmt.Sprintf("%s%d", base, n)] {
				n++
			}
			name = fmt.Sprintf("%s%d", base, n)
			next[base] = n + 1
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// namedParameters returns the parameters that have a usable name.
func namedParameters(params []ir.Parameter) []ir.Parameter {
	out := make([]ir.Parameter, 0, len(params))
	for _, p := range params {
		if identifier(p.Name) != "" {
			out = append(out, p)
		}
	}
	return out
}
