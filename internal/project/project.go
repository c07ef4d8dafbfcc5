// Package project renders a document as text artifacts: a TypeScript client
// stub, a GraphQL schema, a proto3-style IDL and zod parameter schemas.
//
// Every generator is a pure function of the document. The same document
// always yields byte-identical output; models are emitted in schema order
// and endpoints in list order. Generators never fail on dangling
// references: a responseSchema that names no model is replaced by a
// placeholder type.
package project

import (
	"fmt"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

// Target names a projection.
type Target string

const (
	TargetClient  Target = "client"
	TargetGraphQL Target = "graphql"
	TargetIDL     Target = "idl"
	TargetZod     Target = "zod"
)

// Targets lists every projection target.
var Targets = []Target{TargetClient, TargetGraphQL, TargetIDL, TargetZod}

// ParseTarget converts a command-line name to a Target.
func ParseTarget(s string) (Target, error) {
	for _, t := range Targets {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown projection target %q (want one of client, graphql, idl, zod)", s)
}

// Options tunes generator output.
type Options struct {
	Package string // IDL package name
	Service string // IDL service name
}

// Option modifies Options.
type Option func(*Options)

// WithPackage sets the IDL package name. Default "api".
func WithPackage(name string) Option {
	return func(o *Options) { o.Package = name }
}

// WithService sets the IDL service name. Default "APIService".
func WithService(name string) Option {
	return func(o *Options) { o.Service = name }
}

func buildOptions(opts []Option) Options {
	o := Options{Package: "api", Service: "APIService"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Generate renders doc for target.
func Generate(doc ir.Document, target Target, opts ...Option) (string, error) {
	switch target {
	case TargetClient:
		return Client(doc), nil
	case TargetGraphQL:
		return GraphQL(doc), nil
	case TargetIDL:
		return IDL(doc, opts...), nil
	case TargetZod:
		return Zod(doc), nil
	default:
		return "", fmt.Errorf("unknown projection target %q", target)
	}
}

// responseModel returns the type name of e's response model, or "" when the
// reference is empty or does not resolve.
func responseModel(doc ir.Document, e ir.Endpoint) string {
	if e.ResponseSchema == "" || !doc.Schema.Has(e.ResponseSchema) {
		return ""
	}
	return typeName(e.ResponseSchema)
}
