package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON encoding of a document.
// CRITICAL: This is the ONLY serialization that should be used for
// content-addressed identity (DocumentHash, journal entry IDs).
//
// Canonical form:
// 1. Struct fields in declaration order, schema models in insertion order
// 2. No HTML escaping (< > & are NOT escaped)
// 3. All strings NFC normalized
// 4. No insignificant whitespace
func MarshalCanonical(doc Document) ([]byte, error) {
	data, err := encodeNoEscape(Normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}
	return data, nil
}

// Normalize returns a copy of doc with every string NFC normalized.
// Model names are normalized too; two names that normalize to the same
// key collapse into one entry at the first position.
func Normalize(doc Document) Document {
	out := Document{}
	if doc.Endpoints != nil {
		out.Endpoints = make([]Endpoint, len(doc.Endpoints))
		for i, e := range doc.Endpoints {
			out.Endpoints[i] = normalizeEndpoint(e)
		}
	}
	for name, m := range doc.Schema.All() {
		out.Schema = out.Schema.With(nfc(name), normalizeModel(m))
	}
	return out
}

func normalizeEndpoint(e Endpoint) Endpoint {
	out := e.Clone()
	out.Path = nfc(e.Path)
	out.Description = nfc(e.Description)
	out.ResponseSchema = nfc(e.ResponseSchema)
	for i := range out.Parameters {
		p := &out.Parameters[i]
		p.Name = nfc(p.Name)
		p.Type = nfc(p.Type)
		p.Description = nfc(p.Description)
		p.Example = nfc(p.Example)
		if p.Validation != nil {
			p.Validation.Pattern = nfc(p.Validation.Pattern)
		}
	}
	nfcAll(out.Tags)
	nfcAll(out.Security)
	return out
}

func normalizeModel(m Model) Model {
	out := m.Clone()
	out.Description = nfc(m.Description)
	for i := range out.Fields {
		f := &out.Fields[i]
		f.Name = nfc(f.Name)
		f.Type = nfc(f.Type)
		f.Description = nfc(f.Description)
		f.Example = nfc(f.Example)
		f.Validation.Pattern = nfc(f.Validation.Pattern)
	}
	for i := range out.Relationships {
		r := &out.Relationships[i]
		r.Model = nfc(r.Model)
		r.Field = nfc(r.Field)
	}
	return out
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

func nfcAll(s []string) {
	for i := range s {
		s[i] = nfc(s[i])
	}
}
