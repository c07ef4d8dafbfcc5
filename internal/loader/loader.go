package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

//go:embed schema.cue
var schemaCUE string

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Load reads, decodes and validates the document at path.
func Load(path string) (ir.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return ir.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(data, format, path)
}

// Decode decodes and validates a document. name labels error positions.
func Decode(data []byte, format Format, name string) (ir.Document, error) {
	var (
		doc ir.Document
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	case FormatCUE:
		doc, err = decodeCUE(data, name)
	default:
		return ir.Document{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return ir.Document{}, decodeFailure(name, err)
	}

	out, err := validate.Document(doc)
	if err != nil {
		return ir.Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// decodeFailure reports err as an E204 violation of the whole document.
func decodeFailure(name string, err error) error {
	return &validate.ValidationError{
		Object: "document",
		Violations: []validate.Violation{{
			Field:   name,
			Message: err.Error(),
			Code:    validate.ErrDecodeFailed,
		}},
	}
}

func decodeJSON(data []byte) (ir.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc ir.Document
	if err := dec.Decode(&doc); err != nil {
		return ir.Document{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ir.Document{}, errors.New("unexpected data after document")
	}
	return doc, nil
}

func decodeYAML(data []byte) (ir.Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc ir.Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ir.Document{}, nil
		}
		return ir.Document{}, err
	}
	return doc, nil
}

// decodeCUE unifies the source with #Document and decodes the concrete
// result through JSON, which keeps schema key order.
func decodeCUE(data []byte, name string) (ir.Document, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Document"))
	if err := def.Err(); err != nil {
		return ir.Document{}, fmt.Errorf("document schema: %w", err)
	}

	src := ctx.CompileBytes(data, cue.Filename(name))
	if err := src.Err(); err != nil {
		return ir.Document{}, formatCUEError(err)
	}

	v := def.Unify(src)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return ir.Document{}, formatCUEError(err)
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return ir.Document{}, formatCUEError(err)
	}
	return decodeJSON(raw)
}

// formatCUEError flattens a CUE error list into one message with positions.
func formatCUEError(err error) error {
	var parts []string
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if pos := e.Position(); pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", filepath.Base(pos.Filename()), pos.Line(), pos.Column(), msg)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return err
	}
	return errors.New(strings.Join(parts, "; "))
}
