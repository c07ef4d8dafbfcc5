// Package mutate implements the document edits behind the editor surface.
//
// Every function takes a document by value and returns a new one; the input
// is never modified. Edits that introduce or change an endpoint, parameter,
// model, field or relationship run the validate package first, and a
// validation failure returns the input unchanged together with the error.
// Out-of-range indices and unknown model names are reported as
// *IndexError and ErrModelNotFound.
//
// Each edit also has an Op form (see ops.go) so a session can record it,
// replay it and decode it from key=value arguments.
package mutate
