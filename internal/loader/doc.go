// Package loader reads and writes API design documents.
//
// Documents are accepted as JSON (.json), YAML (.yaml, .yml) or CUE (.cue).
// CUE sources are unified with the embedded #Document definition before
// decoding, so defaults are filled and unknown keys are rejected by CUE
// itself. Every loaded document is run through validate.Document; a file
// that cannot be decoded fails with code E204.
//
// Seed templates (ecommerce, blank) are embedded YAML documents.
package loader
