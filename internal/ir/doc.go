// Package ir provides the document model for API designs.
//
// This package contains the value types every other package operates on.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Documents are values: writers clone and return, never mutate in place
//   - Schema keeps insertion order; renaming moves a model to the end
//   - NO float types in the document (min/max bounds are int64)
//   - JSON tags use the camelCase names of the editor wire format
package ir
