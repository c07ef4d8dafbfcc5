package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodValid(t *testing.T) {
	for _, m := range Methods {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, Method("INVALID").Valid())
	assert.False(t, Method("get").Valid())
	assert.False(t, Method("").Valid())
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()

	clone.Endpoints[0].Parameters[0].Name = "changed"
	*clone.Endpoints[0].Parameters[0].Validation.Min = 42
	clone.Endpoints[0].Tags[0] = "changed"
	clone.Schema = clone.Schema.With("Extra", Model{Description: "x"})

	assert.Equal(t, "limit", doc.Endpoints[0].Parameters[0].Name)
	assert.Equal(t, int64(1), *doc.Endpoints[0].Parameters[0].Validation.Min)
	assert.Equal(t, "catalog", doc.Endpoints[0].Tags[0])
	assert.Equal(t, 1, doc.Schema.Len())
}

func TestClonePreservesNilSlices(t *testing.T) {
	e := Endpoint{Method: MethodGet}
	c := e.Clone()
	assert.Nil(t, c.Parameters)
	assert.Nil(t, c.Tags)
	assert.Equal(t, e, c)
}

func TestConstraintsIsZero(t *testing.T) {
	assert.True(t, Constraints{}.IsZero())
	assert.False(t, Constraints{Pattern: "^a"}.IsZero())
	assert.False(t, Constraints{Min: Int64(0)}.IsZero())
}
