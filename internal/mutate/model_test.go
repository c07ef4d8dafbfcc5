package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

func docWithModels(entries ...ir.NamedModel) ir.Document {
	doc := ir.NewDocument()
	doc.Schema = ir.NewSchema(entries...)
	return doc
}

func userModel() ir.Model {
	return ir.Model{
		Description:   "A user",
		Fields:        []ir.Field{{Name: "id", Type: ir.TypeString, Required: true}},
		Relationships: []ir.Relationship{},
	}
}

func TestAddModelDefault(t *testing.T) {
	doc := AddModel(ir.NewDocument())

	m, ok := doc.Schema.Get("NewModel")
	require.True(t, ok)
	assert.Equal(t, "Description of the model", m.Description)
	assert.Empty(t, m.Fields)
	assert.Empty(t, m.Relationships)

	_, err := validate.Model(m)
	assert.NoError(t, err)
}

func TestAddModelOverwritesInPlace(t *testing.T) {
	doc := docWithModels(
		ir.NamedModel{Name: "NewModel", Model: userModel()},
		ir.NamedModel{Name: "Order", Model: ir.Model{Description: "orders"}},
	)

	out := AddModel(doc)
	assert.Equal(t, []string{"NewModel", "Order"}, out.Schema.Names())
	m, _ := out.Schema.Get("NewModel")
	assert.Empty(t, m.Fields, "existing NewModel is replaced by the default")
}

func TestRenameModel(t *testing.T) {
	doc := docWithModels(
		ir.NamedModel{Name: "User", Model: userModel()},
		ir.NamedModel{Name: "Order", Model: ir.Model{Description: "orders"}},
	)

	out, err := RenameModel(doc, "User", "Account")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order", "Account"}, out.Schema.Names())

	m, ok := out.Schema.Get("Account")
	require.True(t, ok)
	assert.Equal(t, userModel(), m)
	assert.True(t, doc.Schema.Has("User"), "input unchanged")
}

func TestRenameModelOntoExistingReplaces(t *testing.T) {
	doc := docWithModels(
		ir.NamedModel{Name: "User", Model: userModel()},
		ir.NamedModel{Name: "Order", Model: ir.Model{Description: "orders"}},
	)

	out, err := RenameModel(doc, "Order", "User")
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, out.Schema.Names())
	m, _ := out.Schema.Get("User")
	assert.Equal(t, "orders", m.Description)
}

func TestRenameModelErrors(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	_, err := RenameModel(doc, "Ghost", "X")
	assert.ErrorIs(t, err, ErrModelNotFound)

	out, err := RenameModel(doc, "User", " ")
	require.Error(t, err)
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{validate.ErrEmptyName}, ve.Codes())
	assert.Equal(t, doc, out)
}

func TestUpdateModelRejectsEmptyDescription(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	out, err := UpdateModel(doc, "User", ModelPatch{Description: Ptr("")})
	require.Error(t, err)
	assert.Equal(t, doc, out)

	out, err = UpdateModel(doc, "User", ModelPatch{Description: Ptr("Registered user")})
	require.NoError(t, err)
	m, _ := out.Schema.Get("User")
	assert.Equal(t, "Registered user", m.Description)
	assert.Len(t, m.Fields, 1)
}

func TestRemoveModel(t *testing.T) {
	doc := docWithModels(
		ir.NamedModel{Name: "User", Model: userModel()},
		ir.NamedModel{Name: "Order", Model: ir.Model{Description: "orders"}},
	)

	out, err := RemoveModel(doc, "User")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order"}, out.Schema.Names())

	_, err = RemoveModel(out, "User")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestAddFieldAppends(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	out, err := AddField(doc, "User", ir.Field{Name: "email", Type: ir.TypeString})
	require.NoError(t, err)

	m, _ := out.Schema.Get("User")
	require.Len(t, m.Fields, 2)
	assert.Equal(t, "email", m.Fields[1].Name)
}

func TestAddFieldRejectsEmptyName(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	out, err := AddField(doc, "User", ir.Field{Type: ir.TypeString})
	require.Error(t, err)
	ve, ok := validate.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "field", ve.Object)
	assert.Equal(t, doc, out)
}

func TestAddFieldDuplicateNameAllowed(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	out, err := AddField(doc, "User", ir.Field{Name: "id", Type: ir.TypeNumber})
	require.NoError(t, err)

	warnings := validate.References(out)
	require.Len(t, warnings, 1)
	assert.Equal(t, validate.WarnDuplicateField, warnings[0].Kind)
}

func TestAddSuggestedFieldsAllOrNothing(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	out, err := AddSuggestedFields(doc, "User", []ir.Field{
		{Name: "createdAt", Type: ir.TypeDate},
		{Name: "", Type: ir.TypeDate},
	})
	require.Error(t, err)
	assert.Equal(t, doc, out)

	out, err = AddSuggestedFields(doc, "User", []ir.Field{
		{Name: "createdAt", Type: ir.TypeDate},
		{Name: "updatedAt", Type: ir.TypeDate},
	})
	require.NoError(t, err)
	m, _ := out.Schema.Get("User")
	require.Len(t, m.Fields, 3)
	assert.Equal(t, "updatedAt", m.Fields[2].Name)
}

func TestUpdateAndRemoveField(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})
	doc, err := AddField(doc, "User", ir.Field{Name: "age", Type: ir.TypeNumber})
	require.NoError(t, err)

	doc, err = UpdateField(doc, "User", 1, FieldPatch{
		Description: Ptr("Age in years"),
		Validation:  &ir.Constraints{Min: ir.Int64(0), Max: ir.Int64(150)},
	})
	require.NoError(t, err)
	m, _ := doc.Schema.Get("User")
	assert.Equal(t, "Age in years", m.Fields[1].Description)
	assert.Equal(t, int64(150), *m.Fields[1].Validation.Max)

	_, err = UpdateField(doc, "User", 1, FieldPatch{Type: Ptr("")})
	assert.True(t, validate.IsValidationError(err))

	_, err = UpdateField(doc, "User", 9, FieldPatch{})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	doc, err = RemoveField(doc, "User", 0)
	require.NoError(t, err)
	m, _ = doc.Schema.Get("User")
	require.Len(t, m.Fields, 1)
	assert.Equal(t, "age", m.Fields[0].Name)
}

func TestRelationshipLifecycle(t *testing.T) {
	doc := docWithModels(
		ir.NamedModel{Name: "User", Model: userModel()},
		ir.NamedModel{Name: "Order", Model: ir.Model{Description: "orders"}},
	)

	doc, err := AddRelationship(doc, "Order", ir.Relationship{Type: ir.ManyToOne, Model: "User", Field: "id"})
	require.NoError(t, err)
	assert.Empty(t, validate.References(doc))

	doc, err = UpdateRelationship(doc, "Order", 0, RelationshipPatch{Field: Ptr("email")})
	require.NoError(t, err, "dangling targets are warnings, not errors")
	warnings := validate.References(doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, validate.WarnRelationshipField, warnings[0].Kind)

	_, err = UpdateRelationship(doc, "Order", 0, RelationshipPatch{Type: Ptr(ir.RelationshipType("some"))})
	assert.True(t, validate.IsValidationError(err))

	doc, err = RemoveRelationship(doc, "Order", 0)
	require.NoError(t, err)
	m, _ := doc.Schema.Get("Order")
	assert.Empty(t, m.Relationships)
}

func TestAddRelationshipRequiresTarget(t *testing.T) {
	doc := docWithModels(ir.NamedModel{Name: "User", Model: userModel()})

	_, err := AddRelationship(doc, "User", ir.Relationship{Type: ir.OneToMany})
	require.Error(t, err)
	ve, _ := validate.AsValidationError(err)
	assert.Equal(t, "relationship", ve.Object)
}

func TestModelOpsUnknownModel(t *testing.T) {
	doc := ir.NewDocument()

	_, err := AddField(doc, "Ghost", ir.Field{Name: "a", Type: "string"})
	assert.ErrorIs(t, err, ErrModelNotFound)
	_, err = UpdateModel(doc, "Ghost", ModelPatch{})
	assert.ErrorIs(t, err, ErrModelNotFound)
	_, err = AddRelationship(doc, "Ghost", ir.Relationship{})
	assert.ErrorIs(t, err, ErrModelNotFound)
}
