package schema

import (
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fields ...FieldDescriptor) RecordDescriptor {
	return RecordDescriptor{TypeName: "Cake", PackageName: "entity", TableName: "cakes", Kind: KindStruct, Fields: fields}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		fields   []FieldDescriptor
		expected []string
	}{
		{
			name: "identity dropped",
			fields: []FieldDescriptor{
				{Name: "ID", Type: "int64", IsIdentity: true},
				{Name: "Name", Type: "string"},
			},
			expected: []string{"Name"},
		},
		{
			name: "order kept around identities",
			fields: []FieldDescriptor{
				{Name: "A", Type: "int"},
				{Name: "TenantID", Type: "int64", IsIdentity: true},
				{Name: "B", Type: "string"},
				{Name: "ID", Type: "int64", IsIdentity: true},
				{Name: "C", Type: "bool"},
			},
			expected: []string{"A", "B", "C"},
		},
		{
			name: "no identity",
			fields: []FieldDescriptor{
				{Name: "A", Type: "int"},
				{Name: "B", Type: "string"},
			},
			expected: []string{"A", "B"},
		},
		{
			name:     "only identity",
			fields:   []FieldDescriptor{{Name: "ID", Type: "int64", IsIdentity: true}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := record(tt.fields...)
			derived, err := Project(src)
			require.NoError(t, err)

			identities := len(src.IdentityFields())
			assert.Len(t, derived.Fields, len(tt.fields)-identities)
			assert.Equal(t, tt.expected, lo.Map(derived.Fields, func(f ProjectedField, _ int) string {
				return f.Name
			}))
			for _, f := range derived.Fields {
				assert.False(t, f.IsIdentity)
				orig, ok := src.Field(f.Name)
				require.True(t, ok)
				assert.Equal(t, orig.Type, f.Type)
			}
			assert.Equal(t, "CakeNewModel", derived.TypeName)
		})
	}
}

func TestProjectPancake(t *testing.T) {
	derived, err := Project(record(
		FieldDescriptor{Name: "ID", Type: "int", Column: "id", IsIdentity: true},
		FieldDescriptor{Name: "Name", Type: "string", Column: "name"},
	))
	require.NoError(t, err)
	require.Len(t, derived.Fields, 1)
	assert.Equal(t, "Name", derived.Fields[0].Alias)
	assert.Equal(t, "name", derived.Fields[0].Param)

	desc := derived.Descriptor()
	assert.Equal(t, "CakeNewModel", desc.TypeName)
	assert.Equal(t, "cakes", desc.TableName)
	assert.Empty(t, desc.IdentityFields())
}

func TestProjectFlattensEmbedded(t *testing.T) {
	derived, err := Project(record(
		FieldDescriptor{Name: "ID", Type: "int64", Column: "id", IsIdentity: true, Index: []int{0}},
		FieldDescriptor{Name: "Name", Type: "string", Column: "owner_name", Parent: "Owner", Index: []int{1, 0}},
	))
	require.NoError(t, err)
	require.Len(t, derived.Fields, 1)

	name := derived.Fields[0]
	assert.Equal(t, "owner_name", name.Column)
	assert.Empty(t, name.Parent)
	assert.Nil(t, name.Index)
}

func TestProjectIsDeterministic(t *testing.T) {
	src := record(
		FieldDescriptor{Name: "ID", Type: "int64", IsIdentity: true},
		FieldDescriptor{Name: "r#type", Type: "string"},
		FieldDescriptor{Name: "Flavor", Type: "string", Alias: mo.Some("Taste")},
	)
	first, err := Project(src)
	require.NoError(t, err)
	second, err := Project(src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProjectUnsupportedShape(t *testing.T) {
	for _, kind := range []Kind{KindNamed, KindInterface, KindAlias, KindFunc, KindGeneric, KindOther} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Project(RecordDescriptor{TypeName: "Status", Kind: kind})
			require.Error(t, err)
			assert.True(t, IsUnsupportedShape(err))
			assert.Contains(t, err.Error(), ShapeDiagnostic)
		})
	}
}

func TestResolveAliases(t *testing.T) {
	fields, err := Resolve(record(
		FieldDescriptor{Name: "ID", Type: "int64", IsIdentity: true},
		FieldDescriptor{Name: "Type", Type: "string"},
		FieldDescriptor{Name: "Flavor", Type: "string", Alias: mo.Some("Taste")},
	))
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, "ID", fields[0].Alias)
	assert.Equal(t, "id", fields[0].Param)
	assert.Equal(t, "Type", fields[1].Alias)
	assert.Equal(t, "type_", fields[1].Param)
	assert.Equal(t, "Taste", fields[2].Alias)
	assert.Equal(t, "flavor", fields[2].Param)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldDescriptor
	}{
		{
			name: "override is not an identifier",
			fields: []FieldDescriptor{
				{Name: "Name", Type: "string", Alias: mo.Some("first name")},
			},
		},
		{
			name: "override collides with derived alias",
			fields: []FieldDescriptor{
				{Name: "Name", Type: "string"},
				{Name: "Title", Type: "string", Alias: mo.Some("Name")},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(record(tt.fields...))
			assert.Error(t, err)
		})
	}
}

func TestResolveDistinctParams(t *testing.T) {
	fields, err := Resolve(record(
		FieldDescriptor{Name: "Id", Type: "int"},
		FieldDescriptor{Name: "ID", Type: "int", Alias: mo.Some("Ident")},
	))
	require.NoError(t, err)
	assert.Equal(t, "id", fields[0].Param)
	assert.Equal(t, "id2", fields[1].Param)
}
