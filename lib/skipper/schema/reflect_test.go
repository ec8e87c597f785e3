package schema

import (
	"reflect"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reflectCake struct {
	ID      int64  `gorm:"column:id;primaryKey" json:"id"`
	Name    string `gorm:"column:name;uniqueIndex" json:"name"`
	Flavor  string `skipper:"enum_name:Taste"`
	Secret  string `gorm:"-"`
	private string
}

type auditedCake struct {
	gorm.Model
	Name string
}

func (auditedCake) TableName() string { return "audited" }

type status int

type baker struct {
	Name string
}

type bakery struct {
	ID    int64 `gorm:"primaryKey"`
	Owner baker `gorm:"embedded;embeddedPrefix:owner_"`
	Name  string
}

func TestDescribe(t *testing.T) {
	record, err := Describe(reflect.TypeOf(&reflectCake{}))
	require.NoError(t, err)

	assert.Equal(t, "reflectCake", record.TypeName)
	assert.Equal(t, "schema", record.PackageName)
	assert.Equal(t, "reflect_cakes", record.TableName)
	assert.Equal(t, KindStruct, record.Kind)

	names := lo.Map(record.Fields, func(f FieldDescriptor, _ int) string { return f.Name })
	assert.Equal(t, []string{"ID", "Name", "Flavor"}, names)

	id, _ := record.Field("ID")
	assert.True(t, id.IsIdentity)
	assert.Equal(t, "id", id.Column)
	assert.Equal(t, "int64", id.Type)

	flavor, _ := record.Field("Flavor")
	assert.Equal(t, "flavor", flavor.Column)
	assert.Equal(t, "Taste", flavor.Alias.OrEmpty())
}

func TestDescribeEmbedded(t *testing.T) {
	record, err := Describe(reflect.TypeOf(auditedCake{}))
	require.NoError(t, err)

	assert.Equal(t, "audited", record.TableName)
	names := lo.Map(record.Fields, func(f FieldDescriptor, _ int) string { return f.Name })
	assert.Equal(t, []string{"ID", "CreatedAt", "UpdatedAt", "DeletedAt", "Name"}, names)

	identities := record.IdentityFields()
	require.Len(t, identities, 1)
	assert.Equal(t, "ID", identities[0].Name)

	deletedAt, _ := record.Field("DeletedAt")
	assert.Equal(t, "deleted_at", deletedAt.Column)
}

func TestDescribeEmbeddedPrefix(t *testing.T) {
	record, err := Describe(reflect.TypeOf(bakery{}))
	require.NoError(t, err)

	owner := record.Fields[1]
	assert.Equal(t, "Name", owner.Name)
	assert.Equal(t, "owner_name", owner.Column)
	assert.Equal(t, "Owner", owner.Parent)
	assert.Equal(t, []int{1, 0}, owner.Index)

	name := record.Fields[2]
	assert.Equal(t, "name", name.Column)
	assert.Empty(t, name.Parent)
	assert.Equal(t, []int{2}, name.Index)

	// 两个 Name 字段的别名冲突
	_, err = Resolve(record)
	assert.Error(t, err)
}

func TestDescribeUnsupportedShape(t *testing.T) {
	_, err := Describe(reflect.TypeOf(status(0)))
	require.Error(t, err)
	assert.True(t, IsUnsupportedShape(err))
}

func TestOf(t *testing.T) {
	first, err := Of[reflectCake]()
	require.NoError(t, err)
	second, err := Of[*reflectCake]()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = Of[status]()
	assert.Error(t, err)
}

func TestParseFieldTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      reflect.StructTag
		expected FieldTag
	}{
		{
			name:     "primary key",
			tag:      `gorm:"column:id;primaryKey;autoIncrement"`,
			expected: FieldTag{Column: "id", PrimaryKey: true},
		},
		{
			name:     "lower-case primarykey",
			tag:      `gorm:"primarykey"`,
			expected: FieldTag{PrimaryKey: true},
		},
		{
			name:     "ignored",
			tag:      `gorm:"-:all"`,
			expected: FieldTag{Ignored: true},
		},
		{
			name:     "migration only is not ignored",
			tag:      `gorm:"-:migration"`,
			expected: FieldTag{},
		},
		{
			name:     "embedded",
			tag:      `gorm:"embedded"`,
			expected: FieldTag{Embedded: true},
		},
		{
			name:     "embedded with prefix",
			tag:      `gorm:"embedded;embeddedPrefix:owner_"`,
			expected: FieldTag{Embedded: true, EmbeddedPrefix: "owner_"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFieldTag(tt.tag))
		})
	}

	withAlias := ParseFieldTag(`gorm:"column:kind" skipper:"enum_name:Kind"`)
	assert.Equal(t, "Kind", withAlias.EnumName.OrEmpty())
	assert.Equal(t, "kind", withAlias.Column)
}
