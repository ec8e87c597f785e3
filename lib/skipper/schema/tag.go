package schema

import (
	"reflect"

	"github.com/samber/mo"
	gormschema "gorm.io/gorm/schema"
)

// TagKey is the struct tag read for skipper-specific settings.
const TagKey = "skipper"

var naming = gormschema.NamingStrategy{}

// FieldTag GORM 标签与 skipper 标签中与投影相关的部分
type FieldTag struct {
	Column         string
	PrimaryKey     bool
	Ignored        bool   // gorm:"-" 或 gorm:"-:all"
	Embedded       bool   // gorm:"embedded"
	EmbeddedPrefix string // 嵌入结构体字段的列名前缀
	EnumName       mo.Option[string]
}

// ParseFieldTag reads the gorm and skipper settings of a struct tag.
// Settings are split the same way GORM does, with upper-cased keys.
func ParseFieldTag(tag reflect.StructTag) FieldTag {
	gormTag, _ := tag.Lookup("gorm")
	settings := gormschema.ParseTagSetting(gormTag, ";")

	var out FieldTag
	out.Column = settings["COLUMN"]
	_, out.PrimaryKey = settings["PRIMARYKEY"]
	if _, ok := settings["PRIMARY_KEY"]; ok {
		out.PrimaryKey = true
	}
	_, out.Embedded = settings["EMBEDDED"]
	out.EmbeddedPrefix = settings["EMBEDDEDPREFIX"]
	if v, ok := settings["-"]; ok && (v == "-" || v == "all") {
		out.Ignored = true
	}

	skipperSettings := gormschema.ParseTagSetting(tag.Get(TagKey), ";")
	if name, ok := skipperSettings["ENUM_NAME"]; ok && name != "" && name != "ENUM_NAME" {
		out.EnumName = mo.Some(name)
	}
	return out
}

// ColumnName returns the column GORM maps a field to.
func ColumnName(fieldName string, tag FieldTag) string {
	if tag.Column != "" {
		return tag.Column
	}
	return naming.ColumnName("", fieldName)
}

// TableName returns the table GORM would use for a type without a TableName method.
func TableName(typeName string) string {
	return naming.TableName(typeName)
}

// NewField builds a FieldDescriptor from a Go field name, its declared type and its raw tag.
func NewField(name, typ, rawTag string) (FieldDescriptor, bool) {
	tag := ParseFieldTag(reflect.StructTag(rawTag))
	if tag.Ignored {
		return FieldDescriptor{}, false
	}
	return FieldDescriptor{
		Name:       name,
		Type:       typ,
		Column:     ColumnName(name, tag),
		IsIdentity: tag.PrimaryKey,
		Alias:      tag.EnumName,
		Tag:        rawTag,
	}, true
}
