// Package schema describes record types independently of how they were found
// (parsed from source or reflected at runtime) and derives creation types from
// them.
package schema

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Kind 类型声明的形状
type Kind int

const (
	KindStruct    Kind = iota // type T struct{...}
	KindNamed                 // type T int, type T []string ...
	KindInterface             // type T interface{...}
	KindAlias                 // type T = U
	KindFunc                  // type T func(...)
	KindGeneric               // type T[P any] ...
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindNamed:
		return "named"
	case KindInterface:
		return "interface"
	case KindAlias:
		return "alias"
	case KindFunc:
		return "func"
	case KindGeneric:
		return "generic"
	default:
		return "other"
	}
}

// FieldDescriptor 字段描述
type FieldDescriptor struct {
	Name       string            // 字段名
	Type       string            // 声明类型, 例如 decimal.Decimal
	Column     string            // 数据库列名
	IsIdentity bool              // 是否为主键
	Alias      mo.Option[string] // enum_name 覆盖的列别名
	Tag        string            // 原始结构体标签(不含反引号)
	Parent     string            // 经由具名嵌入字段访问时的选择器, 例如 Author 或 Post.Author
	Index      []int             // 反射得到的字段索引路径, 源码解析时为空
}

// RecordDescriptor 记录类型描述
type RecordDescriptor struct {
	TypeName    string
	PackageName string
	TableName   string
	Kind        Kind
	Fields      []FieldDescriptor
	Imports     map[string]string // key: 包名或别名, value: import 路径
}

// IdentityFields returns the fields marked as primary key, in declaration order.
func (r RecordDescriptor) IdentityFields() []FieldDescriptor {
	return lo.Filter(r.Fields, func(f FieldDescriptor, _ int) bool {
		return f.IsIdentity
	})
}

// Field looks a field up by its Go name.
func (r RecordDescriptor) Field(name string) (FieldDescriptor, bool) {
	return lo.Find(r.Fields, func(f FieldDescriptor) bool {
		return f.Name == name
	})
}
