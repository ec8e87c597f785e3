package schema

import (
	"go/token"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// NewModelSuffix is appended to the source type name to name the creation type.
const NewModelSuffix = "NewModel"

// ProjectedField 带有列别名与构造参数名的字段
type ProjectedField struct {
	FieldDescriptor
	Alias string // Get/Set 与谓词使用的列别名
	Param string // 构造函数参数名
}

// DerivedCreationType is a record type with every identity field removed.
type DerivedCreationType struct {
	TypeName string
	Source   RecordDescriptor
	Fields   []ProjectedField
}

// Descriptor returns the creation type as a RecordDescriptor of its own.
func (d DerivedCreationType) Descriptor() RecordDescriptor {
	return RecordDescriptor{
		TypeName:    d.TypeName,
		PackageName: d.Source.PackageName,
		TableName:   d.Source.TableName,
		Kind:        KindStruct,
		Fields: lo.Map(d.Fields, func(f ProjectedField, _ int) FieldDescriptor {
			return f.FieldDescriptor
		}),
		Imports: d.Source.Imports,
	}
}

// Resolve computes the alias and constructor parameter of every field of record,
// identity fields included. It fails on non-struct shapes and on invalid or
// duplicated aliases.
func Resolve(record RecordDescriptor) ([]ProjectedField, error) {
	if record.Kind != KindStruct {
		return nil, &UnsupportedShapeError{TypeName: record.TypeName, Kind: record.Kind}
	}
	aliases := make(map[string]string, len(record.Fields))
	params := uniqueNames{}
	out := make([]ProjectedField, 0, len(record.Fields))
	for _, f := range record.Fields {
		alias := ColumnAlias(f)
		if !token.IsIdentifier(alias) {
			return nil, errors.Wrapf(ErrInvalidAlias, "%s.%s: %q", record.TypeName, f.Name, alias)
		}
		if other, ok := aliases[alias]; ok {
			return nil, errors.Errorf("%s: fields %s and %s share the column alias %s", record.TypeName, other, f.Name, alias)
		}
		aliases[alias] = f.Name
		out = append(out, ProjectedField{
			FieldDescriptor: f,
			Alias:           alias,
			Param:           params.get(ParamName(f)),
		})
	}
	return out, nil
}

// Project derives the creation type of record: every field except the identity
// fields, in declaration order, with types unchanged.
func Project(record RecordDescriptor) (DerivedCreationType, error) {
	fields, err := Resolve(record)
	if err != nil {
		return DerivedCreationType{}, err
	}
	return DerivedCreationType{
		TypeName: record.TypeName + NewModelSuffix,
		Source:   record,
		// 创建类型的字段都在顶层
		Fields: lo.FilterMap(fields, func(f ProjectedField, _ int) (ProjectedField, bool) {
			f.Parent, f.Index = "", nil
			return f, !f.IsIdentity
		}),
	}, nil
}
