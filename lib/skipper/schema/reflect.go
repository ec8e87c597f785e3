package schema

import (
	"database/sql/driver"
	"reflect"
	"slices"
	"sync"
	"time"
)

type tabler interface {
	TableName() string
}

var (
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
	registry   sync.Map // reflect.Type -> RecordDescriptor
)

// Describe builds the RecordDescriptor of t from its struct tags, flattening
// anonymous and gorm:"embedded" struct fields the way GORM does. Pointer types
// are dereferenced. A non-struct type yields an *UnsupportedShapeError.
func Describe(t reflect.Type) (RecordDescriptor, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	record := RecordDescriptor{
		TypeName:    t.Name(),
		PackageName: packageName(t.PkgPath()),
		Kind:        reflectKind(t),
	}
	if record.Kind != KindStruct {
		return record, &UnsupportedShapeError{TypeName: t.String(), Kind: record.Kind}
	}
	record.TableName = TableName(t.Name())
	if tb, ok := reflect.New(t).Interface().(tabler); ok {
		record.TableName = tb.TableName()
	}
	record.Fields = describeFields(t, nil, "", "")
	return record, nil
}

// Of returns the cached descriptor of T.
func Of[T any]() (RecordDescriptor, error) {
	t := reflect.TypeFor[T]()
	if cached, ok := registry.Load(t); ok {
		return cached.(RecordDescriptor), nil
	}
	record, err := Describe(t)
	if err != nil {
		return record, err
	}
	registry.Store(t, record)
	return record, nil
}

// describeFields 展开嵌入结构体, index 为到 t 的索引路径, prefix 为累积的 embeddedPrefix
func describeFields(t reflect.Type, index []int, parent, prefix string) []FieldDescriptor {
	var fields []FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := ParseFieldTag(sf.Tag)
		if tag.Ignored {
			continue
		}
		path := append(slices.Clone(index), i)
		if (sf.Anonymous || tag.Embedded) && flattenable(sf.Type) {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			nested := parent
			if !sf.Anonymous {
				nested = joinSelector(parent, sf.Name)
			}
			fields = append(fields, describeFields(ft, path, nested, prefix+tag.EmbeddedPrefix)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		fields = append(fields, FieldDescriptor{
			Name:       sf.Name,
			Type:       sf.Type.String(),
			Column:     prefix + ColumnName(sf.Name, tag),
			IsIdentity: tag.PrimaryKey,
			Alias:      tag.EnumName,
			Tag:        string(sf.Tag),
			Parent:     parent,
			Index:      path,
		})
	}
	return fields
}

func joinSelector(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// flattenable 嵌入的结构体是否需要展开
func flattenable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return false
	}
	return !t.Implements(valuerType) && !reflect.PointerTo(t).Implements(valuerType)
}

func reflectKind(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Struct:
		return KindStruct
	case reflect.Interface:
		return KindInterface
	case reflect.Func:
		return KindFunc
	case reflect.Invalid:
		return KindOther
	default:
		return KindNamed
	}
}

func packageName(pkgPath string) string {
	for i := len(pkgPath) - 1; i >= 0; i-- {
		if pkgPath[i] == '/' {
			return pkgPath[i+1:]
		}
	}
	return pkgPath
}
