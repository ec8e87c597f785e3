package skipper

import (
	"reflect"
	"sync"

	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var resolved sync.Map // reflect.Type -> []schema.ProjectedField

type reflectModel struct {
	typeName string
	value    reflect.Value
	fields   []schema.ProjectedField
}

// Reflect adapts a pointer to a GORM struct into a Model. Columns and aliases
// are the ones newmodelgen would generate for the same type.
func Reflect(ptr any) (Model, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, errors.Errorf("skipper: Reflect needs a non-nil pointer, got %T", ptr)
	}
	fields, err := resolve(v.Type().Elem())
	if err != nil {
		return nil, err
	}
	return &reflectModel{typeName: v.Type().Elem().Name(), value: v.Elem(), fields: fields}, nil
}

// Columns returns every column of the struct T points to, identity included.
func Columns(ptr any) ([]Column, error) {
	fields, err := resolve(reflect.TypeOf(ptr))
	if err != nil {
		return nil, err
	}
	return lo.Map(fields, func(f schema.ProjectedField, _ int) Column { return column(f) }), nil
}

func resolve(t reflect.Type) ([]schema.ProjectedField, error) {
	if cached, ok := resolved.Load(t); ok {
		return cached.([]schema.ProjectedField), nil
	}
	record, err := schema.Describe(t)
	if err != nil {
		return nil, err
	}
	fields, err := schema.Resolve(record)
	if err != nil {
		return nil, err
	}
	resolved.Store(t, fields)
	return fields, nil
}

func column(f schema.ProjectedField) Column {
	return Column{Alias: f.Alias, Name: f.Column}
}

func (m *reflectModel) ConditionColumns() []Column {
	return lo.FilterMap(m.fields, func(f schema.ProjectedField, _ int) (Column, bool) {
		return column(f), !f.IsIdentity
	})
}

func (m *reflectModel) lookup(c Column) (schema.ProjectedField, bool) {
	return lo.Find(m.fields, func(f schema.ProjectedField) bool { return f.Alias == c.Alias })
}

func (m *reflectModel) Get(c Column) (any, bool) {
	f, ok := m.lookup(c)
	if !ok {
		return nil, false
	}
	fv, err := m.value.FieldByIndexErr(f.Index)
	if err != nil {
		// 经过 nil 的嵌入指针, 读到的是零值
		return reflect.Zero(m.value.Type().FieldByIndex(f.Index).Type).Interface(), true
	}
	return fv.Interface(), true
}

// settable 按索引路径取字段, 途经 nil 的嵌入指针时分配新值
func (m *reflectModel) settable(index []int) (reflect.Value, bool) {
	v := m.value
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, v.CanSet()
}

func (m *reflectModel) Set(c Column, v any) error {
	f, ok := m.lookup(c)
	if !ok {
		return UnknownColumn(m.typeName, c)
	}
	fv, ok := m.settable(f.Index)
	if !ok {
		return errors.Errorf("%s: column %s is not settable", m.typeName, c.Alias)
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Pointer && rv.Type().Elem() == fv.Type() && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || !rv.Type().AssignableTo(fv.Type()) {
		return errors.Wrapf(ErrValueType, "column %s: want %s, got %T", c.Alias, fv.Type(), v)
	}
	fv.Set(rv)
	return nil
}
