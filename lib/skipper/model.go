package skipper

import "github.com/pkg/errors"

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrValueType     = errors.New("value has the wrong type")
)

// Model is a record whose non-identity columns can be enumerated, read and
// written by alias. Generated creation types implement it, and Reflect adapts
// any GORM struct to it.
type Model interface {
	// ConditionColumns returns the non-identity columns in field order.
	ConditionColumns() []Column
	Get(c Column) (any, bool)
	Set(c Column, v any) error
}

// ModelCondition is implemented by models that produce their own all-equal predicate.
type ModelCondition interface {
	ToAllCondition() Predicate
}

// UnknownColumn is the error Set returns for a column the type does not have.
func UnknownColumn(typeName string, c Column) error {
	return errors.Wrapf(ErrUnknownColumn, "%s has no column %s", typeName, c.Alias)
}

// Assign stores v into dst when v is a T or a non-nil *T.
func Assign[T any](dst *T, c Column, v any) error {
	switch x := v.(type) {
	case T:
		*dst = x
		return nil
	case *T:
		if x != nil {
			*dst = *x
			return nil
		}
	}
	return errors.Wrapf(ErrValueType, "column %s: want %T, got %T", c.Alias, *dst, v)
}

// Copy writes every condition column of src into dst.
func Copy(dst, src Model) error {
	for _, c := range src.ConditionColumns() {
		v, ok := src.Get(c)
		if !ok {
			return UnknownColumn("source", c)
		}
		if err := dst.Set(c, v); err != nil {
			return err
		}
	}
	return nil
}
