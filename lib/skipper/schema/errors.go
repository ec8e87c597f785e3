package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// ShapeDiagnostic is the fixed message reported when a non-struct type is projected.
const ShapeDiagnostic = "you can only derive NewModel on structs"

// ErrInvalidAlias is returned when an enum_name override is not a Go identifier.
var ErrInvalidAlias = errors.New("enum_name must be a valid identifier")

// UnsupportedShapeError reports an attempt to project a type that is not a
// plain struct with named fields.
type UnsupportedShapeError struct {
	TypeName string
	Kind     Kind
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s: %s (%s is %s)", e.TypeName, ShapeDiagnostic, e.TypeName, e.Kind)
}

// IsUnsupportedShape reports whether err carries an *UnsupportedShapeError.
func IsUnsupportedShape(err error) bool {
	var shapeErr *UnsupportedShapeError
	return errors.As(err, &shapeErr)
}
