package xast

import (
	"go/ast"
	"go/parser"

	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"
)

// ParseType parses a declared type such as "map[string]decimal.Decimal" and
// renders it as jennifer code. imports maps the package identifiers used in
// the type to their import paths.
func ParseType(typ string, imports map[string]string) (jen.Code, error) {
	expr, err := parser.ParseExpr(typ)
	if err != nil {
		return nil, errors.Wrapf(err, "parse type %q", typ)
	}
	return TypeCode(expr, imports)
}

// TypeCode renders a type expression with package selectors turned into
// qualified references, so jennifer manages the imports of generated files.
func TypeCode(expr ast.Expr, imports map[string]string) (jen.Code, error) {
	var err error
	code := typeCode(expr, imports, &err)
	return code, err
}

func typeCode(expr ast.Expr, imports map[string]string, errp *error) *jen.Statement {
	fail := func(format string, args ...any) *jen.Statement {
		if *errp == nil {
			*errp = errors.Errorf(format, args...)
		}
		return jen.Null()
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return jen.Id(t.Name)
	case *ast.StarExpr:
		return jen.Op("*").Add(typeCode(t.X, imports, errp))
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return fail("unsupported selector %s", GetFieldType(t, nil))
		}
		path, ok := imports[pkg.Name]
		if !ok {
			return fail("no import for package %s", pkg.Name)
		}
		return jen.Qual(path, t.Sel.Name)
	case *ast.ArrayType:
		elt := typeCode(t.Elt, imports, errp)
		if t.Len == nil {
			return jen.Index().Add(elt)
		}
		if _, ok := t.Len.(*ast.Ellipsis); ok {
			return jen.Index(jen.Op("...")).Add(elt)
		}
		return jen.Index(typeCode(t.Len, imports, errp)).Add(elt)
	case *ast.BasicLit:
		return jen.Op(t.Value)
	case *ast.MapType:
		return jen.Map(typeCode(t.Key, imports, errp)).Add(typeCode(t.Value, imports, errp))
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(typeCode(t.Value, imports, errp))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(typeCode(t.Value, imports, errp))
		default:
			return jen.Chan().Add(typeCode(t.Value, imports, errp))
		}
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return jen.Interface()
		}
		return fail("unsupported interface literal type")
	case *ast.StructType:
		if t.Fields == nil || len(t.Fields.List) == 0 {
			return jen.Struct()
		}
		return fail("unsupported struct literal type")
	case *ast.IndexExpr:
		return typeCode(t.X, imports, errp).Types(typeCode(t.Index, imports, errp))
	case *ast.IndexListExpr:
		params := make([]jen.Code, 0, len(t.Indices))
		for _, idx := range t.Indices {
			params = append(params, typeCode(idx, imports, errp))
		}
		return typeCode(t.X, imports, errp).Types(params...)
	case *ast.FuncType:
		var params, results []jen.Code
		if t.Params != nil {
			for _, p := range t.Params.List {
				for range max(1, len(p.Names)) {
					params = append(params, typeCode(p.Type, imports, errp))
				}
			}
		}
		if t.Results != nil {
			for _, r := range t.Results.List {
				for range max(1, len(r.Names)) {
					results = append(results, typeCode(r.Type, imports, errp))
				}
			}
		}
		fn := jen.Func().Params(params...)
		switch len(results) {
		case 0:
			return fn
		case 1:
			return fn.Add(results[0])
		default:
			return fn.Params(results...)
		}
	case *ast.Ellipsis:
		return jen.Op("...").Add(typeCode(t.Elt, imports, errp))
	default:
		return fail("unsupported type expression %T", expr)
	}
}
