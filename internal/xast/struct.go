package xast

import (
	"go/ast"
)

// StructType 当前结构体和结构体所在文件的imports
type StructType struct {
	*ast.StructType
	Imports ImportInfoSlice
}

func (s *StructType) GetPkgPathBySelector(expr *ast.SelectorExpr) string {
	ident, ok := expr.X.(*ast.Ident)
	if !ok {
		return ""
	}
	// 寻找字段对应的import路径，例如mo.Option[bool], 那么此处就是从imports中寻找到到mo
	if info := s.Imports.Find(ident.Name); info != nil {
		return info.Path
	}
	return ""
}
