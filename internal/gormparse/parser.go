package gormparse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"

	"github.com/donutnomad/gormskipper/internal/structparse"
	"github.com/donutnomad/gormskipper/internal/utils"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"
)

// ParseGormModel 将解析出的类型声明转换为记录描述.
// 主键来自 gorm:"primaryKey" 标签, 列名来自 gorm:"column:..." 标签, 列别名可用 skipper:"enum_name:..." 覆盖.
// 非结构体类型只带回 Kind, 由调用方决定如何报错.
func ParseGormModel(info *structparse.StructInfo) (schema.RecordDescriptor, error) {
	record := schema.RecordDescriptor{
		TypeName:    info.Name,
		PackageName: info.PackageName,
		Kind:        info.Kind,
		Imports:     info.Imports,
	}
	if info.Kind != schema.KindStruct {
		return record, nil
	}

	tableName, err := InferTableName(filepath.Dir(info.File), info.Name)
	if err != nil {
		return record, err
	}
	record.TableName = tableName

	seen := make(map[string]struct{}, len(info.Fields))
	for _, field := range info.Fields {
		if _, dup := seen[field.Name]; dup {
			return record, errors.Errorf("%s: duplicated field %s", info.Name, field.Name)
		}
		seen[field.Name] = struct{}{}

		fd, ok := schema.NewField(field.Name, field.Type, field.Tag)
		if !ok {
			continue
		}
		fd.Column = field.ColumnPrefix + fd.Column
		fd.Parent = field.Parent
		record.Fields = append(record.Fields, fd)
	}
	return record, nil
}

// InferTableName 推导表名: 优先使用包内 TableName 方法返回的字面量, 否则为蛇形命名的复数形式
func InferTableName(dir, structName string) (string, error) {
	tableName, err := extractTableNameFromMethod(dir, structName)
	if err != nil {
		return "", err
	}
	if tableName != "" {
		return tableName, nil
	}
	return DefaultTableName(structName), nil
}

// DefaultTableName Cake -> cakes, BakeryItem -> bakery_items
func DefaultTableName(structName string) string {
	return inflection.Plural(utils.ToSnakeCase(structName))
}

// extractTableNameFromMethod 从TableName方法中提取表名
func extractTableNameFromMethod(dir, structName string) (string, error) {
	pkgs, err := parser.ParseDir(token.NewFileSet(), dir, nil, parser.SkipObjectResolution)
	if err != nil {
		return "", errors.Wrapf(err, "parse %s", dir)
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			for _, decl := range file.Decls {
				funcDecl, ok := decl.(*ast.FuncDecl)
				if !ok || funcDecl.Name.Name != "TableName" || receiverName(funcDecl) != structName {
					continue
				}
				if name, ok := returnedLiteral(funcDecl); ok {
					return name, nil
				}
			}
		}
	}
	return "", nil
}

func receiverName(funcDecl *ast.FuncDecl) string {
	if funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
		return ""
	}
	expr := funcDecl.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func returnedLiteral(funcDecl *ast.FuncDecl) (string, bool) {
	if funcDecl.Body == nil {
		return "", false
	}
	for _, stmt := range funcDecl.Body.List {
		ret, ok := stmt.(*ast.ReturnStmt)
		if !ok || len(ret.Results) == 0 {
			continue
		}
		lit, ok := ret.Results[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			continue
		}
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}
