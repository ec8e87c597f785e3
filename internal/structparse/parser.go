package structparse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/donutnomad/gormskipper/internal/logger"
	"github.com/donutnomad/gormskipper/internal/utils"
	"github.com/donutnomad/gormskipper/internal/xast"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/pkg/errors"
)

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name         string // 字段名
	Type         string // 字段类型, 跨包嵌入时已加上包名前缀
	Tag          string // 字段标签(不含反引号)
	SourceType   string // 字段来源类型，为空表示来自结构体本身，否则表示来自嵌入的结构体
	Parent       string // 具名嵌入字段的选择器路径, 匿名嵌入的字段可直接访问, 为空
	ColumnPrefix string // 各级 embeddedPrefix 拼接后的列名前缀
}

// StructInfo 表示类型声明信息. 只有 Kind 为 schema.KindStruct 时 Fields 才有意义
type StructInfo struct {
	Name        string            // 类型名称
	PackageName string            // 包名
	Kind        schema.Kind       // 声明的形状
	Fields      []FieldInfo       // 字段列表
	Imports     map[string]string // key: 包名或别名, value: import 路径
	File        string            // 声明所在文件
}

// knownEmbedded 不需要读取源码即可展开的常见嵌入结构体
var knownEmbedded = map[string][]FieldInfo{
	"gorm.io/gorm.Model": {
		{Name: "ID", Type: "uint", Tag: `gorm:"primarykey"`},
		{Name: "CreatedAt", Type: "time.Time"},
		{Name: "UpdatedAt", Type: "time.Time"},
		{Name: "DeletedAt", Type: "gorm.DeletedAt", Tag: `gorm:"index"`},
	},
}

var knownEmbeddedImports = map[string]string{
	"time": "time",
	"gorm": "gorm.io/gorm",
}

// FindType 在目录中查找声明了 typeName 的文件
func FindType(dir, typeName string) (string, error) {
	files, err := findGoFiles(dir)
	if err != nil {
		return "", errors.Wrapf(err, "list go files in %s", dir)
	}
	for _, file := range files {
		node, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.SkipObjectResolution)
		if err != nil {
			logger.Debugw("skip unparsable file", "file", file, "error", err)
			continue
		}
		if findTypeSpec(node, typeName) != nil {
			return file, nil
		}
	}
	return "", errors.Errorf("type %s not found in %s", typeName, dir)
}

// ParseType 解析指定文件中的类型声明
func ParseType(filename, typeName string) (*StructInfo, error) {
	return parseTypeWithStack(filename, typeName, make(map[string]bool))
}

func parseTypeWithStack(filename, typeName string, stack map[string]bool) (*StructInfo, error) {
	node, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filename)
	}
	spec := findTypeSpec(node, typeName)
	if spec == nil {
		return nil, errors.Errorf("type %s not found in %s", typeName, filename)
	}

	info := &StructInfo{
		Name:        typeName,
		PackageName: node.Name.Name,
		Kind:        kindOf(spec),
		Imports:     xast.ImportInfoSlice{}.From(node.Imports).Map(),
		File:        filename,
	}
	if info.Kind != schema.KindStruct {
		return info, nil
	}

	st := &xast.StructType{
		StructType: spec.Type.(*ast.StructType),
		Imports:    xast.ImportInfoSlice{}.From(node.Imports),
	}
	fields, err := parseFields(st, filepath.Dir(filename), info.Imports, stack)
	if err != nil {
		return nil, errors.Wrapf(err, "parse fields of %s", typeName)
	}
	info.Fields = fields
	info.Imports = usedImports(fields, info.Imports)
	return info, nil
}

// usedImports 只保留字段类型中引用到的包
func usedImports(fields []FieldInfo, imports map[string]string) map[string]string {
	out := make(map[string]string)
	lookup := func(sel *ast.SelectorExpr) string {
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return ""
		}
		path, ok := imports[ident.Name]
		if ok {
			out[ident.Name] = path
		}
		return path
	}
	for _, field := range fields {
		expr, err := parser.ParseExpr(field.Type)
		if err != nil {
			logger.Debugw("skip unparsable field type", "field", field.Name, "type", field.Type)
			continue
		}
		xast.CollectImportsFromType(lookup, expr)
	}
	return out
}

func findTypeSpec(node *ast.File, typeName string) *ast.TypeSpec {
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if typeSpec, ok := spec.(*ast.TypeSpec); ok && typeSpec.Name.Name == typeName {
				return typeSpec
			}
		}
	}
	return nil
}

func kindOf(spec *ast.TypeSpec) schema.Kind {
	if spec.Assign.IsValid() {
		return schema.KindAlias
	}
	// 生成的类型无法声明类型参数
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return schema.KindGeneric
	}
	switch spec.Type.(type) {
	case *ast.StructType:
		return schema.KindStruct
	case *ast.InterfaceType:
		return schema.KindInterface
	case *ast.FuncType:
		return schema.KindFunc
	case *ast.Ident, *ast.SelectorExpr, *ast.ArrayType, *ast.MapType, *ast.StarExpr, *ast.ChanType, *ast.IndexExpr, *ast.IndexListExpr:
		return schema.KindNamed
	default:
		return schema.KindOther
	}
}

// parseFields 解析字段, 匿名结构体字段与 gorm:"embedded" 字段会被展开
func parseFields(st *xast.StructType, dir string, imports map[string]string, stack map[string]bool) ([]FieldInfo, error) {
	var fields []FieldInfo
	for _, field := range st.Fields.List {
		fieldType := xast.GetFieldType(field.Type, nil)

		var fieldTag string
		if field.Tag != nil {
			fieldTag = utils.UnquoteTag(field.Tag.Value)
		}
		tag := schema.ParseFieldTag(reflect.StructTag(fieldTag))
		if tag.Ignored {
			continue
		}

		if len(field.Names) == 0 || tag.Embedded {
			if shouldExpandEmbeddedField(fieldType) {
				embedded, ok, err := parseEmbedded(st, fieldType, dir, imports, stack)
				if err != nil {
					return nil, err
				}
				if ok {
					if len(field.Names) == 0 {
						fields = append(fields, nest(embedded, "", tag.EmbeddedPrefix)...)
					}
					for _, name := range field.Names {
						fields = append(fields, nest(embedded, name.Name, tag.EmbeddedPrefix)...)
					}
					continue
				}
			}
		}

		if len(field.Names) == 0 {
			// 不需要展开的嵌入字段, 字段名为类型名
			name := fieldType[strings.LastIndex(fieldType, ".")+1:]
			fields = append(fields, FieldInfo{Name: strings.TrimPrefix(name, "*"), Type: fieldType, Tag: fieldTag})
			continue
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			fields = append(fields, FieldInfo{Name: name.Name, Type: fieldType, Tag: fieldTag})
		}
	}
	return fields, nil
}

// shouldExpandEmbeddedField 判断是否应该展开嵌入字段
func shouldExpandEmbeddedField(fieldType string) bool {
	switch strings.TrimPrefix(fieldType, "*") {
	case "time.Time", "time.Duration", "error",
		"gorm.DeletedAt", "datatypes.Date", "datatypes.JSON", "decimal.Decimal":
		return false
	}
	// 跳过切片、映射等复合类型以及内置类型
	if strings.HasPrefix(fieldType, "[]") ||
		strings.HasPrefix(fieldType, "map[") ||
		strings.HasPrefix(fieldType, "chan ") ||
		strings.HasPrefix(fieldType, "func(") {
		return false
	}
	name := strings.TrimPrefix(fieldType, "*")
	return strings.Contains(name, ".") || !isPredeclared(name)
}

func isPredeclared(name string) bool {
	switch name {
	case "bool", "byte", "rune", "string", "any",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128":
		return true
	}
	return false
}

// parseEmbedded 带栈的递归解析，避免循环引用
func parseEmbedded(st *xast.StructType, fieldType, dir string, imports map[string]string, stack map[string]bool) ([]FieldInfo, bool, error) {
	structType := strings.TrimPrefix(fieldType, "*")
	if stack[structType] {
		return nil, true, nil
	}
	stack[structType] = true
	defer delete(stack, structType)

	pkg, name := parseTypePackageAndName(structType)
	if pkg == "" {
		file, err := FindType(dir, name)
		if err != nil {
			return nil, false, err
		}
		info, err := parseTypeWithStack(file, name, stack)
		if err != nil {
			return nil, false, errors.Wrapf(err, "parse embedded %s", structType)
		}
		if info.Kind != schema.KindStruct {
			return nil, false, nil
		}
		utils.MergeMissing(imports, info.Imports)
		return markSource(info.Fields, structType, ""), true, nil
	}

	importPath := st.GetPkgPathBySelector(&ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)})
	if importPath == "" {
		return nil, false, errors.Errorf("no import for embedded %s", structType)
	}
	if known, ok := knownEmbedded[importPath+"."+name]; ok {
		utils.MergeMissing(imports, knownEmbeddedImports)
		return markSource(known, structType, ""), true, nil
	}

	pkgDir, err := findPackageDir(importPath)
	if err != nil {
		return nil, false, errors.Wrapf(err, "resolve embedded %s", structType)
	}
	file, err := FindType(pkgDir, name)
	if err != nil {
		return nil, false, err
	}
	info, err := parseTypeWithStack(file, name, stack)
	if err != nil {
		return nil, false, errors.Wrapf(err, "parse embedded %s", structType)
	}
	if info.Kind != schema.KindStruct {
		return nil, false, nil
	}
	utils.MergeMissing(imports, info.Imports)
	return markSource(info.Fields, structType, pkg), true, nil
}

// nest 为展开的嵌入字段加上列名前缀, parent 非空时字段经由该具名字段访问
func nest(fields []FieldInfo, parent, prefix string) []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, field := range fields {
		out[i] = field
		out[i].ColumnPrefix = prefix + field.ColumnPrefix
		if parent != "" {
			out[i].Parent = strings.TrimSuffix(parent+"."+field.Parent, ".")
		}
	}
	return out
}

// markSource 为从嵌入结构体来的字段标记来源, pkg 非空时为嵌入包中的本地类型加上包名
func markSource(fields []FieldInfo, structType, pkg string) []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, field := range fields {
		out[i] = field
		if field.SourceType == "" {
			out[i].SourceType = structType
		}
		if pkg != "" {
			out[i].Type = qualify(field.Type, pkg)
		}
	}
	return out
}

// qualify 为类型中的本包导出标识符加上包名, 例如 *Status -> *orm.Status
func qualify(typ, pkg string) string {
	prefix := typ[:len(typ)-len(strings.TrimLeft(typ, "*[]"))]
	rest := typ[len(prefix):]
	if rest == "" || strings.Contains(rest, ".") || !unicode.IsUpper([]rune(rest)[0]) {
		return typ
	}
	return prefix + pkg + "." + rest
}

// parseTypePackageAndName 解析类型的包名和结构体名
// 输入: "orm.Model" 返回: "orm", "Model"
// 输入: "User" 返回: "", "User"
func parseTypePackageAndName(typeName string) (packageName, structName string) {
	pkg, name, ok := strings.Cut(typeName, ".")
	if !ok {
		return "", typeName
	}
	return pkg, name
}

// findPackageDir 根据完整导入路径查找包目录: 当前模块内的包, 其次是模块缓存
func findPackageDir(importPath string) (string, error) {
	projectRoot, err := findProjectRoot()
	if err == nil {
		moduleName, err := getModuleName(projectRoot)
		if err == nil && (importPath == moduleName || strings.HasPrefix(importPath, moduleName+"/")) {
			packagePath := filepath.Join(projectRoot, strings.TrimPrefix(importPath, moduleName))
			if _, err := os.Stat(packagePath); err == nil {
				return packagePath, nil
			}
		}
	}

	// 标准库包不包含域名
	if !strings.Contains(strings.Split(importPath, "/")[0], ".") {
		return "", errors.Errorf("standard library package %s cannot be embedded", importPath)
	}
	return findThirdPartyPackage(importPath)
}

// findThirdPartyPackage 在模块缓存中查找第三方包, 路径格式为 github.com/user/repo@version/sub
func findThirdPartyPackage(importPath string) (string, error) {
	goModCache := os.Getenv("GOMODCACHE")
	if goModCache == "" {
		goPath := os.Getenv("GOPATH")
		if goPath == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			goPath = filepath.Join(homeDir, "go")
		}
		goModCache = filepath.Join(goPath, "pkg", "mod")
	}

	encoded := encodeModulePath(importPath)
	parts := strings.Split(encoded, "/")
	// 模块路径可能是导入路径的任意前缀, 从长到短尝试
	for i := len(parts); i > 0; i-- {
		modulePath := strings.Join(parts[:i], "/")
		matches, err := filepath.Glob(filepath.Join(goModCache, modulePath+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		// 简单地选择最后一个（通常版本号较高）
		dir := filepath.Join(append([]string{matches[len(matches)-1]}, parts[i:]...)...)
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return "", errors.Errorf("package %s not found in module cache %s", importPath, goModCache)
}

// encodeModulePath 按模块缓存的规则转义大写字母, 例如 BurntSushi -> !burnt!sushi
func encodeModulePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if unicode.IsUpper(r) {
			b.WriteByte('!')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getModuleName 从go.mod文件获取模块名称
func getModuleName(projectRoot string) (string, error) {
	content, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), nil
		}
	}
	return "", errors.New("module directive not found in go.mod")
}

// findProjectRoot 查找项目根目录（包含go.mod的目录）
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// findGoFiles 查找目录中的Go文件, 不含测试文件与生成的文件
func findGoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, GeneratedSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// GeneratedSuffix 生成文件的后缀, 查找类型时跳过
const GeneratedSuffix = "_newmodel.go"
