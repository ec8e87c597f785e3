// Package generator renders the creation type of a record: the record without
// its primary key, a positional constructor, an alias-keyed Get/Set pair, the
// column set and the all-equal predicate.
package generator

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/donutnomad/gormskipper/internal/xast"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	skipperPkg = "github.com/donutnomad/gormskipper/lib/skipper"
	receiver   = "m"
	header     = "Code generated by newmodelgen. DO NOT EDIT."
)

// Options 生成选项
type Options struct {
	// Condition also implements skipper.Model and skipper.ModelCondition on the source type.
	Condition bool
}

// Generate renders one file holding the creation types of records, which must
// all belong to pkgName. A record that is not a struct fails the whole file.
func Generate(pkgName string, records []schema.RecordDescriptor, opts Options) ([]byte, error) {
	f := jen.NewFile(pkgName)
	f.HeaderComment(header)

	for _, record := range records {
		if record.PackageName != "" && record.PackageName != pkgName {
			return nil, errors.Errorf("%s belongs to package %s, not %s", record.TypeName, record.PackageName, pkgName)
		}
		if err := generateRecord(f, record, opts); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.Wrap(err, "render generated code")
	}
	return buf.Bytes(), nil
}

type model struct {
	record  schema.RecordDescriptor
	derived schema.DerivedCreationType
	all     []schema.ProjectedField
	types   map[string]jen.Code // 字段名 -> 类型
}

func (m model) columnsVar() string {
	return m.record.TypeName + "Columns"
}

func (m model) column(f schema.ProjectedField) *jen.Statement {
	return jen.Id(m.columnsVar()).Dot(f.Alias)
}

func generateRecord(f *jen.File, record schema.RecordDescriptor, opts Options) error {
	derived, err := schema.Project(record)
	if err != nil {
		return err
	}
	all, err := schema.Resolve(record)
	if err != nil {
		return err
	}
	m := model{record: record, derived: derived, all: all, types: make(map[string]jen.Code, len(all))}
	for _, field := range all {
		code, err := xast.ParseType(field.Type, record.Imports)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", record.TypeName, field.Name)
		}
		m.types[field.Name] = code
	}

	genColumns(f, m)
	genStruct(f, m)
	genConstructor(f, m)
	genTableName(f, m)
	genModel(f, m, derived.TypeName, derived.Fields)
	if opts.Condition {
		genModel(f, m, record.TypeName, all)
	}
	return nil
}

// genColumns var CakeColumns = struct{ ID skipper.Column; ... }{...}
func genColumns(f *jen.File, m model) {
	values := jen.Dict{}
	for _, field := range m.all {
		values[jen.Id(field.Alias)] = jen.Qual(skipperPkg, "Column").Values(jen.Dict{
			jen.Id("Alias"): jen.Lit(field.Alias),
			jen.Id("Name"):  jen.Lit(field.Column),
		})
	}
	f.Commentf("%s lists the columns of %s by alias.", m.columnsVar(), m.record.TypeName)
	f.Var().Id(m.columnsVar()).Op("=").StructFunc(func(g *jen.Group) {
		for _, field := range m.all {
			g.Id(field.Alias).Qual(skipperPkg, "Column")
		}
	}).Values(values)
}

func genStruct(f *jen.File, m model) {
	f.Commentf("%s is %s without its primary key, used to insert new rows.", m.derived.TypeName, m.record.TypeName)
	f.Type().Id(m.derived.TypeName).StructFunc(func(g *jen.Group) {
		for _, field := range m.derived.Fields {
			g.Id(field.Name).Add(m.types[field.Name]).Tag(fieldTag(field))
		}
	})
}

func genConstructor(f *jen.File, m model) {
	name := "New" + m.derived.TypeName
	values := jen.Dict{}
	for _, field := range m.derived.Fields {
		values[jen.Id(field.Name)] = jen.Id(field.Param)
	}
	f.Func().Id(name).ParamsFunc(func(g *jen.Group) {
		for _, field := range m.derived.Fields {
			g.Id(field.Param).Add(m.types[field.Name])
		}
	}).Op("*").Id(m.derived.TypeName).Block(
		jen.Return(jen.Op("&").Id(m.derived.TypeName).Values(values)),
	)
}

func genTableName(f *jen.File, m model) {
	f.Func().Params(jen.Id(m.derived.TypeName)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(m.record.TableName)),
	)
}

// genModel 生成 ConditionColumns, Get, Set 与 ToAllCondition.
// fields 为 Get/Set 可访问的字段, 条件列始终不含主键.
func genModel(f *jen.File, m model, typeName string, fields []schema.ProjectedField) {
	recv := jen.Id(receiver).Op("*").Id(typeName)
	column := jen.Qual(skipperPkg, "Column")

	f.Func().Params(recv.Clone()).Id("ConditionColumns").Params().Index().Add(column.Clone()).Block(
		jen.Return(jen.Index().Add(column.Clone()).ValuesFunc(func(g *jen.Group) {
			for _, field := range m.derived.Fields {
				g.Add(m.column(field))
			}
		})),
	)

	f.Func().Params(recv.Clone()).Id("Get").Params(jen.Id("c").Add(column.Clone())).Params(jen.Any(), jen.Bool()).Block(
		jen.Switch(jen.Id("c").Dot("Alias")).BlockFunc(func(g *jen.Group) {
			for _, field := range fields {
				g.Case(jen.Lit(field.Alias)).Block(
					jen.Return(jen.Id(receiver).Dot(field.Name), jen.True()),
				)
			}
		}),
		jen.Return(jen.Nil(), jen.False()),
	)

	f.Func().Params(recv.Clone()).Id("Set").Params(jen.Id("c").Add(column.Clone()), jen.Id("v").Any()).Error().Block(
		jen.Switch(jen.Id("c").Dot("Alias")).BlockFunc(func(g *jen.Group) {
			for _, field := range fields {
				g.Case(jen.Lit(field.Alias)).Block(
					jen.Return(jen.Qual(skipperPkg, "Assign").Call(
						jen.Op("&").Id(receiver).Dot(field.Name), jen.Id("c"), jen.Id("v"),
					)),
				)
			}
		}),
		jen.Return(jen.Qual(skipperPkg, "UnknownColumn").Call(jen.Lit(typeName), jen.Id("c"))),
	)

	f.Func().Params(recv.Clone()).Id("ToAllCondition").Params().Qual(skipperPkg, "Predicate").Block(
		jen.Return(jen.Qual(skipperPkg, "AllCondition").Call(jen.Id(receiver))),
	)
}

// access m.Name, 具名嵌入的字段为 m.Author.Name
func access(field schema.ProjectedField) *jen.Statement {
	s := jen.Id(receiver)
	if field.Parent != "" {
		for _, name := range strings.Split(field.Parent, ".") {
			s = s.Dot(name)
		}
	}
	return s.Dot(field.Name)
}

// fieldTag 保留原字段的标签, gorm 标签的列名总是 field.Column, 嵌入字段的列名带有前缀
func fieldTag(field schema.ProjectedField) map[string]string {
	tags := parseTag(field.Tag)
	settings := strings.Split(tags["gorm"], ";")
	column, hasColumn := lo.Find(settings, isColumnSetting)
	if hasColumn && strings.TrimSpace(strings.TrimSpace(column)[len("column:"):]) == field.Column {
		return tags
	}
	settings = lo.Reject(settings, func(s string, _ int) bool {
		return s == "" || isColumnSetting(s)
	})
	tags["gorm"] = strings.Join(append([]string{"column:" + field.Column}, settings...), ";")
	return tags
}

func isColumnSetting(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "column:")
}

// parseTag 按 reflect.StructTag 的规则拆分标签
func parseTag(raw string) map[string]string {
	out := make(map[string]string)
	tag := reflect.StructTag(raw)
	for _, key := range tagKeys(raw) {
		if v, ok := tag.Lookup(key); ok {
			out[key] = v
		}
	}
	return out
}

func tagKeys(raw string) []string {
	var keys []string
	for {
		raw = strings.TrimLeft(raw, " ")
		i := strings.Index(raw, ":")
		if i <= 0 {
			break
		}
		value, err := strconv.QuotedPrefix(raw[i+1:])
		if err != nil {
			break
		}
		keys = append(keys, raw[:i])
		raw = raw[i+1+len(value):]
	}
	return lo.Uniq(keys)
}
