package api

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/gormskipper/example/cakeapi/entity"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
)

// OpenAPI builds the document of the routes Router mounts.
func OpenAPI() (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "cakeapi", Version: "1.0.0"},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	if err := AddResource[entity.Cake](doc, "/cakes", "name", "flavor"); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddResource documents the routes Mount registers for M. The record and
// creation type schemas come from the descriptor of M.
func AddResource[M any](doc *openapi3.T, path string, queryParams ...string) error {
	record, err := schema.Of[M]()
	if err != nil {
		return err
	}
	derived, err := schema.Project(record)
	if err != nil {
		return err
	}
	identities := record.IdentityFields()
	if len(identities) != 1 {
		return errors.Errorf("%s: want one primary key, got %d", record.TypeName, len(identities))
	}

	doc.Components.Schemas[record.TypeName] = openapi3.NewSchemaRef("", objectSchema(record.Fields, false))
	doc.Components.Schemas[derived.TypeName] = openapi3.NewSchemaRef("", objectSchema(derived.Descriptor().Fields, true))
	recordRef := openapi3.NewSchemaRef("#/components/schemas/"+record.TypeName, nil)
	newRef := openapi3.NewSchemaRef("#/components/schemas/"+derived.TypeName, nil)

	list := openapi3.NewOperation()
	list.OperationID = "list" + record.TypeName
	for _, name := range queryParams {
		list.AddParameter(openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema()))
	}
	listSchema := openapi3.NewArraySchema()
	listSchema.Items = recordRef
	list.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("OK").WithJSONSchema(listSchema))
	list.AddResponse(http.StatusInternalServerError, response(http.StatusInternalServerError))
	doc.AddOperation(path, http.MethodGet, list)

	create := openapi3.NewOperation()
	create.OperationID = "create" + record.TypeName
	create.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(newRef)}
	create.AddResponse(http.StatusCreated, openapi3.NewResponse().WithDescription("Created").WithJSONSchemaRef(recordRef))
	create.AddResponse(http.StatusBadRequest, response(http.StatusBadRequest))
	create.AddResponse(http.StatusInternalServerError, response(http.StatusInternalServerError))
	doc.AddOperation(path, http.MethodPost, create)

	itemPath := path + "/{id}"
	idParam := openapi3.NewPathParameter("id").WithSchema(typeSchema(identities[0].Type))

	get := openapi3.NewOperation()
	get.OperationID = "get" + record.TypeName
	get.AddParameter(idParam)
	get.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("OK").WithJSONSchemaRef(recordRef))
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		get.AddResponse(status, response(status))
	}
	doc.AddOperation(itemPath, http.MethodGet, get)

	del := openapi3.NewOperation()
	del.OperationID = "delete" + record.TypeName
	del.AddParameter(idParam)
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		del.AddResponse(status, response(status))
	}
	doc.AddOperation(itemPath, http.MethodDelete, del)
	return nil
}

func response(status int) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(http.StatusText(status))
}

func objectSchema(fields []schema.FieldDescriptor, required bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, f := range fields {
		name, ok := jsonName(f)
		if !ok {
			continue
		}
		s.WithProperty(name, typeSchema(f.Type))
		if required {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

// jsonName 字段在 JSON 中的名字, json:"-" 时返回 false
func jsonName(f schema.FieldDescriptor) (string, bool) {
	tag := reflect.StructTag(f.Tag).Get("json")
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", false
	case "":
		return f.Name, true
	}
	return name, true
}

func typeSchema(typ string) *openapi3.Schema {
	if elem, ok := strings.CutPrefix(typ, "*"); ok {
		s := typeSchema(elem)
		s.Nullable = true
		return s
	}
	switch typ {
	case "string":
		return openapi3.NewStringSchema()
	case "bool":
		return openapi3.NewBoolSchema()
	case "int64", "uint64":
		return openapi3.NewInt64Schema()
	case "int8", "int16", "int32", "uint8", "uint16", "uint32":
		return openapi3.NewInt32Schema()
	case "int", "uint":
		return openapi3.NewIntegerSchema()
	case "float32", "float64":
		return openapi3.NewFloat64Schema()
	case "decimal.Decimal":
		return openapi3.NewStringSchema().WithFormat("decimal")
	case "time.Time", "datatypes.Date", "gorm.DeletedAt":
		return openapi3.NewDateTimeSchema()
	case "[]byte", "[]uint8":
		return openapi3.NewBytesSchema()
	}
	if elem, ok := strings.CutPrefix(typ, "[]"); ok {
		return openapi3.NewArraySchema().WithItems(typeSchema(elem))
	}
	return openapi3.NewObjectSchema()
}

var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	doc, err := OpenAPI()
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(doc)
})

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	bs, err := openAPIJSON()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bs)
}
