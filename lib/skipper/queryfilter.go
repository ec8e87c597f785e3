package skipper

import (
	"net/url"
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryParams maps query string parameters to the columns they filter on.
// Implementations are usually empty structs; the zero value is used.
type QueryParams interface {
	Column(param string) mo.Option[Column]
}

// ColumnLookup resolves a query parameter to a column.
type ColumnLookup func(param string) mo.Option[Column]

// LookupByName resolves a parameter equal to one of the database column names.
func LookupByName(columns ...Column) ColumnLookup {
	byName := lo.KeyBy(columns, func(c Column) string { return c.Name })
	return func(param string) mo.Option[Column] {
		c, ok := byName[param]
		return mo.TupleToOption(c, ok)
	}
}

// BuildFilter keeps the parameters lookup recognizes and drops the rest.
// Parameters are visited in key order.
func BuildFilter(params map[string]string, lookup ColumnLookup) Predicate {
	keys := lo.Keys(params)
	slices.Sort(keys)
	return lo.FilterMap(keys, func(key string, _ int) (Pair, bool) {
		c, ok := lookup(key).Get()
		return Pair{Column: c, Value: params[key]}, ok
	})
}

// QueryFilter holds the equality filters of a request's query string that P recognizes.
type QueryFilter[P QueryParams] struct {
	predicate Predicate
}

// FromQueryString builds a QueryFilter from a parsed query string. Only the
// first value of a repeated parameter is used.
func FromQueryString[P QueryParams](query url.Values) QueryFilter[P] {
	var params P
	flat := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}
	return QueryFilter[P]{predicate: BuildFilter(flat, params.Column)}
}

// Condition returns the filters as a predicate.
func (f QueryFilter[P]) Condition() Predicate {
	return f.predicate
}

// Expression returns the filters as a GORM condition, nil when there are none.
func (f QueryFilter[P]) Expression() clause.Expression {
	return f.predicate.Expression()
}

// Scope adds the filters to the WHERE clause of db.
func (f QueryFilter[P]) Scope(db *gorm.DB) *gorm.DB {
	return f.predicate.Scope(db)
}
