package skipper

import (
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pair is one column = value test.
type Pair struct {
	Column Column
	Value  any
}

// Predicate is a conjunction of equality tests, kept in insertion order.
// The zero value matches every row.
type Predicate []Pair

// AllCondition returns the predicate selecting rows whose non-identity columns
// all equal the values of m.
func AllCondition(m Model) Predicate {
	return lo.FilterMap(m.ConditionColumns(), func(c Column, _ int) (Pair, bool) {
		v, ok := m.Get(c)
		return Pair{Column: c, Value: v}, ok
	})
}

// And returns p extended with other, without modifying p.
func (p Predicate) And(other ...Pair) Predicate {
	out := make(Predicate, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

// Value returns the value tested against the column with the given alias.
func (p Predicate) Value(alias string) (any, bool) {
	pair, ok := lo.Find(p, func(pair Pair) bool { return pair.Column.Alias == alias })
	return pair.Value, ok
}

// Expression converts p to a GORM condition. It returns nil for an empty predicate.
func (p Predicate) Expression() clause.Expression {
	if len(p) == 0 {
		return nil
	}
	return clause.And(lo.Map(p, func(pair Pair, _ int) clause.Expression {
		return clause.Eq{Column: pair.Column.Clause(), Value: pair.Value}
	})...)
}

// Scope adds p to the WHERE clause of db. Use it with db.Scopes.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	if len(p) == 0 {
		return db
	}
	return db.Where(p.Expression())
}
