package skipper

import "gorm.io/gorm/clause"

// Column 列别名与数据库列名
type Column struct {
	Alias string // Go 标识符, 例如 BakedOn
	Name  string // 数据库列名, 例如 baked_on
}

// Clause returns the column as a GORM clause column.
func (c Column) Clause() clause.Column {
	return clause.Column{Name: c.Name}
}

func (c Column) String() string {
	return c.Alias
}

// Eq builds the equality test of the column against v.
func (c Column) Eq(v any) Pair {
	return Pair{Column: c, Value: v}
}
