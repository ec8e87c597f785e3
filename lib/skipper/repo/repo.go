// Package repo holds the generic GORM operations behind the REST handlers:
// create, delete by id, find by id and find all, for any record type M.
package repo

import (
	"context"
	"reflect"

	"github.com/donutnomad/gormskipper/lib/skipper"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/samber/mo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// Create inserts data into the table of M and returns the stored record with
// its primary key filled. data is either an M (its primary key is cleared
// first) or a skipper.Model, usually M's generated creation type.
func Create[M any, D any](ctx context.Context, db *gorm.DB, data D) (M, error) {
	var m M
	switch v := any(data).(type) {
	case M:
		m = v
		if err := clearIdentity(&m); err != nil {
			return m, err
		}
	case *M:
		m = *v
		if err := clearIdentity(&m); err != nil {
			return m, err
		}
	case skipper.Model:
		dst, err := skipper.Reflect(&m)
		if err != nil {
			return m, err
		}
		if err := skipper.Copy(dst, v); err != nil {
			return m, err
		}
	default:
		return m, errors.Errorf("repo: cannot create %T from %T", m, data)
	}
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return m, errors.Wrapf(err, "create %T", m)
	}
	return m, nil
}

// DeleteByID deletes the record of M with the given primary key and returns
// the number of rows affected; zero means there was no such record.
func DeleteByID[M any, ID any](ctx context.Context, db *gorm.DB, id ID) (int64, error) {
	res := db.WithContext(ctx).Where(primaryKeyEq(id)).Delete(new(M))
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete %T %v", *new(M), id)
	}
	return res.RowsAffected, nil
}

// FindByID returns the record of M with the given primary key, if any.
func FindByID[M any, ID any](ctx context.Context, db *gorm.DB, id ID) (mo.Option[M], error) {
	var m M
	err := db.WithContext(ctx).Where(primaryKeyEq(id)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mo.None[M](), nil
	}
	if err != nil {
		return mo.None[M](), errors.Wrapf(err, "find %T %v", m, id)
	}
	return mo.Some(m), nil
}

// FindAll returns the records of M matching every condition, ordered by primary key.
// Nil conditions are ignored.
func FindAll[M any](ctx context.Context, db *gorm.DB, conds ...clause.Expression) ([]M, error) {
	tx := db.WithContext(ctx).Model(new(M)).Order(clause.OrderByColumn{Column: clause.PrimaryColumn})
	for _, cond := range conds {
		if cond != nil {
			tx = tx.Where(cond)
		}
	}
	out := make([]M, 0)
	if err := tx.Find(&out).Error; err != nil {
		return nil, errors.Wrapf(err, "find all %T", *new(M))
	}
	return out, nil
}

// FindOne returns the first record of M, by primary key, matching p.
func FindOne[M any](ctx context.Context, db *gorm.DB, p skipper.Predicate) (mo.Option[M], error) {
	var m M
	err := db.WithContext(ctx).Scopes(p.Scope).Order(clause.OrderByColumn{Column: clause.PrimaryColumn}).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mo.None[M](), nil
	}
	if err != nil {
		return mo.None[M](), errors.Wrapf(err, "find %T", m)
	}
	return mo.Some(m), nil
}

// Exists reports whether a record of M matches p.
func Exists[M any](ctx context.Context, db *gorm.DB, p skipper.Predicate) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(M)).Scopes(p.Scope).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "count %T", *new(M))
	}
	return count > 0, nil
}

// primaryKeyEq 主键总是作为参数绑定, 字符串主键不会被当作 SQL 片段
func primaryKeyEq(id any) clause.Expression {
	return clause.Eq{Column: clause.PrimaryColumn, Value: id}
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func clearIdentity[M any](m *M) error {
	record, err := schema.Of[M]()
	if err != nil {
		return err
	}
	v := reflect.ValueOf(m).Elem()
	for _, f := range record.IdentityFields() {
		// nil 的嵌入指针中没有需要清空的主键
		if fv, err := v.FieldByIndexErr(f.Index); err == nil {
			fv.SetZero()
		}
	}
	return nil
}
