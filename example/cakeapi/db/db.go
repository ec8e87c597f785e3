// Package db opens the cakeapi MySQL database through GORM.
package db

import (
	"context"

	"github.com/donutnomad/gormskipper/example/cakeapi/config"
	"github.com/donutnomad/gormskipper/example/cakeapi/entity"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open connects to the database described by cfg.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	return OpenDialector(mysql.Open(cfg.DSN()), log)
}

// OpenDialector is Open with the dialector supplied, tests pass one over sqlmock.
func OpenDialector(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewLogger(log),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return db, nil
}

// Migrate 创建或更新表结构
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&entity.Cake{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
