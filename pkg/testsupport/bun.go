package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var databaseSeq atomic.Int64

// NewSQLiteBunDB opens a private in-memory SQLite database wrapped with bun
// and creates the tables of models. Every call gets its own database.
func NewSQLiteBunDB(ctx context.Context, models ...any) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:xtheme_test_%d?mode=memory&cache=shared", databaseSeq.Add(1))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return db, nil
}
