// Package testdb opens isolated in-memory SQLite stores for package tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
)

// Open returns a migrated client backed by a private in-memory database.
// The pool is pinned to one connection like the SQLite path of db.New.
func Open(t *testing.T) *db.Client {
	t.Helper()
	return open(t, "file:test_"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on", 1)
}

// OpenFile returns a migrated client over a database file in a temp dir
// with conns pooled connections. Transactions begin IMMEDIATE so that
// concurrent writers queue on the busy timeout the way row locks queue
// them on Postgres.
func OpenFile(t *testing.T, conns int) *db.Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "production.db")
	return open(t, "file:"+path+"?_foreign_keys=on&_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL", conns)
}

func open(t *testing.T, dsn string, conns int) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	return db.NewFromConn(conn)
}
