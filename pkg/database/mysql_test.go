package database

import (
	"testing"

	"bulut3d/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.MysqlConfig{Host: "db", Port: 3306, User: "shop", Password: "p@ss:word", DbName: "bulut3d"})
	assert.Contains(t, dsn, "shop:p@ss:word@tcp(db:3306)/bulut3d")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"}, config.MysqlConfig{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, config.MysqlConfig{})
	assert.Error(t, err)
}
