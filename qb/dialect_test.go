package qb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", Dialects.MySQL.QuoteIdentifier("users"))
	assert.Equal(t, "`users`.`id`", Dialects.MySQL.QuoteIdentifier("users.id"))
	assert.Equal(t, "`users`.*", Dialects.MySQL.QuoteIdentifier("users.*"))
	assert.Equal(t, "*", Dialects.MySQL.QuoteIdentifier("*"))
	assert.Equal(t, "`we``ird`", Dialects.MySQL.QuoteIdentifier("we`ird"))

	assert.Equal(t, `"users"."id"`, Dialects.PostgreSQL.QuoteIdentifier("users.id"))
	assert.Equal(t, `"users"`, Dialects.SQLite.QuoteIdentifier("users"))
	assert.Equal(t, "[users].[id]", Dialects.SQLServer.QuoteIdentifier("users.id"))
}

func TestCompilePagination(t *testing.T) {
	assert.Equal(t, "LIMIT 10 OFFSET 5", Dialects.MySQL.CompilePagination(10, 5))
	assert.Equal(t, "LIMIT 10", Dialects.MySQL.CompilePagination(10, 0))
	assert.Equal(t, "OFFSET 5", Dialects.MySQL.CompilePagination(0, 5))
	assert.Equal(t, "", Dialects.MySQL.CompilePagination(0, 0))

	assert.Equal(t, "LIMIT 10 OFFSET 5", Dialects.PostgreSQL.CompilePagination(10, 5))

	assert.Equal(t, "OFFSET 5 ROWS FETCH NEXT 10 ROWS ONLY", Dialects.SQLServer.CompilePagination(10, 5))
	assert.Equal(t, "OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY", Dialects.SQLServer.CompilePagination(10, 0))
	assert.Equal(t, "", Dialects.SQLServer.CompilePagination(0, 0))
}

func TestTypeMap(t *testing.T) {
	assert.Equal(t, "VARCHAR(255)", Dialects.MySQL.TypeMap()["string"])
	assert.Equal(t, "JSON", Dialects.MySQL.TypeMap()["json"])
	assert.Equal(t, "JSONB", Dialects.PostgreSQL.TypeMap()["json"])
	assert.Equal(t, "TEXT", Dialects.SQLite.TypeMap()["string"])
	assert.Equal(t, "NVARCHAR(255)", Dialects.SQLServer.TypeMap()["string"])
}

func TestSQLiteFullText(t *testing.T) {
	sql, args := Dialects.SQLite.CompileFullText([]string{"title", "body"}, "go")
	assert.Equal(t, `("title" LIKE ? OR "body" LIKE ?)`, sql)
	assert.Equal(t, []any{"%go%", "%go%"}, args)
}

func TestGetDialect(t *testing.T) {
	for driver, want := range map[string]string{
		"mysql":     "mysql",
		"postgres":  "postgres",
		"sqlite3":   "sqlite3",
		"sqlite":    "sqlite3",
		"sqlserver": "sqlserver",
	} {
		d, ok := GetDialect(driver)
		assert.True(t, ok, driver)
		assert.Equal(t, want, d.Name())
	}
	_, ok := GetDialect("oracle")
	assert.False(t, ok)
}
