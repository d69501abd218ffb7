package qb

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSelect(t *testing.T) {
	t.Run("select star from table", func(t *testing.T) {
		sql, args, err := New().Table("users").Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Empty(t, args)
		assert.Equal(t, "SELECT * FROM `users`", sql)
	})

	t.Run("select with columns and where", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			Select("id", "name").
			Where("age", ">", 10).
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{10}, args)
		assert.Equal(t, "SELECT `id`, `name` FROM `users` WHERE `age` > ?", sql)
	})

	t.Run("or where uses recorded boolean", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			Where("age", ">", 10).
			OrWhere("admin", "=", true).
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{10, true}, args)
		assert.Equal(t, "SELECT * FROM `users` WHERE `age` > ? OR `admin` = ?", sql)
	})

	t.Run("join group order and pagination in clause order", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			Select("users.id").
			Join("addresses", "users.id", "=", "addresses.user_id").
			Where("age", ">=", 18).
			GroupBy("users.id").
			OrderBy("users.id", "desc").
			Limit(10).
			Offset(20).
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{18}, args)
		assert.Equal(t,
			"SELECT `users`.`id` FROM `users` "+
				"INNER JOIN `addresses` ON `users`.`id` = `addresses`.`user_id` "+
				"WHERE `age` >= ? GROUP BY `users`.`id` ORDER BY `users`.`id` DESC LIMIT 10 OFFSET 20",
			sql)
	})

	t.Run("where in", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			WhereIn("id", 1, 2, 3).
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{1, 2, 3}, args)
		assert.Equal(t, "SELECT * FROM `users` WHERE `id` IN (?, ?, ?)", sql)
	})

	t.Run("empty where in matches nothing", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			WhereIn("id").
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Empty(t, args)
		assert.Equal(t, "SELECT * FROM `users` WHERE 1 = 0", sql)
	})

	t.Run("no table", func(t *testing.T) {
		_, _, err := New().Where("id", "=", 1).Compile(Dialects.MySQL)
		assert.True(t, errors.Is(err, ErrNoTable))
		var be *BuilderError
		assert.True(t, errors.As(err, &be))
	})

	t.Run("unsupported operator", func(t *testing.T) {
		_, _, err := New().
			Table("users").
			Where("id", "SOUNDS LIKE", 1).
			Compile(Dialects.MySQL)
		assert.True(t, errors.Is(err, ErrUnsupportedOperator))
		assert.Contains(t, err.Error(), "SOUNDS LIKE")
	})
}

func TestBindingOrder(t *testing.T) {
	t.Run("raw fragment keeps its ordinal position", func(t *testing.T) {
		sql, args, err := New().
			Table("orders").
			Where("status", "=", "open").
			WhereRaw("total BETWEEN ? AND ?", 10, 100).
			Where("region", "=", "eu").
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{"open", 10, 100, "eu"}, args)
		assert.Equal(t,
			"SELECT * FROM `orders` WHERE `status` = ? AND total BETWEEN ? AND ? AND `region` = ?",
			sql)
	})

	t.Run("placeholder count always matches binding count", func(t *testing.T) {
		sql, args, err := New().
			Table("orders").
			WhereIn("status", "open", "paid").
			WhereRaw("created_at > ?", "2020-01-01").
			Where("total", ">", 5).
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, len(args), strings.Count(sql, "?"))
		assert.Equal(t, []any{"open", "paid", "2020-01-01", 5}, args)
	})
}

func TestDeterminismAndClone(t *testing.T) {
	build := func() *Builder {
		return New().
			Table("users").
			Select("id", "name").
			Where("age", ">", 21).
			WhereIn("role", "admin", "editor").
			OrderBy("id", "asc").
			Limit(5)
	}

	t.Run("identical construction compiles byte identical", func(t *testing.T) {
		sql1, args1, err1 := build().Compile(Dialects.MySQL)
		sql2, args2, err2 := build().Compile(Dialects.MySQL)
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Equal(t, sql1, sql2)
		assert.Equal(t, args1, args2)
	})

	t.Run("compiling twice on the same builder is stable", func(t *testing.T) {
		b := build()
		sql1, args1, _ := b.Compile(Dialects.MySQL)
		sql2, args2, _ := b.Compile(Dialects.MySQL)
		assert.Equal(t, sql1, sql2)
		assert.Equal(t, args1, args2)
	})

	t.Run("mutating a clone leaves the original untouched", func(t *testing.T) {
		original := build()
		before, beforeArgs, err := original.Compile(Dialects.MySQL)
		require.NoError(t, err)

		clone := original.Clone()
		clone.Where("banned", "=", false).OrderBy("name", "desc").Limit(1)

		after, afterArgs, err := original.Compile(Dialects.MySQL)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, beforeArgs, afterArgs)

		cloneSQL, cloneArgs, err := clone.Compile(Dialects.MySQL)
		require.NoError(t, err)
		assert.NotEqual(t, before, cloneSQL)
		assert.Equal(t, append(append([]any{}, beforeArgs...), false), cloneArgs)
	})
}

func TestDialectSubstitution(t *testing.T) {
	build := func() *Builder {
		return New().
			Table("articles").
			Select("id", "title").
			Where("published", "=", true).
			WhereIn("category_id", 1, 2).
			OrderBy("id", "asc").
			Limit(10).
			Offset(5)
	}

	mysqlSQL, mysqlArgs, err := build().Compile(Dialects.MySQL)
	require.NoError(t, err)
	pgSQL, pgArgs, err := build().Compile(Dialects.PostgreSQL)
	require.NoError(t, err)

	// Bindings and clause order are dialect-independent.
	assert.Equal(t, mysqlArgs, pgArgs)
	assert.Equal(t,
		strings.ReplaceAll(mysqlSQL, "`", `"`),
		pgSQL)
	assert.Equal(t,
		"SELECT `id`, `title` FROM `articles` WHERE `published` = ? AND `category_id` IN (?, ?) ORDER BY `id` ASC LIMIT 10 OFFSET 5",
		mysqlSQL)
}

func TestFullTextAndJSON(t *testing.T) {
	t.Run("mysql full text", func(t *testing.T) {
		sql, args, err := New().
			Table("articles").
			WhereFullText([]string{"title", "body"}, "sql builders").
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{"sql builders"}, args)
		assert.Equal(t,
			"SELECT * FROM `articles` WHERE MATCH(`title`,`body`) AGAINST(? IN BOOLEAN MODE)",
			sql)
	})

	t.Run("postgres full text", func(t *testing.T) {
		sql, args, err := New().
			Table("articles").
			WhereFullText([]string{"title"}, "sql builders").
			Compile(Dialects.PostgreSQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{"sql builders"}, args)
		assert.Equal(t,
			`SELECT * FROM "articles" WHERE (to_tsvector('english', "title")) @@ plainto_tsquery('english', ?)`,
			sql)
	})

	t.Run("mysql json path", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			WhereJSON("settings", "$.theme", "=", "dark").
			Compile(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{"$.theme", "dark"}, args)
		assert.Equal(t,
			"SELECT * FROM `users` WHERE JSON_UNQUOTE(JSON_EXTRACT(`settings`, ?)) = ?",
			sql)
	})

	t.Run("postgres json path", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			WhereJSON("settings", "$.theme", "=", "dark").
			Compile(Dialects.PostgreSQL)
		assert.NoError(t, err)
		assert.Equal(t, []any{"{theme}", "dark"}, args)
		assert.Equal(t, `SELECT * FROM "users" WHERE "settings" #>> ? = ?`, sql)
	})

	t.Run("json path validates operator", func(t *testing.T) {
		_, _, err := New().
			Table("users").
			WhereJSON("settings", "$.theme", "MATCHES", "dark").
			Compile(Dialects.MySQL)
		assert.True(t, errors.Is(err, ErrUnsupportedOperator))
	})
}

func TestCompileMutations(t *testing.T) {
	t.Run("insert with sorted columns", func(t *testing.T) {
		sql, args, err := New().Table("users").CompileInsert(Dialects.MySQL, map[string]any{
			"name": "sara",
			"age":  30,
		})
		assert.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` (`age`, `name`) VALUES (?, ?)", sql)
		assert.Equal(t, []any{30, "sara"}, args)
	})

	t.Run("update with wheres after set", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			Where("id", "=", 7).
			CompileUpdate(Dialects.MySQL, map[string]any{"name": "sara"})
		assert.NoError(t, err)
		assert.Equal(t, "UPDATE `users` SET `name` = ? WHERE `id` = ?", sql)
		assert.Equal(t, []any{"sara", 7}, args)
	})

	t.Run("delete with wheres", func(t *testing.T) {
		sql, args, err := New().
			Table("users").
			Where("id", "=", 7).
			CompileDelete(Dialects.MySQL)
		assert.NoError(t, err)
		assert.Equal(t, "DELETE FROM `users` WHERE `id` = ?", sql)
		assert.Equal(t, []any{7}, args)
	})

	t.Run("mutations require a table", func(t *testing.T) {
		_, _, err := New().CompileInsert(Dialects.MySQL, map[string]any{"a": 1})
		assert.True(t, errors.Is(err, ErrNoTable))
		_, _, err = New().CompileUpdate(Dialects.MySQL, map[string]any{"a": 1})
		assert.True(t, errors.Is(err, ErrNoTable))
		_, _, err = New().CompileDelete(Dialects.MySQL)
		assert.True(t, errors.Is(err, ErrNoTable))
	})
}
