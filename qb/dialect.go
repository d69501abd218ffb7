package qb

import "strings"

// Dialect isolates every piece of SQL syntax that varies between database
// engines. The Builder never branches on the engine itself; adding an engine
// means adding a Dialect implementation, nothing else.
type Dialect interface {
	Name() string

	// QuoteIdentifier quotes a table or column name. Dotted paths are quoted
	// per segment, "*" passes through unquoted.
	QuoteIdentifier(name string) string

	// CompilePagination renders the trailing LIMIT/OFFSET section. Zero
	// values mean the clause was not set.
	CompilePagination(limit, offset int) string

	// CompileFullText renders a full-text search predicate over the given
	// columns with its bindings.
	CompileFullText(columns []string, query string) (string, []any)

	// CompileJSONPath renders a predicate against a JSON path inside column.
	CompileJSONPath(column, path, op string, value any) (string, []any)

	// TypeMap maps canonical column type names to the engine's native ones.
	TypeMap() map[string]string

	// Operators is the allow-list of predicate operators the engine accepts.
	Operators() map[string]struct{}
}

// Dialects holds one shared instance per supported engine, the way callers
// normally reference them.
var Dialects = &struct {
	MySQL      Dialect
	PostgreSQL Dialect
	SQLite     Dialect
	SQLServer  Dialect
}{
	MySQL:      &mysqlDialect{},
	PostgreSQL: &postgresDialect{},
	SQLite:     &sqliteDialect{},
	SQLServer:  &sqlserverDialect{},
}

// GetDialect maps a database/sql driver name to its dialect.
func GetDialect(driver string) (Dialect, bool) {
	switch driver {
	case "mysql":
		return Dialects.MySQL, true
	case "postgres":
		return Dialects.PostgreSQL, true
	case "sqlite", "sqlite3":
		return Dialects.SQLite, true
	case "sqlserver", "mssql":
		return Dialects.SQLServer, true
	default:
		return nil, false
	}
}

var defaultOperators = map[string]struct{}{
	"=":        {},
	"!=":       {},
	"<>":       {},
	"<":        {},
	"<=":       {},
	">":        {},
	">=":       {},
	"LIKE":     {},
	"NOT LIKE": {},
	"IS":       {},
	"IS NOT":   {},
	"BETWEEN":  {},
}

func operatorAllowed(d Dialect, op string) bool {
	_, ok := d.Operators()[strings.ToUpper(op)]
	return ok
}

// quoteWith quotes dotted identifiers with the given open/close characters,
// doubling any embedded closing character.
func quoteWith(name, open, close string) string {
	if name == "*" {
		return name
	}
	segments := strings.Split(name, ".")
	for i, seg := range segments {
		if seg == "*" {
			continue
		}
		segments[i] = open + strings.ReplaceAll(seg, close, close+close) + close
	}
	return strings.Join(segments, ".")
}
