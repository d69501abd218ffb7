package qb

import (
	"fmt"
	"strings"
)

type mysqlDialect struct{}

func (d *mysqlDialect) Name() string { return "mysql" }

func (d *mysqlDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *mysqlDialect) CompilePagination(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	var parts []string
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}

func (d *mysqlDialect) CompileFullText(columns []string, query string) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}
	return fmt.Sprintf("MATCH(%s) AGAINST(? IN BOOLEAN MODE)", strings.Join(quoted, ",")), []any{query}
}

func (d *mysqlDialect) CompileJSONPath(column, path, op string, value any) (string, []any) {
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, ?)) %s ?", d.QuoteIdentifier(column), op),
		[]any{path, value}
}

func (d *mysqlDialect) TypeMap() map[string]string {
	return map[string]string{
		"string":   "VARCHAR(255)",
		"text":     "TEXT",
		"integer":  "INT",
		"bigint":   "BIGINT",
		"float":    "DOUBLE",
		"boolean":  "TINYINT(1)",
		"datetime": "DATETIME",
		"json":     "JSON",
	}
}

func (d *mysqlDialect) Operators() map[string]struct{} { return defaultOperators }

type postgresDialect struct{}

func (d *postgresDialect) Name() string { return "postgres" }

func (d *postgresDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *postgresDialect) CompilePagination(limit, offset int) string {
	return (&mysqlDialect{}).CompilePagination(limit, offset)
}

func (d *postgresDialect) CompileFullText(columns []string, query string) (string, []any) {
	vectors := make([]string, len(columns))
	for i, c := range columns {
		vectors[i] = fmt.Sprintf("to_tsvector('english', %s)", d.QuoteIdentifier(c))
	}
	return fmt.Sprintf("(%s) @@ plainto_tsquery('english', ?)", strings.Join(vectors, " || ")), []any{query}
}

func (d *postgresDialect) CompileJSONPath(column, path, op string, value any) (string, []any) {
	// path arrives in dotted form; postgres wants a text[] path for #>>.
	segments := strings.Split(strings.TrimPrefix(path, "$."), ".")
	return fmt.Sprintf("%s #>> ? %s ?", d.QuoteIdentifier(column), op),
		[]any{"{" + strings.Join(segments, ",") + "}", value}
}

func (d *postgresDialect) TypeMap() map[string]string {
	return map[string]string{
		"string":   "VARCHAR(255)",
		"text":     "TEXT",
		"integer":  "INTEGER",
		"bigint":   "BIGINT",
		"float":    "DOUBLE PRECISION",
		"boolean":  "BOOLEAN",
		"datetime": "TIMESTAMP",
		"json":     "JSONB",
	}
}

func (d *postgresDialect) Operators() map[string]struct{} { return defaultOperators }

type sqliteDialect struct{}

func (d *sqliteDialect) Name() string { return "sqlite3" }

func (d *sqliteDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *sqliteDialect) CompilePagination(limit, offset int) string {
	return (&mysqlDialect{}).CompilePagination(limit, offset)
}

// SQLite has no MATCH outside fts virtual tables, so full text degrades to a
// LIKE chain over the given columns.
func (d *sqliteDialect) CompileFullText(columns []string, query string) (string, []any) {
	preds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		preds[i] = fmt.Sprintf("%s LIKE ?", d.QuoteIdentifier(c))
		args[i] = "%" + query + "%"
	}
	return "(" + strings.Join(preds, " OR ") + ")", args
}

func (d *sqliteDialect) CompileJSONPath(column, path, op string, value any) (string, []any) {
	return fmt.Sprintf("json_extract(%s, ?) %s ?", d.QuoteIdentifier(column), op),
		[]any{path, value}
}

func (d *sqliteDialect) TypeMap() map[string]string {
	return map[string]string{
		"string":   "TEXT",
		"text":     "TEXT",
		"integer":  "INTEGER",
		"bigint":   "INTEGER",
		"float":    "REAL",
		"boolean":  "INTEGER",
		"datetime": "TEXT",
		"json":     "TEXT",
	}
}

func (d *sqliteDialect) Operators() map[string]struct{} { return defaultOperators }

type sqlserverDialect struct{}

func (d *sqlserverDialect) Name() string { return "sqlserver" }

func (d *sqlserverDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "[", "]")
}

// SQL Server pagination is only legal after an ORDER BY; the builder leaves
// that to the caller, same as the engine itself does.
func (d *sqlserverDialect) CompilePagination(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	section := fmt.Sprintf("OFFSET %d ROWS", offset)
	if limit > 0 {
		section += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", limit)
	}
	return section
}

func (d *sqlserverDialect) CompileFullText(columns []string, query string) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}
	return fmt.Sprintf("CONTAINS((%s), ?)", strings.Join(quoted, ",")), []any{query}
}

func (d *sqlserverDialect) CompileJSONPath(column, path, op string, value any) (string, []any) {
	return fmt.Sprintf("JSON_VALUE(%s, ?) %s ?", d.QuoteIdentifier(column), op),
		[]any{path, value}
}

func (d *sqlserverDialect) TypeMap() map[string]string {
	return map[string]string{
		"string":   "NVARCHAR(255)",
		"text":     "NVARCHAR(MAX)",
		"integer":  "INT",
		"bigint":   "BIGINT",
		"float":    "FLOAT",
		"boolean":  "BIT",
		"datetime": "DATETIME2",
		"json":     "NVARCHAR(MAX)",
	}
}

func (d *sqlserverDialect) Operators() map[string]struct{} { return defaultOperators }
