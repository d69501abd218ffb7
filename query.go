package loom

import (
	"github.com/loomdb/loom/qb"
)

// Query pairs a builder with the connection that will run it. Mutators
// forward to the builder explicitly and return the Query, so chains like
// users.Where(...).OrderBy(...).Get() read the same as on the builder itself.
type Query struct {
	conn    *Connection
	builder *qb.Builder
}

// Builder exposes the underlying builder for compile-only inspection.
func (q *Query) Builder() *qb.Builder { return q.builder }

// Clone derives an independent query sharing the connection; mutating the
// clone never affects the original's compiled output.
func (q *Query) Clone() *Query {
	return &Query{conn: q.conn, builder: q.builder.Clone()}
}

func (q *Query) Select(columns ...string) *Query {
	q.builder.Select(columns...)
	return q
}

func (q *Query) Where(column, op string, value any) *Query {
	q.builder.Where(column, op, value)
	return q
}

func (q *Query) OrWhere(column, op string, value any) *Query {
	q.builder.OrWhere(column, op, value)
	return q
}

func (q *Query) WhereRaw(sql string, bindings ...any) *Query {
	q.builder.WhereRaw(sql, bindings...)
	return q
}

func (q *Query) WhereIn(column string, values ...any) *Query {
	q.builder.WhereIn(column, values...)
	return q
}

func (q *Query) WhereFullText(columns []string, query string) *Query {
	q.builder.WhereFullText(columns, query)
	return q
}

func (q *Query) WhereJSON(column, path, op string, value any) *Query {
	q.builder.WhereJSON(column, path, op, value)
	return q
}

func (q *Query) Join(table, left, op, right string) *Query {
	q.builder.Join(table, left, op, right)
	return q
}

func (q *Query) LeftJoin(table, left, op, right string) *Query {
	q.builder.LeftJoin(table, left, op, right)
	return q
}

func (q *Query) GroupBy(columns ...string) *Query {
	q.builder.GroupBy(columns...)
	return q
}

func (q *Query) OrderBy(column, direction string) *Query {
	q.builder.OrderBy(column, direction)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.builder.Limit(n)
	return q
}

func (q *Query) Offset(n int) *Query {
	q.builder.Offset(n)
	return q
}

// Compile renders the query without executing it, so callers and tests can
// inspect the (sql, bindings) pair.
func (q *Query) Compile() (string, []any, error) {
	return q.builder.Compile(q.conn.Dialect)
}

// Get compiles and runs the query, returning every matching row.
func (q *Query) Get() ([]Record, error) {
	sql, bindings, err := q.Compile()
	if err != nil {
		return nil, err
	}
	return q.conn.Query(q.builder.TableName(), sql, bindings...)
}

// First returns the first matching row, or nil when there is none.
func (q *Query) First() (*Record, error) {
	rows, err := q.Clone().Limit(1).Get()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Count wraps a clone of the query in a COUNT(*), leaving the original's
// clause state untouched.
func (q *Query) Count() (int64, error) {
	inner, bindings, err := q.builder.Clone().Compile(q.conn.Dialect)
	if err != nil {
		return 0, err
	}
	rows, err := q.conn.Query(q.builder.TableName(),
		"SELECT COUNT(*) AS aggregate FROM ("+inner+") AS loom_count", bindings...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt64(rows[0].GetAttribute("aggregate")), nil
}

// Insert compiles and runs an INSERT with the given column values.
func (q *Query) Insert(values map[string]any) (int64, error) {
	sql, bindings, err := q.builder.CompileInsert(q.conn.Dialect, values)
	if err != nil {
		return 0, err
	}
	res, err := q.conn.Exec(sql, bindings...)
	if err != nil {
		return 0, err
	}
	return q.conn.LastInsertId(res)
}

// Update compiles and runs an UPDATE constrained by the accumulated wheres.
func (q *Query) Update(values map[string]any) (int64, error) {
	sql, bindings, err := q.builder.CompileUpdate(q.conn.Dialect, values)
	if err != nil {
		return 0, err
	}
	res, err := q.conn.Exec(sql, bindings...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete compiles and runs a DELETE constrained by the accumulated wheres.
func (q *Query) Delete() (int64, error) {
	sql, bindings, err := q.builder.CompileDelete(q.conn.Dialect)
	if err != nil {
		return 0, err
	}
	res, err := q.conn.Exec(sql, bindings...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case []byte:
		var out int64
		for _, ch := range n {
			if ch < '0' || ch > '9' {
				break
			}
			out = out*10 + int64(ch-'0')
		}
		return out
	default:
		return 0
	}
}
