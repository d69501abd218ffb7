// Package qb builds SQL statements from accumulated clause state. A Builder
// never talks to a database: Compile turns it into a (sql, bindings) pair and
// everything dialect-specific goes through the Dialect strategy.
package qb

import (
	"fmt"
	"sort"
	"strings"
)

type whereKind int

const (
	whereBasic whereKind = iota
	whereIn
	whereRaw
	whereFullText
	whereJSON
)

type where struct {
	kind    whereKind
	boolean string // "AND" or "OR"; ignored for the first clause

	column string
	op     string
	values []any

	raw string // whereRaw fragment

	columns []string // whereFullText
	query   string   // whereFullText

	path string // whereJSON
}

type join struct {
	kind  string // "INNER JOIN", "LEFT JOIN", "RIGHT JOIN"
	table string
	left  string
	op    string
	right string
}

type orderBy struct {
	column    string
	direction string
}

// Builder accumulates query clauses in insertion order. The binding order of
// its internal where list always matches the left-to-right order of the
// placeholders Compile emits.
type Builder struct {
	table   string
	columns []string
	wheres  []where
	joins   []join
	groups  []string
	orders  []orderBy
	limit   int
	offset  int
}

func New() *Builder {
	return &Builder{}
}

// Table sets the FROM target.
func (b *Builder) Table(name string) *Builder {
	b.table = name
	return b
}

func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

func (b *Builder) Where(column, op string, value any) *Builder {
	return b.boolWhere("AND", column, op, value)
}

func (b *Builder) OrWhere(column, op string, value any) *Builder {
	return b.boolWhere("OR", column, op, value)
}

func (b *Builder) boolWhere(boolean, column, op string, value any) *Builder {
	b.wheres = append(b.wheres, where{
		kind:    whereBasic,
		boolean: boolean,
		column:  column,
		op:      op,
		values:  []any{value},
	})
	return b
}

// WhereRaw appends a literal SQL fragment. Its bindings keep their position
// relative to the other where clauses.
func (b *Builder) WhereRaw(sql string, bindings ...any) *Builder {
	b.wheres = append(b.wheres, where{
		kind:    whereRaw,
		boolean: "AND",
		raw:     sql,
		values:  bindings,
	})
	return b
}

func (b *Builder) WhereIn(column string, values ...any) *Builder {
	b.wheres = append(b.wheres, where{
		kind:    whereIn,
		boolean: "AND",
		column:  column,
		values:  values,
	})
	return b
}

// WhereFullText records a full-text predicate; the actual syntax comes from
// the dialect at compile time.
func (b *Builder) WhereFullText(columns []string, query string) *Builder {
	b.wheres = append(b.wheres, where{
		kind:    whereFullText,
		boolean: "AND",
		columns: columns,
		query:   query,
	})
	return b
}

// WhereJSON records a predicate against a JSON path inside column.
func (b *Builder) WhereJSON(column, path, op string, value any) *Builder {
	b.wheres = append(b.wheres, where{
		kind:    whereJSON,
		boolean: "AND",
		column:  column,
		path:    path,
		op:      op,
		values:  []any{value},
	})
	return b
}

func (b *Builder) Join(table, left, op, right string) *Builder {
	return b.typedJoin("INNER JOIN", table, left, op, right)
}

func (b *Builder) LeftJoin(table, left, op, right string) *Builder {
	return b.typedJoin("LEFT JOIN", table, left, op, right)
}

func (b *Builder) RightJoin(table, left, op, right string) *Builder {
	return b.typedJoin("RIGHT JOIN", table, left, op, right)
}

func (b *Builder) typedJoin(kind, table, left, op, right string) *Builder {
	b.joins = append(b.joins, join{kind: kind, table: table, left: left, op: op, right: right})
	return b
}

func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groups = append(b.groups, columns...)
	return b
}

func (b *Builder) OrderBy(column, direction string) *Builder {
	b.orders = append(b.orders, orderBy{column: column, direction: strings.ToUpper(direction)})
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	return b
}

// TableName exposes the FROM target; relations read it back when deriving
// default key names.
func (b *Builder) TableName() string { return b.table }

// Clone deep-copies the builder so a derived query can mutate freely without
// touching the original.
func (b *Builder) Clone() *Builder {
	c := &Builder{
		table:  b.table,
		limit:  b.limit,
		offset: b.offset,
	}
	c.columns = append([]string(nil), b.columns...)
	c.groups = append([]string(nil), b.groups...)
	c.joins = append([]join(nil), b.joins...)
	c.orders = append([]orderBy(nil), b.orders...)
	c.wheres = make([]where, len(b.wheres))
	for i, w := range b.wheres {
		cw := w
		cw.values = append([]any(nil), w.values...)
		cw.columns = append([]string(nil), w.columns...)
		c.wheres[i] = cw
	}
	return c
}

// Compile renders the accumulated SELECT. It is a pure function of the clause
// state and the dialect: same state, same dialect, byte-identical output.
func (b *Builder) Compile(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, noTableErr()
	}

	var sections []string
	var bindings []any

	columns := b.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}
	sections = append(sections, "SELECT "+strings.Join(quoted, ", "))
	sections = append(sections, "FROM "+d.QuoteIdentifier(b.table))

	for _, j := range b.joins {
		sections = append(sections, fmt.Sprintf("%s %s ON %s %s %s",
			j.kind,
			d.QuoteIdentifier(j.table),
			d.QuoteIdentifier(j.left),
			j.op,
			d.QuoteIdentifier(j.right),
		))
	}

	whereSQL, whereBindings, err := b.compileWheres(d)
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sections = append(sections, "WHERE "+whereSQL)
		bindings = append(bindings, whereBindings...)
	}

	if len(b.groups) > 0 {
		grouped := make([]string, len(b.groups))
		for i, g := range b.groups {
			grouped[i] = d.QuoteIdentifier(g)
		}
		sections = append(sections, "GROUP BY "+strings.Join(grouped, ", "))
	}

	if len(b.orders) > 0 {
		ordered := make([]string, len(b.orders))
		for i, o := range b.orders {
			ordered[i] = d.QuoteIdentifier(o.column) + " " + o.direction
		}
		sections = append(sections, "ORDER BY "+strings.Join(ordered, ", "))
	}

	if pagination := d.CompilePagination(b.limit, b.offset); pagination != "" {
		sections = append(sections, pagination)
	}

	return strings.Join(sections, " "), bindings, nil
}

func (b *Builder) compileWheres(d Dialect) (string, []any, error) {
	if len(b.wheres) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	var bindings []any
	for i, w := range b.wheres {
		var predicate string
		var args []any

		switch w.kind {
		case whereBasic:
			if !operatorAllowed(d, w.op) {
				return "", nil, unsupportedOperatorErr(w.op)
			}
			predicate = fmt.Sprintf("%s %s ?", d.QuoteIdentifier(w.column), w.op)
			args = w.values
		case whereIn:
			if len(w.values) == 0 {
				// empty IN matches nothing
				predicate = "1 = 0"
				break
			}
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(w.values)), ", ")
			predicate = fmt.Sprintf("%s IN (%s)", d.QuoteIdentifier(w.column), marks)
			args = w.values
		case whereRaw:
			predicate = w.raw
			args = w.values
		case whereFullText:
			predicate, args = d.CompileFullText(w.columns, w.query)
		case whereJSON:
			if !operatorAllowed(d, w.op) {
				return "", nil, unsupportedOperatorErr(w.op)
			}
			predicate, args = d.CompileJSONPath(w.column, w.path, w.op, w.values[0])
		}

		if i > 0 {
			sb.WriteString(" " + w.boolean + " ")
		}
		sb.WriteString(predicate)
		bindings = append(bindings, args...)
	}
	return sb.String(), bindings, nil
}

// CompileInsert renders an INSERT for the builder's table. Columns come out
// in sorted order so identical value maps always compile identically.
func (b *Builder) CompileInsert(d Dialect, values map[string]any) (string, []any, error) {
	if b.table == "" {
		return "", nil, noTableErr()
	}
	columns := sortedKeys(values)
	quoted := make([]string, len(columns))
	bindings := make([]any, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		bindings[i] = values[c]
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(b.table),
		strings.Join(quoted, ", "),
		marks,
	)
	return sql, bindings, nil
}

// CompileUpdate renders an UPDATE using the accumulated where clauses. SET
// bindings precede WHERE bindings, matching placeholder order.
func (b *Builder) CompileUpdate(d Dialect, values map[string]any) (string, []any, error) {
	if b.table == "" {
		return "", nil, noTableErr()
	}
	columns := sortedKeys(values)
	pairs := make([]string, len(columns))
	bindings := make([]any, 0, len(columns))
	for i, c := range columns {
		pairs[i] = d.QuoteIdentifier(c) + " = ?"
		bindings = append(bindings, values[c])
	}
	sql := fmt.Sprintf("UPDATE %s SET %s", d.QuoteIdentifier(b.table), strings.Join(pairs, ", "))

	whereSQL, whereBindings, err := b.compileWheres(d)
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
		bindings = append(bindings, whereBindings...)
	}
	return sql, bindings, nil
}

// CompileDelete renders a DELETE using the accumulated where clauses.
func (b *Builder) CompileDelete(d Dialect) (string, []any, error) {
	if b.table == "" {
		return "", nil, noTableErr()
	}
	sql := "DELETE FROM " + d.QuoteIdentifier(b.table)

	whereSQL, bindings, err := b.compileWheres(d)
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
	}
	return sql, bindings, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
