// Package loom resolves object graphs over a dialect-aware SQL builder. A
// Connection executes compiled statements, a Query pairs a builder with a
// connection, and the relation types translate a parent model plus
// relationship metadata into constrained queries.
package loom

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/table"

	"github.com/loomdb/loom/qb"

	// Drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// Connection is a dialect-tagged handle to an executable database. It owns
// statement execution, positional parameter rebinding and transaction
// control; query construction lives in Query and the relation types.
type Connection struct {
	Name    string
	Dialect qb.Dialect

	db     *sql.DB
	runner execer // db, or the active transaction
	logger Logger
	debug  bool

	morphs *MorphRegistry

	mu     sync.Mutex
	tables map[string]struct{}
}

// ConnectionConfig drives the Open convenience constructor.
type ConnectionConfig struct {
	Name             string
	Driver           string
	ConnectionString string
	Debug            bool
	LogLevel         LogLevel
}

// New wires a Connection from an already-opened *sql.DB and an explicit
// dialect. Nothing is resolved from global state.
func New(name string, db *sql.DB, dialect qb.Dialect) *Connection {
	return &Connection{
		Name:    name,
		Dialect: dialect,
		db:      db,
		runner:  db,
		logger:  noopLogger{},
		tables:  map[string]struct{}{},
	}
}

// Open opens a database/sql handle for the given driver and wires the
// matching dialect.
func Open(conf ConnectionConfig) (*Connection, error) {
	dialect, ok := qb.GetDialect(conf.Driver)
	if !ok {
		return nil, fmt.Errorf("loom: no dialect matched with driver %q", conf.Driver)
	}
	db, err := sql.Open(conf.Driver, conf.ConnectionString)
	if err != nil {
		return nil, err
	}
	c := New(conf.Name, db, dialect)
	if conf.Debug {
		logger, err := newZapLogger(conf.LogLevel)
		if err != nil {
			return nil, err
		}
		c.logger = logger
		c.debug = true
	}
	return c, nil
}

// WithLogger replaces the connection's logger.
func (c *Connection) WithLogger(l Logger) *Connection {
	c.logger = l
	return c
}

// WithDebug toggles debug mode: statements get logged and execution errors
// carry their SQL and bindings.
func (c *Connection) WithDebug(debug bool) *Connection {
	c.debug = debug
	return c
}

// WithMorphRegistry attaches the registry so Schematic can list the morph
// targets alongside the tables.
func (c *Connection) WithMorphRegistry(r *MorphRegistry) *Connection {
	c.morphs = r
	return c
}

// DB exposes the raw handle for schema setup in callers and tests.
func (c *Connection) DB() *sql.DB { return c.db }

// Table starts a fluent query against the given table.
func (c *Connection) Table(name string) *Query {
	c.mu.Lock()
	c.tables[name] = struct{}{}
	c.mu.Unlock()
	return &Query{
		conn:    c,
		builder: qb.New().Table(name),
	}
}

// Exec runs a statement that returns no rows.
func (c *Connection) Exec(query string, bindings ...any) (sql.Result, error) {
	bound := c.rebind(query)
	c.logQuery(bound, bindings)
	res, err := c.runner.Exec(bound, bindings...)
	if err != nil {
		return nil, c.execError(err, bound, bindings)
	}
	return res, nil
}

// Query runs a statement and maps every row of the result into a Record for
// the given table.
func (c *Connection) Query(tableName, query string, bindings ...any) ([]Record, error) {
	bound := c.rebind(query)
	c.logQuery(bound, bindings)
	rows, err := c.runner.Query(bound, bindings...)
	if err != nil {
		return nil, c.execError(err, bound, bindings)
	}
	defer rows.Close()
	return scanRecords(rows, tableName)
}

// LastInsertId reports the id generated by the most recent insert on res.
func (c *Connection) LastInsertId(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, c.execError(err, "", nil)
	}
	return id, nil
}

// Transaction runs fn inside a transaction, committing on nil and rolling
// back on error. The callback receives a Connection whose statements ride the
// transaction. Pivot Sync is deliberately not wrapped in this automatically;
// callers needing detach/attach atomicity opt in here.
func (c *Connection) Transaction(fn func(tx *Connection) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return c.execError(err, "", nil)
	}
	txConn := &Connection{
		Name:    c.Name,
		Dialect: c.Dialect,
		db:      c.db,
		runner:  tx,
		logger:  c.logger,
		debug:   c.debug,
		morphs:  c.morphs,
		tables:  map[string]struct{}{},
	}
	if err := fn(txConn); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders into the positional form the driver wants.
// Compile always emits ?, so dialect substitution never changes binding
// order; the translation happens here, at the transport boundary.
func (c *Connection) rebind(query string) string {
	var prefix string
	switch c.Dialect.Name() {
	case "postgres":
		prefix = "$"
	case "sqlserver":
		prefix = "@p"
	default:
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("%s%d", prefix, n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (c *Connection) logQuery(query string, bindings []any) {
	if c.debug {
		c.logger.Debugf("query=%s bindings=%v", query, bindings)
	}
}

func (c *Connection) execError(err error, query string, bindings []any) error {
	if !c.debug {
		return &ExecutionError{Err: err}
	}
	c.logger.Errorf("query failed: %v query=%s bindings=%v", err, query, bindings)
	return &ExecutionError{Err: err, SQL: query, Bindings: bindings}
}

// Schematic dumps the connection's dialect and every table it has been asked
// to query, for debugging.
func (c *Connection) Schematic() {
	fmt.Printf("SQL Dialect: %s\n", c.Dialect.Name())
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(table.Row{"Table"})
	c.mu.Lock()
	for t := range c.tables {
		w.AppendRow(table.Row{t})
	}
	c.mu.Unlock()
	w.Render()

	if c.morphs == nil {
		return
	}
	mw := table.NewWriter()
	mw.SetOutputMirror(os.Stdout)
	mw.AppendHeader(table.Row{"Morph", "Table", "Key"})
	for disc, target := range c.morphs.Targets() {
		mw.AppendRow(table.Row{disc, target.Table, target.KeyName})
	}
	mw.Render()
}

func scanRecords(rows *sql.Rows, tableName string) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Record
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		attrs := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				attrs[col] = string(b)
				continue
			}
			attrs[col] = values[i]
		}
		out = append(out, NewRecord(tableName, attrs))
	}
	return out, rows.Err()
}
