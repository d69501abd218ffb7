package loom

import "fmt"

// Relation is the shared contract of every relationship variant: access to
// the constrained query and to the parent the constraints were derived from.
// Result shapes stay on the concrete types, since one-row and many-row
// variants return different things; callers chain further clauses against
// Query() directly.
type Relation interface {
	Query() *Query
	Parent() Model
}

// relation carries what every variant needs. The parent key value is
// captured once, at construction, and never re-read from the parent.
type relation struct {
	conn      *Connection
	parent    Model
	parentKey any
	query     *Query
}

func (r *relation) Query() *Query { return r.query }
func (r *relation) Parent() Model { return r.parent }

func captureKey(parent Model, attribute string) (any, error) {
	v := parent.GetAttribute(attribute)
	if v == nil {
		return nil, &RelationError{
			Err:    ErrMissingParentKey,
			Detail: fmt.Sprintf("%s.%s", parent.GetTable(), attribute),
		}
	}
	return v, nil
}

// HasOne points at a single row on the related table carrying the parent's
// key in its foreign key column.
type HasOne struct {
	relation
	foreignKey string
}

// NewHasOne builds the relation and applies its constraints. Empty key names
// fall back to convention: foreign key from the parent table, local key from
// the parent's key name.
func NewHasOne(conn *Connection, parent Model, relatedTable, foreignKey, localKey string) (*HasOne, error) {
	if foreignKey == "" {
		foreignKey = ForeignKeyFor(parent.GetTable())
	}
	if localKey == "" {
		localKey = parent.GetKeyName()
	}
	key, err := captureKey(parent, localKey)
	if err != nil {
		return nil, err
	}
	h := &HasOne{
		relation:   relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(relatedTable)},
		foreignKey: foreignKey,
	}
	h.addConstraints()
	return h, nil
}

func (h *HasOne) addConstraints() {
	h.query.Where(h.foreignKey, "=", h.parentKey)
}

// GetResults returns the first related row, or nil when there is none.
func (h *HasOne) GetResults() (*Record, error) {
	return h.query.First()
}

// HasMany points at every row on the related table carrying the parent's key
// in its foreign key column.
type HasMany struct {
	relation
	foreignKey string
}

func NewHasMany(conn *Connection, parent Model, relatedTable, foreignKey, localKey string) (*HasMany, error) {
	if foreignKey == "" {
		foreignKey = ForeignKeyFor(parent.GetTable())
	}
	if localKey == "" {
		localKey = parent.GetKeyName()
	}
	key, err := captureKey(parent, localKey)
	if err != nil {
		return nil, err
	}
	h := &HasMany{
		relation:   relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(relatedTable)},
		foreignKey: foreignKey,
	}
	h.addConstraints()
	return h, nil
}

func (h *HasMany) addConstraints() {
	h.query.Where(h.foreignKey, "=", h.parentKey)
}

// GetResults returns every related row.
func (h *HasMany) GetResults() ([]Record, error) {
	return h.query.Get()
}

// BelongsTo is the inverse side: the parent carries the foreign key and the
// related (owner) table is matched on its owner key.
type BelongsTo struct {
	relation
	ownerKey string
}

func NewBelongsTo(conn *Connection, parent Model, ownerTable, foreignKey, ownerKey string) (*BelongsTo, error) {
	if foreignKey == "" {
		foreignKey = ForeignKeyFor(ownerTable)
	}
	if ownerKey == "" {
		ownerKey = "id"
	}
	key, err := captureKey(parent, foreignKey)
	if err != nil {
		return nil, err
	}
	b := &BelongsTo{
		relation: relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(ownerTable)},
		ownerKey: ownerKey,
	}
	b.addConstraints()
	return b, nil
}

func (b *BelongsTo) addConstraints() {
	b.query.Where(b.ownerKey, "=", b.parentKey)
}

// GetResults returns the owning row, or nil when there is none.
func (b *BelongsTo) GetResults() (*Record, error) {
	return b.query.First()
}

// BelongsToMany resolves a many-to-many relationship through a junction
// table: the related table is joined to the pivot on the related pivot key,
// then filtered by the parent's key on the foreign pivot key.
type BelongsToMany struct {
	relation
	relatedTable    string
	relatedKey      string
	pivotTable      string
	foreignPivotKey string
	relatedPivotKey string
}

func NewBelongsToMany(conn *Connection, parent Model, relatedTable, pivotTable, foreignPivotKey, relatedPivotKey string) (*BelongsToMany, error) {
	if pivotTable == "" {
		pivotTable = PivotTableFor(parent.GetTable(), relatedTable)
	}
	if foreignPivotKey == "" {
		foreignPivotKey = ForeignKeyFor(parent.GetTable())
	}
	if relatedPivotKey == "" {
		relatedPivotKey = ForeignKeyFor(relatedTable)
	}
	key, err := captureKey(parent, parent.GetKeyName())
	if err != nil {
		return nil, err
	}
	b := &BelongsToMany{
		relation:        relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(relatedTable)},
		relatedTable:    relatedTable,
		relatedKey:      "id",
		pivotTable:      pivotTable,
		foreignPivotKey: foreignPivotKey,
		relatedPivotKey: relatedPivotKey,
	}
	b.addConstraints()
	return b, nil
}

func (b *BelongsToMany) addConstraints() {
	b.query.
		Select(b.relatedTable+".*").
		Join(b.pivotTable,
			b.relatedTable+"."+b.relatedKey,
			"=",
			b.pivotTable+"."+b.relatedPivotKey,
		).
		Where(b.pivotTable+"."+b.foreignPivotKey, "=", b.parentKey)
}

// GetResults returns every row reachable through the junction table.
func (b *BelongsToMany) GetResults() ([]Record, error) {
	return b.query.Get()
}
