package loom

import "fmt"

// MorphTarget names the table and key column a morph discriminator value
// points at.
type MorphTarget struct {
	Table   string
	KeyName string
}

// MorphRegistry maps morph-type discriminator values to their targets. It is
// meant to be populated once at startup and passed to MorphTo explicitly; no
// type names are resolved dynamically per access.
type MorphRegistry struct {
	targets map[string]MorphTarget
}

func NewMorphRegistry() *MorphRegistry {
	return &MorphRegistry{targets: map[string]MorphTarget{}}
}

// Register binds a discriminator value to a target table. The key name
// defaults to "id" when empty.
func (r *MorphRegistry) Register(discriminator string, target MorphTarget) *MorphRegistry {
	if target.KeyName == "" {
		target.KeyName = "id"
	}
	r.targets[discriminator] = target
	return r
}

// RegisterTable is the conventional shortcut: discriminator derived from the
// table name, key column "id".
func (r *MorphRegistry) RegisterTable(table string) *MorphRegistry {
	return r.Register(MorphNameFor(table), MorphTarget{Table: table, KeyName: "id"})
}

func (r *MorphRegistry) Resolve(discriminator string) (MorphTarget, bool) {
	t, ok := r.targets[discriminator]
	return t, ok
}

// Targets lists the registered discriminators, for Schematic-style dumps.
func (r *MorphRegistry) Targets() map[string]MorphTarget {
	out := make(map[string]MorphTarget, len(r.targets))
	for k, v := range r.targets {
		out[k] = v
	}
	return out
}

// MorphOne points at a single polymorphic row: the related table stores the
// parent's key in "<name>_id" and the parent's morph name in "<name>_type".
type MorphOne struct {
	relation
	typeColumn string
	idColumn   string
}

func NewMorphOne(conn *Connection, parent Model, relatedTable, morphName string) (*MorphOne, error) {
	key, err := captureKey(parent, parent.GetKeyName())
	if err != nil {
		return nil, err
	}
	m := &MorphOne{
		relation:   relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(relatedTable)},
		typeColumn: morphName + "_type",
		idColumn:   morphName + "_id",
	}
	m.addConstraints()
	return m, nil
}

func (m *MorphOne) addConstraints() {
	m.query.
		Where(m.idColumn, "=", m.parentKey).
		Where(m.typeColumn, "=", m.parent.MorphName())
}

// GetResults returns the first related row, or nil when there is none.
func (m *MorphOne) GetResults() (*Record, error) {
	return m.query.First()
}

// MorphMany is MorphOne with a collection result shape.
type MorphMany struct {
	relation
	typeColumn string
	idColumn   string
}

func NewMorphMany(conn *Connection, parent Model, relatedTable, morphName string) (*MorphMany, error) {
	key, err := captureKey(parent, parent.GetKeyName())
	if err != nil {
		return nil, err
	}
	m := &MorphMany{
		relation:   relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(relatedTable)},
		typeColumn: morphName + "_type",
		idColumn:   morphName + "_id",
	}
	m.addConstraints()
	return m, nil
}

func (m *MorphMany) addConstraints() {
	m.query.
		Where(m.idColumn, "=", m.parentKey).
		Where(m.typeColumn, "=", m.parent.MorphName())
}

// GetResults returns every related row.
func (m *MorphMany) GetResults() ([]Record, error) {
	return m.query.Get()
}

// MorphTo is the inverse polymorphic side: the parent row stores both which
// table it points at ("<name>_type") and which row ("<name>_id"); the target
// is looked up in the registry, never derived from a runtime type name.
type MorphTo struct {
	relation
	target MorphTarget
}

func NewMorphTo(conn *Connection, parent Model, morphName string, registry *MorphRegistry) (*MorphTo, error) {
	typeValue, _ := parent.GetAttribute(morphName + "_type").(string)
	target, ok := registry.Resolve(typeValue)
	if !ok {
		return nil, &RelationError{
			Err:    ErrUnresolvedMorphType,
			Detail: fmt.Sprintf("%s.%s_type=%q", parent.GetTable(), morphName, typeValue),
		}
	}
	key, err := captureKey(parent, morphName+"_id")
	if err != nil {
		return nil, err
	}
	m := &MorphTo{
		relation: relation{conn: conn, parent: parent, parentKey: key, query: conn.Table(target.Table)},
		target:   target,
	}
	m.addConstraints()
	return m, nil
}

func (m *MorphTo) addConstraints() {
	m.query.Where(m.target.KeyName, "=", m.parentKey)
}

// Target reports which registered entity the stored discriminator resolved
// to.
func (m *MorphTo) Target() MorphTarget { return m.target }

// GetResults returns the row the parent points at, or nil when it is gone.
func (m *MorphTo) GetResults() (*Record, error) {
	return m.query.First()
}
