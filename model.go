package loom

// Model is what the engine needs from a parent entity: attribute access, the
// key column name, the backing table, and a discriminator value for
// polymorphic relations. Attribute values are expected to be loaded before a
// relation is constructed.
type Model interface {
	GetAttribute(name string) any
	GetKeyName() string
	GetTable() string
	MorphName() string
}

// Record is a map-backed Model. Query results come back as Records, and
// fixtures in tests use it directly.
type Record struct {
	Table   string
	KeyName string
	Morph   string
	Attrs   map[string]any
}

func NewRecord(table string, attrs map[string]any) Record {
	return Record{
		Table:   table,
		KeyName: "id",
		Morph:   MorphNameFor(table),
		Attrs:   attrs,
	}
}

func (r Record) GetAttribute(name string) any {
	if r.Attrs == nil {
		return nil
	}
	return r.Attrs[name]
}

func (r Record) GetKeyName() string {
	if r.KeyName == "" {
		return "id"
	}
	return r.KeyName
}

func (r Record) GetTable() string { return r.Table }

func (r Record) MorphName() string {
	if r.Morph == "" {
		return MorphNameFor(r.Table)
	}
	return r.Morph
}

// Key returns the record's own key value.
func (r Record) Key() any { return r.GetAttribute(r.GetKeyName()) }
