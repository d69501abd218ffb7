package loom

// Pivot mutations operate directly on the junction table through the
// connection; they never touch the related table itself.

// Attach inserts one pivot row linking the parent to relatedID, carrying any
// extra pivot attributes. No uniqueness check happens here: attaching the
// same id twice yields two rows unless the junction table's schema forbids
// it.
func (b *BelongsToMany) Attach(relatedID any, extra map[string]any) error {
	values := map[string]any{
		b.foreignPivotKey: b.parentKey,
		b.relatedPivotKey: relatedID,
	}
	for k, v := range extra {
		values[k] = v
	}
	_, err := b.conn.Table(b.pivotTable).Insert(values)
	return err
}

// Detach deletes the parent's pivot rows. With ids it only removes those
// related ids; without, it removes every pivot row for the parent.
func (b *BelongsToMany) Detach(ids ...any) error {
	q := b.conn.Table(b.pivotTable).Where(b.foreignPivotKey, "=", b.parentKey)
	if len(ids) > 0 {
		q.WhereIn(b.relatedPivotKey, ids...)
	}
	_, err := q.Delete()
	return err
}

// Sync replaces the parent's pivot set wholesale: detach everything, then
// attach each given id with no extra attributes. This is deliberately not a
// diff — syncing the same set again still deletes and reinserts, and no
// pivot attributes survive. Callers wanting detach/attach atomicity wrap the
// call in Connection.Transaction themselves.
func (b *BelongsToMany) Sync(ids []any) error {
	if err := b.Detach(); err != nil {
		return err
	}
	for _, id := range ids {
		if err := b.Attach(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// AttachThrough is the guarded generic entry point: it only works when rel
// is backed by a junction table.
func AttachThrough(rel Relation, relatedID any, extra map[string]any) error {
	b, ok := rel.(*BelongsToMany)
	if !ok {
		return &RelationError{Err: ErrNotManyToMany}
	}
	return b.Attach(relatedID, extra)
}

// DetachThrough mirrors AttachThrough for detaching.
func DetachThrough(rel Relation, ids ...any) error {
	b, ok := rel.(*BelongsToMany)
	if !ok {
		return &RelationError{Err: ErrNotManyToMany}
	}
	return b.Detach(ids...)
}
