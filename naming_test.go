package loom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomdb/loom"
)

func TestForeignKeyFor(t *testing.T) {
	assert.Equal(t, "user_id", loom.ForeignKeyFor("users"))
	assert.Equal(t, "person_id", loom.ForeignKeyFor("people"))
	assert.Equal(t, "blog_post_id", loom.ForeignKeyFor("blog_posts"))
	assert.Equal(t, "category_id", loom.ForeignKeyFor("categories"))
}

func TestMorphNameFor(t *testing.T) {
	assert.Equal(t, "post", loom.MorphNameFor("posts"))
	assert.Equal(t, "blog_post", loom.MorphNameFor("blog_posts"))
}

func TestPivotTableFor(t *testing.T) {
	assert.Equal(t, "post_tag", loom.PivotTableFor("posts", "tags"))
	assert.Equal(t, "post_tag", loom.PivotTableFor("tags", "posts"))
	assert.Equal(t, "role_user", loom.PivotTableFor("users", "roles"))
}

func TestRecordDefaults(t *testing.T) {
	r := loom.NewRecord("users", map[string]any{"id": int64(3), "name": "sara"})
	assert.Equal(t, "id", r.GetKeyName())
	assert.Equal(t, "users", r.GetTable())
	assert.Equal(t, "user", r.MorphName())
	assert.Equal(t, int64(3), r.Key())
	assert.Nil(t, r.GetAttribute("missing"))

	empty := loom.Record{Table: "users"}
	assert.Equal(t, "id", empty.GetKeyName())
	assert.Equal(t, "user", empty.MorphName())
	assert.Nil(t, empty.GetAttribute("anything"))
}
