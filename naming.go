package loom

import (
	"sort"
	"strings"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

var plural = pluralize.NewClient()

// ForeignKeyFor derives the conventional foreign key column for a table:
// "users" -> "user_id".
func ForeignKeyFor(table string) string {
	return strcase.ToSnake(plural.Singular(table)) + "_id"
}

// MorphNameFor derives the discriminator value stored in a morph-type column
// for rows belonging to the given table: "blog_posts" -> "blog_post".
func MorphNameFor(table string) string {
	return strcase.ToSnake(plural.Singular(table))
}

// PivotTableFor derives the conventional junction table name for two related
// tables: singulars, sorted, joined with an underscore. "posts","tags" ->
// "post_tag".
func PivotTableFor(a, b string) string {
	names := []string{plural.Singular(a), plural.Singular(b)}
	sort.Strings(names)
	return strings.Join(names, "_")
}
