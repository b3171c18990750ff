package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQueryDefaults(t *testing.T) {
	query, count, args := buildListQuery(productListSpec, ListFilter{})

	assert.Equal(t, `SELECT `+productColumns+` FROM products WHERE 1=1 ORDER BY created_at ASC, id ASC`, query)
	assert.Equal(t, `SELECT COUNT(*) FROM products WHERE 1=1`, count)
	assert.Empty(t, args)
}

func TestBuildListQuerySearchSortAndPage(t *testing.T) {
	filter := ListFilter{
		Search:     "  Shirt ",
		SortBy:     "price",
		SortDesc:   true,
		Limit:      10,
		Offset:     20,
		OnlyListed: true,
	}
	query, count, args := buildListQuery(productListSpec, filter)

	where := `1=1 AND sell = TRUE AND (LOWER(name) LIKE $1 OR LOWER(description) LIKE $1)`
	assert.Equal(t, `SELECT `+productColumns+` FROM products WHERE `+where+` ORDER BY price DESC, id ASC LIMIT 10 OFFSET 20`, query)
	assert.Equal(t, `SELECT COUNT(*) FROM products WHERE `+where, count)
	assert.Equal(t, []any{"%shirt%"}, args)
}

func TestBuildListQueryRejectsUnknownSortColumn(t *testing.T) {
	query, _, _ := buildListQuery(worshipListSpec, ListFilter{SortBy: "price; DROP TABLE users", OnlyListed: true})

	assert.Contains(t, query, "ORDER BY created_at ASC")
	assert.NotContains(t, query, "sell")
	assert.NotContains(t, query, "DROP")
}
