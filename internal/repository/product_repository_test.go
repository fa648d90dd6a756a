package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `\%\%`, escapeLike("%%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "mug", escapeLike("mug"))
}

func TestProductWhereEscapesSearch(t *testing.T) {
	where, args := productWhere(ProductFilter{Search: " 100%_Cotton "})

	require.Len(t, args, 1)
	assert.Equal(t, `%100\%\_cotton%`, args[0])
	assert.Equal(t, 4, strings.Count(where, `LIKE $1 ESCAPE '\'`))
}

func TestProductWherePlaceholdersFollowArgs(t *testing.T) {
	minPrice, maxPrice := 5.0, 50.0
	featured := true
	where, args := productWhere(ProductFilter{
		CategorySlug: "kitchen",
		ExcludeID:    3,
		MinPrice:     &minPrice,
		MaxPrice:     &maxPrice,
		Featured:     &featured,
	})

	assert.Equal(t, []any{"kitchen", int64(3), 5.0, 50.0, true}, args)
	assert.Contains(t, where, "c.slug=$1")
	assert.Contains(t, where, "p.id <> $2")
	assert.Contains(t, where, "p.price >= $3")
	assert.Contains(t, where, "p.price <= $4")
	assert.Contains(t, where, "p.featured = $5")
	assert.True(t, strings.HasPrefix(where, "p.status='publish'"))
}
