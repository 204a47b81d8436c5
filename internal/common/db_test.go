package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	db := TestDB(t)

	tables := []string{"blogs", "photos", "page_views"}
	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			var exists bool
			err := db.QueryRowContext(context.Background(), "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestUniqueViolation(t *testing.T) {
	db := TestDB(t)

	insert := `INSERT INTO blogs (slug, title, content) VALUES ($1, $2, $3)`

	_, err := db.Exec(insert, "hello", "Hello", "x")
	require.NoError(t, err)

	_, err = db.Exec(insert, "hello", "Hello again", "y")
	require.Error(t, err)

	assert.True(t, UniqueViolation(err, "blogs_slug_key"))
	assert.False(t, UniqueViolation(err, "some_other_key"))
}

func TestSizeClassConstraint(t *testing.T) {
	db := TestDB(t)

	_, err := db.Exec(`INSERT INTO photos (title, image_url, image_ref, size_class, width, height) VALUES ('t', 'u', 'r', 'huge', 10, 10)`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO photos (title, image_url, image_ref, size_class, width, height) VALUES ('t', 'u', 'r', 'wide', 10, 10)`)
	assert.NoError(t, err)
}
