package datastore

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/fabula/models"
)

func TestStoryFilterBuilder(t *testing.T) {
	t.Run("blank values are ignored", func(t *testing.T) {
		f := StoryFilter{}.Category("").Status("  ").TitleContains("").AuthorContains("")
		assert.True(t, f.IsEmpty())
		where, args := f.whereClause(sqliteDialect)
		assert.Empty(t, where)
		assert.Nil(t, args)
	})

	t.Run("builder does not share state between branches", func(t *testing.T) {
		base := StoryFilter{}.Category("Health")
		a := base.Status("DRAFT")
		b := base.TitleContains("abc")
		assert.Equal(t, []FilterField{FilterCategory}, base.Fields())
		assert.Equal(t, []FilterField{FilterCategory, FilterStatus}, a.Fields())
		assert.Equal(t, []FilterField{FilterCategory, FilterTitle}, b.Fields())
	})

	t.Run("sqlite where clause", func(t *testing.T) {
		f := StoryFilter{}.Category("Health").TitleContains("50%_Off").Status("PUBLISHED").AuthorContains("Émile")
		where, args := f.whereClause(sqliteDialect)
		assert.Equal(t,
			` WHERE category = $1 AND fabula_lower(title) LIKE $2 ESCAPE '\' AND status = $3 AND fabula_lower(author) LIKE $4 ESCAPE '\'`,
			where,
		)
		assert.Equal(t, []any{"Health", `%50\%\_off%`, "PUBLISHED", "%émile%"}, args)
	})

	t.Run("postgres where clause", func(t *testing.T) {
		f := StoryFilter{}.TitleContains("50%_Off").Category("Health")
		where, args := f.whereClause(postgresDialect)
		assert.Equal(t, ` WHERE title ILIKE $1 ESCAPE '\' AND category = $2`, where)
		assert.Equal(t, []any{`%50\%\_Off%`, "Health"}, args)
	})

	t.Run("matches in go", func(t *testing.T) {
		s := &models.Story{Title: "The ABC Murders", Author: "Agatha", Category: "Crime", Status: models.StoryStatusPublished}
		assert.True(t, StoryFilter{}.Matches(s))
		assert.True(t, StoryFilter{}.TitleContains("abc").AuthorContains("AGA").Matches(s))
		assert.True(t, StoryFilter{}.Category("Crime").Status("PUBLISHED").Matches(s))
		assert.False(t, StoryFilter{}.Category("crime").Matches(s))
		assert.False(t, StoryFilter{}.Status("published").Matches(s))
		assert.False(t, StoryFilter{}.TitleContains("abc").Category("Health").Matches(s))

		accented := &models.Story{Title: "ÉCOLE des Femmes", Author: "Émile"}
		assert.True(t, StoryFilter{}.TitleContains("école").AuthorContains("ÉMILE").Matches(accented))
	})
}

func TestSQLiteFoldCase(t *testing.T) {
	got, err := foldCase(nil, []driver.Value{"ÉCOLE Ärger"})
	require.NoError(t, err)
	assert.Equal(t, "école ärger", got)

	got, err = foldCase(nil, []driver.Value{[]byte("ÖL")})
	require.NoError(t, err)
	assert.Equal(t, "öl", got)

	got, err = foldCase(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
}
