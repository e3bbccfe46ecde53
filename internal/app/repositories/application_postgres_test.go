package repositories

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribat/admissions/internal/app/models"
)

func TestApplicationFilterCondition(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	t.Run("empty filter matches everything", func(t *testing.T) {
		sql, args, err := applicationFilterCondition(models.ApplicationFilter{}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "(1=1)", sql)
		assert.Empty(t, args)
	})

	t.Run("status class and search", func(t *testing.T) {
		filter := models.ApplicationFilter{Status: models.StatusPending, ClassCode: "hifz", Search: "Ahmad"}
		sql, args, err := sb.Select("id").From("applications").Where(applicationFilterCondition(filter)).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "status = $1")
		assert.Contains(t, sql, "class_applying_for = $2")
		assert.Contains(t, sql, "full_name ILIKE $3")
		assert.Contains(t, sql, "father_name ILIKE $4")
		assert.Contains(t, sql, "phone_number LIKE $5")
		assert.Contains(t, sql, "roll_number ILIKE $6")
		assert.Equal(t, []interface{}{"pending", "hifz", "%Ahmad%", "%Ahmad%", "%Ahmad%", "%Ahmad%"}, args)
	})

	t.Run("search text is kept as typed", func(t *testing.T) {
		_, args, err := applicationFilterCondition(models.ApplicationFilter{Search: " khan "}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"% khan %", "% khan %", "% khan %", "% khan %"}, args)
	})

	t.Run("like wildcards are escaped", func(t *testing.T) {
		_, args, err := applicationFilterCondition(models.ApplicationFilter{Search: `50%_a\b`}).ToSql()
		require.NoError(t, err)
		want := `%50\%\_a\\b%`
		assert.Equal(t, []interface{}{want, want, want, want}, args)
	})
}

func TestApplicationOrderBy(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	newest, _, err := sb.Select("id").From("applications").OrderBy(applicationOrderBy(models.OrderNewestFirst)...).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM applications ORDER BY created_at DESC, seq DESC", newest)

	inserted, _, err := sb.Select("id").From("applications").OrderBy(applicationOrderBy(models.OrderInserted)...).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM applications ORDER BY seq ASC", inserted)
}
