package growth

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T) (*ClickHouseSource, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewClickHouseSource(sqlx.NewDb(mockDB, "sqlmock"), logger.Nop()), mock
}

func TestQuery(t *testing.T) {
	q := Query([]domain.Window{7, 30})
	assert.Contains(t, q, "countIf(days < 7) AS added7")
	assert.Contains(t, q, "countIf(days >= 7) AS baseline7")
	assert.Contains(t, q, "countIf(days < 30) AS added30")
	assert.Contains(t, q, "HAVING countIf(days < 365) >= ?")
	assert.Contains(t, q, "WHERE event_type = 'WatchEvent'")
}

func TestGrowths(t *testing.T) {
	src, mock := newMockSource(t)
	minStars := 2

	rows := sqlmock.NewRows([]string{"repo_name", "added7", "baseline7", "added30", "baseline30"}).
		AddRow("test/repo", 10, 100, 20, 90).
		AddRow("other/repo", 0, 5, 3, 2)
	mock.ExpectQuery(regexp.QuoteMeta("HAVING countIf(days < 365) >= ?")).
		WithArgs(minStars).
		WillReturnRows(rows)

	got, err := src.Growths(context.Background(), []domain.Window{7, 30}, minStars)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []domain.RepoGrowth{
		{
			Name:     "test/repo",
			Added:    map[domain.Window]int64{7: 10, 30: 20},
			Baseline: map[domain.Window]int64{7: 100, 30: 90},
		},
		{
			Name:     "other/repo",
			Added:    map[domain.Window]int64{7: 0, 30: 3},
			Baseline: map[domain.Window]int64{7: 5, 30: 2},
		},
	}, got)
}

func TestGrowths_QueryError(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	_, err := src.Growths(context.Background(), []domain.Window{30}, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGrowths_ScanError(t *testing.T) {
	src, mock := newMockSource(t)
	rows := sqlmock.NewRows([]string{"repo_name", "added30", "baseline30"}).
		AddRow("test/repo", "many", 1)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	_, err := src.Growths(context.Background(), []domain.Window{30}, 1000)
	assert.Error(t, err)
}

func TestBuildClientInfo(t *testing.T) {
	info := BuildClientInfo(" v1.2.3 ")
	require.NotEmpty(t, info.Products)
	assert.Equal(t, "octotrends", info.Products[0].Name)
	assert.Equal(t, "v1.2.3", info.Products[0].Version)
}
