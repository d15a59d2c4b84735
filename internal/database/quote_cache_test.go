package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-dashboard/internal/models"
)

func TestLoadQuotes_NullPrevious(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	fetched := time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM quote_cache").WillReturnRows(
		sqlmock.NewRows([]string{"code", "current_price", "previous_price", "fetched_at"}).
			AddRow("PETR4.SA", "33.1000", nil, fetched),
	)

	quotes, err := db.LoadQuotes(context.Background())
	require.NoError(t, err)
	require.Contains(t, quotes, "PETR4.SA")

	q := quotes["PETR4.SA"]
	require.NotNil(t, q.CurrentPrice)
	assert.True(t, q.CurrentPrice.Equal(decimal.RequireFromString("33.1")))
	assert.Nil(t, q.PreviousPrice)
	assert.Nil(t, q.ChangePct())
	assert.Equal(t, fetched, q.FetchedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuote_Upserts(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	cur := decimal.RequireFromString("33.10")
	mock.ExpectExec("INSERT INTO quote_cache").
		WithArgs("PETR4.SA", sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = db.SaveQuote(context.Background(), &models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &cur, FetchedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteCacheRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := newContainerDB(t)
	testDB.reset(t)
	ctx := context.Background()

	cur := decimal.RequireFromString("33.10")
	prev := decimal.RequireFromString("32.00")
	fetched := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)

	require.NoError(t, testDB.SaveQuote(ctx, &models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &prev, FetchedAt: fetched}))
	require.NoError(t, testDB.SaveQuote(ctx, &models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &cur, PreviousPrice: &prev, FetchedAt: fetched}))

	quotes, err := testDB.LoadQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.True(t, quotes["PETR4.SA"].CurrentPrice.Equal(cur))
	assert.True(t, quotes["PETR4.SA"].PreviousPrice.Equal(prev))
	assert.True(t, quotes["PETR4.SA"].FetchedAt.Equal(fetched))
}
