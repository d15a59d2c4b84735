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

var optionColumns = []string{
	"code", "underlying_code", "option_type", "strike", "expiry_date",
	"premium_paid", "target_price", "last_close",
}

func TestListOptions_ScansNullLastClose(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	expiry := time.Date(2027, 6, 18, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM option_positions").WillReturnRows(
		sqlmock.NewRows(optionColumns).
			AddRow("PETRF25.SA", "PETR4.SA", "call", "2.5000", expiry, "0.4000", "1.2000", nil).
			AddRow("PETRT25.SA", "PETR4.SA", "put", "2.5000", expiry, "0.3000", "0.9000", "0.3500"),
	)

	options, err := db.ListOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 2)

	assert.Equal(t, models.OptionTypeCall, options[0].OptionType)
	assert.True(t, options[0].Strike.Equal(decimal.RequireFromString("2.5")))
	assert.Nil(t, options[0].LastClose)
	require.NotNil(t, options[1].LastClose)
	assert.True(t, options[1].LastClose.Equal(decimal.RequireFromString("0.35")))
	assert.Equal(t, expiry, options[1].ExpiryDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOption_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	mock.ExpectExec("DELETE FROM option_positions").WithArgs("PETRF25.SA").WillReturnResult(sqlmock.NewResult(0, 0))

	err = db.DeleteOption(context.Background(), "petrf25")
	assert.ErrorIs(t, err, models.ErrOptionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := newContainerDB(t)
	testDB.reset(t)
	ctx := context.Background()

	last := decimal.RequireFromString("0.42")
	opt := &models.OptionPosition{
		Code:           "PETRF25.SA",
		UnderlyingCode: "PETR4.SA",
		OptionType:     models.OptionTypeCall,
		Strike:         decimal.RequireFromString("2.5"),
		ExpiryDate:     time.Date(2027, 6, 18, 0, 0, 0, 0, time.UTC),
		PremiumPaid:    decimal.RequireFromString("0.40"),
		TargetPrice:    decimal.RequireFromString("1.20"),
		LastClose:      &last,
	}
	require.NoError(t, testDB.SaveOption(ctx, opt))

	opt.TargetPrice = decimal.RequireFromString("1.50")
	require.NoError(t, testDB.SaveOption(ctx, opt))

	options, err := testDB.ListOptions(ctx)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.True(t, options[0].TargetPrice.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "2027-06-18", options[0].ExpiryDate.Format(models.DateLayout))
	require.NotNil(t, options[0].LastClose)
	assert.True(t, options[0].LastClose.Equal(last))

	require.NoError(t, testDB.DeleteOption(ctx, "PETRF25"))
	assert.ErrorIs(t, testDB.DeleteOption(ctx, "PETRF25"), models.ErrOptionNotFound)
}
