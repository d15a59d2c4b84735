package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBarsClient struct {
	bars      []marketdata.Bar
	err       error
	lastSym   string
	lastReq   marketdata.GetBarsRequest
	callCount int
}

func (m *mockBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.callCount++
	m.lastSym = symbol
	m.lastReq = req
	return m.bars, m.err
}

func TestDailyCloses(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	client := &mockBarsClient{bars: []marketdata.Bar{
		{Timestamp: now.AddDate(0, 0, -2), Close: 101.5},
		{Timestamp: now.AddDate(0, 0, -1), Close: 102.25},
	}}
	p := &Provider{client: client, now: func() time.Time { return now }}

	closes, err := p.DailyCloses(context.Background(), "aapl.sa", 2)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.True(t, decimal.RequireFromString("102.25").Equal(closes[1]))

	assert.Equal(t, "AAPL", client.lastSym)
	assert.Equal(t, marketdata.OneDay, client.lastReq.TimeFrame)
	assert.Equal(t, now.AddDate(0, -2, 0), client.lastReq.Start)
}

func TestDailyCloses_Error(t *testing.T) {
	client := &mockBarsClient{err: errors.New("forbidden")}
	p := &Provider{client: client, now: time.Now}

	_, err := p.DailyCloses(context.Background(), "AAPL", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get bars for AAPL")
}

func TestDailyCloses_CancelledContext(t *testing.T) {
	client := &mockBarsClient{}
	p := &Provider{client: client, now: time.Now}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.DailyCloses(ctx, "AAPL", 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, client.callCount)
}
