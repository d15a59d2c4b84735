package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-dashboard/internal/alert"
)

func TestRecordTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed("PETR4.SA", "28", "33")
	f.provider.set("PETR4.SA", "30", "31")

	cards, err := f.svc.Cards(ctx)
	require.NoError(t, err)

	n, err := f.svc.RecordTransitions(ctx, cards)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "PETR4.SA:opportunity", f.events.LastAlert)

	n, err = f.svc.RecordTransitions(ctx, cards)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "unchanged classification must not be recorded twice")

	f.provider.set("PETR4.SA", "31", "40")
	cards, err = f.svc.Cards(ctx)
	require.NoError(t, err)
	require.Equal(t, alert.AboveCeiling, cards[0].Classification)

	n, err = f.svc.RecordTransitions(ctx, cards)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, f.events.AlertCalls)

	history, err := f.store.AlertHistory(ctx, "PETR4.SA", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, string(alert.AboveCeiling), history[0].Classification)
	assert.Equal(t, string(alert.Opportunity), history[1].Classification)
	require.NotNil(t, history[0].Price)
	assert.Equal(t, "40", history[0].Price.String())
}

func TestRecordTransitions_SkipsUnavailableAndStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed("PETR4.SA", "28", "33")
	f.provider.set("PETR4.SA", "30", "31")

	_, err := f.svc.Cards(ctx)
	require.NoError(t, err)

	f.provider.fail("PETR4.SA", errors.New("offline"))
	f.seed("VALE3.SA", "60", "70")
	f.provider.fail("VALE3.SA", errors.New("offline"))

	cards, err := f.svc.Cards(ctx)
	require.NoError(t, err)

	n, err := f.svc.RecordTransitions(ctx, cards)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, f.events.AlertCalls)
}

func TestRecordTransitions_NoAlertStore(t *testing.T) {
	f := newFixture()
	svc := NewService(Deps{Positions: f.store, Quotes: f.svc.quotes})

	n, err := svc.RecordTransitions(context.Background(), []Card{{Ticker: "PETR4.SA", Available: true}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed("PETR4.SA", "28", "33")
	f.seed("VALE3.SA", "60", "50")
	f.provider.set("PETR4.SA", "30", "31")
	f.provider.fail("VALE3.SA", errors.New("offline"))

	require.NoError(t, f.svc.Refresh(ctx))
	assert.Equal(t, 1, f.events.QuoteCalls)
	assert.Equal(t, 1, f.events.AlertCalls)

	cached, err := f.store.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Contains(t, cached, "PETR4.SA")
	assert.NotContains(t, cached, "VALE3.SA")
}

func TestRefresh_StoreFailure(t *testing.T) {
	f := newFixture()
	svc := NewService(Deps{Positions: failingStore{f.store}, Quotes: f.svc.quotes})
	assert.Error(t, svc.Refresh(context.Background()))
}

func TestAlertHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed("PETR4.SA", "28", "33")
	f.seed("VALE3.SA", "60", "50")
	f.provider.set("PETR4.SA", "30", "31")
	f.provider.set("VALE3.SA", "60", "61")
	require.NoError(t, f.svc.Refresh(ctx))

	all, err := f.svc.AlertHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	petr, err := f.svc.AlertHistory(ctx, "petr4", 10)
	require.NoError(t, err)
	require.Len(t, petr, 1)
	assert.Equal(t, "PETR4.SA", petr[0].Code)

	none, err := NewService(Deps{}).AlertHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
