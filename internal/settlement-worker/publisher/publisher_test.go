package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
)

func sampleBet() repo.Bet {
	return repo.Bet{
		ID:                "b1",
		UserID:            "user-1",
		EventID:           "match-100",
		EventMarketID:     "MATCH_ODDS",
		PredictedWinnerID: "REAL_MADRID",
		Amount:            decimal.RequireFromString("50.00"),
		Status:            repo.StatusWon,
	}
}

func TestToPayloadAssignsSettledAtAtPublishTime(t *testing.T) {
	before := time.Now().UTC()
	p := toPayload(sampleBet())
	after := time.Now().UTC()

	assert.Equal(t, "b1", p.BetID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "match-100", p.EventID)
	assert.Equal(t, "MATCH_ODDS", p.EventMarketID)
	assert.Equal(t, "REAL_MADRID", p.PredictedWinnerID)
	assert.Equal(t, "WON", p.Status)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("50.00")))

	require.False(t, p.SettledAt.Before(before))
	require.False(t, p.SettledAt.After(after))
}

func TestLoggingPublisherNeverFails(t *testing.T) {
	p := NewLoggingPublisher("bet_settlements", zaptest.NewLogger(t))

	require.NoError(t, p.Publish(context.Background(), sampleBet()))
	require.NoError(t, p.Publish(context.Background(), repo.Bet{}))
}

func TestDeliveryErrorCarriesCause(t *testing.T) {
	cause := errors.New("broker did not acknowledge")
	err := &DeliveryError{BetID: "b1", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "b1")
	assert.Contains(t, err.Error(), "broker did not acknowledge")
}
