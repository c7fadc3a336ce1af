package engine

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

type fakeRepo struct {
	bets      map[string]repo.Bet
	saveErrOn string // bet id cujo Save falha
	findErr   error
	saves     int
}

func newFakeRepo(bets ...repo.Bet) *fakeRepo {
	m := make(map[string]repo.Bet, len(bets))
	for _, b := range bets {
		m[b.ID] = b
	}
	return &fakeRepo{bets: m}
}

func (f *fakeRepo) FindPendingByEvent(_ context.Context, eventID string) ([]repo.Bet, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []repo.Bet
	for _, b := range f.bets {
		if b.EventID == eventID && b.Status == repo.StatusPending {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) Save(_ context.Context, b repo.Bet) error {
	if b.ID == f.saveErrOn {
		return errors.New("save failed")
	}
	f.bets[b.ID] = b
	f.saves++
	return nil
}

type fakePublisher struct {
	published []repo.Bet
	failOn    string // bet id cuja publicação falha
}

func (f *fakePublisher) Publish(_ context.Context, b repo.Bet) error {
	if b.ID == f.failOn {
		return errors.New("sink did not acknowledge")
	}
	f.published = append(f.published, b)
	return nil
}

func winner(id string) *string { return &id }

func pendingBet(id, eventID, predicted string) repo.Bet {
	return repo.Bet{
		ID:                id,
		UserID:            "user-" + id,
		EventID:           eventID,
		EventMarketID:     "MATCH_ODDS",
		PredictedWinnerID: predicted,
		Amount:            decimal.NewFromFloat(10.00),
		Status:            repo.StatusPending,
	}
}

func newSettler(t *testing.T, r *fakeRepo, p *fakePublisher) *Settler {
	t.Helper()
	return &Settler{Log: zaptest.NewLogger(t), Repo: r, Publisher: p}
}

func TestSettleWinnerAndLoser(t *testing.T) {
	r := newFakeRepo(
		pendingBet("b1", "match-100", "REAL_MADRID"),
		pendingBet("b2", "match-100", "BARCELONA"),
	)
	p := &fakePublisher{}

	err := newSettler(t, r, p).Settle(context.Background(), events.EventOutcome{
		EventID:       "match-100",
		EventName:     "Real Madrid vs Barcelona",
		EventWinnerID: winner("REAL_MADRID"),
	})
	require.NoError(t, err)

	assert.Equal(t, repo.StatusWon, r.bets["b1"].Status)
	assert.Equal(t, repo.StatusLost, r.bets["b2"].Status)
	assert.Len(t, p.published, 2)
}

func TestSettleUnknownEventIsNoOp(t *testing.T) {
	r := newFakeRepo(pendingBet("b1", "match-100", "REAL_MADRID"))
	p := &fakePublisher{}

	err := newSettler(t, r, p).Settle(context.Background(), events.EventOutcome{
		EventID:       "unknown-999",
		EventWinnerID: winner("X"),
	})
	require.NoError(t, err)

	assert.Zero(t, r.saves)
	assert.Empty(t, p.published)
	assert.Equal(t, repo.StatusPending, r.bets["b1"].Status)
}

func TestSettleNullWinnerLosesAll(t *testing.T) {
	r := newFakeRepo(pendingBet("b1", "match-200", "LIVERPOOL"))
	p := &fakePublisher{}

	err := newSettler(t, r, p).Settle(context.Background(), events.EventOutcome{
		EventID:       "match-200",
		EventWinnerID: nil, // evento cancelado/empatado
	})
	require.NoError(t, err)

	assert.Equal(t, repo.StatusLost, r.bets["b1"].Status)
	require.Len(t, p.published, 1)
	assert.Equal(t, repo.StatusLost, p.published[0].Status)
}

func TestSettleIsIdempotent(t *testing.T) {
	r := newFakeRepo(
		pendingBet("b1", "match-100", "REAL_MADRID"),
		pendingBet("b2", "match-100", "BARCELONA"),
	)
	p := &fakePublisher{}
	s := newSettler(t, r, p)

	outcome := events.EventOutcome{EventID: "match-100", EventWinnerID: winner("REAL_MADRID")}

	require.NoError(t, s.Settle(context.Background(), outcome))
	require.NoError(t, s.Settle(context.Background(), outcome))

	// segunda chamada não encontra apostas PENDING: nada muda
	assert.Equal(t, 2, r.saves)
	assert.Len(t, p.published, 2)
}

func TestSettlePublishFailureAbortsRemaining(t *testing.T) {
	r := newFakeRepo(
		pendingBet("b1", "match-100", "REAL_MADRID"),
		pendingBet("b2", "match-100", "BARCELONA"),
	)
	p := &fakePublisher{failOn: "b1"}
	s := newSettler(t, r, p)

	outcome := events.EventOutcome{EventID: "match-100", EventWinnerID: winner("REAL_MADRID")}

	err := s.Settle(context.Background(), outcome)
	require.Error(t, err)

	// b1 já foi persistida como liquidada mesmo sem notificação; b2 nem foi
	// processada (processamento sequencial aborta no primeiro erro)
	assert.Equal(t, repo.StatusWon, r.bets["b1"].Status)
	assert.Equal(t, repo.StatusPending, r.bets["b2"].Status)
	assert.Empty(t, p.published)

	// retry da mensagem inteira: só b2 continua PENDING, b1 não é republicada
	p.failOn = ""
	require.NoError(t, s.Settle(context.Background(), outcome))

	assert.Equal(t, repo.StatusLost, r.bets["b2"].Status)
	require.Len(t, p.published, 1)
	assert.Equal(t, "b2", p.published[0].ID)
}

func TestSettleSaveFailurePropagates(t *testing.T) {
	r := newFakeRepo(pendingBet("b1", "match-100", "REAL_MADRID"))
	r.saveErrOn = "b1"
	p := &fakePublisher{}

	err := newSettler(t, r, p).Settle(context.Background(), events.EventOutcome{
		EventID:       "match-100",
		EventWinnerID: winner("REAL_MADRID"),
	})
	require.Error(t, err)
	assert.Empty(t, p.published)
}

func TestSettleStoreLookupFailurePropagates(t *testing.T) {
	r := newFakeRepo()
	r.findErr = errors.New("db down")
	p := &fakePublisher{}

	err := newSettler(t, r, p).Settle(context.Background(), events.EventOutcome{
		EventID:       "match-100",
		EventWinnerID: winner("REAL_MADRID"),
	})
	require.Error(t, err)
}

func TestSettleCallbackPerSettledBet(t *testing.T) {
	r := newFakeRepo(
		pendingBet("b1", "match-100", "REAL_MADRID"),
		pendingBet("b2", "match-100", "BARCELONA"),
	)
	p := &fakePublisher{}
	s := newSettler(t, r, p)

	var byStatus []repo.BetStatus
	s.OnSettled = func(b repo.Bet) { byStatus = append(byStatus, b.Status) }

	require.NoError(t, s.Settle(context.Background(), events.EventOutcome{
		EventID:       "match-100",
		EventWinnerID: winner("REAL_MADRID"),
	}))

	assert.Equal(t, []repo.BetStatus{repo.StatusWon, repo.StatusLost}, byStatus)
}
