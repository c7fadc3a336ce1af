package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

// BetRepository é o contrato mínimo de storage que a engine exige.
type BetRepository interface {
	FindPendingByEvent(ctx context.Context, eventID string) ([]repo.Bet, error)
	Save(ctx context.Context, b repo.Bet) error
}

// SettlementPublisher encaminha cada aposta liquidada ao sink secundário.
type SettlementPublisher interface {
	Publish(ctx context.Context, b repo.Bet) error
}

// Settler liquida todas as apostas PENDING de um evento a partir do resultado.
type Settler struct {
	Log       *zap.Logger
	Repo      BetRepository
	Publisher SettlementPublisher

	OnSettled func(b repo.Bet) // métricas/broadcast após save+publish de cada aposta
}

// Settle processa as apostas do evento uma a uma, em sequência:
// calcula WON/LOST, persiste e publica. A primeira falha de persistência ou
// publicação aborta as apostas restantes e sobe para o caller; o retry do
// consumer reprocessa a mensagem inteira, o que é seguro porque apostas já
// salvas deixam de ser PENDING e são puladas na releitura.
//
// Não há transação cobrindo save+publish: uma queda entre os dois deixa a
// aposta liquidada no banco sem notificação downstream. Comportamento
// conhecido e aceito; a correção seria um outbox, fora do escopo atual.
func (s *Settler) Settle(ctx context.Context, outcome events.EventOutcome) error {
	s.Log.Info("starting settlement", zap.String("eventId", outcome.EventID))

	pending, err := s.Repo.FindPendingByEvent(ctx, outcome.EventID)
	if err != nil {
		return fmt.Errorf("settle event %s: %w", outcome.EventID, err)
	}

	if len(pending) == 0 {
		// evento desconhecido, sem apostas, ou entrega duplicada: no-op
		s.Log.Info("no pending bets found", zap.String("eventId", outcome.EventID))
		return nil
	}

	s.Log.Info("found bets to process",
		zap.String("eventId", outcome.EventID),
		zap.Int("count", len(pending)),
	)

	for _, bet := range pending {
		if err := s.settleOne(ctx, bet, outcome.EventWinnerID); err != nil {
			return fmt.Errorf("settle event %s: %w", outcome.EventID, err)
		}
	}
	return nil
}

func (s *Settler) settleOne(ctx context.Context, bet repo.Bet, actualWinnerID *string) error {
	status := repo.StatusLost
	if bet.IsWinner(actualWinnerID) {
		status = repo.StatusWon
	}

	settled := bet.WithStatus(status)

	if err := s.Repo.Save(ctx, settled); err != nil {
		return err
	}

	if err := s.Publisher.Publish(ctx, settled); err != nil {
		return fmt.Errorf("publish settlement for bet %s: %w", settled.ID, err)
	}

	if s.OnSettled != nil {
		s.OnSettled(settled)
	}
	return nil
}
