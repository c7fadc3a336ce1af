package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

// BetSettlementPublisher é a capability de encaminhar liquidações ao sink
// secundário. Exatamente uma implementação fica ativa por processo, escolhida
// na subida via configuração: o adapter Kafka (send síncrono com ack) ou o
// stub de log quando o sink está desabilitado.
type BetSettlementPublisher interface {
	Publish(ctx context.Context, b repo.Bet) error
}

// DeliveryError indica que o sink não confirmou o recebimento do payload.
type DeliveryError struct {
	BetID string
	Cause error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("settlement delivery failed for bet %s: %v", e.BetID, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// toPayload monta o payload de liquidação; SettledAt é atribuído aqui,
// no momento da publicação.
func toPayload(b repo.Bet) events.BetSettlement {
	return events.BetSettlement{
		BetID:             b.ID,
		UserID:            b.UserID,
		EventID:           b.EventID,
		EventMarketID:     b.EventMarketID,
		PredictedWinnerID: b.PredictedWinnerID,
		Amount:            b.Amount,
		Status:            string(b.Status),
		SettledAt:         time.Now().UTC(),
	}
}
