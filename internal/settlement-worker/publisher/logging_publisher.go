package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
)

// LoggingPublisher é o stub usado quando nenhum sink real está configurado:
// loga o que teria sido enviado e nunca falha.
type LoggingPublisher struct {
	topic string
	log   *zap.Logger
}

func NewLoggingPublisher(topic string, log *zap.Logger) *LoggingPublisher {
	return &LoggingPublisher{topic: topic, log: log}
}

func (p *LoggingPublisher) Publish(_ context.Context, b repo.Bet) error {
	payload := toPayload(b)

	p.log.Info("[MOCK SINK] settlement published",
		zap.String("topic", p.topic),
		zap.String("betId", payload.BetID),
		zap.String("userId", payload.UserID),
		zap.String("eventId", payload.EventID),
		zap.String("status", payload.Status),
		zap.String("amount", payload.Amount.StringFixed(2)),
		zap.Time("settledAt", payload.SettledAt),
	)
	return nil
}
