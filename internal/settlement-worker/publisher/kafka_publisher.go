package publisher

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	"github.com/radieske/bet-settlement-poc/internal/shared/kafka"
)

// KafkaPublisher envia a liquidação ao tópico do sink e bloqueia até o ack
// de todas as réplicas (RequiredAcks=all no writer compartilhado).
type KafkaPublisher struct {
	writer *kafkago.Writer
	topic  string
	log    *zap.Logger
}

func NewKafkaPublisher(brokers string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(brokers, topic),
		topic:  topic,
		log:    log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, b repo.Bet) error {
	payload := toPayload(b)

	value, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{BetID: b.ID, Cause: err}
	}

	// Chave = eventId: liquidações do mesmo evento caem na mesma partição
	if err := kafka.WriteJSON(ctx, p.writer, b.EventID, value); err != nil {
		p.log.Error("settlement publish failed",
			zap.String("betId", b.ID),
			zap.String("topic", p.topic),
			zap.Error(err),
		)
		return &DeliveryError{BetID: b.ID, Cause: err}
	}

	p.log.Info("settlement published",
		zap.String("betId", b.ID),
		zap.String("topic", p.topic),
		zap.String("status", string(b.Status)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
