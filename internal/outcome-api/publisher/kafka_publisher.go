package publisher

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/shared/kafka"
	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

// KafkaPublisher escreve resultados de eventos no tópico de entrada de forma
// assíncrona. A confirmação chega pelo callback de completion; falhas são
// apenas logadas: a API já respondeu 202 e um retry aqui poderia duplicar
// mensagens que a fila talvez já tenha aceitado.
type KafkaPublisher struct {
	writer *kafkago.Writer
	topic  string
	log    *zap.Logger
}

func NewKafkaPublisher(brokers string, topic string, log *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{topic: topic, log: log}
	p.writer = kafka.NewAsyncWriter(brokers, topic, p.onCompletion)
	return p
}

// Publish serializa o resultado e o enfileira com chave = eventId, garantindo
// ordem por evento no lado consumidor. Nunca propaga falha ao caller.
func (p *KafkaPublisher) Publish(ctx context.Context, e events.EventOutcome) {
	value, err := json.Marshal(e)
	if err != nil {
		p.log.Error("could not marshal outcome", zap.String("eventId", e.EventID), zap.Error(err))
		return
	}

	msg := kafkago.Message{
		Key:   []byte(e.EventID),
		Value: value,
		Time:  time.Now(),
	}

	// Writer assíncrono: retorna assim que a mensagem entra no buffer local
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("could not enqueue outcome", zap.String("eventId", e.EventID), zap.Error(err))
	}
}

// onCompletion roda em goroutine do client kafka; só loga, nunca bloqueia.
func (p *KafkaPublisher) onCompletion(msgs []kafkago.Message, err error) {
	for _, m := range msgs {
		if err != nil {
			p.log.Error("could not publish outcome",
				zap.String("eventId", string(m.Key)),
				zap.Error(err),
			)
			continue
		}
		p.log.Info("event outcome published",
			zap.String("eventId", string(m.Key)),
			zap.String("topic", p.topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
