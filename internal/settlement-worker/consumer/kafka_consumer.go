package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

// Reader abstrai o *kafka.Reader pra permitir fakes nos testes.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// DLQWriter abstrai o *kafka.Writer usado pra dead-letter.
type DLQWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Settler é o contrato da engine de liquidação.
type Settler interface {
	Settle(ctx context.Context, outcome events.EventOutcome) error
}

// Consumer consome resultados de eventos do Kafka e aplica a política de
// recuperação: retry com intervalo fixo e, esgotadas as tentativas, roteia a
// mensagem original pra DLQ. Todas as falhas de processamento, inclusive
// payload indecifrável, seguem o mesmo caminho, sem distinção de classe.
type Consumer struct {
	Log     *zap.Logger
	Reader  Reader
	Settler Settler
	DLQ     DLQWriter

	RetryAttempts int           // tentativas após a primeira falha
	RetryInterval time.Duration // espera fixa entre tentativas, sem backoff exponencial

	OnConsumed     func()       // métricas (counter++)
	OnSettled      func()       // métricas
	OnRetried      func()       // métricas
	OnDeadLettered func()       // métricas
	OnError        func(string) // métricas por fase
}

// Run inicia o loop principal: uma mensagem por iteração, processada na
// própria goroutine do consumer. Mensagens com a mesma chave (eventId) caem
// na mesma partição, então um evento nunca é liquidado concorrentemente
// consigo mesmo.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			if c.OnError != nil {
				c.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		c.handle(ctx, m)
	}
}

// handle aplica retry bounded com intervalo fixo e dead-letter no esgotamento.
// Depois do dead-letter a mensagem é considerada tratada: o offset segue o
// commit normal do consumer group e ela não volta da fila de origem.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	err := c.process(ctx, m)

	for attempt := 1; err != nil && attempt <= c.RetryAttempts; attempt++ {
		if !sleepCtx(ctx, c.RetryInterval) {
			return
		}
		c.Log.Warn("retrying message",
			zap.String("key", string(m.Key)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if c.OnRetried != nil {
			c.OnRetried()
		}
		err = c.process(ctx, m)
	}

	if err == nil {
		if c.OnSettled != nil {
			c.OnSettled()
		}
		return
	}

	c.deadLetter(ctx, m, err)
}

// process desserializa e invoca a engine, na própria goroutine do consumer.
// Erros da engine sobem sem modificação: o sinal que dispara o retry.
func (c *Consumer) process(ctx context.Context, m kafka.Message) error {
	var outcome events.EventOutcome
	if err := json.Unmarshal(m.Value, &outcome); err != nil {
		return fmt.Errorf("decode event outcome: %w", err)
	}

	c.Log.Info("received event outcome",
		zap.String("eventId", outcome.EventID),
		zap.String("eventName", outcome.EventName),
		zap.Stringp("winnerId", outcome.EventWinnerID),
	)

	return c.Settler.Settle(ctx, outcome)
}

// deadLetter encaminha a mensagem original pra DLQ preservando a chave.
// Como a DLQ é criada com o mesmo particionamento do tópico de origem, o
// hash da chave mantém a mensagem na partição correspondente.
func (c *Consumer) deadLetter(ctx context.Context, m kafka.Message, cause error) {
	c.Log.Error("message processing failed, forwarding to DLQ",
		zap.String("key", string(m.Key)),
		zap.String("reason", cause.Error()),
	)

	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-failure-reason", Value: []byte(cause.Error())},
		},
	}

	if err := c.DLQ.WriteMessages(ctx, msg); err != nil {
		c.Log.Error("dlq write failed", zap.String("key", string(m.Key)), zap.Error(err))
		if c.OnError != nil {
			c.OnError("dlq")
		}
		return
	}

	if c.OnDeadLettered != nil {
		c.OnDeadLettered()
	}
}

// sleepCtx espera d ou até o contexto ser cancelado; retorna false no cancelamento.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
