package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/consumer"
	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/engine"
	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/publisher"
	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/pubsub"
	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	sharedcache "github.com/radieske/bet-settlement-poc/internal/shared/cache"
	"github.com/radieske/bet-settlement-poc/internal/shared/config"
	"github.com/radieske/bet-settlement-poc/internal/shared/db"
	skafka "github.com/radieske/bet-settlement-poc/internal/shared/kafka"
	"github.com/radieske/bet-settlement-poc/internal/shared/logger"
	"github.com/radieske/bet-settlement-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.MustNew(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Criação dos tópicos (entrada, DLQ e sink) em ambiente local/dev
	if cfg.Env == "local" || cfg.Env == "dev" {
		tctx, tcancel := context.WithTimeout(context.Background(), 10*time.Second)
		ensure := func(topic string, partitions, replicas int) {
			if err := skafka.EnsureTopic(tctx, cfg.KafkaBrokers, topic, partitions, replicas); err != nil {
				log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
			}
		}
		ensure(cfg.TopicEventOutcomes, cfg.OutcomePartitions, cfg.OutcomeReplicas)
		ensure(cfg.TopicEventOutcomesDLQ(), cfg.DLQPartitions, cfg.DLQReplicas)
		if cfg.SettlementSink {
			ensure(cfg.TopicBetSettlements, cfg.OutcomePartitions, cfg.OutcomeReplicas)
		}
		tcancel()
	}

	// Sink secundário: adapter Kafka quando habilitado, stub de log caso
	// contrário. Seleção única na subida, nunca por chamada.
	var sink engine.SettlementPublisher
	if cfg.SettlementSink {
		kp := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicBetSettlements, log)
		defer kp.Close()
		sink = kp
		log.Info("settlement sink enabled", zap.String("topic", cfg.TopicBetSettlements))
	} else {
		sink = publisher.NewLoggingPublisher(cfg.TopicBetSettlements, log)
		log.Info("settlement sink disabled, using logging publisher")
	}

	// Métricas Prometheus para monitoramento do pipeline
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settledMsgs := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_settled_total", Help: "mensagens processadas com sucesso"})
	retried := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_retries_total", Help: "tentativas de retry"})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_dead_lettered_total", Help: "mensagens enviadas pra DLQ"})
	betsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_settled_total", Help: "apostas liquidadas por status"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settledMsgs, retried, deadLettered, betsSettled, errorsBy)

	// Broadcaster do feed ao vivo de liquidações (best-effort)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	repository := repo.NewPostgres(pg)
	settler := &engine.Settler{
		Log:       log,
		Repo:      repository,
		Publisher: sink,

		// Após save+publish de cada aposta: métrica por status e broadcast.
		// Falha de broadcast não interrompe a liquidação.
		OnSettled: func(b repo.Bet) {
			betsSettled.WithLabelValues(string(b.Status)).Inc()

			msg := pubsub.WSSettlement{EventID: b.EventID, Payload: b}
			value, _ := json.Marshal(msg)

			bctx, bcancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer bcancel()
			if err := broadcaster.Publish(bctx, cfg.RedisPubSubChannel, value); err != nil {
				log.Warn("settlement broadcast failed", zap.Error(err))
			}
		},
	}

	dlqWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventOutcomesDLQ())
	defer dlqWriter.Close()

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Um reader por goroutine, todos no mesmo consumer group: o rebalance do
	// Kafka distribui as partições e a chave (eventId) garante que o mesmo
	// evento nunca é liquidado concorrentemente.
	concurrency := cfg.ConsumerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicEventOutcomes),
		zap.String("dlq", cfg.TopicEventOutcomesDLQ()),
		zap.Int("concurrency", concurrency),
		zap.Int("retryAttempts", cfg.RetryAttempts),
		zap.Duration("retryInterval", cfg.RetryInterval),
	)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventOutcomes, cfg.ConsumerGroup)
		defer reader.Close()

		cons := &consumer.Consumer{
			Log:     log.With(zap.Int("worker", i)),
			Reader:  reader,
			Settler: settler,
			DLQ:     dlqWriter,

			RetryAttempts: cfg.RetryAttempts,
			RetryInterval: cfg.RetryInterval,

			OnConsumed:     func() { consumed.Inc() },
			OnSettled:      func() { settledMsgs.Inc() },
			OnRetried:      func() { retried.Inc() },
			OnDeadLettered: func() { deadLettered.Inc() },
			OnError:        func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("consumer stopped with error", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	log.Info("settlement-worker stopped")
}
