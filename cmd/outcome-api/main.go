package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	ohttp "github.com/radieske/bet-settlement-poc/internal/outcome-api/http"
	opub "github.com/radieske/bet-settlement-poc/internal/outcome-api/publisher"
	"github.com/radieske/bet-settlement-poc/internal/shared/config"
	skafka "github.com/radieske/bet-settlement-poc/internal/shared/kafka"
	"github.com/radieske/bet-settlement-poc/internal/shared/logger"
	"github.com/radieske/bet-settlement-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.MustNew(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Criação de tópicos apenas em ambiente local/dev; em produção o
	// provisionamento é externo
	if cfg.Env == "local" || cfg.Env == "dev" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ensure := func(topic string, partitions, replicas int) {
			if err := skafka.EnsureTopic(ctx, cfg.KafkaBrokers, topic, partitions, replicas); err != nil {
				log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
			} else {
				log.Info("kafka topic ensured", zap.String("topic", topic))
			}
		}
		ensure(cfg.TopicEventOutcomes, cfg.OutcomePartitions, cfg.OutcomeReplicas)
		ensure(cfg.TopicEventOutcomesDLQ(), cfg.DLQPartitions, cfg.DLQReplicas)
		cancel()
	}

	// Publisher assíncrono do tópico de entrada
	pub := opub.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicEventOutcomes, log)
	defer pub.Close()

	// metrics/health (API não tem dependência de banco; health é só liveness)
	metrics.StartMetricsServer(cfg.MetricsPort, nil)

	api := ohttp.NewServer(log, pub)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("outcome-api listening",
		zap.String("addr", srv.Addr),
		zap.String("topic", cfg.TopicEventOutcomes),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
