package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/settlement-worker/repo"
	"github.com/radieske/bet-settlement-poc/internal/shared/config"
	"github.com/radieske/bet-settlement-poc/internal/shared/db"
	"github.com/radieske/bet-settlement-poc/internal/shared/logger"
)

// Ferramenta local: semeia apostas PENDING direto no Postgres e dispara o
// resultado do evento na outcome-api, exercitando o pipeline de ponta a ponta.
func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8084", "base URL da outcome-api")
		eventID  = flag.String("event", "match-100", "id do evento")
		winnerID = flag.String("winner", "REAL_MADRID", "id do vencedor real")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.MustNew("outcome-simulator", cfg.Env)
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	repository := repo.NewPostgres(pg)

	// Duas apostas no mesmo evento: uma no vencedor, outra não
	seeds := []repo.Bet{
		{
			UserID:            "user-1",
			EventID:           *eventID,
			EventMarketID:     "MATCH_ODDS",
			PredictedWinnerID: *winnerID,
			Amount:            decimal.NewFromFloat(50.00),
		},
		{
			UserID:            "user-2",
			EventID:           *eventID,
			EventMarketID:     "MATCH_ODDS",
			PredictedWinnerID: "BARCELONA",
			Amount:            decimal.NewFromFloat(25.50),
		},
	}

	for i := range seeds {
		id, err := repository.CreatePending(ctx, &seeds[i])
		if err != nil {
			log.Fatal("seed bet", zap.Error(err))
		}
		log.Info("seeded pending bet",
			zap.String("betId", id),
			zap.String("userId", seeds[i].UserID),
			zap.String("predictedWinner", seeds[i].PredictedWinnerID),
		)
	}

	// Dispara o resultado pela API
	body, _ := json.Marshal(map[string]string{
		"eventId":       *eventID,
		"eventName":     "Simulated Match " + *eventID,
		"eventWinnerId": *winnerID,
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/event-outcomes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal("post outcome", zap.Error(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		log.Fatal("outcome not accepted", zap.String("status", resp.Status))
	}

	fmt.Printf("outcome accepted for %s (winner=%s); watch the settlement-worker logs\n", *eventID, *winnerID)
}
