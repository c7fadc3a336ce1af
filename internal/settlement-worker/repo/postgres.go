package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// FindPendingByEvent retorna todas as apostas PENDING de um evento.
// O filtro por status é o que torna a liquidação idempotente: apostas já
// liquidadas nunca voltam a ser lidas pela engine.
func (p *Postgres) FindPendingByEvent(ctx context.Context, eventID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT bet_id, user_id, event_id, event_market_id, event_winner_id, bet_amount, status
		FROM bets
		WHERE event_id = $1 AND status = $2
		ORDER BY bet_id`,
		eventID, StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending bets for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.EventMarketID,
			&b.PredictedWinnerID, &b.Amount, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending bets: %w", err)
	}
	return bets, nil
}

// Save faz upsert da aposta pela chave bet_id.
func (p *Postgres) Save(ctx context.Context, b Bet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (bet_id, user_id, event_id, event_market_id, event_winner_id, bet_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (bet_id) DO UPDATE SET
		  status     = EXCLUDED.status,
		  updated_at = NOW()`,
		b.ID, b.UserID, b.EventID, b.EventMarketID, b.PredictedWinnerID, b.Amount, b.Status,
	)
	if err != nil {
		return fmt.Errorf("save bet %s: %w", b.ID, err)
	}
	return nil
}

// CreatePending insere uma nova aposta PENDING e retorna o id gerado.
// Usado pelo simulador para semear cenários locais; em produção a criação
// de apostas é de outro serviço.
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (bet_id, user_id, event_id, event_market_id, event_winner_id, bet_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, b.UserID, b.EventID, b.EventMarketID, b.PredictedWinnerID, b.Amount, StatusPending,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}
