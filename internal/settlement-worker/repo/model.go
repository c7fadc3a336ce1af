package repo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de uma aposta. Transição única: PENDING -> WON | LOST.
type BetStatus string

const (
	StatusPending BetStatus = "PENDING"
	StatusWon     BetStatus = "WON"
	StatusLost    BetStatus = "LOST"
)

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID                string
	UserID            string
	EventID           string
	EventMarketID     string
	PredictedWinnerID string
	Amount            decimal.Decimal // NUMERIC(19,2)
	Status            BetStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsWinner compara o vencedor real com o palpite da aposta.
// Vencedor nulo (evento cancelado/empatado) nunca casa com palpite algum.
func (b Bet) IsWinner(actualWinnerID *string) bool {
	if actualWinnerID == nil || b.PredictedWinnerID == "" {
		return false
	}
	return b.PredictedWinnerID == *actualWinnerID
}

// WithStatus retorna uma cópia da aposta com o novo status.
func (b Bet) WithStatus(s BetStatus) Bet {
	b.Status = s
	return b
}
