package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evento publicado no sink secundário ("bet_settlements") para cada aposta liquidada.
// SettledAt é atribuído no momento da publicação, não antes.
type BetSettlement struct {
	BetID             string          `json:"betId"`
	UserID            string          `json:"userId"`
	EventID           string          `json:"eventId"`
	EventMarketID     string          `json:"marketId"`
	PredictedWinnerID string          `json:"predictedWinnerId"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"` // "WON" | "LOST"
	SettledAt         time.Time       `json:"settledAt"`
}
