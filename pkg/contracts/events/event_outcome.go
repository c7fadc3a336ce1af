package events

// Evento publicado no tópico "event_outcomes" quando um evento esportivo termina.
// EventWinnerID nulo indica evento sem vencedor determinável (cancelado/empatado).
type EventOutcome struct {
	EventID       string  `json:"eventId"`
	EventName     string  `json:"eventName"`
	EventWinnerID *string `json:"eventWinnerId"`
}
