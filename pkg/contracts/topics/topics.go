package topics

const (
	// Resultados de eventos esportivos (entrada da liquidação)
	EventOutcomes = "event_outcomes"

	// Liquidações de apostas (sink secundário)
	BetSettlements = "bet_settlements"

	// Sufixo aplicado ao tópico de origem para formar a DLQ
	DLQSuffix = "-dlq"
)

// DLQFor deriva o nome da dead-letter queue a partir do tópico de origem.
func DLQFor(topic string) string {
	return topic + DLQSuffix
}
