package dto

// Corpo do POST /event-outcomes
type EventOutcomeRequest struct {
	EventID       string `json:"eventId"`
	EventName     string `json:"eventName"`
	EventWinnerID string `json:"eventWinnerId"`
}

// Validate devolve um mapa campo -> mensagem; vazio quando o request é válido.
func (r EventOutcomeRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.EventID == "" {
		errs["eventId"] = "Event ID must not be blank"
	}
	if r.EventName == "" {
		errs["eventName"] = "Event Name must not be blank"
	}
	if r.EventWinnerID == "" {
		errs["eventWinnerId"] = "Event Winner ID must not be blank"
	}
	return errs
}
