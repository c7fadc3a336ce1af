package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-poc/internal/outcome-api/dto"
	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

// OutcomePublisher é o hand-off pro pipeline: fire-and-forget, a API nunca
// espera a confirmação do Kafka.
type OutcomePublisher interface {
	Publish(ctx context.Context, e events.EventOutcome)
}

type Server struct {
	log  *zap.Logger
	publ OutcomePublisher
}

func NewServer(log *zap.Logger, p OutcomePublisher) *Server {
	return &Server{log: log, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/event-outcomes", s.placeEventOutcome) // POST
	return s.recoverPanics(mux)
}

// placeEventOutcome aceita o resultado de um evento e o entrega ao publisher.
// A resposta 202 significa apenas "aceito localmente": a durabilidade a
// partir daqui é responsabilidade da fila.
func (s *Server) placeEventOutcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.EventOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Malformed JSON request"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	s.log.Info("received event outcome request",
		zap.String("eventId", req.EventID),
		zap.String("eventName", req.EventName),
		zap.String("winnerId", req.EventWinnerID),
	)

	winner := req.EventWinnerID
	s.publ.Publish(r.Context(), events.EventOutcome{
		EventID:       req.EventID,
		EventName:     req.EventName,
		EventWinnerID: &winner,
	})

	w.WriteHeader(http.StatusAccepted)
}

// recoverPanics converte qualquer pânico em 500 genérico, sem vazar detalhe interno.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("unexpected failure handling request", zap.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "An unexpected error occurred."})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
