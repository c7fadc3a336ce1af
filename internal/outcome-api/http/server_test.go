package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/bet-settlement-poc/pkg/contracts/events"
)

type fakePublisher struct {
	published []events.EventOutcome
	panics    bool
}

func (f *fakePublisher) Publish(_ context.Context, e events.EventOutcome) {
	if f.panics {
		panic("kafka client exploded")
	}
	f.published = append(f.published, e)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/event-outcomes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlaceEventOutcomeAccepted(t *testing.T) {
	pub := &fakePublisher{}
	srv := NewServer(zaptest.NewLogger(t), pub)

	rec := post(t, srv.Router(), `{"eventId":"match-100","eventName":"Real Madrid vs Barcelona","eventWinnerId":"REAL_MADRID"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "match-100", pub.published[0].EventID)
	require.NotNil(t, pub.published[0].EventWinnerID)
	assert.Equal(t, "REAL_MADRID", *pub.published[0].EventWinnerID)
}

func TestPlaceEventOutcomeValidationFailure(t *testing.T) {
	pub := &fakePublisher{}
	srv := NewServer(zaptest.NewLogger(t), pub)

	rec := post(t, srv.Router(), `{"eventId":"","eventName":"x","eventWinnerId":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pub.published)

	// mapa campo -> mensagem no corpo
	body := rec.Body.String()
	assert.Contains(t, body, "Validation failed")
	assert.Contains(t, body, "eventId")
	assert.Contains(t, body, "eventWinnerId")
	assert.NotContains(t, body, "eventName")
}

func TestPlaceEventOutcomeMalformedJSON(t *testing.T) {
	pub := &fakePublisher{}
	srv := NewServer(zaptest.NewLogger(t), pub)

	rec := post(t, srv.Router(), `{"eventId": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed JSON request")
	assert.Empty(t, pub.published)
}

func TestPlaceEventOutcomeMethodNotAllowed(t *testing.T) {
	srv := NewServer(zaptest.NewLogger(t), &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/event-outcomes", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnexpectedFailureReturnsGeneric500(t *testing.T) {
	srv := NewServer(zaptest.NewLogger(t), &fakePublisher{panics: true})

	rec := post(t, srv.Router(), `{"eventId":"match-100","eventName":"n","eventWinnerId":"W"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred.")
	assert.NotContains(t, rec.Body.String(), "exploded") // sem detalhe interno
}
