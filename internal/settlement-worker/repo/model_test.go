package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWinner(t *testing.T) {
	b := Bet{PredictedWinnerID: "REAL_MADRID"}

	real := "REAL_MADRID"
	barca := "BARCELONA"

	assert.True(t, b.IsWinner(&real))
	assert.False(t, b.IsWinner(&barca))
	assert.False(t, b.IsWinner(nil)) // vencedor nulo nunca casa

	empty := Bet{}
	assert.False(t, empty.IsWinner(&real))
}

func TestWithStatusDoesNotMutateOriginal(t *testing.T) {
	b := Bet{ID: "b1", Status: StatusPending}

	settled := b.WithStatus(StatusWon)

	assert.Equal(t, StatusWon, settled.Status)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "b1", settled.ID)
}
