package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

func TestParseResult_TableState(t *testing.T) {
	msg := []byte(`{
		"tableId": "236",
		"last20Results": [
			{"result": "17", "gameId": "g-100"},
			{"result": "5",  "gameId": "g-99"}
		]
	}`)

	outcome, gameID, ok := parseResult(msg)
	require.True(t, ok)
	assert.Equal(t, domain.Outcome(17), outcome)
	assert.Equal(t, "g-100", gameID)
}

func TestParseResult_LegacyFormat(t *testing.T) {
	outcome, gameID, ok := parseResult([]byte(`{"result": {"number": 0}}`))
	require.True(t, ok)
	assert.Equal(t, domain.Outcome(0), outcome)
	// Sin gameId no hay dedup
	assert.Empty(t, gameID)
}

func TestParseResult_Rejects(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"ack without results", `{"type": "subscribe-ack"}`},
		{"empty delta", `{"tableId": "236", "last20Results": []}`},
		{"non-numeric result", `{"tableId": "236", "last20Results": [{"result": "x7", "gameId": "g"}]}`},
		{"outside alphabet", `{"tableId": "236", "last20Results": [{"result": "40", "gameId": "g"}]}`},
		{"legacy outside alphabet", `{"result": {"number": 99}}`},
		{"not json", `ping`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := parseResult([]byte(tt.msg))
			assert.False(t, ok)
		})
	}
}

func TestParseResult_DoubleZeroParsesAsZero(t *testing.T) {
	// "00" de mesa americana entra por Atoi como 0
	outcome, _, ok := parseResult([]byte(`{"tableId": "1", "last20Results": [{"result": "00", "gameId": "g"}]}`))
	require.True(t, ok)
	assert.Equal(t, domain.Outcome(0), outcome)
}

func TestSimulated_SeededSequencesAreReproducible(t *testing.T) {
	collect := func(seed uint64) []domain.Outcome {
		f := NewSimulated(10000, seed, 20)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- f.Run(ctx) }()

		var got []domain.Outcome
		for o := range f.Outcomes() {
			got = append(got, o)
		}
		require.NoError(t, <-done)
		return got
	}

	a := collect(42)
	b := collect(42)
	c := collect(7)

	require.Len(t, a, 20)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	for _, o := range a {
		assert.True(t, o.Valid())
	}
}

func TestSimulated_ClosesChannelOnLimit(t *testing.T) {
	f := NewSimulated(10000, 1, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go f.Run(ctx)

	var count int
	for range f.Outcomes() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestSimulated_StopsOnContextCancel(t *testing.T) {
	f := NewSimulated(0.001, 1, 0) // cadencia lentísima: nunca emite
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop on cancel")
	}

	// El canal queda cerrado
	_, open := <-f.Outcomes()
	assert.False(t, open)
}
