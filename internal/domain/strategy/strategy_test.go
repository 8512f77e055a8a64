package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/roulettebot/internal/domain/strategy"
)

func TestLookup_KnownVariants(t *testing.T) {
	tests := []struct {
		name    string
		kind    strategy.Kind
		numbers int
		dynamic bool
	}{
		{"top1", strategy.Top1, 1, false},
		{"top3", strategy.Top3, 3, false},
		{"top18", strategy.Top18, 18, false},
		{"topm", strategy.TopM, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := strategy.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, spec.Kind)
			assert.Equal(t, tt.numbers, spec.NumbersToPredict)
			assert.Equal(t, tt.dynamic, spec.Dynamic)
			assert.Equal(t, tt.name, spec.ModelKey)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := strategy.Lookup("martingale")
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := strategy.All()
	require.Len(t, all, 4)

	// Mutar la copia no afecta al catálogo
	all[0].NumbersToPredict = 99
	spec, err := strategy.Lookup("top1")
	require.NoError(t, err)
	assert.Equal(t, 1, spec.NumbersToPredict)
}
