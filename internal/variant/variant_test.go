package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogValues(t *testing.T) {
	tests := []struct {
		v         Variant
		min       int
		maxRoster int
		minRoster int
	}{
		{Football11, 11, 25, 18},
		{Football7, 7, 15, 12},
		{Football5, 5, 10, 8},
		{Futsal, 5, 12, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.v), func(t *testing.T) {
			r, err := RulesFor(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.min, r.MinPlayers)
			assert.Equal(t, tt.maxRoster, r.DefaultMaxRoster)
			assert.Equal(t, tt.minRoster, r.DefaultMinRoster)
			assert.True(t, tt.v.Valid())
		})
	}
}

func TestUnknownVariant(t *testing.T) {
	_, err := RulesFor(Variant("handball"))
	require.Error(t, err)
	assert.False(t, Variant("handball").Valid())
	assert.Equal(t, 0, MinPlayers(Variant("handball")))
}
