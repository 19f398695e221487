package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "Tier 4: Consumer"},
		{15, "Tier 4: Consumer"},
		{29, "Tier 4: Consumer"},
		{29.9, "Tier 4: Consumer"},
		{30, "Tier 3: Adopter"},
		{49, "Tier 3: Adopter"},
		{49.99, "Tier 3: Adopter"},
		{50, "Tier 2: Strategic Specialist"},
		{67.75, "Tier 2: Strategic Specialist"},
		{79, "Tier 2: Strategic Specialist"},
		{79.999, "Tier 2: Strategic Specialist"},
		{80, "Tier 1: Hegemon"},
		{100, "Tier 1: Hegemon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestClassifyOutOfRange(t *testing.T) {
	t.Parallel()

	// Upstream clamping should prevent these; the classifier degrades to
	// the bottom tier instead of failing.
	assert.Equal(t, "Tier 4: Consumer", Classify(-1))
	assert.Equal(t, "Tier 4: Consumer", Classify(100.5))
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	for _, tier := range Tiers() {
		desc, err := Describe(tier.Label)
		require.NoError(t, err)
		assert.Equal(t, tier.Description, desc)
	}

	_, err := Describe("Tier 5: Unknown")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestTiersPartition(t *testing.T) {
	t.Parallel()

	all := Tiers()
	require.Len(t, all, 4)
	// Descending, adjacent, covering [0,100].
	assert.Equal(t, 100.0, all[0].MaxScore)
	assert.Equal(t, 0.0, all[len(all)-1].MinScore)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, all[i-1].MinScore-1, all[i].MaxScore)
	}
}
