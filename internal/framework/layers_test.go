package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

func TestWeightSum(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 100.0, WeightSum())
}

func TestGet(t *testing.T) {
	t.Parallel()

	for n := 1; n <= NumLayers; n++ {
		layer, err := Get(n)
		require.NoError(t, err)
		assert.Equal(t, n, layer.Number)
		assert.NotEmpty(t, layer.Name)
		assert.NotEmpty(t, layer.ShortName)
		assert.NotEmpty(t, layer.Metrics)
	}

	for _, n := range []int{0, -1, 9, 100} {
		_, err := Get(n)
		require.Error(t, err)
		assert.True(t, model.IsNotFound(err))
	}
}

func TestGetWeights(t *testing.T) {
	t.Parallel()

	want := map[int]float64{1: 20, 2: 15, 3: 15, 4: 10, 5: 10, 6: 10, 7: 10, 8: 10}
	for n, w := range want {
		assert.Equal(t, w, Weight(n), "layer %d", n)
	}
	assert.Zero(t, Weight(0))
	assert.Zero(t, Weight(9))
}

func TestAllOrdered(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, NumLayers)
	for i, layer := range all {
		assert.Equal(t, i+1, layer.Number)
	}
}

func TestShortNames(t *testing.T) {
	t.Parallel()

	want := []string{"power", "chips", "cloud", "models", "data", "apps", "talent", "adoption"}
	for i, short := range want {
		assert.Equal(t, short, ShortName(i+1))
	}
	assert.Empty(t, ShortName(0))
}

func TestMetricWeightsMatchLayerWeight(t *testing.T) {
	t.Parallel()

	for _, layer := range All() {
		var sum float64
		for _, m := range layer.Metrics {
			sum += m.Weight
		}
		assert.Equal(t, layer.Weight, sum, "layer %d metric weights", layer.Number)
	}
}
