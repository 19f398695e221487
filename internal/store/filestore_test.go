package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

func testRun(country string, score float64, generatedAt time.Time) *model.StoredResearch {
	return &model.StoredResearch{
		ID:           GenerateID(country, generatedAt),
		Country:      country,
		Year:         2025,
		OverallScore: score,
		Tier:         "Tier 3: Adopter",
		Layers: map[string]model.LayerResult{
			"power": {LayerNumber: 1, ShortName: "power", Score: score, MaxScore: 100, Status: model.LayerStatusComplete},
		},
		Sources:     []string{"https://iea.org/a"},
		GeneratedAt: generatedAt,
	}
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStoreSaveGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	run := testRun("Germany", 55.25, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	run.ExecutiveSummary = "strong industry, dependent on foreign compute"
	run.ResearchDurationSeconds = 182.4

	id, err := s.Save(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, "germany_20250801_090000", id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, run.Country, got.Country)
	assert.Equal(t, run.OverallScore, got.OverallScore)
	assert.Equal(t, run.Tier, got.Tier)
	assert.Equal(t, run.ExecutiveSummary, got.ExecutiveSummary)
	assert.Equal(t, run.Layers, got.Layers)
	assert.Equal(t, run.Sources, got.Sources)
	assert.Equal(t, run.ResearchDurationSeconds, got.ResearchDurationSeconds)
	assert.True(t, run.GeneratedAt.Equal(got.GeneratedAt))
}

func TestFileStoreGetNotFound(t *testing.T) {
	t.Parallel()
	s := newTestFileStore(t)

	_, err := s.Get(context.Background(), "nope_20250101_000000")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestFileStoreIndexInvariants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Save(ctx, testRun("India", 40+float64(i), base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Every indexed id has a file on disk; latest is the last element.
	for _, id := range s.index.ByCountry["india"] {
		assert.FileExists(t, filepath.Join(s.dir, id+".json"))
	}
	assert.Equal(t, ids[2], s.index.LatestByCountry["india"])
	assert.Equal(t, ids, s.index.ByCountry["india"])
}

func TestFileStoreIndexSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	id, err := s1.Save(ctx, testRun("Japan", 61, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := s2.Latest(ctx, "japan")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestFileStoreListByCountry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, testRun("Brazil", float64(30+i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, testRun("Chile", 20, base))
	require.NoError(t, err)

	// Country filter keeps the most recent N, newest first.
	runs, err := s.List(ctx, "Brazil", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 34.0, runs[0].OverallScore)
	assert.Equal(t, 33.0, runs[1].OverallScore)
	assert.Equal(t, 32.0, runs[2].OverallScore)

	// Case-insensitive country match.
	runs, err = s.List(ctx, "BRAZIL", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestFileStoreListAllCountries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Save(ctx, testRun("Egypt", 25, base))
	require.NoError(t, err)
	_, err = s.Save(ctx, testRun("Spain", 45, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = s.Save(ctx, testRun("Italy", 44, base.Add(2*time.Hour)))
	require.NoError(t, err)

	runs, err := s.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Italy", runs[0].Country)
	assert.Equal(t, "Spain", runs[1].Country)
}

func TestFileStoreLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Save(ctx, testRun("Norway", 48, base))
	require.NoError(t, err)
	_, err = s.Save(ctx, testRun("Norway", 52, base.Add(time.Hour)))
	require.NoError(t, err)

	got, err := s.Latest(ctx, "norway")
	require.NoError(t, err)
	assert.Equal(t, 52.0, got.OverallScore)

	_, err = s.Latest(ctx, "Atlantis")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestFileStoreCountries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Save(ctx, testRun("Kenya", 18, base))
	require.NoError(t, err)
	_, err = s.Save(ctx, testRun("Kenya", 22, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = s.Save(ctx, testRun("Singapore", 58, base))
	require.NoError(t, err)

	summaries, err := s.Countries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Singapore", summaries[0].Country)
	assert.Equal(t, "Kenya", summaries[1].Country)
	assert.Equal(t, 22.0, summaries[1].LatestScore)
	assert.Equal(t, 2, summaries[1].RunCount)
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	id1, err := s.Save(ctx, testRun("Poland", 35, base))
	require.NoError(t, err)
	id2, err := s.Save(ctx, testRun("Poland", 38, base.Add(time.Hour)))
	require.NoError(t, err)

	// Deleting the latest repairs latest_by_country to the previous run.
	require.NoError(t, s.Delete(ctx, id2))
	assert.Equal(t, id1, s.index.LatestByCountry["poland"])
	assert.NoFileExists(t, filepath.Join(s.dir, id2+".json"))

	// Deleting the last run drops the country entirely.
	require.NoError(t, s.Delete(ctx, id1))
	_, ok := s.index.LatestByCountry["poland"]
	assert.False(t, ok)
	_, ok = s.index.ByCountry["poland"]
	assert.False(t, ok)

	err = s.Delete(ctx, id1)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestFileStoreSkipsMissingIndexedRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestFileStore(t)

	id, err := s.Save(ctx, testRun("Ghana", 15, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.dir, id+".json")))

	runs, err := s.List(ctx, "Ghana", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
