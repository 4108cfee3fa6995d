package hornql

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	f, err := ioutil.TempFile("", "hornql-test")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15, cfg.SeniorYears)
	assert.False(t, cfg.SeniorInclusive)
	assert.Equal(t, float64(1000), cfg.HighCostThreshold)
	assert.Equal(t, 65, cfg.ElderlyAge)
	assert.Equal(t, 90, cfg.DelinquentDays)
	assert.Equal(t, 10000, cfg.MaxFixpointPasses)

	asOf, err := cfg.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), asOf)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeTempFile(t, `
current_date: 2025-06-30
senior_years: 10
senior_inclusive: true
`)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.SeniorYears)
	assert.True(t, cfg.SeniorInclusive)
	assert.Equal(t, "2025-06-30", cfg.CurrentDate)
	// untouched fields keep their defaults
	assert.Equal(t, 65, cfg.ElderlyAge)
	assert.Equal(t, float64(1000), cfg.HighCostThreshold)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)

	path := writeTempFile(t, "current_date: June 30th\n")
	defer os.Remove(path)
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current_date")
}
