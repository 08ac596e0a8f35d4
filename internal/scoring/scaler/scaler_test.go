package scaler

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Features: []string{"Amount", "V1", "V2"},
		Mean:     []float64{100, 0, 1},
		Scale:    []float64{50, 2, 0.5},
	}
}

func TestNew_RejectsMalformedParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"no features", Params{}},
		{"misaligned slices", Params{Features: []string{"a", "b"}, Mean: []float64{0}, Scale: []float64{1, 1}}},
		{"duplicate feature", Params{Features: []string{"a", "a"}, Mean: []float64{0, 0}, Scale: []float64{1, 1}}},
		{"empty feature name", Params{Features: []string{""}, Mean: []float64{0}, Scale: []float64{1}}},
		{"zero scale", Params{Features: []string{"a"}, Mean: []float64{0}, Scale: []float64{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(slog.Default(), tt.params)
			assert.Error(t, err)
		})
	}
}

func TestScaler_Transform(t *testing.T) {
	s, err := New(slog.Default(), testParams())
	require.NoError(t, err)

	got, err := s.Transform(map[string]float64{
		"Amount": 200,
		"V1":     4,
		"V2":     1,
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 2, 0}, got)
}

func TestScaler_Transform_MissingFeatures(t *testing.T) {
	s, err := New(slog.Default(), testParams())
	require.NoError(t, err)

	_, err = s.Transform(map[string]float64{"V2": 1})
	require.Error(t, err)

	var contractErr *FeatureContractError
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, []string{"Amount", "V1"}, contractErr.Missing)
}

func TestScaler_Transform_DropsExtras(t *testing.T) {
	s, err := New(slog.Default(), testParams())
	require.NoError(t, err)

	got, err := s.Transform(map[string]float64{
		"Amount":     100,
		"V1":         0,
		"V2":         1,
		"unexpected": 42,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")

	raw, err := json.Marshal(testParams())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	s, err := Load(slog.Default(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount", "V1", "V2"}, s.ExpectedFeatures())

	_, err = Load(slog.Default(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
