package model

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// logisticArtifact is the JSON layout of a trained logistic regression.
type logisticArtifact struct {
	Weights            []float64 `json:"weights"`
	Intercept          float64   `json:"intercept"`
	FeatureImportances []float64 `json:"feature_importances,omitempty"`
	Version            string    `json:"version,omitempty"`
}

// LogisticClassifier is a binary logistic regression over standardized
// features.
type LogisticClassifier struct {
	weights     []float64
	intercept   float64
	importances []float64
}

// LoadLogistic reads and validates a logistic regression artifact.
func LoadLogistic(logger *slog.Logger, path string) (*LogisticClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var artifact logisticArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}

	if len(artifact.Weights) == 0 {
		return nil, fmt.Errorf("model artifact %s declares no weights", path)
	}
	if artifact.FeatureImportances != nil && len(artifact.FeatureImportances) != len(artifact.Weights) {
		return nil, fmt.Errorf("model artifact %s is misaligned: %d weights, %d importances",
			path, len(artifact.Weights), len(artifact.FeatureImportances))
	}

	logger.Info("Loaded fraud classifier",
		"path", path,
		"features", len(artifact.Weights),
		"version", artifact.Version)

	return &LogisticClassifier{
		weights:     artifact.Weights,
		intercept:   artifact.Intercept,
		importances: artifact.FeatureImportances,
	}, nil
}

// NewLogistic builds a classifier directly from coefficients.
func NewLogistic(weights []float64, intercept float64, importances []float64) *LogisticClassifier {
	return &LogisticClassifier{
		weights:     weights,
		intercept:   intercept,
		importances: importances,
	}
}

// Predict returns the hard class at the 0.5 cut.
func (c *LogisticClassifier) Predict(scaled []float64) (bool, error) {
	p, err := c.PredictProbability(scaled)
	if err != nil {
		return false, err
	}
	return p >= 0.5, nil
}

// PredictProbability computes sigmoid(w·x + b). Dimension mismatches and
// non-finite inputs fail loudly instead of producing a garbage probability.
func (c *LogisticClassifier) PredictProbability(scaled []float64) (float64, error) {
	if len(scaled) != len(c.weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(scaled), len(c.weights))
	}

	z := c.intercept
	for i, v := range scaled {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("feature vector has non-finite value at index %d", i)
		}
		z += c.weights[i] * v
	}
	return sigmoid(z), nil
}

// FeatureImportances returns the artifact's global importances, or nil.
// Callers must not mutate the returned slice.
func (c *LogisticClassifier) FeatureImportances() []float64 {
	return c.importances
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
