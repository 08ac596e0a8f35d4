// Package model wraps the trained fraud classifier behind a small interface
// so the pipeline never depends on the model family. The shipped
// implementation is a logistic regression exported from training as a JSON
// artifact.
package model

import (
	"log/slog"
	"sync"
)

// Classifier scores a standardized feature vector.
type Classifier interface {
	// Predict returns the hard class at the model's internal 0.5 cut.
	Predict(scaled []float64) (bool, error)
	// PredictProbability returns the fraud probability on [0, 1].
	PredictProbability(scaled []float64) (float64, error)
	// FeatureImportances returns per-feature global importances in training
	// order, or nil when the artifact ships none.
	FeatureImportances() []float64
}

var (
	loadOnce   sync.Once
	loaded     Classifier
	loadedErr  error
	loadedPath string
)

// Load reads the classifier artifact at path. The artifact is loaded exactly
// once per process; subsequent calls return the first result regardless of
// path.
func Load(logger *slog.Logger, path string) (Classifier, error) {
	loadOnce.Do(func() {
		loadedPath = path
		loaded, loadedErr = LoadLogistic(logger, path)
	})
	if loadedErr == nil && loadedPath != path {
		logger.Warn("Classifier already loaded, ignoring different artifact path",
			"loaded_path", loadedPath,
			"requested_path", path)
	}
	return loaded, loadedErr
}
