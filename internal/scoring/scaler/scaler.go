// Package scaler applies the standardization learned at training time. The
// scaler owns the feature contract: the exact set and order of features the
// model was fitted on. Inputs arrive as a named map and leave as a vector in
// training order.
package scaler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Params holds the fitted standardization parameters exported from training.
// The three slices are index-aligned: Mean[i] and Scale[i] belong to
// Features[i].
type Params struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// FeatureContractError reports features the training contract requires but
// the input did not supply. It is a client error, not a pipeline fault.
type FeatureContractError struct {
	Missing []string
}

func (e *FeatureContractError) Error() string {
	return "input is missing required features: " + strings.Join(e.Missing, ", ")
}

// Scaler standardizes named feature maps into training-order vectors.
type Scaler struct {
	params  Params
	indexOf map[string]int
	logger  *slog.Logger
}

// Load reads fitted parameters from a JSON artifact and builds a scaler.
func Load(logger *slog.Logger, path string) (*Scaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaler artifact %s: %w", path, err)
	}

	var params Params
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("failed to parse scaler artifact %s: %w", path, err)
	}

	return New(logger, params)
}

// New validates the fitted parameters and builds a scaler. A malformed
// artifact is fatal: scoring with broken normalization silently corrupts
// every probability downstream.
func New(logger *slog.Logger, params Params) (*Scaler, error) {
	n := len(params.Features)
	if n == 0 {
		return nil, fmt.Errorf("scaler artifact declares no features")
	}
	if len(params.Mean) != n || len(params.Scale) != n {
		return nil, fmt.Errorf("scaler artifact is misaligned: %d features, %d means, %d scales",
			n, len(params.Mean), len(params.Scale))
	}

	indexOf := make(map[string]int, n)
	for i, name := range params.Features {
		if name == "" {
			return nil, fmt.Errorf("scaler artifact has an empty feature name at index %d", i)
		}
		if _, dup := indexOf[name]; dup {
			return nil, fmt.Errorf("scaler artifact lists feature %q twice", name)
		}
		if params.Scale[i] == 0 {
			return nil, fmt.Errorf("scaler artifact has zero scale for feature %q", name)
		}
		indexOf[name] = i
	}

	return &Scaler{
		params:  params,
		indexOf: indexOf,
		logger:  logger,
	}, nil
}

// Transform standardizes the named input into a vector in training order.
// Missing required features fail the call; unexpected extras are logged and
// dropped so permissive clients do not break scoring.
func (s *Scaler) Transform(input map[string]float64) ([]float64, error) {
	var missing []string
	for _, name := range s.params.Features {
		if _, ok := input[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FeatureContractError{Missing: missing}
	}

	var extras []string
	for name := range input {
		if _, ok := s.indexOf[name]; !ok {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		s.logger.Warn("Dropping features outside the training contract", "features", extras)
	}

	out := make([]float64, len(s.params.Features))
	for i, name := range s.params.Features {
		out[i] = (input[name] - s.params.Mean[i]) / s.params.Scale[i]
	}
	return out, nil
}

// ExpectedFeatures returns the training-order feature names. Callers must not
// mutate the returned slice.
func (s *Scaler) ExpectedFeatures() []string {
	return s.params.Features
}
