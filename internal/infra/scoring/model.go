package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"scoreoracle/internal/domain"
)

const (
	featureColumnsFile = "feature_columns.json"
	scalerFile         = "scaler.json"
	modelFile          = "model.json"
)

// Model holds the trained linear coefficients and the standardization
// parameters. All fields are read-only after LoadModel.
type Model struct {
	FeatureNames []string
	Mean         []float64
	Scale        []float64
	Weights      []float64
	Bias         float64
	ModelVersion string
}

type scalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type modelArtifact struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Version string    `json:"version"`
}

// LoadModel reads the three serving artifacts from dir. A missing or
// malformed artifact is a configuration error; callers must refuse to start
// rather than substitute a mock model.
func LoadModel(dir string) (*Model, error) {
	var names []string
	if err := readArtifact(filepath.Join(dir, featureColumnsFile), &names); err != nil {
		return nil, err
	}
	var scaler scalerArtifact
	if err := readArtifact(filepath.Join(dir, scalerFile), &scaler); err != nil {
		return nil, err
	}
	var artifact modelArtifact
	if err := readArtifact(filepath.Join(dir, modelFile), &artifact); err != nil {
		return nil, err
	}

	n := len(names)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty feature column list", domain.ErrModelArtifacts)
	}
	if len(scaler.Mean) != n || len(scaler.Scale) != n || len(artifact.Weights) != n {
		return nil, fmt.Errorf("%w: artifact arity mismatch (features=%d mean=%d scale=%d weights=%d)",
			domain.ErrModelArtifacts, n, len(scaler.Mean), len(scaler.Scale), len(artifact.Weights))
	}
	for i, s := range scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: zero scale for feature %q", domain.ErrModelArtifacts, names[i])
		}
	}
	version := artifact.Version
	if version == "" {
		version = "v1.0"
	}
	return &Model{
		FeatureNames: names,
		Mean:         scaler.Mean,
		Scale:        scaler.Scale,
		Weights:      artifact.Weights,
		Bias:         artifact.Bias,
		ModelVersion: version,
	}, nil
}

func readArtifact(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrModelArtifacts, filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrModelArtifacts, filepath.Base(path), err)
	}
	return nil
}

// Score standardizes the vector and applies the linear model, clamped to
// [0,100] and rounded to two decimals.
func (m *Model) Score(features domain.FeatureVector) (float64, error) {
	if len(features) != len(m.FeatureNames) {
		return 0, fmt.Errorf("%w: expected %d features, got %d", domain.ErrInvalidInput, len(m.FeatureNames), len(features))
	}
	scaled := make([]float64, len(features))
	for i, f := range features {
		if f.Name != m.FeatureNames[i] {
			return 0, fmt.Errorf("%w: feature %d is %q, expected %q", domain.ErrInvalidInput, i, f.Name, m.FeatureNames[i])
		}
		scaled[i] = (f.Value - m.Mean[i]) / m.Scale[i]
	}
	raw := floats.Dot(m.Weights, scaled) + m.Bias
	return clampScore(raw), nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return math.Round(v*100) / 100
}
