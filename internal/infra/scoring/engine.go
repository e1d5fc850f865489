package scoring

import (
	"github.com/op/go-logging"

	"scoreoracle/internal/domain"
)

var logger = logging.MustGetLogger("scoring")

// Engine pairs the deterministic feature derivation with a loaded model.
type Engine struct {
	model *Model
}

func NewEngine(model *Model) *Engine {
	return &Engine{model: model}
}

func (e *Engine) Derive(subject string) domain.FeatureVector {
	return DeriveFeatures(subject)
}

func (e *Engine) Score(features domain.FeatureVector) (float64, error) {
	score, err := e.model.Score(features)
	if err != nil {
		return 0, err
	}
	logger.Debugf("scored %d features: %.2f", len(features), score)
	return score, nil
}

func (e *Engine) Weights() []float64 {
	out := make([]float64, len(e.model.Weights))
	copy(out, e.model.Weights)
	return out
}

func (e *Engine) Bias() float64 {
	return e.model.Bias
}

func (e *Engine) Version() string {
	return e.model.ModelVersion
}
