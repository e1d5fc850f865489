package domain

// Feature is one named component of a feature vector. Order matters: the
// scoring model consumes values in the order the trained artifacts declare.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type FeatureVector []Feature

func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = f.Value
	}
	return out
}

func (v FeatureVector) Names() []string {
	out := make([]string, len(v))
	for i, f := range v {
		out[i] = f.Name
	}
	return out
}

// ScoreDatum is the scored fact an oracle attests to. Immutable once signed.
type ScoreDatum struct {
	Subject         string        `json:"subject"`
	Score           float64       `json:"score"`
	Timestamp       int64         `json:"timestamp"`
	ModelVersion    string        `json:"model_version"`
	Features        FeatureVector `json:"features"`
	OraclePublicKey string        `json:"oracle_public_key"`
}
