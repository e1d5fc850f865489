package usecase

import (
	"context"
	"time"

	"scoreoracle/internal/domain"
)

type ScoringEngine interface {
	Derive(subject string) domain.FeatureVector
	Score(features domain.FeatureVector) (float64, error)
	Weights() []float64
	Bias() float64
	Version() string
}

type AttestationSigner interface {
	Sign(datum domain.ScoreDatum, txHash string) (domain.Attestation, error)
	PublicKeyHex() (string, error)
}

type ProofService interface {
	Generate(ctx context.Context, inputs domain.ProofInputs) (domain.ProofBundle, error)
	Verify(ctx context.Context, bundle domain.ProofBundle, public domain.PublicInputs) (bool, error)
}

type PolicyGate interface {
	Evaluate(ctx context.Context, input domain.SubmissionPolicyInput) (domain.PolicyEvaluation, error)
}

// RecordCache sits in front of ledger lookups. Implementations may miss at
// any time; cache errors are advisory and never fail a request.
type RecordCache interface {
	Get(ctx context.Context, subject string) (*domain.TransactionRecord, bool, error)
	Put(ctx context.Context, subject string, record domain.TransactionRecord, ttl time.Duration) error
	Invalidate(ctx context.Context, subject string) error
}
