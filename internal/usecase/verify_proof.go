package usecase

import (
	"context"
	"fmt"

	"scoreoracle/internal/domain"
)

// VerifyProof checks a proof bundle against its public inputs. Degraded
// verification never raises; it reports invalid.
type VerifyProof struct {
	Prover ProofService
}

func (uc *VerifyProof) Execute(ctx context.Context, bundle domain.ProofBundle, public domain.PublicInputs) (bool, error) {
	if bundle.ProofToken == "" {
		return false, fmt.Errorf("%w: proof token is required", domain.ErrInvalidInput)
	}
	return uc.Prover.Verify(ctx, bundle, public)
}
