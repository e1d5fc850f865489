package proof

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"

	"scoreoracle/internal/domain"
)

const (
	FallbackTokenPrefix = "fallback_proof_"
	FallbackVKPrefix    = "fallback_vk_"

	defaultCircuitSize = "medium"
)

// FallbackBundle synthesizes a proof bundle from a hash of the canonicalized
// inputs. The field shape matches a real bundle exactly; only the tier tag
// and the token prefix reveal the tier.
func FallbackBundle(inputs domain.ProofInputs) (domain.ProofBundle, error) {
	raw, err := json.Marshal(inputs)
	if err != nil {
		return domain.ProofBundle{}, fmt.Errorf("encode proof inputs: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return domain.ProofBundle{}, fmt.Errorf("canonicalize proof inputs: %w", err)
	}
	sum := sha256.Sum256(canonical)
	digest := hex.EncodeToString(sum[:])

	return domain.ProofBundle{
		ProofToken:      FallbackTokenPrefix + digest[:32],
		PublicInputs:    inputs.Public,
		VerificationKey: FallbackVKPrefix + digest[:16],
		GenerationTime:  0,
		CircuitSize:     defaultCircuitSize,
		Timestamp:       time.Now().Unix(),
		Tier:            domain.ProofTierFallback,
	}, nil
}
