package proof

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"scoreoracle/internal/domain"
)

// BuildInputs assembles the circuit inputs for one attestation. The response
// "encryption" and the additive commitment are deterministic placeholders;
// they make the fallback tier reproducible but carry no hiding property.
func BuildInputs(subject string, responses []int, features []float64, weights []float64, bias float64, expectedScore float64) (domain.ProofInputs, error) {
	if subject == "" {
		return domain.ProofInputs{}, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if len(responses) == 0 {
		return domain.ProofInputs{}, fmt.Errorf("%w: responses are required", domain.ErrInvalidInput)
	}

	encrypted := EncryptResponses(responses)
	var commitment int64
	for _, v := range encrypted {
		commitment += v
	}

	return domain.ProofInputs{
		Public: domain.PublicInputs{
			SubjectHash:        SubjectHash(subject),
			ExpectedScore:      expectedScore,
			ResponseCommitment: commitment,
		},
		Private: domain.PrivateInputs{
			EncryptedResponses: encrypted,
			Features:           append([]float64(nil), features...),
			ModelWeights:       append([]float64(nil), weights...),
			ModelBias:          bias,
		},
	}, nil
}

// EncryptResponses maps each response to a small deterministic integer via
// sha256 of "<response>_<index>_<count>". Position and count are mixed in so
// reordering or truncating the vector changes every value.
func EncryptResponses(responses []int) []int64 {
	out := make([]int64, len(responses))
	for i, r := range responses {
		seed := strconv.Itoa(r) + "_" + strconv.Itoa(i) + "_" + strconv.Itoa(len(responses))
		sum := sha256.Sum256([]byte(seed))
		out[i] = int64(binary.BigEndian.Uint32(sum[:4])) % 1000
	}
	return out
}

// SubjectHash reduces the subject identifier to the first eight digest bytes
// as an unsigned integer, the form the circuit takes as a public input.
func SubjectHash(subject string) uint64 {
	sum := sha256.Sum256([]byte(subject))
	return binary.BigEndian.Uint64(sum[:8])
}
