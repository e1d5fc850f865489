package domain

type ProofTier string

const (
	ProofTierReal     ProofTier = "real"
	ProofTierFallback ProofTier = "fallback"
)

// PublicInputs are the circuit inputs revealed alongside a proof.
// ResponseCommitment is an additive checksum of the encrypted responses; it
// is a placeholder, not a hiding commitment.
type PublicInputs struct {
	SubjectHash        uint64  `json:"subject_hash"`
	ExpectedScore      float64 `json:"expected_score"`
	ResponseCommitment int64   `json:"response_commitment"`
}

type PrivateInputs struct {
	EncryptedResponses []int64   `json:"encrypted_responses"`
	Features           []float64 `json:"features"`
	ModelWeights       []float64 `json:"model_weights"`
	ModelBias          float64   `json:"model_bias"`
}

type ProofInputs struct {
	Public  PublicInputs  `json:"public_inputs"`
	Private PrivateInputs `json:"private_inputs"`
}

// ProofBundle has the same field set whichever tier produced it. Consumers
// branch on Tier, never on structure.
type ProofBundle struct {
	ProofToken      string       `json:"proof_token"`
	PublicInputs    PublicInputs `json:"public_inputs"`
	VerificationKey string       `json:"verification_key"`
	GenerationTime  float64      `json:"generation_time"`
	CircuitSize     string       `json:"circuit_size"`
	Timestamp       int64        `json:"timestamp"`
	Tier            ProofTier    `json:"tier"`
}
