package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrModelArtifacts   = errors.New("model artifacts missing or invalid")
	ErrKeyCorrupted     = errors.New("oracle key material corrupted")
	ErrSigningFailed    = errors.New("signing failed")
	ErrProofUnavailable = errors.New("proof service unavailable")
	ErrPolicyDenied     = errors.New("submission denied by policy")
	ErrNotFound         = errors.New("not found")
)
