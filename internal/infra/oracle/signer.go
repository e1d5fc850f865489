package oracle

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"scoreoracle/internal/domain"
	"scoreoracle/pkg/attest"
)

// KeySource abstracts the key manager. The private key stays behind it.
type KeySource interface {
	Sign(payload []byte) ([]byte, error)
	PublicKey() (ed25519.PublicKey, error)
}

// Signer issues attestations bound to a transaction context. Signing errors
// are terminal for the request: an oracle cannot mock its own signature.
type Signer struct {
	PolicyID string
	Keys     KeySource
}

func NewSigner(policyID string, keys KeySource) *Signer {
	return &Signer{PolicyID: policyID, Keys: keys}
}

// BindingMessage is the wire contract shared with external verifiers; the
// layout lives in pkg/attest so clients can reproduce it without importing
// service internals.
func BindingMessage(policyID, txHash, subject string, score float64) []byte {
	return attest.BindingMessage(policyID, txHash, subject, score)
}

func (s *Signer) Sign(datum domain.ScoreDatum, txHash string) (domain.Attestation, error) {
	if txHash == "" {
		return domain.Attestation{}, fmt.Errorf("%w: transaction hash is required", domain.ErrInvalidInput)
	}
	if datum.Subject == "" {
		return domain.Attestation{}, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	msg := BindingMessage(s.PolicyID, txHash, datum.Subject, datum.Score)
	sig, err := s.Keys.Sign(msg)
	if err != nil {
		return domain.Attestation{}, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}
	return domain.Attestation{
		Datum:     datum,
		PolicyID:  s.PolicyID,
		TxHash:    txHash,
		Signature: hex.EncodeToString(sig),
	}, nil
}

func (s *Signer) PublicKeyHex() (string, error) {
	pub, err := s.Keys.PublicKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pub), nil
}

// VerifyAttestation recomputes the binding message and checks the signature
// against the supplied public key. It is usable offline by any holder of the
// oracle's verification key.
func VerifyAttestation(att domain.Attestation, pubKey ed25519.PublicKey) error {
	return attest.Verify(att.PolicyID, att.TxHash, att.Datum.Subject, att.Datum.Score,
		att.Signature, hex.EncodeToString(pubKey))
}
