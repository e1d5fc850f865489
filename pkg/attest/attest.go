// Package attest lets external holders of the oracle's verification key check
// an attestation offline. It carries the binding-message wire contract and has
// no dependency on the service internals.
package attest

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

var ErrBadSignature = errors.New("attestation signature verification failed")

// BindingMessage lays out the signed bytes in fixed order: policy id,
// transaction hash, subject, then the integer part of the score as a 3-byte
// big-endian value. NaN and negative scores encode as zero and values beyond
// the 3-byte range saturate, so the message bytes are defined for any input.
// Verifiers must reproduce the layout byte for byte.
func BindingMessage(policyID, txHash, subject string, score float64) []byte {
	msg := make([]byte, 0, len(policyID)+len(txHash)+len(subject)+3)
	msg = append(msg, policyID...)
	msg = append(msg, txHash...)
	msg = append(msg, subject...)
	v := scoreUint24(score)
	msg = append(msg, byte(v>>16), byte(v>>8), byte(v))
	return msg
}

func scoreUint24(score float64) uint32 {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= 1<<24 {
		return 1<<24 - 1
	}
	return uint32(score)
}

// Verify recomputes the binding message and checks the hex-encoded ed25519
// signature against the hex-encoded public key.
func Verify(policyID, txHash, subject string, score float64, signatureHex, publicKeyHex string) error {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return fmt.Errorf("invalid public key encoding: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid ed25519 public key length: %d", len(pub))
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid ed25519 signature length: %d", len(sig))
	}
	msg := BindingMessage(policyID, txHash, subject, score)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return ErrBadSignature
	}
	return nil
}
