package attest

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"math"
	"testing"
)

func TestBindingMessageScoreEncodingIsDefined(t *testing.T) {
	zero := BindingMessage("p", "t", "s", 0)
	for _, score := range []float64{math.NaN(), -1, -0.5, math.Inf(-1)} {
		msg := BindingMessage("p", "t", "s", score)
		if !bytes.Equal(msg, zero) {
			t.Errorf("score %v did not encode as zero: %v", score, msg[len(msg)-3:])
		}
	}
	for _, score := range []float64{1 << 24, math.MaxFloat64, math.Inf(1)} {
		msg := BindingMessage("p", "t", "s", score)
		suffix := msg[len(msg)-3:]
		if suffix[0] != 0xff || suffix[1] != 0xff || suffix[2] != 0xff {
			t.Errorf("score %v did not saturate: %v", score, suffix)
		}
	}
	msg := BindingMessage("p", "t", "s", 87.65)
	if got := msg[len(msg)-3:]; got[0] != 0 || got[1] != 0 || got[2] != 87 {
		t.Errorf("in-range score encoding changed: %v", got)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	policy := "c965889476530cae6fc1b22b4f3c1571fb5d29c09d99529ae5f3046c"
	msg := BindingMessage(policy, "tx1", "addr_test1abc", 72.51)
	sig := ed25519.Sign(priv, msg)

	sigHex := hex.EncodeToString(sig)
	pubHex := hex.EncodeToString(pub)

	if err := Verify(policy, "tx1", "addr_test1abc", 72.51, sigHex, pubHex); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// The 3-byte encoding truncates to the integer part, so any score with
	// the same floor verifies against the same signature.
	if err := Verify(policy, "tx1", "addr_test1abc", 72.99, sigHex, pubHex); err != nil {
		t.Fatalf("verify with same integer part: %v", err)
	}
	if err := Verify(policy, "tx2", "addr_test1abc", 72.51, sigHex, pubHex); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for rebound tx, got %v", err)
	}
	if err := Verify(policy, "tx1", "addr_test1abc", 73, sigHex, pubHex); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for altered score, got %v", err)
	}
}

func TestVerifyRejectsMalformedInputs(t *testing.T) {
	if err := Verify("p", "t", "s", 1, "zz", "aa"); err == nil {
		t.Fatalf("expected error for bad public key")
	}
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := Verify("p", "t", "s", 1, "not-hex", hex.EncodeToString(pub)); err == nil {
		t.Fatalf("expected error for bad signature encoding")
	}
}
