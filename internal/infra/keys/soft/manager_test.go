package soft

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scoreoracle/internal/domain"
)

func TestGenerateThenReload(t *testing.T) {
	dir := t.TempDir()

	first := NewManager(dir)
	pubHex, err := first.PublicKeyHex()
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, privateKeyFile)); err != nil {
		t.Fatalf("private key not persisted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, publicKeyFile)); err != nil {
		t.Fatalf("public key not persisted: %v", err)
	}

	second := NewManager(dir)
	reloaded, err := second.PublicKeyHex()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded != pubHex {
		t.Fatalf("public key changed across restarts: %s vs %s", pubHex, reloaded)
	}
}

func TestSignVerifiesWithPublishedKey(t *testing.T) {
	m := NewManager(t.TempDir())
	payload := []byte("attestation payload")
	sig, err := m.Sign(payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub, err := m.PublicKey()
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	if !ed25519.Verify(pub, payload, sig) {
		t.Fatalf("signature does not verify with published key")
	}
}

func TestPublicKeyWithoutPrivateIsCorruption(t *testing.T) {
	dir := t.TempDir()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	mustWrite(t, filepath.Join(dir, publicKeyFile), hex.EncodeToString(pub))

	m := NewManager(dir)
	if _, err := m.PublicKey(); !errors.Is(err, domain.ErrKeyCorrupted) {
		t.Fatalf("expected ErrKeyCorrupted, got %v", err)
	}
}

func TestPrivateKeyWithoutPublicIsCorruption(t *testing.T) {
	dir := t.TempDir()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	mustWrite(t, filepath.Join(dir, privateKeyFile), hex.EncodeToString(priv.Seed()))

	m := NewManager(dir)
	if _, err := m.PublicKey(); !errors.Is(err, domain.ErrKeyCorrupted) {
		t.Fatalf("expected ErrKeyCorrupted, got %v", err)
	}
}

func TestMismatchedPairIsCorruption(t *testing.T) {
	dir := t.TempDir()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	otherPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	mustWrite(t, filepath.Join(dir, privateKeyFile), hex.EncodeToString(priv.Seed()))
	mustWrite(t, filepath.Join(dir, publicKeyFile), hex.EncodeToString(otherPub))

	m := NewManager(dir)
	if _, err := m.Sign([]byte("x")); !errors.Is(err, domain.ErrKeyCorrupted) {
		t.Fatalf("expected ErrKeyCorrupted, got %v", err)
	}
}

func TestGarbledPrivateKeyIsCorruption(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, privateKeyFile), "not-hex-at-all")

	m := NewManager(dir)
	if _, err := m.Sign([]byte("x")); !errors.Is(err, domain.ErrKeyCorrupted) {
		t.Fatalf("expected ErrKeyCorrupted, got %v", err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
