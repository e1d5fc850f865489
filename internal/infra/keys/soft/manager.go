package soft

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/op/go-logging"

	"scoreoracle/internal/domain"
)

var logger = logging.MustGetLogger("keys")

const (
	privateKeyFile = "oracle.skey"
	publicKeyFile  = "oracle.vkey"
)

// Manager owns the oracle's long-lived ed25519 key pair on disk. The pair is
// loaded on first use; if absent, it is generated once and persisted, private
// key first. The private key never leaves the manager.
//
// A private key without its public counterpart (or with a mismatched one) is
// treated as corruption requiring manual recovery: regenerating silently
// would orphan an already-advertised verification key.
type Manager struct {
	dir string

	mu     sync.Mutex
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	loaded bool
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

func (m *Manager) Sign(payload []byte) ([]byte, error) {
	if err := m.ensureLoaded(); err != nil {
		return nil, err
	}
	return ed25519.Sign(m.priv, payload), nil
}

func (m *Manager) PublicKey() (ed25519.PublicKey, error) {
	if err := m.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make(ed25519.PublicKey, len(m.pub))
	copy(out, m.pub)
	return out, nil
}

func (m *Manager) PublicKeyHex() (string, error) {
	pub, err := m.PublicKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pub), nil
}

func (m *Manager) ensureLoaded() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	skeyPath := filepath.Join(m.dir, privateKeyFile)
	vkeyPath := filepath.Join(m.dir, publicKeyFile)

	priv, err := readPrivateKey(skeyPath)
	switch {
	case err == nil:
		pub, err := readPublicKey(vkeyPath)
		if err != nil {
			return fmt.Errorf("%w: %s present but %s unreadable: %v", domain.ErrKeyCorrupted, privateKeyFile, publicKeyFile, err)
		}
		derived := priv.Public().(ed25519.PublicKey)
		if subtle.ConstantTimeCompare(derived, pub) != 1 {
			return fmt.Errorf("%w: %s does not match %s", domain.ErrKeyCorrupted, publicKeyFile, privateKeyFile)
		}
		m.priv, m.pub = priv, pub
	case errors.Is(err, os.ErrNotExist):
		if _, statErr := os.Stat(vkeyPath); statErr == nil {
			return fmt.Errorf("%w: %s exists without %s", domain.ErrKeyCorrupted, publicKeyFile, privateKeyFile)
		}
		priv, pub, genErr := m.generate(skeyPath, vkeyPath)
		if genErr != nil {
			return genErr
		}
		m.priv, m.pub = priv, pub
	default:
		return fmt.Errorf("%w: %v", domain.ErrKeyCorrupted, err)
	}

	m.loaded = true
	return nil
}

func (m *Manager) generate(skeyPath, vkeyPath string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create key dir: %w", err)
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate oracle key: %w", err)
	}
	// Private key lands first. If we crash between the two writes the state
	// reads as corruption on the next start, not as a fresh key pair.
	if err := os.WriteFile(skeyPath, []byte(hex.EncodeToString(priv.Seed())+"\n"), 0o600); err != nil {
		return nil, nil, fmt.Errorf("persist private key: %w", err)
	}
	if err := os.WriteFile(vkeyPath, []byte(hex.EncodeToString(pub)+"\n"), 0o644); err != nil {
		return nil, nil, fmt.Errorf("persist public key: %w", err)
	}
	logger.Infof("generated oracle key pair in %s", m.dir)
	return priv, pub, nil
}

func readPrivateKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	switch len(decoded) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(decoded), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(decoded), nil
	default:
		return nil, fmt.Errorf("invalid ed25519 private key length %d", len(decoded))
	}
}

func readPublicKey(path string) (ed25519.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key length %d", len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}
