package proof

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/op/go-logging"

	"scoreoracle/internal/domain"
)

var logger = logging.MustGetLogger("proof")

// Orchestrator selects between the real prover and the deterministic
// fallback. Availability is probed at most once per refresh interval so a
// known-dead prover does not cost a failed round trip on every request.
type Orchestrator struct {
	client                *Client
	allowInsecureFallback bool
	probeRefresh          time.Duration
	now                   func() time.Time

	mu        sync.Mutex
	available bool
	checkedAt time.Time
}

type OrchestratorConfig struct {
	Client                *Client // nil when no prover is configured
	AllowInsecureFallback bool
	ProbeRefresh          time.Duration
	Now                   func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.ProbeRefresh <= 0 {
		cfg.ProbeRefresh = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		client:                cfg.Client,
		allowInsecureFallback: cfg.AllowInsecureFallback,
		probeRefresh:          cfg.ProbeRefresh,
		now:                   cfg.Now,
	}
}

// Available reports the cached prober verdict, refreshing it when stale.
// The probe itself runs outside the lock.
func (o *Orchestrator) Available(ctx context.Context) bool {
	if o.client == nil {
		return false
	}
	o.mu.Lock()
	fresh := !o.checkedAt.IsZero() && o.now().Sub(o.checkedAt) < o.probeRefresh
	if fresh {
		verdict := o.available
		o.mu.Unlock()
		return verdict
	}
	o.mu.Unlock()

	verdict := o.client.Healthy(ctx)

	o.mu.Lock()
	o.available = verdict
	o.checkedAt = o.now()
	o.mu.Unlock()
	if !verdict {
		logger.Warningf("proof service unavailable; fallback tier active for up to %s", o.probeRefresh)
	}
	return verdict
}

// Generate returns a real-tier bundle when the prover cooperates and degrades
// to the fallback tier on any failure. It errors only when the fallback
// itself cannot be constructed, which is purely local computation.
func (o *Orchestrator) Generate(ctx context.Context, inputs domain.ProofInputs) (domain.ProofBundle, error) {
	if err := validateInputs(inputs); err != nil {
		return domain.ProofBundle{}, err
	}
	if o.Available(ctx) {
		bundle, err := o.client.Generate(ctx, inputs)
		if err == nil {
			return bundle, nil
		}
		logger.Warningf("proof generation degraded to fallback: %v", err)
	}
	return FallbackBundle(inputs)
}

// Verify checks a bundle against the prover. On transport failure it applies
// a structural fallback check only when explicitly allowed; the structural
// check proves nothing cryptographic and defaults to off.
func (o *Orchestrator) Verify(ctx context.Context, bundle domain.ProofBundle, public domain.PublicInputs) (bool, error) {
	if o.client != nil {
		valid, err := o.client.Verify(ctx, bundle, public)
		if err == nil {
			return valid, nil
		}
		logger.Warningf("proof verification fell back: %v", err)
	}
	if !o.allowInsecureFallback {
		return false, nil
	}
	return structurallyValid(bundle, public), nil
}

func structurallyValid(bundle domain.ProofBundle, public domain.PublicInputs) bool {
	if !strings.HasPrefix(bundle.ProofToken, FallbackTokenPrefix) {
		return false
	}
	return public.SubjectHash != 0 || public.ResponseCommitment != 0
}

func validateInputs(inputs domain.ProofInputs) error {
	if inputs.Public.SubjectHash == 0 {
		return fmt.Errorf("%w: subject hash is required", domain.ErrInvalidInput)
	}
	if len(inputs.Private.EncryptedResponses) == 0 {
		return fmt.Errorf("%w: responses are required", domain.ErrInvalidInput)
	}
	return nil
}
