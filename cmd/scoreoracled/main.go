package main

import (
	"context"
	"log"
	"net/http"

	"scoreoracle/internal/config"
	"scoreoracle/internal/domain"
	"scoreoracle/internal/infra/cachemem"
	httpinfra "scoreoracle/internal/infra/http"
	"scoreoracle/internal/infra/keys/soft"
	"scoreoracle/internal/infra/ledger"
	"scoreoracle/internal/infra/oracle"
	"scoreoracle/internal/infra/policyopa"
	"scoreoracle/internal/infra/proof"
	"scoreoracle/internal/infra/ratelimit"
	"scoreoracle/internal/infra/scoring"
	"scoreoracle/internal/logsetup"
	"scoreoracle/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	logsetup.Configure(cfg.LogLevel)

	model, err := scoring.LoadModel(cfg.ModelDir)
	if err != nil {
		log.Fatalf("failed to load model artifacts: %v", err)
	}
	engine := scoring.NewEngine(model)

	keys := soft.NewManager(cfg.KeyDir)
	signer := oracle.NewSigner(cfg.OraclePolicyID, keys)

	var proverClient *proof.Client
	if cfg.ProofServerURL != "" {
		proverClient, err = proof.NewClient(cfg.ProofServerURL, cfg.ProofGenerateTimeout(), cfg.ProofVerifyTimeout(), &http.Client{})
		if err != nil {
			log.Fatalf("failed to init proof client: %v", err)
		}
	}
	prover := proof.NewOrchestrator(proof.OrchestratorConfig{
		Client:                proverClient,
		AllowInsecureFallback: cfg.ProofAllowInsecureFallback,
		ProbeRefresh:          cfg.ProofProbeRefresh(),
	})

	var store domain.LedgerRepository
	if cfg.PostgresDSN != "" {
		store, err = ledger.NewDBStore(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to init ledger store: %v", err)
		}
	} else {
		store = ledger.NewFileStore(cfg.LedgerDir)
	}

	var policy usecase.PolicyGate
	if cfg.PolicyBundlePath != "" {
		gate, err := policyopa.NewEngineFromBundlePath(context.Background(), cfg.PolicyBundlePath, "submission")
		if err != nil {
			log.Fatalf("failed to load submission policy: %v", err)
		}
		policy = gate
	}

	var limiter domain.RateLimiter
	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				log.Fatalf("failed to init redis rate limiter: %v", err)
			}
		} else {
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{MaxKeys: cfg.RateLimitMaxKeys})
		}
	}

	cache := cachemem.New()

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Submit: &usecase.SubmitSurvey{
			Scoring:       engine,
			Signer:        signer,
			Prover:        prover,
			Ledger:        store,
			Policy:        policy,
			Cache:         cache,
			Network:       cfg.Network,
			QuestionCount: cfg.QuestionCount,
		},
		Lookup:       &usecase.LookupScore{Ledger: store, Cache: cache, CacheTTL: cfg.ScoreCacheTTL()},
		Verify:       &usecase.VerifyProof{Prover: prover},
		OracleKeyHex: signer.PublicKeyHex,
		RateLimiter:  limiter,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
