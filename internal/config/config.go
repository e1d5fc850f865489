package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel string
	Network  string

	ModelDir  string
	KeyDir    string
	LedgerDir string

	PostgresDSN string

	OraclePolicyID string
	QuestionCount  int

	ProofServerURL             string
	ProofGenerateTimeoutSecs   int
	ProofVerifyTimeoutSecs     int
	ProofProbeRefreshSecs      int
	ProofAllowInsecureFallback bool

	PolicyBundlePath string

	ScoreCacheTTLSeconds int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultOraclePolicyID is the domain separator baked into every binding
// message unless ORACLE_POLICY_ID overrides it. Verifiers must use the same
// value or signature checks fail.
const DefaultOraclePolicyID = "c965889476530cae6fc1b22b4f3c1571fb5d29c09d99529ae5f3046c"

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                   addr,
		LogLevel:                   envDefault("LOG_LEVEL", "info"),
		Network:                    envDefault("ORACLE_NETWORK", "testnet"),
		ModelDir:                   envDefault("MODEL_DIR", "model"),
		KeyDir:                     envDefault("KEY_DIR", "keys"),
		LedgerDir:                  envDefault("LEDGER_DIR", "ledger"),
		PostgresDSN:                os.Getenv("POSTGRES_DSN"),
		OraclePolicyID:             envDefault("ORACLE_POLICY_ID", DefaultOraclePolicyID),
		QuestionCount:              envIntDefault("QUESTION_COUNT", 20),
		ProofServerURL:             os.Getenv("PROOF_SERVER_URL"),
		ProofGenerateTimeoutSecs:   envIntDefault("PROOF_GENERATE_TIMEOUT_SECONDS", 30),
		ProofVerifyTimeoutSecs:     envIntDefault("PROOF_VERIFY_TIMEOUT_SECONDS", 10),
		ProofProbeRefreshSecs:      envIntDefault("PROOF_PROBE_REFRESH_SECONDS", 60),
		ProofAllowInsecureFallback: envBoolDefault("PROOF_ALLOW_INSECURE_FALLBACK_VERIFY", false),
		PolicyBundlePath:           os.Getenv("SUBMISSION_POLICY_BUNDLE"),
		ScoreCacheTTLSeconds:       envIntDefault("SCORE_CACHE_TTL_SECONDS", 30),
		RateLimitRequests:          envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds:     envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:           envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:                  os.Getenv("REDIS_ADDR"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                    envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) ProofGenerateTimeout() time.Duration {
	return time.Duration(c.ProofGenerateTimeoutSecs) * time.Second
}

func (c Config) ProofVerifyTimeout() time.Duration {
	return time.Duration(c.ProofVerifyTimeoutSecs) * time.Second
}

func (c Config) ProofProbeRefresh() time.Duration {
	return time.Duration(c.ProofProbeRefreshSecs) * time.Second
}

func (c Config) ScoreCacheTTL() time.Duration {
	return time.Duration(c.ScoreCacheTTLSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
