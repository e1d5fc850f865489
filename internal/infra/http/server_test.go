package http

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"scoreoracle/internal/config"
	"scoreoracle/internal/infra/ledger"
	"scoreoracle/internal/infra/oracle"
	"scoreoracle/internal/infra/proof"
	"scoreoracle/internal/infra/ratelimit"
	"scoreoracle/internal/infra/scoring"
	"scoreoracle/internal/usecase"
)

type testKeys struct {
	priv ed25519.PrivateKey
}

func (k *testKeys) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, payload), nil
}

func (k *testKeys) PublicKey() (ed25519.PublicKey, error) {
	return k.priv.Public().(ed25519.PublicKey), nil
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	model := &scoring.Model{
		FeatureNames: []string{"tx_count", "avg_tx_size_ada", "days_staked", "tx_freq_daily"},
		Mean:         []float64{260, 55, 212, 0.25},
		Scale:        []float64{144, 2.9, 105, 0.14},
		Weights:      []float64{3.1, -0.8, 2.2, 0.5},
		Bias:         55.0,
		ModelVersion: "v1.0",
	}
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	keys := &testKeys{priv: priv}
	signer := oracle.NewSigner(cfg.OraclePolicyID, keys)
	engine := scoring.NewEngine(model)
	orchestrator := proof.NewOrchestrator(proof.OrchestratorConfig{})
	store := ledger.NewFileStore(t.TempDir())

	submit := &usecase.SubmitSurvey{
		Scoring:       engine,
		Signer:        signer,
		Prover:        orchestrator,
		Ledger:        store,
		Network:       "testnet",
		QuestionCount: cfg.QuestionCount,
	}
	limiter := ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})

	return NewServer(cfg, ServerDeps{
		Submit:       submit,
		Lookup:       &usecase.LookupScore{Ledger: store},
		Verify:       &usecase.VerifyProof{Prover: orchestrator},
		OracleKeyHex: signer.PublicKeyHex,
		RateLimiter:  limiter,
	})
}

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:       ":0",
		OraclePolicyID: config.DefaultOraclePolicyID,
		QuestionCount:  20,
	}
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func submissionBody(subject string, responses []int) map[string]any {
	return map[string]any{"subject_id": subject, "raw_responses": responses}
}

func fullSurvey() []int {
	out := make([]int, 20)
	for i := range out {
		out[i] = 3
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSubmitThenLookup(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doJSON(t, s, http.MethodPost, "/v1/surveys", submissionBody("addr_test1abc", fullSurvey()))
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}
	var result usecase.SubmitSurveyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TxHash == "" || result.Attestation.Signature == "" {
		t.Fatalf("incomplete result: %+v", result)
	}

	w = doJSON(t, s, http.MethodGet, "/v1/scores/addr_test1abc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup status = %d, body = %s", w.Code, w.Body.String())
	}
	var record struct {
		Subject string  `json:"subject"`
		Score   float64 `json:"score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Subject != "addr_test1abc" || record.Score != result.Score {
		t.Fatalf("record disagrees with submission: %+v vs %+v", record, result)
	}
}

func TestSubmitRejectsBadSurvey(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doJSON(t, s, http.MethodPost, "/v1/surveys", submissionBody("addr_test1abc", []int{3, 3}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Code != "INVALID_INPUT" {
		t.Fatalf("code = %s", resp.Code)
	}
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/v1/surveys", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLookupUnknownSubject(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := doJSON(t, s, http.MethodGet, "/v1/scores/addr_test1missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOracleKeyEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := doJSON(t, s, http.MethodGet, "/v1/oracle/key", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp oracleKeyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.PublicKey) != 64 {
		t.Fatalf("public key is not 32 hex bytes: %q", resp.PublicKey)
	}
	if resp.PolicyID != config.DefaultOraclePolicyID {
		t.Fatalf("policy id = %s", resp.PolicyID)
	}
}

func TestVerifyProofEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := doJSON(t, s, http.MethodPost, "/v1/surveys", submissionBody("addr_test1abc", fullSurvey()))
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d", w.Code)
	}
	var result usecase.SubmitSurveyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	w = doJSON(t, s, http.MethodPost, "/v1/proofs/verify", map[string]any{
		"proof_bundle":  result.Proof,
		"public_inputs": result.Proof.PublicInputs,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp verifyProofResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// No prover and no insecure override: fallback bundles report invalid.
	if resp.IsValid {
		t.Fatalf("fallback bundle must not verify by default")
	}
}

func TestRateLimitEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindowSeconds = 60
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		w := doJSON(t, s, http.MethodGet, "/v1/scores/addr_test1abc", nil)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rejected before the limit", i+1)
		}
	}
	w := doJSON(t, s, http.MethodGet, "/v1/scores/addr_test1abc", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("RateLimit-Limit"); got != "2" {
		t.Errorf("RateLimit-Limit = %q", got)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Errorf("missing Retry-After header")
	}
}

func TestRateLimitKeysPerEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindowSeconds = 60
	s := newTestServer(t, cfg)

	if w := doJSON(t, s, http.MethodGet, "/v1/scores/a", nil); w.Code == http.StatusTooManyRequests {
		t.Fatalf("first lookup rejected")
	}
	if w := doJSON(t, s, http.MethodPost, "/v1/surveys", submissionBody("addr_test1abc", fullSurvey())); w.Code == http.StatusTooManyRequests {
		t.Fatalf("submit shares a bucket with lookup")
	}
	if w := doJSON(t, s, http.MethodGet, "/v1/scores/a", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second lookup not limited: %d", w.Code)
	}
}
