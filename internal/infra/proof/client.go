package proof

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scoreoracle/internal/domain"
)

const CircuitName = "ComputePrivateScore"

// transportMargin pads the HTTP deadline past the proving budget advertised
// in the request body, so a proof finishing at the budget edge is not cut
// off in flight.
const transportMargin = 5 * time.Second

// Client talks to the external proof-generation service. Every call carries
// its own timeout; the caller never blocks indefinitely on the prover.
type Client struct {
	baseURL         string
	generateTimeout time.Duration
	verifyTimeout   time.Duration
	httpDo          func(*http.Request) (*http.Response, error)
}

func NewClient(baseURL string, generateTimeout, verifyTimeout time.Duration, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: proof server url is required", domain.ErrInvalidInput)
	}
	if generateTimeout <= 0 {
		generateTimeout = 30 * time.Second
	}
	if verifyTimeout <= 0 {
		verifyTimeout = 10 * time.Second
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		generateTimeout: generateTimeout,
		verifyTimeout:   verifyTimeout,
		httpDo:          doer,
	}, nil
}

type generateRequest struct {
	CircuitName string             `json:"circuit_name"`
	Inputs      domain.ProofInputs `json:"inputs"`
	TimeoutSecs int                `json:"timeout_s"`
}

type generateResponse struct {
	ProofToken      string               `json:"proof_token"`
	PublicInputs    *domain.PublicInputs `json:"public_inputs"`
	VerificationKey string               `json:"verification_key"`
	GenerationTime  float64              `json:"generation_time"`
	CircuitSize     string               `json:"circuit_size"`
}

type verifyRequest struct {
	Proof           string              `json:"proof"`
	PublicInputs    domain.PublicInputs `json:"public_inputs"`
	VerificationKey string              `json:"verification_key"`
}

type verifyResponse struct {
	IsValid bool `json:"is_valid"`
}

func (c *Client) Generate(ctx context.Context, inputs domain.ProofInputs) (domain.ProofBundle, error) {
	started := time.Now()
	req := generateRequest{
		CircuitName: CircuitName,
		Inputs:      inputs,
		TimeoutSecs: int(c.generateTimeout / time.Second),
	}
	var resp generateResponse
	if err := c.post(ctx, "/generate_proof", c.generateTimeout+transportMargin, req, &resp); err != nil {
		return domain.ProofBundle{}, err
	}
	if resp.ProofToken == "" || resp.VerificationKey == "" {
		return domain.ProofBundle{}, fmt.Errorf("%w: malformed prover response", domain.ErrProofUnavailable)
	}
	public := inputs.Public
	if resp.PublicInputs != nil {
		public = *resp.PublicInputs
	}
	generationTime := resp.GenerationTime
	if generationTime == 0 {
		generationTime = time.Since(started).Seconds()
	}
	circuitSize := resp.CircuitSize
	if circuitSize == "" {
		circuitSize = defaultCircuitSize
	}
	return domain.ProofBundle{
		ProofToken:      resp.ProofToken,
		PublicInputs:    public,
		VerificationKey: resp.VerificationKey,
		GenerationTime:  generationTime,
		CircuitSize:     circuitSize,
		Timestamp:       time.Now().Unix(),
		Tier:            domain.ProofTierReal,
	}, nil
}

func (c *Client) Verify(ctx context.Context, bundle domain.ProofBundle, public domain.PublicInputs) (bool, error) {
	req := verifyRequest{
		Proof:           bundle.ProofToken,
		PublicInputs:    public,
		VerificationKey: bundle.VerificationKey,
	}
	var resp verifyResponse
	if err := c.post(ctx, "/verify_proof", c.verifyTimeout, req, &resp); err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

// Healthy reports whether the prover answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpDo(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode prover request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProofUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProofUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProofUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: prover returned status %d", domain.ErrProofUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: malformed prover response: %v", domain.ErrProofUnavailable, err)
	}
	return nil
}
