package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"scoreoracle/internal/domain"
	"scoreoracle/internal/infra/proof"
)

var logger = logging.MustGetLogger("pipeline")

// SubmitSurvey runs the attestation pipeline for one submission: validate,
// score, sign, prove, persist. Scoring and signing failures abort the
// request; proof generation degrades to the fallback tier inside the
// orchestrator and only a failed ledger write after that point is fatal.
type SubmitSurvey struct {
	Scoring ScoringEngine
	Signer  AttestationSigner
	Prover  ProofService
	Ledger  domain.LedgerRepository
	Policy  PolicyGate  // optional
	Cache   RecordCache // optional

	Network       string
	QuestionCount int
	Now           func() time.Time
}

type SubmitSurveyRequest struct {
	SubjectID string
	Responses []int
	Metadata  map[string]any
}

type SubmitSurveyResult struct {
	Subject     string             `json:"subject"`
	Score       float64            `json:"score"`
	TxHash      string             `json:"tx_hash"`
	Attestation domain.Attestation `json:"attestation"`
	Proof       domain.ProofBundle `json:"proof"`
	Network     string             `json:"network"`
	Timestamp   int64              `json:"timestamp"`
}

func (uc *SubmitSurvey) Execute(ctx context.Context, req SubmitSurveyRequest) (SubmitSurveyResult, error) {
	if err := uc.validate(ctx, req); err != nil {
		return SubmitSurveyResult{}, err
	}
	now := uc.now()

	features := uc.Scoring.Derive(req.SubjectID)
	score, err := uc.Scoring.Score(features)
	if err != nil {
		return SubmitSurveyResult{}, fmt.Errorf("score subject: %w", err)
	}

	pubKey, err := uc.Signer.PublicKeyHex()
	if err != nil {
		return SubmitSurveyResult{}, fmt.Errorf("load oracle key: %w", err)
	}
	datum := domain.ScoreDatum{
		Subject:         req.SubjectID,
		Score:           score,
		Timestamp:       now.Unix(),
		ModelVersion:    uc.Scoring.Version(),
		Features:        features,
		OraclePublicKey: pubKey,
	}

	txHash := newTxHash(req.SubjectID, now)
	attestation, err := uc.Signer.Sign(datum, txHash)
	if err != nil {
		return SubmitSurveyResult{}, err
	}

	inputs, err := proof.BuildInputs(req.SubjectID, req.Responses, features.Values(), uc.Scoring.Weights(), uc.Scoring.Bias(), score)
	if err != nil {
		return SubmitSurveyResult{}, err
	}
	bundle, err := uc.Prover.Generate(ctx, inputs)
	if err != nil {
		// Fallback construction is local computation; failing here means
		// the request cannot produce a structurally complete result.
		return SubmitSurveyResult{}, fmt.Errorf("construct proof bundle: %w", err)
	}
	logger.Debugf("proof bundle for %s produced by %s tier", req.SubjectID, bundle.Tier)

	record := domain.TransactionRecord{
		ID:           uuid.NewString(),
		Subject:      req.SubjectID,
		Score:        score,
		TxHash:       txHash,
		Timestamp:    now.Unix(),
		RawResponses: req.Responses,
		Proof:        &bundle,
		Network:      uc.Network,
	}
	if err := uc.Ledger.Append(ctx, record); err != nil {
		// An unpersisted attestation is a lost audit trail.
		return SubmitSurveyResult{}, fmt.Errorf("append ledger record: %w", err)
	}
	if uc.Cache != nil {
		if err := uc.Cache.Invalidate(ctx, req.SubjectID); err != nil {
			logger.Warningf("record cache invalidation for %s failed: %v", req.SubjectID, err)
		}
	}

	return SubmitSurveyResult{
		Subject:     req.SubjectID,
		Score:       score,
		TxHash:      txHash,
		Attestation: attestation,
		Proof:       bundle,
		Network:     uc.Network,
		Timestamp:   now.Unix(),
	}, nil
}

func (uc *SubmitSurvey) validate(ctx context.Context, req SubmitSurveyRequest) error {
	if req.SubjectID == "" {
		return fmt.Errorf("%w: subject_id is required", domain.ErrInvalidInput)
	}
	if len(req.Responses) != uc.QuestionCount {
		return fmt.Errorf("%w: survey must contain exactly %d responses, got %d", domain.ErrInvalidInput, uc.QuestionCount, len(req.Responses))
	}
	for i, r := range req.Responses {
		if r < 1 || r > 5 {
			return fmt.Errorf("%w: response %d is %d, must be in 1..5", domain.ErrInvalidInput, i, r)
		}
	}
	if uc.Policy == nil {
		return nil
	}
	eval, err := uc.Policy.Evaluate(ctx, domain.SubmissionPolicyInput{
		Subject:   req.SubjectID,
		Responses: req.Responses,
		Network:   uc.Network,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return fmt.Errorf("evaluate submission policy: %w", err)
	}
	if !eval.Result.Allow {
		code := "denied"
		if len(eval.Result.Deny) > 0 {
			code = eval.Result.Deny[0].Code
		}
		return fmt.Errorf("%w: %s", domain.ErrPolicyDenied, code)
	}
	return nil
}

func (uc *SubmitSurvey) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

// newTxHash derives a fresh transaction hash for the submission. The uuid
// salt keeps two submissions for the same subject in the same nanosecond
// from colliding.
func newTxHash(subject string, now time.Time) string {
	seed := subject + strconv.FormatInt(now.UnixNano(), 10) + uuid.NewString()
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
