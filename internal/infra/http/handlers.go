package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scoreoracle/internal/domain"
	"scoreoracle/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type submitSurveyRequest struct {
	SubjectID string         `json:"subject_id"`
	Responses []int          `json:"raw_responses"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type verifyProofRequest struct {
	Proof        domain.ProofBundle  `json:"proof_bundle"`
	PublicInputs domain.PublicInputs `json:"public_inputs"`
}

type verifyProofResponse struct {
	IsValid bool `json:"is_valid"`
}

type oracleKeyResponse struct {
	PublicKey string `json:"public_key"`
	PolicyID  string `json:"policy_id"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSubmitSurvey(c *gin.Context) {
	if !s.enforceRateLimit(c, "surveys:submit") {
		return
	}
	var req submitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	result, err := s.submitUC.Execute(c.Request.Context(), usecase.SubmitSurveyRequest{
		SubjectID: req.SubjectID,
		Responses: req.Responses,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLookupScore(c *gin.Context) {
	if !s.enforceRateLimit(c, "scores:read") {
		return
	}
	record, err := s.lookupUC.Execute(c.Request.Context(), c.Param("subject"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleVerifyProof(c *gin.Context) {
	if !s.enforceRateLimit(c, "proofs:verify") {
		return
	}
	var req verifyProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	valid, err := s.verifyUC.Execute(c.Request.Context(), req.Proof, req.PublicInputs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyProofResponse{IsValid: valid})
}

func (s *Server) handleOracleKey(c *gin.Context) {
	key, err := s.oracleKeyHex()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, oracleKeyResponse{
		PublicKey: key,
		PolicyID:  s.cfg.OraclePolicyID,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, domain.ErrPolicyDenied):
		writeErrorCode(c, http.StatusForbidden, "POLICY_DENIED", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "no record for subject")
	case errors.Is(err, domain.ErrModelArtifacts), errors.Is(err, domain.ErrKeyCorrupted):
		writeErrorCode(c, http.StatusInternalServerError, "CONFIGURATION", err.Error())
	case errors.Is(err, domain.ErrSigningFailed):
		writeErrorCode(c, http.StatusInternalServerError, "SIGNING_FAILED", err.Error())
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}
