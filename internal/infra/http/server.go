package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"scoreoracle/internal/config"
	"scoreoracle/internal/domain"
	"scoreoracle/internal/usecase"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine

	submitUC *usecase.SubmitSurvey
	lookupUC *usecase.LookupScore
	verifyUC *usecase.VerifyProof

	oracleKeyHex func() (string, error)

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type ServerDeps struct {
	Submit       *usecase.SubmitSurvey
	Lookup       *usecase.LookupScore
	Verify       *usecase.VerifyProof
	OracleKeyHex func() (string, error)
	RateLimiter  domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		submitUC:          deps.Submit,
		lookupUC:          deps.Lookup,
		verifyUC:          deps.Verify,
		oracleKeyHex:      deps.OracleKeyHex,
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   cfg.RateLimitWindow(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealth)

	v1 := s.r.Group("/v1")
	{
		v1.POST("/surveys", s.handleSubmitSurvey)
		v1.GET("/scores/:subject", s.handleLookupScore)
		v1.POST("/proofs/verify", s.handleVerifyProof)
		v1.GET("/oracle/key", s.handleOracleKey)
	}
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Engine exposes the router for httptest-driven tests.
func (s *Server) Engine() *gin.Engine {
	return s.r
}
