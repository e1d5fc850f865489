package domain

import "context"

// TransactionRecord is one append-only ledger entry, keyed by TxHash.
// Records are never mutated after the write completes.
type TransactionRecord struct {
	ID           string       `json:"id"`
	Subject      string       `json:"subject"`
	Score        float64      `json:"score"`
	TxHash       string       `json:"tx_hash"`
	Timestamp    int64        `json:"timestamp"`
	RawResponses []int        `json:"raw_responses"`
	Proof        *ProofBundle `json:"proof,omitempty"`
	Network      string       `json:"network"`
}

// LedgerRepository is append-only: no update or delete. FindBySubject is a
// best-effort scan and returns ErrNotFound when no record matches.
type LedgerRepository interface {
	Append(ctx context.Context, record TransactionRecord) error
	FindBySubject(ctx context.Context, subject string) (*TransactionRecord, error)
}
