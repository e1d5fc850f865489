package usecase

import (
	"context"
	"fmt"
	"time"

	"scoreoracle/internal/domain"
)

// LookupScore resolves a subject identifier to its ledger record, consulting
// the cache first when one is configured.
type LookupScore struct {
	Ledger   domain.LedgerRepository
	Cache    RecordCache // optional
	CacheTTL time.Duration
}

func (uc *LookupScore) Execute(ctx context.Context, subject string) (*domain.TransactionRecord, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if uc.Cache != nil {
		if record, ok, err := uc.Cache.Get(ctx, subject); err == nil && ok {
			return record, nil
		}
	}
	record, err := uc.Ledger.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if uc.Cache != nil {
		if err := uc.Cache.Put(ctx, subject, *record, uc.CacheTTL); err != nil {
			logger.Warningf("record cache put for %s failed: %v", subject, err)
		}
	}
	return record, nil
}
