package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/op/go-logging"

	"scoreoracle/internal/domain"
)

var logger = logging.MustGetLogger("ledger")

// FileStore keeps one JSON document per transaction hash under dir. A record
// is written to a temp file and renamed into place, so readers never observe
// a partial record. Appending an existing hash overwrites the document.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Append(ctx context.Context, record domain.TransactionRecord) error {
	if record.TxHash == "" {
		return fmt.Errorf("%w: transaction hash is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transaction record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	final := filepath.Join(s.dir, record.TxHash+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write transaction record: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit transaction record: %w", err)
	}
	return nil
}

// FindBySubject scans every persisted record and returns the first whose
// subject matches. Unreadable documents are skipped with a warning; a record
// appended mid-scan may be missed, which the lookup contract accepts.
func (s *FileStore) FindBySubject(ctx context.Context, subject string) (*domain.TransactionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan ledger dir: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warningf("skipping unreadable ledger record %s: %v", entry.Name(), err)
			continue
		}
		var record domain.TransactionRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			logger.Warningf("skipping malformed ledger record %s: %v", entry.Name(), err)
			continue
		}
		if record.Subject == subject {
			return &record, nil
		}
	}
	return nil, domain.ErrNotFound
}
