package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"scoreoracle/internal/domain"
)

// TransactionModel is the Postgres shape of a ledger record. The tx hash is
// the primary key; Append upserts on it, keeping the duplicate-hash behavior
// identical to the file backend's overwrite.
type TransactionModel struct {
	TxHash       string    `gorm:"primaryKey"`
	ID           string    `gorm:"type:uuid;not null"`
	Subject      string    `gorm:"index;not null"`
	Score        float64   `gorm:"not null"`
	Timestamp    int64     `gorm:"index;not null"`
	RawResponses []byte    `gorm:"type:jsonb"`
	ProofJSON    []byte    `gorm:"type:jsonb"`
	Network      string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (TransactionModel) TableName() string { return "transactions" }

type DBStore struct {
	db *gorm.DB
}

func NewDBStore(dsn string) (*DBStore, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := gdb.AutoMigrate(&TransactionModel{}); err != nil {
		return nil, fmt.Errorf("migrate transactions: %w", err)
	}
	return &DBStore{db: gdb}, nil
}

func (s *DBStore) Append(ctx context.Context, record domain.TransactionRecord) error {
	if record.TxHash == "" {
		return fmt.Errorf("%w: transaction hash is required", domain.ErrInvalidInput)
	}
	model, err := modelFromRecord(record)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("persist transaction record: %w", err)
	}
	return nil
}

// FindBySubject resolves multiple records for a subject to the most recent
// one; the subject index makes the lookup cheap.
func (s *DBStore) FindBySubject(ctx context.Context, subject string) (*domain.TransactionRecord, error) {
	var model TransactionModel
	err := s.db.WithContext(ctx).
		Where("subject = ?", subject).
		Order("timestamp DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return recordFromModel(model)
}

func modelFromRecord(record domain.TransactionRecord) (TransactionModel, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	responses, err := json.Marshal(record.RawResponses)
	if err != nil {
		return TransactionModel{}, fmt.Errorf("encode responses: %w", err)
	}
	var proofJSON []byte
	if record.Proof != nil {
		proofJSON, err = json.Marshal(record.Proof)
		if err != nil {
			return TransactionModel{}, fmt.Errorf("encode proof bundle: %w", err)
		}
	}
	return TransactionModel{
		TxHash:       record.TxHash,
		ID:           id,
		Subject:      record.Subject,
		Score:        record.Score,
		Timestamp:    record.Timestamp,
		RawResponses: responses,
		ProofJSON:    proofJSON,
		Network:      record.Network,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func recordFromModel(model TransactionModel) (*domain.TransactionRecord, error) {
	record := domain.TransactionRecord{
		ID:        model.ID,
		Subject:   model.Subject,
		Score:     model.Score,
		TxHash:    model.TxHash,
		Timestamp: model.Timestamp,
		Network:   model.Network,
	}
	if len(model.RawResponses) > 0 {
		if err := json.Unmarshal(model.RawResponses, &record.RawResponses); err != nil {
			return nil, fmt.Errorf("decode responses: %w", err)
		}
	}
	if len(model.ProofJSON) > 0 {
		var bundle domain.ProofBundle
		if err := json.Unmarshal(model.ProofJSON, &bundle); err != nil {
			return nil, fmt.Errorf("decode proof bundle: %w", err)
		}
		record.Proof = &bundle
	}
	return &record, nil
}
