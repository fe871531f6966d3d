package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-easyship/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	ClaimStatusProcessing = "processing"
	ClaimStatusRetryReady = "retry_ready"
	ClaimStatusComplete   = "complete"
)

var ErrClaimNotFound = errors.New("sqlstore: webhook claim not found")

// Claim is the stored replay state of one webhook delivery key.
type Claim struct {
	ID         string
	Key        string
	ClaimID    string
	Status     string
	Attempts   int
	TTL        time.Duration
	LeaseUntil time.Time
	RetryAt    *time.Time
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DeliveryClaimStore persists replay claims so duplicate deliveries are
// suppressed across processes sharing one database.
type DeliveryClaimStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookClaimRecord]
	now  func() time.Time
}

func NewDeliveryClaimStore(db *bun.DB) (*DeliveryClaimStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookClaimRecord](db, webhookClaimHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook claim repository wiring: %w", err)
		}
	}
	return &DeliveryClaimStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

// SetClock overrides the store clock. Intended for tests.
func (s *DeliveryClaimStore) SetClock(now func() time.Time) {
	if s != nil && now != nil {
		s.now = now
	}
}

func (s *DeliveryClaimStore) Claim(ctx context.Context, key string, lease time.Duration) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, fmt.Errorf("sqlstore: replay key is required")
	}
	if lease <= 0 {
		lease = core.DefaultReplayTTL
	}
	now := s.clock()
	claimID := uuid.NewString()

	record := &webhookClaimRecord{
		ID:         uuid.NewString(),
		ClaimKey:   key,
		ClaimID:    claimID,
		Status:     ClaimStatusProcessing,
		Attempts:   1,
		TTLSeconds: int64(lease / time.Second),
		LeaseUntil: now.Add(lease),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err == nil {
		return claimID, true, nil
	} else if !isUniqueViolation(err) {
		return "", false, err
	}

	existing, err := s.getRecord(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !reclaimable(existing, now) {
		return "", false, nil
	}

	result, err := s.db.NewUpdate().
		Model((*webhookClaimRecord)(nil)).
		Set("claim_id = ?", claimID).
		Set("status = ?", ClaimStatusProcessing).
		Set("attempts = ?", existing.Attempts+1).
		Set("ttl_seconds = ?", int64(lease/time.Second)).
		Set("lease_until = ?", now.Add(lease)).
		Set("retry_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", existing.ID).
		Where("claim_id = ?", existing.ClaimID).
		Exec(ctx)
	if err != nil {
		return "", false, err
	}
	if affected, err := result.RowsAffected(); err != nil || affected != 1 {
		// another process took the claim between read and update
		return "", false, err
	}
	return claimID, true, nil
}

func (s *DeliveryClaimStore) Complete(ctx context.Context, claimID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	record, err := s.processingByClaimID(ctx, claimID)
	if err != nil || record == nil {
		return err
	}
	now := s.clock()
	_, err = s.db.NewUpdate().
		Model((*webhookClaimRecord)(nil)).
		Set("status = ?", ClaimStatusComplete).
		Set("lease_until = ?", now.Add(time.Duration(record.TTLSeconds)*time.Second)).
		Set("updated_at = ?", now).
		Where("id = ?", record.ID).
		Where("claim_id = ?", record.ClaimID).
		Exec(ctx)
	return err
}

func (s *DeliveryClaimStore) Fail(ctx context.Context, claimID string, cause error, retryAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	record, err := s.processingByClaimID(ctx, claimID)
	if err != nil || record == nil {
		return err
	}
	now := s.clock()
	if retryAt.IsZero() {
		retryAt = now
	}
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	_, err = s.db.NewUpdate().
		Model((*webhookClaimRecord)(nil)).
		Set("status = ?", ClaimStatusRetryReady).
		Set("retry_at = ?", retryAt.UTC()).
		Set("last_error = ?", lastError).
		Set("updated_at = ?", now).
		Where("id = ?", record.ID).
		Where("claim_id = ?", record.ClaimID).
		Exec(ctx)
	return err
}

// Get returns the stored claim for key or ErrClaimNotFound.
func (s *DeliveryClaimStore) Get(ctx context.Context, key string) (Claim, error) {
	if s == nil || s.db == nil {
		return Claim{}, fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	record, err := s.getRecord(ctx, strings.TrimSpace(key))
	if err != nil {
		return Claim{}, err
	}
	return claimToDomain(record), nil
}

// GetByID loads a claim row by its primary key.
func (s *DeliveryClaimStore) GetByID(ctx context.Context, id string) (Claim, error) {
	if s == nil || s.repo == nil {
		return Claim{}, fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Claim{}, err
	}
	return claimToDomain(record), nil
}

// PurgeCompleted removes complete claims whose lease ended before cutoff.
func (s *DeliveryClaimStore) PurgeCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: webhook claim store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*webhookClaimRecord)(nil)).
		Where("status = ?", ClaimStatusComplete).
		Where("lease_until < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *DeliveryClaimStore) getRecord(ctx context.Context, key string) (*webhookClaimRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("claim_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrClaimNotFound, key)
	}
	return records[0], nil
}

func (s *DeliveryClaimStore) processingByClaimID(ctx context.Context, claimID string) (*webhookClaimRecord, error) {
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return nil, fmt.Errorf("sqlstore: claim id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("claim_id", "=", claimID),
		repository.SelectBy("status", "=", ClaimStatusProcessing),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		// superseded or already settled
		return nil, nil
	}
	return records[0], nil
}

func (s *DeliveryClaimStore) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func reclaimable(record *webhookClaimRecord, now time.Time) bool {
	switch record.Status {
	case ClaimStatusComplete, ClaimStatusProcessing:
		return !now.Before(record.LeaseUntil)
	case ClaimStatusRetryReady:
		return record.RetryAt == nil || !now.Before(*record.RetryAt)
	default:
		return true
	}
}

func claimToDomain(record *webhookClaimRecord) Claim {
	if record == nil {
		return Claim{}
	}
	result := Claim{
		ID:         record.ID,
		Key:        record.ClaimKey,
		ClaimID:    record.ClaimID,
		Status:     record.Status,
		Attempts:   record.Attempts,
		TTL:        time.Duration(record.TTLSeconds) * time.Second,
		LeaseUntil: record.LeaseUntil.UTC(),
		LastError:  record.LastError,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.RetryAt != nil {
		value := record.RetryAt.UTC()
		result.RetryAt = &value
	}
	return result
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.IdempotencyClaimStore = (*DeliveryClaimStore)(nil)
