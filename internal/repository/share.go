package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sfss/internal/model"
)

var (
	ErrShareNotFound  = errors.New("share not found")
	ErrStatusConflict = errors.New("share status changed concurrently")
)

// ShareRepository persists share records. Existing records are only ever mutated through
// the two compare-and-set methods, each a single conditional UPDATE.
type ShareRepository interface {
	Create(ctx context.Context, share *model.ShareRecord) error
	ByID(ctx context.Context, id string) (*model.ShareRecord, error)
	ByOwner(ctx context.Context, ownerID string) ([]*model.ShareRecord, error)
	Expired(ctx context.Context, now time.Time, limit int) ([]*model.ShareRecord, error)
	CompareAndSetStatus(ctx context.Context, id string, expected []model.Status, next model.Status, storageKey string) (*model.ShareRecord, error)
	CompareAndSetFirstAccess(ctx context.Context, id string, at time.Time) (*model.ShareRecord, bool, error)
}

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *model.ShareRecord) error {
	if share.UpdatedAt.IsZero() {
		share.UpdatedAt = share.CreatedAt
	}

	query := `
		INSERT INTO shares (id, owner_id, owner_email, storage_key, folder, file_name, file_type, file_size, status,
			access_code, target_recipients, expiry_duration_minutes, created_at, expires_at, first_accessed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		share.ID,
		share.OwnerID,
		share.OwnerEmail,
		share.StorageKey,
		share.Folder,
		share.FileName,
		share.FileType,
		share.FileSize,
		string(share.Status),
		share.AccessCode,
		share.TargetRecipients,
		share.ExpiryDurationMinutes,
		share.CreatedAt,
		share.ExpiresAt,
		share.FirstAccessedAt,
		share.UpdatedAt,
	)
	return err
}

func (r *shareRepository) ByID(ctx context.Context, id string) (*model.ShareRecord, error) {
	share := &model.ShareRecord{}
	query := `SELECT * FROM shares WHERE id = $1`

	err := r.db.GetContext(ctx, share, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	return share, nil
}

func (r *shareRepository) ByOwner(ctx context.Context, ownerID string) ([]*model.ShareRecord, error) {
	var shares []*model.ShareRecord
	query := `SELECT * FROM shares WHERE owner_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &shares, query, ownerID)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

// Expired returns non-deleted shares whose window closed at or before now, oldest first.
func (r *shareRepository) Expired(ctx context.Context, now time.Time, limit int) ([]*model.ShareRecord, error) {
	var shares []*model.ShareRecord
	query := `
		SELECT * FROM shares
		WHERE status <> $1 AND expires_at <= $2
		ORDER BY expires_at ASC
		LIMIT $3
	`

	err := r.db.SelectContext(ctx, &shares, query, string(model.StatusDeleted), now, limit)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

// CompareAndSetStatus moves a share to next only if its current status is one of expected.
// storageKey is written only when non-empty and no key has been set before.
// When the share exists in another status the current record is returned together with
// ErrStatusConflict so the caller can re-decide without another read.
func (r *shareRepository) CompareAndSetStatus(ctx context.Context, id string, expected []model.Status, next model.Status, storageKey string) (*model.ShareRecord, error) {
	if len(expected) == 0 {
		return nil, fmt.Errorf("compare and set status: no expected status given")
	}

	args := []any{string(next), storageKey, storageKey, time.Now().UTC(), id}
	placeholders := make([]string, len(expected))
	for i, status := range expected {
		args = append(args, string(status))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	// Atomic UPDATE with RETURNING - of two concurrent callers expecting the same status,
	// only one matches the WHERE clause
	query := fmt.Sprintf(`
		UPDATE shares
		SET status = $1,
			storage_key = CASE WHEN $2 = '' OR storage_key <> '' THEN storage_key ELSE $3 END,
			updated_at = $4
		WHERE id = $5
		AND status IN (%s)
		RETURNING *
	`, strings.Join(placeholders, ", "))

	share := &model.ShareRecord{}
	err := r.db.GetContext(ctx, share, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		current, err := r.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return current, fmt.Errorf("%w: share %s is %s", ErrStatusConflict, id, current.Status)
	}
	if err != nil {
		return nil, err
	}

	return share, nil
}

// CompareAndSetFirstAccess stamps first_accessed_at only if it is still NULL and the share is uploaded.
// The bool reports whether this call performed the write. Otherwise the current record is returned.
func (r *shareRepository) CompareAndSetFirstAccess(ctx context.Context, id string, at time.Time) (*model.ShareRecord, bool, error) {
	query := `
		UPDATE shares
		SET first_accessed_at = $1, updated_at = $2
		WHERE id = $3
		AND first_accessed_at IS NULL
		AND status = $4
		RETURNING *
	`

	share := &model.ShareRecord{}
	err := r.db.GetContext(ctx, share, query, at, time.Now().UTC(), id, string(model.StatusUploaded))
	if errors.Is(err, sql.ErrNoRows) {
		current, err := r.ByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return share, true, nil
}
