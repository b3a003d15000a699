package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/sfss/internal/expiry"
	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/storage"
	"github.com/templui/sfss/internal/validation"
)

// Notifier delivers share related emails. Failures are logged, never surfaced to the caller.
type Notifier interface {
	SendShareInvitation(ctx context.Context, share *model.ShareRecord) error
	SendFirstAccessNotice(ctx context.Context, share *model.ShareRecord, accessedBy string) error
}

type ShareOptions struct {
	MaxFileSize     int64
	DefaultFolder   string
	MaxDuration     int // minutes
	UploadURLExpiry time.Duration
}

type ShareService struct {
	repo        repository.ShareRepository
	storage     storage.Storage
	notifier    Notifier
	constraints validation.FileConstraints
	opts        ShareOptions
	now         func() time.Time
	log         *slog.Logger
}

func NewShareService(repo repository.ShareRepository, storage storage.Storage, notifier Notifier, opts ShareOptions) *ShareService {
	return &ShareService{
		repo:        repo,
		storage:     storage,
		notifier:    notifier,
		constraints: validation.DefaultConstraints(opts.MaxFileSize),
		opts:        opts,
		now:         time.Now,
		log:         logger.Component("share"),
	}
}

type CreateShareInput struct {
	OwnerID         string
	OwnerEmail      string
	FileName        string
	FileType        string
	FileSize        int64
	Folder          string
	DurationMinutes int
	AccessCode      *int64   // nil means no code required
	Recipients      []string // empty means any authenticated requester
}

// UploadTicket is returned when an upload is initiated. The client PUTs the file to UploadURL
// and then confirms with Key.
type UploadTicket struct {
	Share     *model.ShareRecord `json:"share"`
	UploadURL string             `json:"uploadUrl"`
	Key       string             `json:"key"`
}

// Create validates the input and persists a pending share
func (s *ShareService) Create(ctx context.Context, in CreateShareInput) (*model.ShareRecord, error) {
	err := expiry.ValidateDuration(in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxDuration > 0 && in.DurationMinutes > s.opts.MaxDuration {
		return nil, fmt.Errorf("%w: at most %d minutes", expiry.ErrInvalidDuration, s.opts.MaxDuration)
	}

	err = validation.ValidateUpload(in.FileName, in.FileType, in.FileSize, s.constraints)
	if err != nil {
		return nil, err
	}

	folder := in.Folder
	if folder == "" {
		folder = s.opts.DefaultFolder
	}
	err = validation.ValidateFolder(folder)
	if err != nil {
		return nil, err
	}

	if in.AccessCode != nil {
		err = validation.ValidateAccessCode(*in.AccessCode)
		if err != nil {
			return nil, err
		}
	}

	recipients, err := validation.ValidateRecipients(in.Recipients, validation.MaxRecipients)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC().Truncate(time.Microsecond)
	expiresAt, err := expiry.ComputeExpiry(createdAt, in.DurationMinutes)
	if err != nil {
		return nil, err
	}

	share := &model.ShareRecord{
		ID:                    uuid.New().String(),
		OwnerID:               in.OwnerID,
		OwnerEmail:            validation.NormalizeEmail(in.OwnerEmail),
		Folder:                folder,
		FileName:              strings.TrimSpace(in.FileName),
		FileType:              in.FileType,
		FileSize:              in.FileSize,
		Status:                model.StatusPending,
		AccessCode:            in.AccessCode,
		TargetRecipients:      model.Recipients(recipients),
		ExpiryDurationMinutes: in.DurationMinutes,
		CreatedAt:             createdAt,
		ExpiresAt:             expiresAt,
		UpdatedAt:             createdAt,
	}

	err = s.repo.Create(ctx, share)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.log.Info("share created", "share_id", share.ID, "owner_id", share.OwnerID, "expires_at", share.ExpiresAt)
	return share, nil
}

// InitiateUpload creates a pending share and signs a PUT URL for its reserved key
func (s *ShareService) InitiateUpload(ctx context.Context, in CreateShareInput) (*UploadTicket, error) {
	share, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	key := reservedKey(share)
	uploadURL, err := s.storage.PresignUpload(ctx, key, share.FileType, share.FileSize, s.opts.UploadURLExpiry)
	if err != nil {
		// Nothing can be uploaded for this share, so retire it right away
		_, delErr := s.MarkDeleted(context.WithoutCancel(ctx), share.ID)
		if delErr != nil {
			s.log.Error("failed to retire share after presign failure", "error", delErr, "share_id", share.ID)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return &UploadTicket{Share: share, UploadURL: uploadURL, Key: key}, nil
}

func keyPrefix(share *model.ShareRecord) string {
	return share.Folder + "/" + share.ID + "/"
}

func reservedKey(share *model.ShareRecord) string {
	ext := strings.ToLower(filepath.Ext(share.FileName))
	return keyPrefix(share) + uuid.New().String() + ext
}

func validKeyFor(share *model.ShareRecord, key string) bool {
	rest, ok := strings.CutPrefix(key, keyPrefix(share))
	return ok && rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}

// ConfirmUpload moves a pending share to uploaded and records its storage key.
// Any other current status, uploaded included, is ErrInvalidTransition.
func (s *ShareService) ConfirmUpload(ctx context.Context, id, storageKey string) (*model.ShareRecord, error) {
	share, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if share.Status != model.StatusPending {
		shareTransitions.WithLabelValues(string(model.StatusUploaded), "conflict").Inc()
		return nil, fmt.Errorf("%w: share %s is %s", ErrInvalidTransition, id, share.Status)
	}

	if !validKeyFor(share, storageKey) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorageKey, storageKey)
	}

	updated, err := s.repo.CompareAndSetStatus(ctx, id, []model.Status{model.StatusPending}, model.StatusUploaded, storageKey)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			shareTransitions.WithLabelValues(string(model.StatusUploaded), "conflict").Inc()
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return nil, err
	}

	shareTransitions.WithLabelValues(string(model.StatusUploaded), "ok").Inc()
	s.log.Info("upload confirmed", "share_id", id, "key", storageKey)
	return updated, nil
}

// ConfirmOwnedUpload confirms on behalf of the owner and invites the recipients
func (s *ShareService) ConfirmOwnedUpload(ctx context.Context, ownerID, id, storageKey string) (*model.ShareRecord, error) {
	_, err := s.Owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	share, err := s.ConfirmUpload(ctx, id, storageKey)
	if err != nil {
		return nil, err
	}

	if len(share.TargetRecipients) > 0 {
		err = s.notifier.SendShareInvitation(context.WithoutCancel(ctx), share)
		if err != nil {
			s.log.Warn("failed to send share invitation", "error", err, "share_id", id)
		}
	}

	return share, nil
}

// MarkDeleted moves any non-deleted share to deleted. Deleting a deleted share succeeds.
func (s *ShareService) MarkDeleted(ctx context.Context, id string) (*model.ShareRecord, error) {
	expected := []model.Status{model.StatusPending, model.StatusUploaded}
	share, err := s.repo.CompareAndSetStatus(ctx, id, expected, model.StatusDeleted, "")
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) && share != nil && share.Status == model.StatusDeleted {
			shareTransitions.WithLabelValues(string(model.StatusDeleted), "noop").Inc()
			return share, nil
		}
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return nil, err
	}

	shareTransitions.WithLabelValues(string(model.StatusDeleted), "ok").Inc()
	s.log.Info("share deleted", "share_id", id)
	return share, nil
}

// Retire marks the share deleted and removes its object from storage on a best effort basis
func (s *ShareService) Retire(ctx context.Context, id string) (*model.ShareRecord, error) {
	share, err := s.MarkDeleted(ctx, id)
	if err != nil {
		return nil, err
	}

	if share.StorageKey != "" {
		err = s.storage.Delete(context.WithoutCancel(ctx), share.StorageKey)
		if err != nil {
			s.log.Warn("failed to delete stored object", "error", err, "share_id", id, "key", share.StorageKey)
		}
	}

	return share, nil
}

// Owned returns the share if ownerID owns it
func (s *ShareService) Owned(ctx context.Context, ownerID, id string) (*model.ShareRecord, error) {
	share, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !share.IsOwner(ownerID) {
		return nil, ErrForbidden
	}
	return share, nil
}

func (s *ShareService) ListOwned(ctx context.Context, ownerID string) ([]*model.ShareRecord, error) {
	shares, err := s.repo.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

func (s *ShareService) DeleteOwned(ctx context.Context, ownerID, id string) (*model.ShareRecord, error) {
	_, err := s.Owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.Retire(ctx, id)
}
