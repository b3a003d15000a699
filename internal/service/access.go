package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/sfss/internal/expiry"
	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/storage"
	"github.com/templui/sfss/internal/validation"
)

// URLSigner issues time-limited object URLs
type URLSigner interface {
	PresignURL(ctx context.Context, key string, op storage.Operation, ttl time.Duration) (string, error)
}

// AuthorizedDownload is a granted download: a GET URL valid until URLExpiresAt
type AuthorizedDownload struct {
	Share        *model.ShareRecord `json:"share"`
	URL          string             `json:"downloadUrl"`
	URLExpiresAt time.Time          `json:"expiresAt"`
	FirstAccess  bool               `json:"-"`
}

// S3 signs expiry in whole seconds
const minDownloadURLExpiry = time.Second

type AccessService struct {
	repo      repository.ShareRepository
	signer    URLSigner
	notifier  Notifier
	urlExpiry time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func NewAccessService(repo repository.ShareRepository, signer URLSigner, notifier Notifier, urlExpiry time.Duration) *AccessService {
	return &AccessService{
		repo:      repo,
		signer:    signer,
		notifier:  notifier,
		urlExpiry: urlExpiry,
		now:       time.Now,
		log:       logger.Component("access"),
	}
}

// AuthorizeDownload runs the access checks in a fixed order and, if all pass, signs a GET URL.
// The URL never outlives the share's window. Denials are *DeniedError.
func (s *AccessService) AuthorizeDownload(ctx context.Context, id string, requester model.Identity, code *int64) (*AuthorizedDownload, error) {
	now := s.now().UTC()

	share, err := s.repo.ByID(ctx, id)
	if errors.Is(err, repository.ErrShareNotFound) {
		return nil, s.deny(id, requester, DenyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load share: %w", err)
	}

	if share.Status != model.StatusUploaded {
		return nil, s.deny(id, requester, DenyNotReady)
	}

	if expiry.IsExpired(now, share.ExpiresAt) {
		return nil, s.deny(id, requester, DenyExpired)
	}

	if len(share.TargetRecipients) > 0 && !share.TargetRecipients.Contains(validation.NormalizeEmail(requester.Email)) {
		return nil, s.deny(id, requester, DenyNotAuthorizedRecipient)
	}

	if share.AccessCode != nil && (code == nil || *code != *share.AccessCode) {
		return nil, s.deny(id, requester, DenyInvalidCode)
	}

	// Checks passed; finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	share, first, err := s.repo.CompareAndSetFirstAccess(ctx, id, now.Truncate(time.Microsecond))
	if err != nil {
		downloadDecisions.WithLabelValues("storage_error").Inc()
		s.log.Error("failed to record first access", "error", err, "share_id", id)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// Deleted since the read above
	if share.Status != model.StatusUploaded {
		return nil, s.deny(id, requester, DenyNotReady)
	}

	ttl := min(s.urlExpiry, expiry.Remaining(now, share.ExpiresAt))
	ttl = max(ttl, minDownloadURLExpiry)

	url, err := s.signer.PresignURL(ctx, share.StorageKey, storage.OpGet, ttl)
	if err != nil {
		downloadDecisions.WithLabelValues("storage_error").Inc()
		s.log.Error("failed to sign download URL", "error", err, "share_id", id)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if first {
		err = s.notifier.SendFirstAccessNotice(ctx, share, requester.Email)
		if err != nil {
			s.log.Warn("failed to send first access notice", "error", err, "share_id", id)
		}
	}

	downloadDecisions.WithLabelValues("granted").Inc()
	s.log.Info("download authorized", "share_id", id, "user_id", requester.UserID, "first_access", first)

	return &AuthorizedDownload{
		Share:        share,
		URL:          url,
		URLExpiresAt: now.Add(ttl),
		FirstAccess:  first,
	}, nil
}

func (s *AccessService) deny(id string, requester model.Identity, reason DenyReason) error {
	downloadDecisions.WithLabelValues(string(reason)).Inc()
	s.log.Info("download denied", "share_id", id, "user_id", requester.UserID, "reason", reason)
	return &DeniedError{Reason: reason, ShareID: id}
}
