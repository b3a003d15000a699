package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/templui/sfss/internal/db"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/storage"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type presignCall struct {
	key string
	op  storage.Operation
	ttl time.Duration
}

type fakeStorage struct {
	mu        sync.Mutex
	failSign  bool
	presigned []presignCall
	deleted   []string
}

func (f *fakeStorage) PresignURL(_ context.Context, key string, op storage.Operation, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSign {
		return "", errors.New("signer offline")
	}
	f.presigned = append(f.presigned, presignCall{key: key, op: op, ttl: ttl})
	return "https://storage.test/" + key + "?op=" + string(op), nil
}

func (f *fakeStorage) PresignUpload(ctx context.Context, key, _ string, _ int64, ttl time.Duration) (string, error) {
	return f.PresignURL(ctx, key, storage.OpPut, ttl)
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) lastPresign() presignCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presigned[len(f.presigned)-1]
}

type fakeNotifier struct {
	mu          sync.Mutex
	invitations []string
	firstAccess []string
}

func (n *fakeNotifier) SendShareInvitation(_ context.Context, share *model.ShareRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, share.ID)
	return nil
}

func (n *fakeNotifier) SendFirstAccessNotice(_ context.Context, _ *model.ShareRecord, accessedBy string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.firstAccess = append(n.firstAccess, accessedBy)
	return nil
}

func (n *fakeNotifier) firstAccessCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.firstAccess)
}

type fixture struct {
	repo     repository.ShareRepository
	store    *fakeStorage
	notifier *fakeNotifier
	clock    *clock
	shares   *ShareService
	access   *AccessService
	sweep    *SweepService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "sfss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	f := &fixture{
		repo:     repository.NewShareRepository(database),
		store:    &fakeStorage{},
		notifier: &fakeNotifier{},
		clock:    &clock{now: t0},
	}

	f.shares = NewShareService(f.repo, f.store, f.notifier, ShareOptions{
		MaxFileSize:     10 << 20,
		DefaultFolder:   "uploads",
		MaxDuration:     43200,
		UploadURLExpiry: 15 * time.Minute,
	})
	f.shares.now = f.clock.Now

	f.access = NewAccessService(f.repo, f.store, f.notifier, time.Hour)
	f.access.now = f.clock.Now

	f.sweep = NewSweepService(f.repo, f.shares)
	f.sweep.now = f.clock.Now

	return f
}

func codePtr(code int64) *int64 {
	return &code
}

func shareInput(durationMinutes int, code *int64, recipients ...string) CreateShareInput {
	return CreateShareInput{
		OwnerID:         "owner-1",
		OwnerEmail:      "owner@x.com",
		FileName:        "report.pdf",
		FileType:        "application/pdf",
		FileSize:        2048,
		DurationMinutes: durationMinutes,
		AccessCode:      code,
		Recipients:      recipients,
	}
}

// uploaded initiates and confirms a share at the current fixture time
func (f *fixture) uploaded(t *testing.T, in CreateShareInput) *model.ShareRecord {
	t.Helper()
	ctx := context.Background()

	ticket, err := f.shares.InitiateUpload(ctx, in)
	require.NoError(t, err)

	share, err := f.shares.ConfirmOwnedUpload(ctx, in.OwnerID, ticket.Share.ID, ticket.Key)
	require.NoError(t, err)
	return share
}
