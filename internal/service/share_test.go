package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/sfss/internal/expiry"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/storage"
	"github.com/templui/sfss/internal/validation"
)

func TestCreate(t *testing.T) {
	f := newFixture(t)

	share, err := f.shares.Create(context.Background(), shareInput(60, codePtr(1234), " A@X.com", "a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, share.Status)
	assert.Empty(t, share.StorageKey)
	assert.Equal(t, "uploads", share.Folder)
	assert.Equal(t, model.Recipients{"a@x.com"}, share.TargetRecipients)
	assert.True(t, share.ExpiresAt.Equal(t0.Add(60*time.Minute)))

	stored, err := f.repo.ByID(context.Background(), share.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExpiresAt.Equal(share.ExpiresAt))
	assert.Equal(t, int64(1234), *stored.AccessCode)
}

func TestCreate_InvalidDuration(t *testing.T) {
	f := newFixture(t)

	for _, d := range []int{0, -5, 43201} {
		_, err := f.shares.Create(context.Background(), shareInput(d, nil))
		assert.ErrorIs(t, err, expiry.ErrInvalidDuration, "duration %d", d)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := shareInput(60, nil)
	in.FileType = "application/x-msdownload"
	_, err := f.shares.Create(ctx, in)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = f.shares.Create(ctx, shareInput(60, codePtr(100_000_000)))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = f.shares.Create(ctx, shareInput(60, nil, "not-an-email"))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	in = shareInput(60, nil)
	in.Folder = "../etc"
	_, err = f.shares.Create(ctx, in)
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestInitiateUpload(t *testing.T) {
	f := newFixture(t)

	ticket, err := f.shares.InitiateUpload(context.Background(), shareInput(60, nil))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.Key, "uploads/"+ticket.Share.ID+"/"))
	assert.True(t, strings.HasSuffix(ticket.Key, ".pdf"))
	assert.NotEmpty(t, ticket.UploadURL)

	call := f.store.lastPresign()
	assert.Equal(t, storage.OpPut, call.op)
	assert.Equal(t, ticket.Key, call.key)
	assert.Equal(t, 15*time.Minute, call.ttl)
}

func TestInitiateUpload_SignerFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failSign = true

	_, err := f.shares.InitiateUpload(context.Background(), shareInput(60, nil))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	shares, err := f.shares.ListOwned(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, model.StatusDeleted, shares[0].Status)
}

func TestConfirmOwnedUpload(t *testing.T) {
	f := newFixture(t)

	share := f.uploaded(t, shareInput(60, nil, "a@x.com"))

	assert.Equal(t, model.StatusUploaded, share.Status)
	assert.True(t, strings.HasPrefix(share.StorageKey, "uploads/"+share.ID+"/"))
	assert.Equal(t, []string{share.ID}, f.notifier.invitations)
}

func TestConfirmOwnedUpload_NoRecipientsNoInvitation(t *testing.T) {
	f := newFixture(t)

	f.uploaded(t, shareInput(60, nil))
	assert.Empty(t, f.notifier.invitations)
}

func TestConfirmOwnedUpload_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.shares.InitiateUpload(ctx, shareInput(60, nil))
	require.NoError(t, err)

	_, err = f.shares.ConfirmOwnedUpload(ctx, "someone-else", ticket.Share.ID, ticket.Key)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmUpload_NotPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uploaded := f.uploaded(t, shareInput(60, nil))
	_, err := f.shares.ConfirmUpload(ctx, uploaded.ID, uploaded.StorageKey)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ticket, err := f.shares.InitiateUpload(ctx, shareInput(60, nil))
	require.NoError(t, err)
	_, err = f.shares.MarkDeleted(ctx, ticket.Share.ID)
	require.NoError(t, err)

	_, err = f.shares.ConfirmUpload(ctx, ticket.Share.ID, ticket.Key)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A bad key does not mask the transition error
	_, err = f.shares.ConfirmUpload(ctx, ticket.Share.ID, "elsewhere/file.pdf")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmUpload_InvalidKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.shares.InitiateUpload(ctx, shareInput(60, nil))
	require.NoError(t, err)
	other, err := f.shares.InitiateUpload(ctx, shareInput(60, nil))
	require.NoError(t, err)

	prefix := "uploads/" + ticket.Share.ID + "/"
	for _, key := range []string{"", other.Key, prefix, prefix + "../escape.pdf", prefix + "nested/file.pdf"} {
		_, err = f.shares.ConfirmUpload(ctx, ticket.Share.ID, key)
		assert.ErrorIs(t, err, ErrInvalidStorageKey, "key %q", key)
	}

	share, err := f.repo.ByID(ctx, ticket.Share.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, share.Status)
}

func TestConfirmUpload_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.shares.ConfirmUpload(context.Background(), "missing", "uploads/missing/x.pdf")
	assert.ErrorIs(t, err, repository.ErrShareNotFound)
}

func TestConfirmUpload_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.shares.InitiateUpload(ctx, shareInput(60, nil))
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.shares.ConfirmUpload(ctx, ticket.Share.ID, ticket.Key)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)
}

func TestMarkDeleted_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	share := f.uploaded(t, shareInput(60, nil))

	first, err := f.shares.MarkDeleted(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, first.Status)

	second, err := f.shares.MarkDeleted(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, second.Status)
	assert.Equal(t, first.StorageKey, second.StorageKey)
}

func TestMarkDeleted_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.shares.MarkDeleted(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrShareNotFound)
}

func TestDeleteOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	share := f.uploaded(t, shareInput(60, nil))

	_, err := f.shares.DeleteOwned(ctx, "someone-else", share.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := f.shares.DeleteOwned(ctx, "owner-1", share.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, deleted.Status)
	assert.Equal(t, []string{share.StorageKey}, f.store.deleted)
}

func TestListOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.shares.Create(ctx, shareInput(60, nil))
	require.NoError(t, err)
	f.clock.Set(t0.Add(time.Minute))
	_, err = f.shares.Create(ctx, shareInput(60, nil))
	require.NoError(t, err)

	other := shareInput(60, nil)
	other.OwnerID = "owner-2"
	_, err = f.shares.Create(ctx, other)
	require.NoError(t, err)

	shares, err := f.shares.ListOwned(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.True(t, shares[0].CreatedAt.After(shares[1].CreatedAt))

	got, err := f.shares.Owned(ctx, "owner-1", shares[0].ID)
	require.NoError(t, err)
	assert.Equal(t, shares[0].ID, got.ID)

	_, err = f.shares.Owned(ctx, "owner-2", shares[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
