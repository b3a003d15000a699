package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *S3Storage {
	t.Helper()

	s, err := NewS3Storage(S3Config{
		Region:    "us-east-1",
		Bucket:    "shares",
		AccessKey: "test-access",
		SecretKey: "test-secret",
		Endpoint:  "http://localhost:9000",
	})
	require.NoError(t, err)
	return s
}

func TestPresignURL_Get(t *testing.T) {
	s := newTestStorage(t)

	raw, err := s.PresignURL(context.Background(), "uploads/abc/file.pdf", OpGet, 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/shares/uploads/abc/file.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "test-access")
}

func TestPresignUpload_SignsHeaders(t *testing.T) {
	s := newTestStorage(t)

	raw, err := s.PresignUpload(context.Background(), "uploads/abc/file.pdf", "application/pdf", 2048, time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))

	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestPresignURL_Put(t *testing.T) {
	s := newTestStorage(t)

	raw, err := s.PresignURL(context.Background(), "uploads/abc/file.pdf", OpPut, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, raw, "/shares/uploads/abc/file.pdf")
}

func TestPresignURL_Invalid(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.PresignURL(ctx, "k", Operation("delete"), time.Minute)
	assert.ErrorIs(t, err, ErrInvalidPresign)

	_, err = s.PresignURL(ctx, "k", OpGet, 0)
	assert.ErrorIs(t, err, ErrInvalidPresign)

	_, err = s.PresignURL(ctx, "k", OpGet, 8*24*time.Hour)
	assert.ErrorIs(t, err, ErrInvalidPresign)
}
