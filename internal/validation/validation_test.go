package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@x.com"))

	for _, email := range []string{"", "not-an-email", "Name <a@x.com>", strings.Repeat("a", 250) + "@x.com"} {
		assert.ErrorIs(t, ValidateEmail(email), ErrInvalid, "email %q", email)
	}
}

func TestValidateRecipients(t *testing.T) {
	got, err := ValidateRecipients([]string{" A@X.com", "a@x.com", "b@y.org"}, MaxRecipients)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@y.org"}, got)

	got, err = ValidateRecipients(nil, MaxRecipients)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ValidateRecipients([]string{"a@x.com", "broken"}, MaxRecipients)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ValidateRecipients([]string{"a@x.com", "b@x.com"}, 1)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateUpload(t *testing.T) {
	c := DefaultConstraints(10 << 20)

	assert.NoError(t, ValidateUpload("report.pdf", "application/pdf", 1024, c))
	assert.NoError(t, ValidateUpload("Photo.JPG", "image/jpeg", 1024, c))

	tests := []struct {
		name     string
		fileName string
		fileType string
		size     int64
	}{
		{"empty name", " ", "application/pdf", 1},
		{"path in name", "../etc/passwd.pdf", "application/pdf", 1},
		{"mime not allowed", "run.pdf", "application/x-msdownload", 1},
		{"extension not allowed", "run.exe", "application/pdf", 1},
		{"zero size", "report.pdf", "application/pdf", 0},
		{"too large", "report.pdf", "application/pdf", 11 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateUpload(tt.fileName, tt.fileType, tt.size, c), ErrInvalid)
		})
	}
}

func TestValidateAccessCode(t *testing.T) {
	assert.NoError(t, ValidateAccessCode(0))
	assert.NoError(t, ValidateAccessCode(1234))
	assert.NoError(t, ValidateAccessCode(MaxAccessCode))
	assert.ErrorIs(t, ValidateAccessCode(-1), ErrInvalid)
	assert.ErrorIs(t, ValidateAccessCode(MaxAccessCode+1), ErrInvalid)
}

func TestValidateFolder(t *testing.T) {
	assert.NoError(t, ValidateFolder("uploads"))
	assert.NoError(t, ValidateFolder("team_docs-2026"))

	for _, folder := range []string{"", "../up", "a/b", "-lead", strings.Repeat("x", 64)} {
		assert.ErrorIs(t, ValidateFolder(folder), ErrInvalid, "folder %q", folder)
	}
}
