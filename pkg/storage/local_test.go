package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"campus-connect-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cv.pdf", "cv.pdf"},
		{"My CV (final).pdf", "My_CV_final_.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\resume.docx`, "resume.docx"},
		{"", "resume"},
		{"...", "resume"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestSanitizeFileName_TruncatesKeepingExtension(t *testing.T) {
	name := SanitizeFileName(strings.Repeat("a", 200) + ".pdf")
	assert.Len(t, name, 100)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
}

func TestLocalResumeStorage_StoreAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalResumeStorage(root)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(0, 1700000000000000000) }

	ref, err := s.Store(context.Background(), []byte("%PDF-1.4"), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes/1700000000000000000-cv.pdf", ref)

	data, err := os.ReadFile(filepath.Join(root, ref))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(root, ref))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is fine
	assert.NoError(t, s.Delete(context.Background(), ref))
}

func TestLocalResumeStorage_SameInstantDoesNotOverwrite(t *testing.T) {
	s, err := NewLocalResumeStorage(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(0, 42) }

	_, err = s.Store(context.Background(), []byte("one"), "cv.txt")
	require.NoError(t, err)

	_, err = s.Store(context.Background(), []byte("two"), "cv.txt")
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestLocalResumeStorage_DeleteRejectsForeignPaths(t *testing.T) {
	s, err := NewLocalResumeStorage(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"../secret", "/etc/passwd", "other/file.pdf", "resumes/../x"} {
		assert.ErrorIs(t, s.Delete(context.Background(), ref), domain.ErrStorage, ref)
	}
}
