package images

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemUploadDelete(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpegbytes"), 0o644))

	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	img, err := s.Upload(ctx, src, "tx-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URL, "file://"))
	assert.True(t, strings.HasPrefix(img.PublicID, "tx-1/"))

	require.NoError(t, s.Delete(ctx, img.PublicID))
	// Deleting a missing asset is not an error.
	require.NoError(t, s.Delete(ctx, img.PublicID))
}

// failingStore always errors; it exercises the BestEffort contract.
type failingStore struct{}

func (failingStore) Upload(ctx context.Context, fileRef, targetID string) (Image, error) {
	return Image{}, errors.New("upstream unavailable")
}
func (failingStore) Delete(ctx context.Context, publicID string) error {
	return errors.New("upstream unavailable")
}
func (failingStore) DeleteMany(ctx context.Context, publicIDs []string) error {
	return errors.New("upstream unavailable")
}
func (failingStore) Driver() Driver { return DriverMemory }

func TestBestEffortNeverFails(t *testing.T) {
	ctx := context.Background()
	b := NewBestEffort(failingStore{})

	img, err := b.Upload(ctx, "whatever.jpg", "tx-1")
	require.NoError(t, err)
	assert.Empty(t, img.URL)

	require.NoError(t, b.Delete(ctx, "tx-1/x"))
	require.NoError(t, b.DeleteMany(ctx, []string{"a", "b"}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	img, err := s.Upload(ctx, "pic.png", "res-1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.DeleteMany(ctx, []string{img.PublicID}))
	assert.Equal(t, 0, s.Len())
}
