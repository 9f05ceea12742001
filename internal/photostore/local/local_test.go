package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/gardenbook/internal/photostore"
)

func TestLocalPhotoStoreSaveAndGet(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake jpeg data")

	key, err := store.Save(ctx, "gardens/g1", "Front Yard.JPG", "image/jpeg", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.Regexp(t, `^front_yard_[0-9a-f]{10}\.jpg$`, key)

	reader, mimeType, err := store.Get(ctx, "gardens/g1", key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", mimeType)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreKeyFallsBackToMimeType(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save(context.Background(), "gardens/g1", "", "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Regexp(t, `^photo_[0-9a-f]{10}\.png$`, key)
}

func TestLocalPhotoStoreKeysAreUnique(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Save(ctx, "gardens/g1", "same.jpg", "image/jpeg", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	b, err := store.Save(ctx, "gardens/g1", "same.jpg", "image/jpeg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "gardens/g1", "p.jpg", "image/jpeg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "gardens/g1", key))

	_, _, err = store.Get(ctx, "gardens/g1", key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "gardens/g1", key), photostore.ErrNotFound)
}

func TestLocalPhotoStoreDeleteAll(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalPhotoStore(base)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "gardens/g1", "a.jpg", "image/jpeg", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	_, err = store.Save(ctx, "gardens/g1", "b.jpg", "image/jpeg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	require.NoError(t, store.DeleteAll(ctx, "gardens/g1"))
	_, err = os.Stat(filepath.Join(base, "gardens", "g1"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.DeleteAll(ctx, "gardens/never-existed"))
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = store.Get(ctx, "gardens/g1", "../../../etc/passwd")
	assert.Error(t, err)

	err = store.Delete(ctx, "../..", "secret")
	assert.Error(t, err)

	_, err = store.Save(ctx, "../outside", "x.jpg", "image/jpeg", bytes.NewReader(nil))
	assert.Error(t, err)
}
