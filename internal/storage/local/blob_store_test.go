package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStore_SaveNestedKey(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "blobs")
	store, err := New(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "experiences/1818", []byte(`{"ok":true}`)))

	data, err := os.ReadFile(filepath.Join(root, "experiences", "1818.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(data))
}

func TestBlobStore_SaveOverwrites(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "k", []byte("first")))
	require.NoError(t, store.Save(context.Background(), "k", []byte("second")))

	data, err := os.ReadFile(filepath.Join(store.root, "k.json"))
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestBlobStore_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)

	store, err := New(t.TempDir())
	require.NoError(t, err)
	require.Error(t, store.Save(context.Background(), "  ", []byte("x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, store.Save(ctx, "k", []byte("x")))
}
