package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStore_SaveCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("original")
	require.NoError(t, store.Save(context.Background(), "k", payload))

	payload[0] = 'X'

	got, ok := store.Get("k")
	require.True(t, ok)
	require.Equal(t, "original", string(got))
	require.Equal(t, 1, store.Len())

	_, ok = store.Get("missing")
	require.False(t, ok)
}
