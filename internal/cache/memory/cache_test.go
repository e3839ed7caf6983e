package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/quill-notes/internal/repository"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Stop()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// The returned slice is a copy.
	got[0] = 'x'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), again)
}

func TestCache_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Stop()

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Stop()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	time.Sleep(30 * time.Millisecond)

	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Stop()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting an absent key is not an error.
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestCache_StopIsIdempotent(t *testing.T) {
	c := NewCache()
	c.Stop()
	c.Stop()
}
