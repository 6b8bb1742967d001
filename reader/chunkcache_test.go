package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/reader"
)

func TestChunkCacheGetPutRoundTrip(t *testing.T) {
	c := reader.NewChunkCache(2)

	_, ok := c.Get(1, 100)
	assert.False(t, ok)

	c.Put(1, 100, []byte("hello"))
	got, ok := c.Get(1, 100)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)

	// Returned slices must be copies: mutating one must not corrupt the
	// cached entry.
	got[0] = 'X'
	got2, ok := c.Get(1, 100)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got2)
}

func TestChunkCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := reader.NewChunkCache(2)

	c.Put(1, 0, []byte("a"))
	c.Put(1, 1, []byte("b"))
	// Touch offset 0 so offset 1 becomes the least recently used.
	_, _ = c.Get(1, 0)
	c.Put(1, 2, []byte("c"))

	_, ok := c.Get(1, 1)
	assert.False(t, ok, "least recently used entry should have been evicted")

	_, ok = c.Get(1, 0)
	assert.True(t, ok)
	_, ok = c.Get(1, 2)
	assert.True(t, ok)
}

func TestChunkCacheDistinguishesFileID(t *testing.T) {
	c := reader.NewChunkCache(4)

	c.Put(1, 0, []byte("from-file-1"))
	c.Put(2, 0, []byte("from-file-2"))

	got1, ok := c.Get(1, 0)
	require.True(t, ok)
	got2, ok := c.Get(2, 0)
	require.True(t, ok)

	assert.Equal(t, []byte("from-file-1"), got1)
	assert.Equal(t, []byte("from-file-2"), got2)
}
