package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/format"
)

func TestNewWriterDefaults(t *testing.T) {
	w, err := config.NewWriter()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPageMaxPointCount, w.PageMaxPointCount)
	assert.Equal(t, format.TS2Diff, w.TimeEncoding)
	assert.Equal(t, format.Uncompressed, w.TimeCompression)
}

func TestNewWriterOverrides(t *testing.T) {
	w, err := config.NewWriter(
		config.WithPageMaxPointCount(128),
		config.WithChunkGroupSizeThreshold(64*1024),
		config.WithMaxDegreeOfIndexNode(4),
		config.WithBloomFilterErrorRate(0.01),
	)
	require.NoError(t, err)
	assert.Equal(t, 128, w.PageMaxPointCount)
	assert.EqualValues(t, 64*1024, w.ChunkGroupSizeThreshold)
	assert.Equal(t, 4, w.MaxDegreeOfIndexNode)
	assert.InDelta(t, 0.01, w.BloomFilterErrorRate, 1e-9)
}

func TestNewReaderDefaults(t *testing.T) {
	r, err := config.NewReader()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultChunkCacheCapacity, r.ChunkCacheCapacity)
	assert.True(t, r.StrictValidation)
}

func TestNewReaderOverrides(t *testing.T) {
	r, err := config.NewReader(config.WithChunkCacheCapacity(16), config.WithStrictValidation(false))
	require.NoError(t, err)
	assert.Equal(t, 16, r.ChunkCacheCapacity)
	assert.False(t, r.StrictValidation)
}
