package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
)

func TestSinglePageChunkElidesPageStats(t *testing.T) {
	w, err := chunk.NewWriter("temperature", format.Double, format.TS2Diff, format.Gorilla, format.Uncompressed, 10240, 64*1024)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Write(int64(i), float64(i)))
	}

	data, merged, err := w.EndEncodeChunk()
	require.NoError(t, err)
	assert.EqualValues(t, 5, merged.Count)
	assert.Equal(t, 1, w.NumPages())

	h, n, err := chunk.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, format.ChunkHeaderMarkerSingle, h.Marker)
	assert.Equal(t, "temperature", h.MeasurementName)

	headers, bodies, err := chunk.SplitPages(h, data[n:n+h.DataSize])
	require.NoError(t, err)
	require.Len(t, headers, 1)
	assert.Nil(t, headers[0].Stats)

	times, values, err := page.Decode(format.Double, format.TS2Diff, format.Gorilla, format.Uncompressed,
		headers[0], bodies[0], 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, times)
	assert.Len(t, values, 5)
}

func TestMultiPageChunkIncludesPageStats(t *testing.T) {
	w, err := chunk.NewWriter("temperature", format.Double, format.TS2Diff, format.Gorilla, format.Uncompressed, 2, 64*1024)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Write(int64(i), float64(i)))
	}

	data, merged, err := w.EndEncodeChunk()
	require.NoError(t, err)
	assert.EqualValues(t, 5, merged.Count)
	assert.Greater(t, w.NumPages(), 1)

	h, n, err := chunk.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, format.ChunkHeaderMarkerMulti, h.Marker)

	headers, _, err := chunk.SplitPages(h, data[n:n+h.DataSize])
	require.NoError(t, err)
	for _, ph := range headers {
		assert.NotNil(t, ph.Stats)
	}
}

func TestAlignedValueWriterFollowsTimeWriterRotation(t *testing.T) {
	tw, err := chunk.NewTimeWriter(format.Plain, format.Uncompressed, 2, 64*1024)
	require.NoError(t, err)
	vw, err := chunk.NewValueWriter("temperature", format.Double, format.Plain, format.Uncompressed, 10240, 64*1024)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		rotated, err := tw.Write(int64(i))
		require.NoError(t, err)
		require.NoError(t, vw.WriteRow(int64(i), float64(i)))
		if rotated {
			require.NoError(t, vw.ForceRotate())
		}
	}

	assert.Equal(t, tw.NumPages(), vw.NumPages(),
		"value writer must seal a page in the same iteration the time writer rotates")

	_, _, err = tw.EndEncodeChunk()
	require.NoError(t, err)
	_, _, err = vw.EndEncodeChunk()
	require.NoError(t, err)

	assert.Equal(t, tw.NumPages(), vw.NumPages(),
		"aligned time and value chunks must end up with the same page count once finalized")
}

func TestEmptyChunkCannotFinalize(t *testing.T) {
	w, err := chunk.NewWriter("x", format.Int32, format.TS2Diff, format.Plain, format.Uncompressed, 10240, 64*1024)
	require.NoError(t, err)
	_, _, err = w.EndEncodeChunk()
	require.Error(t, err)
}
