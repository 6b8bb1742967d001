package page_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
)

func TestWriterSealDecodeRoundTrip(t *testing.T) {
	w, err := page.NewWriter(format.Double, format.TS2Diff, format.Gorilla, format.Uncompressed)
	require.NoError(t, err)

	times := []int64{100, 200, 300, 400}
	values := []float64{1.5, -2.25, 3.75, 0}
	for i, ts := range times {
		require.NoError(t, w.Write(ts, values[i]))
	}

	sealed, err := w.Seal(nil, true)
	require.NoError(t, err)

	h, n, err := page.ParseHeader(format.Double, sealed, true)
	require.NoError(t, err)

	gotTimes, gotValues, err := page.Decode(
		format.Double, format.TS2Diff, format.Gorilla, format.Uncompressed,
		h, sealed[n:], len(times))
	require.NoError(t, err)

	assert.Equal(t, times, gotTimes)
	for i, v := range gotValues {
		assert.InDelta(t, values[i], v.(float64), 1e-9)
	}
	assert.EqualValues(t, len(times), h.Stats.Count)
}

func TestValueWriterNullBitmapRoundTrip(t *testing.T) {
	vw, err := page.NewValueWriter(format.Int64, format.Plain, format.Uncompressed)
	require.NoError(t, err)

	require.NoError(t, vw.WriteRow(1, int64(10)))
	require.NoError(t, vw.WriteRow(2, nil))
	require.NoError(t, vw.WriteRow(3, int64(30)))

	sealed, err := vw.Seal(nil, true)
	require.NoError(t, err)

	h, n, err := page.ParseHeader(format.Int64, sealed, true)
	require.NoError(t, err)

	got, err := page.DecodeValuePage(format.Int64, format.Plain, format.Uncompressed, h, sealed[n:], 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, int64(30), got[2])
}
