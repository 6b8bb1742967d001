package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

func TestStatisticsUpdateInt(t *testing.T) {
	s := stats.New(format.Int64)
	require.NoError(t, s.Update(10, int64(5)))
	require.NoError(t, s.Update(20, int64(-3)))
	require.NoError(t, s.Update(15, int64(9)))

	assert.EqualValues(t, 3, s.Count)
	assert.EqualValues(t, 10, s.StartTime)
	assert.EqualValues(t, 20, s.EndTime)
	assert.EqualValues(t, -3, s.MinInt)
	assert.EqualValues(t, 9, s.MaxInt)
	assert.EqualValues(t, 5, s.FirstInt)
	assert.EqualValues(t, 9, s.LastInt)
	assert.EqualValues(t, 11, s.SumInt)
}

func TestStatisticsUpdateWrongType(t *testing.T) {
	s := stats.New(format.Int64)
	err := s.Update(1, "nope")
	require.Error(t, err)
}

func TestStatisticsMergeDisjoint(t *testing.T) {
	a := stats.New(format.Double)
	require.NoError(t, a.Update(1, 1.0))
	require.NoError(t, a.Update(2, 2.0))

	b := stats.New(format.Double)
	require.NoError(t, b.Update(3, 3.0))
	require.NoError(t, b.Update(4, -1.0))

	require.NoError(t, a.Merge(b))
	assert.EqualValues(t, 4, a.Count)
	assert.EqualValues(t, 1, a.StartTime)
	assert.EqualValues(t, 4, a.EndTime)
	assert.Equal(t, -1.0, a.Min)
	assert.Equal(t, 3.0, a.Max)
	assert.Equal(t, 1.0, a.First)
	assert.Equal(t, -1.0, a.Last)
}

func TestCanMergeTextToString(t *testing.T) {
	assert.False(t, stats.CanMerge(format.Text, format.String))
	assert.True(t, stats.CanMerge(format.String, format.String))
}

func TestStatisticsSerializeRoundTrip(t *testing.T) {
	s := stats.New(format.Double)
	require.NoError(t, s.Update(100, 1.5))
	require.NoError(t, s.Update(200, -2.5))

	buf := s.Serialize(nil)
	got, n, err := stats.Deserialize(format.Double, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, s.Count, got.Count)
	assert.Equal(t, s.StartTime, got.StartTime)
	assert.Equal(t, s.EndTime, got.EndTime)
	assert.Equal(t, s.Min, got.Min)
	assert.Equal(t, s.Max, got.Max)
	assert.Equal(t, s.SumFloat, got.SumFloat)
}

func TestStatisticsSerializeRoundTripBinary(t *testing.T) {
	s := stats.New(format.String)
	require.NoError(t, s.Update(1, []byte("hello")))
	require.NoError(t, s.Update(2, []byte("world")))

	buf := s.Serialize(nil)
	got, _, err := stats.Deserialize(format.String, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.FirstBytes)
	assert.Equal(t, []byte("world"), got.LastBytes)
}
