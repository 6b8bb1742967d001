package metaindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

func entriesFor(keys ...string) []metaindex.Entry {
	out := make([]metaindex.Entry, len(keys))
	for i, k := range keys {
		out[i] = metaindex.Entry{Key: k, Offset: int64(i * 100)}
	}

	return out
}

func TestBuildTreeSingleLeaf(t *testing.T) {
	tree, err := metaindex.BuildTree(metaindex.LeafMeasurement, metaindex.InternalMeasurement,
		entriesFor("temperature"), 256, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), tree.RootOffset)
	assert.NotEmpty(t, tree.Bytes)
}

func TestBuildTreeMultiLevel(t *testing.T) {
	keys := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		keys = append(keys, string(rune('a'+i)))
	}

	tree, err := metaindex.BuildTree(metaindex.LeafMeasurement, metaindex.InternalMeasurement,
		entriesFor(keys...), 4, 500)
	require.NoError(t, err)
	assert.Greater(t, tree.RootOffset, int64(500))
	assert.NotEmpty(t, tree.Bytes)
}

func TestBuildTreeEmptyRejected(t *testing.T) {
	_, err := metaindex.BuildTree(metaindex.LeafMeasurement, metaindex.InternalMeasurement, nil, 256, 0)
	require.Error(t, err)
}

func TestBinarySearchEntriesExact(t *testing.T) {
	children := entriesFor("alpha", "gamma", "omega")
	idx, ok := metaindex.BinarySearchEntries(children, "gamma", true)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = metaindex.BinarySearchEntries(children, "beta", true)
	assert.False(t, ok)

	idx, ok = metaindex.BinarySearchEntries(children, "beta", false)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestBloomFilterRoundTrip(t *testing.T) {
	bf := metaindex.NewBloomFilter(100, 0.01)
	dev := schema.DeviceID{TableName: "sensors", Segments: []string{"us", "dev1"}}
	bf.Add("sensors", dev, "temperature")

	assert.True(t, bf.MightContain("sensors", dev, "temperature"))

	out, err := bf.Serialize(nil)
	require.NoError(t, err)

	restored, n, err := metaindex.DeserializeBloomFilter(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.True(t, restored.MightContain("sensors", dev, "temperature"))
}
