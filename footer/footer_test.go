package footer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/footer"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

func buildTestTableSchema(t *testing.T) *schema.TableSchema {
	t.Helper()
	ts, err := schema.NewTableSchema("sensors", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "region", DataType: format.String}, Category: format.CategoryTag},
		{MeasurementSchema: schema.MeasurementSchema{Name: "temperature", DataType: format.Double}, Category: format.CategoryField},
	})
	require.NoError(t, err)

	return ts
}

func TestMetaSerializeRoundTripNoBloom(t *testing.T) {
	root := metaindex.Node{
		Type:      metaindex.LeafDevice,
		Children:  []metaindex.Entry{{Key: "dev-1", Offset: 128}},
		EndOffset: 256,
	}

	m := &footer.Meta{
		TableIndexes: []footer.TableIndex{{TableName: "sensors", RootNode: root}},
		TableSchemas: []*schema.TableSchema{buildTestTableSchema(t)},
		MetaOffset:   1024,
		TimeEncoding: format.TS2Diff,
		Properties:   map[string]string{"writer": "tsfile-go"},
	}

	out, err := m.Serialize(nil)
	require.NoError(t, err)

	restored, n, err := footer.Deserialize(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.EqualValues(t, 1024, restored.MetaOffset)
	require.Len(t, restored.TableIndexes, 1)
	assert.Equal(t, "sensors", restored.TableIndexes[0].TableName)
	assert.Equal(t, root.Children[0].Key, restored.TableIndexes[0].RootNode.Children[0].Key)
	assert.Equal(t, root.EndOffset, restored.TableIndexes[0].RootNode.EndOffset)
	require.Len(t, restored.TableSchemas, 1)
	assert.Equal(t, "sensors", restored.TableSchemas[0].TableName)
	assert.Equal(t, format.TS2Diff, restored.TimeEncoding)
	assert.Nil(t, restored.BloomFilter)
	assert.Equal(t, "tsfile-go", restored.Properties["writer"])
}

func TestMetaSerializeRoundTripWithBloom(t *testing.T) {
	bf := metaindex.NewBloomFilter(10, 0.05)
	dev, err := schema.NewDeviceID("sensors", []string{"dev-1"})
	require.NoError(t, err)
	bf.Add("sensors", dev, "temperature")

	m := &footer.Meta{
		TableIndexes: []footer.TableIndex{{
			TableName: "sensors",
			RootNode:  metaindex.Node{Type: metaindex.LeafDevice, Children: []metaindex.Entry{{Key: "dev-1", Offset: 0}}, EndOffset: 10},
		}},
		MetaOffset:  0,
		BloomFilter: bf,
	}

	out, err := m.Serialize(nil)
	require.NoError(t, err)

	restored, n, err := footer.Deserialize(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	require.NotNil(t, restored.BloomFilter)
	assert.True(t, restored.BloomFilter.MightContain("sensors", dev, "temperature"))
}

func TestAppendTrailer(t *testing.T) {
	out := footer.AppendTrailer(nil, 42)
	assert.Len(t, out, footer.TrailerSize)
	assert.Equal(t, format.Magic, string(out[4:]))
}
