package writer_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/footer"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
	"github.com/tsfile-go/tsfile/writer"
)

func sensorsTable(t *testing.T) *schema.TableSchema {
	t.Helper()
	ts, err := schema.NewTableSchema("sensors", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "region", DataType: format.String}, Category: format.CategoryTag},
		{MeasurementSchema: schema.MeasurementSchema{Name: "temperature", DataType: format.Double}, Category: format.CategoryField},
		{MeasurementSchema: schema.MeasurementSchema{Name: "humidity", DataType: format.Double}, Category: format.CategoryField},
	})
	require.NoError(t, err)

	return ts
}

// readFooter re-implements spec.md §4.7's footer discovery against an
// in-memory buffer, so tests can exercise the writer end to end
// without the (not yet needed here) reader package.
func readFooter(t *testing.T, data []byte) *footer.Meta {
	t.Helper()
	require.GreaterOrEqual(t, len(data), footer.TrailerSize)

	tail := data[len(data)-footer.TrailerSize:]
	metaSize := binary.LittleEndian.Uint32(tail[:4])
	assert.Equal(t, format.Magic, string(tail[4:]))

	metaStart := len(data) - footer.TrailerSize - int(metaSize)
	require.GreaterOrEqual(t, metaStart, len(format.Magic)+1)

	m, n, err := footer.Deserialize(data[metaStart : metaStart+int(metaSize)])
	require.NoError(t, err)
	assert.Equal(t, int(metaSize), n)

	return m
}

func TestWriterUnalignedSingleDeviceRoundTrip(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer

	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-1"})
	require.NoError(t, err)
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "humidity", DataType: format.Double}))

	for i := 0; i < 50; i++ {
		rec := schema.Record{
			DeviceID: dev,
			Time:     int64(i),
			Values: map[string]any{
				"temperature": 20.0 + float64(i),
				"humidity":    40.0 + float64(i),
			},
		}
		require.NoError(t, w.WriteRecord(rec))
	}

	require.NoError(t, w.Close())

	out := buf.Bytes()
	assert.Equal(t, format.Magic, string(out[:len(format.Magic)]))
	assert.Equal(t, format.Version, out[len(format.Magic)])
	assert.Equal(t, format.Magic, string(out[len(out)-len(format.Magic):]))

	meta := readFooter(t, out)
	require.Len(t, meta.TableIndexes, 1)
	assert.Equal(t, "sensors", meta.TableIndexes[0].TableName)
	require.Len(t, meta.TableIndexes[0].RootNode.Children, 1)
	assert.Equal(t, dev.String(), meta.TableIndexes[0].RootNode.Children[0].Key)
	require.Len(t, meta.TableSchemas, 1)

	require.NotNil(t, meta.BloomFilter)
	assert.True(t, meta.BloomFilter.MightContain("sensors", dev, "temperature"))
	assert.True(t, meta.BloomFilter.MightContain("sensors", dev, "humidity"))
}

func TestWriterAlignedMultiDeviceDeviceOrdering(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer

	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	devB, err := schema.NewDeviceID("sensors", []string{"room-b"})
	require.NoError(t, err)
	devA, err := schema.NewDeviceID("sensors", []string{"room-a"})
	require.NoError(t, err)

	cols := []schema.MeasurementSchema{
		{Name: "temperature", DataType: format.Double},
		{Name: "humidity", DataType: format.Double},
	}
	require.NoError(t, w.RegisterAligned(devB, cols))
	require.NoError(t, w.RegisterAligned(devA, cols))

	for i := 0; i < 10; i++ {
		for _, dev := range []schema.DeviceID{devB, devA} {
			rec := schema.Record{
				DeviceID: dev,
				Time:     int64(i),
				Values:   map[string]any{"temperature": 21.5, "humidity": 55.0},
			}
			require.NoError(t, w.WriteRecord(rec))
		}
	}

	require.NoError(t, w.Close())

	meta := readFooter(t, buf.Bytes())
	require.Len(t, meta.TableIndexes, 1)
	children := meta.TableIndexes[0].RootNode.Children
	require.Len(t, children, 2)
	// Devices must land in device-id order regardless of registration
	// or write order.
	assert.Equal(t, devA.String(), children[0].Key)
	assert.Equal(t, devB.String(), children[1].Key)
}

func TestWriterTabletSplitsByDevice(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer

	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	devA, err := schema.NewDeviceID("sensors", []string{"a"})
	require.NoError(t, err)
	devB, err := schema.NewDeviceID("sensors", []string{"b"})
	require.NoError(t, err)

	ms := schema.MeasurementSchema{Name: "temperature", DataType: format.Double}
	require.NoError(t, w.RegisterTimeseries(devA, ms))
	require.NoError(t, w.RegisterTimeseries(devB, ms))

	tablet := &schema.Tablet{
		Table:   table,
		Columns: []string{"temperature"},
		Times:   []int64{0, 1, 2, 3},
		Values: map[string][]any{
			"region":      {"a", "a", "b", "b"},
			"temperature": {1.0, 2.0, 3.0, 4.0},
		},
		RowCount: 4,
	}
	require.NoError(t, w.WriteTable(tablet))
	require.NoError(t, w.Close())

	meta := readFooter(t, buf.Bytes())
	children := meta.TableIndexes[0].RootNode.Children
	require.Len(t, children, 2)
	assert.Equal(t, devA.String(), children[0].Key)
	assert.Equal(t, devB.String(), children[1].Key)
}

func TestWriterRegisterTableDuplicate(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer
	w, err := writer.New(&buf, nil)
	require.NoError(t, err)

	require.NoError(t, w.RegisterTable(table))
	err = w.RegisterTable(table)
	require.Error(t, err)
}

func TestWriterRegisterTimeseriesRequiresTable(t *testing.T) {
	var buf bytes.Buffer
	w, err := writer.New(&buf, nil)
	require.NoError(t, err)

	dev, err := schema.NewDeviceID("sensors", []string{"room-1"})
	require.NoError(t, err)
	err = w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double})
	require.Error(t, err)
}

func TestWriterWriteRecordUnregisteredDevice(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer
	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"ghost"})
	require.NoError(t, err)
	err = w.WriteRecord(schema.Record{DeviceID: dev, Time: 1, Values: map[string]any{"temperature": 1.0}})
	require.Error(t, err)
}

func TestWriterMixedAlignedUnalignedRejected(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer
	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-1"})
	require.NoError(t, err)
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))

	err = w.RegisterAligned(dev, []schema.MeasurementSchema{{Name: "humidity", DataType: format.Double}})
	require.Error(t, err)
}

func TestWriterAutomaticFlushOnMemoryThreshold(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer

	cfg, err := config.NewWriter(config.WithChunkGroupSizeThreshold(1))
	require.NoError(t, err)

	w, err := writer.New(&buf, cfg)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-1"})
	require.NoError(t, err)
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))

	for i := 0; i < 20; i++ {
		rec := schema.Record{DeviceID: dev, Time: int64(i), Values: map[string]any{"temperature": float64(i)}}
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())

	// An aggressive threshold forces multiple flushes before Close's own
	// final flush; the file must still decode to one coherent series.
	meta := readFooter(t, buf.Bytes())
	require.Len(t, meta.TableIndexes, 1)
	require.Len(t, meta.TableIndexes[0].RootNode.Children, 1)
}

func TestWriterEmptyDeviceSkipped(t *testing.T) {
	table := sensorsTable(t)
	var buf bytes.Buffer
	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-1"})
	require.NoError(t, err)
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))

	// No records ever written for dev: Close must not emit an empty
	// table index.
	require.NoError(t, w.Close())

	meta := readFooter(t, buf.Bytes())
	assert.Empty(t, meta.TableIndexes)
}
