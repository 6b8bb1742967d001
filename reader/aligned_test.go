package reader_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
	"github.com/tsfile-go/tsfile/writer"
)

func buildAlignedFileWithNulls(t *testing.T) []byte {
	t.Helper()
	table := sensorsTable(t)
	var buf bytes.Buffer

	cfg, err := config.NewWriter(config.WithPageMaxPointCount(3))
	require.NoError(t, err)

	w, err := writer.New(&buf, cfg)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-aligned"})
	require.NoError(t, err)

	cols := []schema.MeasurementSchema{
		{Name: "temperature", DataType: format.Double},
		{Name: "humidity", DataType: format.Double},
	}
	require.NoError(t, w.RegisterAligned(dev, cols))

	// 10 rows spanning multiple pages (pageMaxPointCount=3), humidity
	// null on every third row to exercise the aligned value page's null
	// bitmap alongside the lockstep page rotation.
	for i := 0; i < 10; i++ {
		values := map[string]any{"temperature": 20.0 + float64(i)}
		if i%3 != 0 {
			values["humidity"] = 40.0 + float64(i)
		}
		rec := schema.Record{DeviceID: dev, Time: int64(i), Values: values}
		require.NoError(t, w.WriteRecord(rec))
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestRowMaterializerAlignedWithNulls(t *testing.T) {
	data := buildAlignedFileWithNulls(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	dev, err := schema.NewDeviceID("sensors", []string{"room-aligned"})
	require.NoError(t, err)

	mat, err := r.NewRowMaterializer(dev, []string{"temperature", "humidity"}, nil)
	require.NoError(t, err)
	defer mat.Close() //nolint:errcheck

	times, values, err := mat.MaterializeAll()
	require.NoError(t, err)

	require.Len(t, times, 10)
	for i, tm := range times {
		assert.EqualValues(t, i, tm)
		assert.InDelta(t, 20.0+float64(i), values["temperature"][i].(float64), 1e-9)
		if i%3 == 0 {
			assert.Nil(t, values["humidity"][i])
		} else {
			require.NotNil(t, values["humidity"][i])
			assert.InDelta(t, 40.0+float64(i), values["humidity"][i].(float64), 1e-9)
		}
	}
}

func TestBlockReaderAlignedDevice(t *testing.T) {
	data := buildAlignedFileWithNulls(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	res, err := r.NewBlockReader("sensors", []string{"region", "temperature", "humidity"}, nil, nil, false)
	require.NoError(t, err)

	blk, err := res.Next()
	require.NoError(t, err)
	assert.Equal(t, 10, blk.RowCount())
	assert.Equal(t, "room-aligned", blk.Values["region"][0].(string))
	assert.Nil(t, blk.Values["humidity"][0])
	assert.NotNil(t, blk.Values["humidity"][1])
}
