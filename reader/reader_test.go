package reader_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/reader"
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

func buildUnalignedFile(t *testing.T) []byte {
	t.Helper()
	table := sensorsTable(t)
	var buf bytes.Buffer

	w, err := writer.New(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	devA, err := schema.NewDeviceID("sensors", []string{"room-a"})
	require.NoError(t, err)
	devB, err := schema.NewDeviceID("sensors", []string{"room-b"})
	require.NoError(t, err)

	for _, dev := range []schema.DeviceID{devA, devB} {
		require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))
		require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "humidity", DataType: format.Double}))
	}

	for i := 0; i < 30; i++ {
		for _, dev := range []schema.DeviceID{devA, devB} {
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
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

func openReader(t *testing.T, data []byte) *reader.Reader {
	t.Helper()
	r, err := reader.Open(bytes.NewReader(data), int64(len(data)), nil)
	require.NoError(t, err)

	return r
}

func TestReaderOpenRejectsBadMagic(t *testing.T) {
	_, err := reader.Open(bytes.NewReader([]byte("not a tsfile at all, padded out")), 32, nil)
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindCorrupted, kind)
}

func TestReaderLookupUnaligned(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	dev, err := schema.NewDeviceID("sensors", []string{"room-a"})
	require.NoError(t, err)

	ts, err := r.Lookup(dev, "temperature")
	require.NoError(t, err)
	assert.Equal(t, "temperature", ts.MeasurementName)
	assert.EqualValues(t, 30, ts.Statistics.Count)

	_, err = r.Lookup(dev, "nope")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindMeasurementNotExist, kind)

	ghost, err := schema.NewDeviceID("sensors", []string{"room-z"})
	require.NoError(t, err)
	_, err = r.Lookup(ghost, "temperature")
	require.Error(t, err)
	kind, ok = errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindDeviceNotExist, kind)

	_, err = r.Lookup(schema.DeviceID{TableName: "ghosts", Segments: []string{"x"}}, "temperature")
	require.Error(t, err)
	kind, ok = errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindTableNotExist, kind)
}

func TestReaderFileInfo(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	info, err := r.FileInfo()
	require.NoError(t, err)
	assert.Equal(t, 1, info.TableCount)
	assert.Equal(t, 2, info.DeviceCount)
	assert.Equal(t, 4, info.MeasurementCount)
	assert.EqualValues(t, len(data), info.FileSize)
}

func TestSeriesScanUnalignedOrdersByTime(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	dev, err := schema.NewDeviceID("sensors", []string{"room-b"})
	require.NoError(t, err)

	scan, err := r.NewSeriesScan(dev, "temperature", nil)
	require.NoError(t, err)
	defer scan.Close() //nolint:errcheck

	require.NoError(t, scan.Advance())
	var times []int64
	var values []float64
	for {
		time, value, ok := scan.Head()
		if !ok {
			break
		}
		times = append(times, time)
		values = append(values, value.(float64))
		require.NoError(t, scan.Advance())
	}

	require.Len(t, times, 30)
	for i, tm := range times {
		assert.EqualValues(t, i, tm)
		assert.InDelta(t, 20.0+float64(i), values[i], 1e-9)
	}
}

func TestSeriesScanTimeRangeFilter(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	dev, err := schema.NewDeviceID("sensors", []string{"room-a"})
	require.NoError(t, err)

	scan, err := r.NewSeriesScan(dev, "temperature", reader.NewTimeRange(10, 14))
	require.NoError(t, err)
	defer scan.Close() //nolint:errcheck

	require.NoError(t, scan.Advance())
	var times []int64
	for {
		time, _, ok := scan.Head()
		if !ok {
			break
		}
		times = append(times, time)
		require.NoError(t, scan.Advance())
	}

	assert.Equal(t, []int64{10, 11, 12, 13, 14}, times)
}

func TestBlockReaderUnalignedDeviceMajor(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	res, err := r.NewBlockReader("sensors", []string{"region", "temperature", "humidity"}, nil, nil, false)
	require.NoError(t, err)

	var devices []string
	for {
		blk, err := res.Next()
		if err != nil {
			require.ErrorIs(t, err, errs.ErrNoMoreData)

			break
		}
		devices = append(devices, blk.DeviceID.String())
		require.Equal(t, 30, blk.RowCount())
		require.Len(t, blk.Values["region"], 30)
		require.Len(t, blk.Values["temperature"], 30)
		require.Len(t, blk.Values["humidity"], 30)

		for i := 0; i < 30; i++ {
			assert.InDelta(t, 20.0+float64(i), blk.Values["temperature"][i].(float64), 1e-9)
		}
	}

	require.Len(t, devices, 2)
	assert.Contains(t, devices[0], "room-a")
	assert.Contains(t, devices[1], "room-b")
}

func TestBlockReaderRejectsTimeMajor(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)
	defer r.Close() //nolint:errcheck

	_, err := r.NewBlockReader("sensors", []string{"temperature"}, nil, nil, true)
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindUnsupportedOrder, kind)
}

func TestReaderCloseInvalidatesBlockResult(t *testing.T) {
	data := buildUnalignedFile(t)
	r := openReader(t, data)

	res, err := r.NewBlockReader("sensors", []string{"temperature"}, nil, nil, false)
	require.NoError(t, err)

	_, err = res.Next()
	require.NoError(t, err)

	require.NoError(t, r.Close())

	_, err = res.Next()
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindInvalidState, kind)
}
