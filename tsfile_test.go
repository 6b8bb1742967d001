package tsfile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
)

func TestWriterAndOpenRoundTrip(t *testing.T) {
	table, err := schema.NewTableSchema("sensors", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "temperature", DataType: format.Double}, Category: format.CategoryField},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := tsfile.NewWriter(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.RegisterTable(table))

	dev, err := schema.NewDeviceID("sensors", []string{"room-a"})
	require.NoError(t, err)
	require.NoError(t, w.RegisterTimeseries(dev, schema.MeasurementSchema{Name: "temperature", DataType: format.Double}))
	require.NoError(t, w.WriteRecord(schema.Record{DeviceID: dev, Time: 0, Values: map[string]any{"temperature": 1.5}}))
	require.NoError(t, w.Close())

	data := buf.Bytes()
	r, err := tsfile.Open(bytes.NewReader(data), int64(len(data)), nil)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	ts, err := r.Lookup(dev, "temperature")
	require.NoError(t, err)
	require.Equal(t, "temperature", ts.MeasurementName)
}
