package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
)

func newTestTable(t *testing.T) *schema.TableSchema {
	t.Helper()
	ts, err := schema.NewTableSchema("sensors", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "region", DataType: format.String}, Category: format.CategoryTag},
		{MeasurementSchema: schema.MeasurementSchema{Name: "device", DataType: format.String}, Category: format.CategoryTag},
		{MeasurementSchema: schema.MeasurementSchema{Name: "temperature", DataType: format.Double}, Category: format.CategoryField},
	})
	require.NoError(t, err)

	return ts
}

func TestTableSchemaRequiresTagColumn(t *testing.T) {
	_, err := schema.NewTableSchema("t", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "v", DataType: format.Double}, Category: format.CategoryField},
	})
	require.Error(t, err)
}

func TestTableSchemaDuplicateColumn(t *testing.T) {
	_, err := schema.NewTableSchema("t", []schema.ColumnSchema{
		{MeasurementSchema: schema.MeasurementSchema{Name: "a", DataType: format.String}, Category: format.CategoryTag},
		{MeasurementSchema: schema.MeasurementSchema{Name: "a", DataType: format.Double}, Category: format.CategoryField},
	})
	require.Error(t, err)
}

func TestDeviceIDOrdering(t *testing.T) {
	a, _ := schema.NewDeviceID("t", []string{"us", "sensor-1"})
	b, _ := schema.NewDeviceID("t", []string{"us", "sensor-2"})
	c, _ := schema.NewDeviceID("t", []string{"eu", "sensor-1"})

	assert.True(t, c.Less(a))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func TestSortDeviceIDs(t *testing.T) {
	a, _ := schema.NewDeviceID("t", []string{"b"})
	b, _ := schema.NewDeviceID("t", []string{"a"})
	ids := []schema.DeviceID{a, b}
	schema.SortDeviceIDs(ids)
	assert.Equal(t, "a", ids[0].Segments[0])
}

func TestTabletDeviceIDAt(t *testing.T) {
	table := newTestTable(t)
	tablet := &schema.Tablet{
		Table:    table,
		RowCount: 2,
		Times:    []int64{1, 2},
		Values: map[string][]any{
			"region":      {"us", "eu"},
			"device":      {"sensor-1", "sensor-2"},
			"temperature": {21.5, 19.0},
		},
	}

	d0, err := tablet.DeviceIDAt(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"us", "sensor-1"}, d0.Segments)

	d1, err := tablet.DeviceIDAt(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"eu", "sensor-2"}, d1.Segments)
}
