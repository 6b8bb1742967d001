package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
)

func TestTableSchemaSerializeRoundTrip(t *testing.T) {
	table := newTestTable(t)

	out := table.Serialize(nil)
	restored, n, err := schema.DeserializeTableSchema(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.Equal(t, table.TableName, restored.TableName)
	require.Len(t, restored.Columns, len(table.Columns))
	for i, c := range table.Columns {
		assert.Equal(t, c.Name, restored.Columns[i].Name)
		assert.Equal(t, c.DataType, restored.Columns[i].DataType)
		assert.Equal(t, c.Category, restored.Columns[i].Category)
	}
}

func TestTableSchemaSerializeWithColumnProperties(t *testing.T) {
	table, err := schema.NewTableSchema("one-col", []schema.ColumnSchema{
		{
			MeasurementSchema: schema.MeasurementSchema{
				Name:     "region",
				DataType: format.String,
			},
			Category: format.CategoryTag,
		},
		{
			MeasurementSchema: schema.MeasurementSchema{
				Name:       "temperature",
				DataType:   format.Double,
				Properties: map[string]string{"unit": "celsius"},
			},
			Category: format.CategoryField,
		},
	})
	require.NoError(t, err)

	out := table.Serialize(nil)
	restored, n, err := schema.DeserializeTableSchema(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.Equal(t, "celsius", restored.Columns[1].Properties["unit"])
}

func TestDeviceIDSerializeRoundTrip(t *testing.T) {
	d, err := schema.NewDeviceID("sensors", []string{"us", "sensor-1"})
	require.NoError(t, err)

	out := schema.SerializeDeviceID(nil, d)
	restored, n, err := schema.DeserializeDeviceID(out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.True(t, d.Equal(restored))
}
