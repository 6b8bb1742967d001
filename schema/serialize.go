package schema

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// Serialize appends a ColumnSchema's on-disk form to out: {varstring
// name, dataType, encoding, compression, category, uvarint propCount,
// repeated (varstring, varstring)}, per spec.md's TableSchema layout.
func (c ColumnSchema) Serialize(out []byte) []byte {
	out = format.AppendString(out, c.Name)
	out = append(out, byte(c.DataType), byte(c.Encoding), byte(c.Compression), byte(c.Category))
	out = format.AppendUvarint(out, uint64(len(c.Properties)))
	for k, v := range c.Properties {
		out = format.AppendString(out, k)
		out = format.AppendString(out, v)
	}

	return out
}

// deserializeColumnSchema reads one ColumnSchema written by Serialize.
func deserializeColumnSchema(data []byte) (ColumnSchema, int, error) {
	name, n, err := format.ReadString(data)
	if err != nil {
		return ColumnSchema{}, 0, errs.Wrap(errs.KindCorrupted, "truncated column schema name", err)
	}
	if n+4 > len(data) {
		return ColumnSchema{}, 0, errs.New(errs.KindCorrupted, "truncated column schema tags")
	}

	dataType := format.DataType(data[n])
	encoding := format.EncodingKind(data[n+1])
	compression := format.CompressionKind(data[n+2])
	category := format.ColumnCategory(data[n+3])
	n += 4

	propCount, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return ColumnSchema{}, 0, errs.New(errs.KindCorrupted, "truncated column schema property count")
	}
	n += m

	var props map[string]string
	if propCount > 0 {
		props = make(map[string]string, propCount)
	}
	for i := uint64(0); i < propCount; i++ {
		k, kn, err := format.ReadString(data[n:])
		if err != nil {
			return ColumnSchema{}, 0, errs.Wrap(errs.KindCorrupted, "truncated column schema property key", err)
		}
		n += kn
		v, vn, err := format.ReadString(data[n:])
		if err != nil {
			return ColumnSchema{}, 0, errs.Wrap(errs.KindCorrupted, "truncated column schema property value", err)
		}
		n += vn
		props[k] = v
	}

	return ColumnSchema{
		MeasurementSchema: MeasurementSchema{
			Name:        name,
			DataType:    dataType,
			Encoding:    encoding,
			Compression: compression,
			Properties:  props,
		},
		Category: category,
	}, n, nil
}

// Serialize appends a TableSchema's on-disk form to out: {varstring
// tableName, uvarint columnCount, repeated ColumnSchema}.
func (t *TableSchema) Serialize(out []byte) []byte {
	out = format.AppendString(out, t.TableName)
	out = format.AppendUvarint(out, uint64(len(t.Columns)))
	for _, c := range t.Columns {
		out = c.Serialize(out)
	}

	return out
}

// DeserializeTableSchema reads a TableSchema written by Serialize,
// returning it and the number of bytes consumed.
func DeserializeTableSchema(data []byte) (*TableSchema, int, error) {
	tableName, n, err := format.ReadString(data)
	if err != nil {
		return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated table schema name", err)
	}

	count, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated table schema column count")
	}
	n += m

	columns := make([]ColumnSchema, 0, count)
	for i := uint64(0); i < count; i++ {
		col, cn, err := deserializeColumnSchema(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += cn
		columns = append(columns, col)
	}

	ts, err := NewTableSchema(tableName, columns)
	if err != nil {
		return nil, 0, err
	}

	return ts, n, nil
}

// SerializeDeviceID appends a DeviceID's on-disk form to out: {varstring
// tableName, uvarint segmentCount, repeated varstring segment}.
func SerializeDeviceID(out []byte, d DeviceID) []byte {
	out = format.AppendString(out, d.TableName)
	out = format.AppendUvarint(out, uint64(len(d.Segments)))
	for _, seg := range d.Segments {
		out = format.AppendString(out, seg)
	}

	return out
}

// DeserializeDeviceID reads a DeviceID written by SerializeDeviceID.
func DeserializeDeviceID(data []byte) (DeviceID, int, error) {
	tableName, n, err := format.ReadString(data)
	if err != nil {
		return DeviceID{}, 0, errs.Wrap(errs.KindCorrupted, "truncated device id table name", err)
	}

	count, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return DeviceID{}, 0, errs.New(errs.KindCorrupted, "truncated device id segment count")
	}
	n += m

	segments := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		seg, sn, err := format.ReadString(data[n:])
		if err != nil {
			return DeviceID{}, 0, errs.Wrap(errs.KindCorrupted, "truncated device id segment", err)
		}
		n += sn
		segments = append(segments, seg)
	}

	d, err := NewDeviceID(tableName, segments)
	if err != nil {
		return DeviceID{}, 0, err
	}

	return d, n, nil
}

