// Package schema defines the table/column/device-identifier types
// registered before the first write and consulted on every subsequent
// record, tablet, and read.
package schema

import (
	"sort"
	"strings"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// MeasurementSchema describes one column's on-disk representation.
type MeasurementSchema struct {
	Name        string
	DataType    format.DataType
	Encoding    format.EncodingKind
	Compression format.CompressionKind
	Properties  map[string]string
}

// ColumnSchema is a MeasurementSchema tagged with its category: TAG
// columns identify a device within a table, FIELD columns carry
// measured values.
type ColumnSchema struct {
	MeasurementSchema
	Category format.ColumnCategory
}

// TableSchema is an ordered set of columns, at most one per name. The
// TAG columns, concatenated in schema order, form the device identifier
// for every row belonging to this table.
type TableSchema struct {
	TableName string
	Columns   []ColumnSchema

	byName map[string]int
}

// NewTableSchema validates columns (non-empty, unique names, at least
// one TAG column) and returns a ready-to-register TableSchema.
func NewTableSchema(tableName string, columns []ColumnSchema) (*TableSchema, error) {
	if tableName == "" {
		return nil, errs.New(errs.KindInvalidArg, "table name must not be empty")
	}
	if len(columns) == 0 {
		return nil, errs.New(errs.KindInvalidArg, "table schema must have at least one column")
	}

	byName := make(map[string]int, len(columns))
	hasTag := false
	for i, c := range columns {
		if _, dup := byName[c.Name]; dup {
			return nil, errs.New(errs.KindAlreadyExists, "duplicate column name "+c.Name)
		}
		byName[c.Name] = i
		if c.Category == format.CategoryTag {
			hasTag = true
		}
	}
	if !hasTag {
		return nil, errs.New(errs.KindInvalidArg, "table schema must have at least one TAG column")
	}

	return &TableSchema{TableName: tableName, Columns: columns, byName: byName}, nil
}

// Column looks up a column by name.
func (t *TableSchema) Column(name string) (ColumnSchema, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return ColumnSchema{}, false
	}

	return t.Columns[idx], true
}

// TagColumns returns the TAG columns in schema order — the order that
// defines device identifier segment order.
func (t *TableSchema) TagColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range t.Columns {
		if c.Category == format.CategoryTag {
			out = append(out, c)
		}
	}

	return out
}

// FieldColumns returns the FIELD columns in schema order.
func (t *TableSchema) FieldColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range t.Columns {
		if c.Category == format.CategoryField {
			out = append(out, c)
		}
	}

	return out
}

// DeviceID is an ordered, non-empty tuple of TAG-column values
// identifying one device within a table. Its total ordering is
// lexicographic on segments, matching the device-index tree's sort
// order used by the reader's binary search.
type DeviceID struct {
	TableName string
	Segments  []string
}

// NewDeviceID builds a DeviceID from a table name and ordered segments.
func NewDeviceID(tableName string, segments []string) (DeviceID, error) {
	if len(segments) == 0 {
		return DeviceID{}, errs.New(errs.KindInvalidArg, "device id must have at least one segment")
	}

	return DeviceID{TableName: tableName, Segments: append([]string(nil), segments...)}, nil
}

// String renders the device id as a stable, human-readable key, also
// usable as a map key when exact equality (not ordering) is needed. This
// is also the literal sort key a device-index tree stores its entries
// under, so ParseDeviceIDKey inverts it for a reader walking that tree.
func (d DeviceID) String() string {
	return d.TableName + "\x00" + strings.Join(d.Segments, "\x00")
}

// ParseDeviceIDKey inverts DeviceID.String, recovering a DeviceID from a
// device-index tree entry's key.
func ParseDeviceIDKey(key string) (DeviceID, error) {
	parts := strings.Split(key, "\x00")
	if len(parts) < 2 {
		return DeviceID{}, errs.New(errs.KindCorrupted, "malformed device id key "+key)
	}

	return NewDeviceID(parts[0], parts[1:])
}

// Less implements the lexicographic-on-segments total ordering used to
// sort devices within a table's device index.
func (d DeviceID) Less(other DeviceID) bool {
	n := len(d.Segments)
	if len(other.Segments) < n {
		n = len(other.Segments)
	}
	for i := 0; i < n; i++ {
		if d.Segments[i] != other.Segments[i] {
			return d.Segments[i] < other.Segments[i]
		}
	}

	return len(d.Segments) < len(other.Segments)
}

// Equal reports whether two device identifiers are the same tuple.
func (d DeviceID) Equal(other DeviceID) bool {
	if d.TableName != other.TableName || len(d.Segments) != len(other.Segments) {
		return false
	}
	for i := range d.Segments {
		if d.Segments[i] != other.Segments[i] {
			return false
		}
	}

	return true
}

// SortDeviceIDs sorts ids in place by the DeviceID total ordering.
func SortDeviceIDs(ids []DeviceID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// Record is a single row: one timestamp plus one value per column,
// keyed by column name. TAG column entries are ignored for value
// encoding; the device is always the one named by DeviceID, never
// derived from Values.
type Record struct {
	DeviceID DeviceID
	Time     int64
	Values   map[string]any
}

// Tablet is a columnar batch for one table: a shared time column plus
// parallel value columns, one per requested measurement. Rows may
// belong to different devices; WriteTable splits by contiguous
// same-device runs derived from the values of the table's TAG columns
// in Values (see DeviceIDAt).
type Tablet struct {
	Table   *TableSchema
	Columns []string
	Times   []int64
	Values  map[string][]any

	// RowCount is the number of logical rows; every Values[name] slice
	// and Times must have this length.
	RowCount int
}

// DeviceIDAt derives the device identifier for row i by concatenating
// the tablet's TAG column values in schema order.
func (t *Tablet) DeviceIDAt(i int) (DeviceID, error) {
	tags := t.Table.TagColumns()
	segments := make([]string, 0, len(tags))
	for _, tag := range tags {
		vs, ok := t.Values[tag.Name]
		if !ok || i >= len(vs) {
			return DeviceID{}, errs.New(errs.KindInvalidArg, "tablet missing tag column "+tag.Name)
		}
		segments = append(segments, stringifyTag(vs[i]))
	}

	return NewDeviceID(t.Table.TableName, segments)
}

func stringifyTag(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return ""
	}
}
