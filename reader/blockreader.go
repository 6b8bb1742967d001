package reader

import (
	"github.com/tsfile-go/tsfile/block"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// DeviceTaskIterator walks one table's devices in ascending device-id
// order — the device-major order a BlockReader drains tasks in.
type DeviceTaskIterator struct {
	ids []schema.DeviceID
	idx int
}

// NewDeviceTaskIterator materializes tableName's device list (already
// in ascending order, since the device-index tree's leaves are), kept
// only when idFilter accepts it. A table with no registered devices
// yields an iterator with nothing to produce, not an error.
func (r *Reader) NewDeviceTaskIterator(tableName string, idFilter func(schema.DeviceID) bool) (*DeviceTaskIterator, error) {
	root, ok := r.tableRoots[tableName]
	if !ok {
		return &DeviceTaskIterator{}, nil
	}

	var ids []schema.DeviceID
	err := r.iterLeafEntries(root, metaindex.LeafDevice, func(key string, _, _ int64) error {
		id, err := schema.ParseDeviceIDKey(key)
		if err != nil {
			return err
		}
		if idFilter != nil && !idFilter(id) {
			return nil
		}
		ids = append(ids, id)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeviceTaskIterator{ids: ids}, nil
}

// Next returns the next device task, or (_, false) once exhausted.
func (it *DeviceTaskIterator) Next() (schema.DeviceID, bool) {
	if it.idx >= len(it.ids) {
		return schema.DeviceID{}, false
	}
	id := it.ids[it.idx]
	it.idx++

	return id, true
}

// BlockReader drives device-major reads: one block.Block per device,
// each holding every requested TAG column (repeated across the
// device's rows from its DeviceID) and FIELD column (merged via
// RowMaterializer).
type BlockReader struct {
	r          *Reader
	table      *schema.TableSchema
	tagNames   []string
	fieldNames []string
	filter     *TimeRange
	devices    *DeviceTaskIterator
}

// NewBlockReader builds a device-ordered block.Result over tableName,
// restricted to columns (a mix of TAG and FIELD names) and filter, and
// only over devices idFilter accepts (nil accepts every device).
// timeMajor must be false — this reader only supports device-major
// order.
func (r *Reader) NewBlockReader(tableName string, columns []string, filter *TimeRange, idFilter func(schema.DeviceID) bool, timeMajor bool) (*block.Result, error) {
	if timeMajor {
		return nil, errs.New(errs.KindUnsupportedOrder, "tsfile: time-major block order is not supported")
	}

	table, ok := r.TableSchema(tableName)
	if !ok {
		return nil, errs.New(errs.KindTableNotExist, "tsfile: table "+tableName+" not found")
	}

	var tagNames, fieldNames []string
	for _, name := range columns {
		col, ok := table.Column(name)
		if !ok {
			return nil, errs.New(errs.KindColumnNotExist, "tsfile: column "+name+" not found in table "+tableName)
		}
		switch col.Category {
		case format.CategoryTag:
			tagNames = append(tagNames, name)
		case format.CategoryField:
			fieldNames = append(fieldNames, name)
		}
	}

	devices, err := r.NewDeviceTaskIterator(tableName, idFilter)
	if err != nil {
		return nil, err
	}

	br := &BlockReader{
		r:          r,
		table:      table,
		tagNames:   tagNames,
		fieldNames: fieldNames,
		filter:     filter,
		devices:    devices,
	}

	return block.NewResult(r.alive, br.next), nil
}

func (br *BlockReader) next() (*block.Block, error) {
	devID, ok := br.devices.Next()
	if !ok {
		return nil, errs.ErrNoMoreData
	}

	mat, err := br.r.NewRowMaterializer(devID, br.fieldNames, br.filter)
	if err != nil {
		return nil, err
	}
	defer mat.Close() //nolint:errcheck

	times, values, err := mat.MaterializeAll()
	if err != nil {
		return nil, err
	}

	tags := br.table.TagColumns()
	for _, tagName := range br.tagNames {
		segIdx := -1
		for i, c := range tags {
			if c.Name == tagName {
				segIdx = i

				break
			}
		}

		tagValue := ""
		if segIdx >= 0 && segIdx < len(devID.Segments) {
			tagValue = devID.Segments[segIdx]
		}

		col := make([]any, len(times))
		for i := range col {
			col[i] = tagValue
		}
		values[tagName] = col
	}

	columns := make([]string, 0, len(br.tagNames)+len(br.fieldNames))
	columns = append(columns, br.tagNames...)
	columns = append(columns, br.fieldNames...)

	return &block.Block{DeviceID: devID, Times: times, Columns: columns, Values: values}, nil
}
