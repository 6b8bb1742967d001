package writer

import (
	"sort"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/footer"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// Close runs spec.md §4.6's Close algorithm: a final flush, then
// emitting every TimeseriesIndex, the per-device measurement-index
// trees, the per-table device-index trees, the bloom filter, and
// finally TsFileMeta plus its size/magic trailer. The writer is
// unusable after Close returns, successfully or not.
func (w *Writer) Close() error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer already closed")
	}
	defer func() { w.closed = true }()

	if err := w.Flush(); err != nil {
		return err
	}

	allSeries, err := metaindex.TSMIterator(w.groups)
	if err != nil {
		return err
	}

	byTable := make(map[string][]metaindex.DeviceSeries)
	var tableNames []string
	for _, ds := range allSeries {
		name := ds.DeviceID.TableName
		if _, seen := byTable[name]; !seen {
			tableNames = append(tableNames, name)
		}
		byTable[name] = append(byTable[name], ds)
	}
	sort.Strings(tableNames)

	bf := metaindex.NewBloomFilter(w.bloomEstimate(), w.cfg.BloomFilterErrorRate)

	var tableIndexes []footer.TableIndex
	var tableSchemas []*schema.TableSchema

	for _, tableName := range tableNames {
		tableIdx, err := w.buildTableIndex(tableName, byTable[tableName], bf)
		if err != nil {
			return err
		}
		if tableIdx == nil {
			continue
		}
		tableIndexes = append(tableIndexes, *tableIdx)
		if ts, ok := w.tables[tableName]; ok {
			tableSchemas = append(tableSchemas, ts)
		}
	}

	return w.writeFooter(tableIndexes, tableSchemas, bf)
}

// buildTableIndex emits one table's TimeseriesIndex records and
// measurement-index trees (one per device), then the table's own
// device-index tree, returning the TableIndex the footer embeds. A
// table with no surviving devices (every chunk group was empty)
// returns nil.
func (w *Writer) buildTableIndex(tableName string, devices []metaindex.DeviceSeries, bf *metaindex.BloomFilter) (*footer.TableIndex, error) {
	var deviceEntries []metaindex.Entry

	for _, ds := range devices {
		var measurementEntries []metaindex.Entry
		for _, ts := range ds.Series {
			headerOffset := w.offset
			if err := w.write(ts.Serialize(nil)); err != nil {
				return nil, err
			}
			measurementEntries = append(measurementEntries, metaindex.Entry{Key: ts.MeasurementName, Offset: headerOffset})
			bf.Add(tableName, ds.DeviceID, ts.MeasurementName)
		}
		if len(measurementEntries) == 0 {
			continue
		}

		measTree, err := metaindex.BuildTree(metaindex.LeafMeasurement, metaindex.InternalMeasurement, measurementEntries, w.cfg.MaxDegreeOfIndexNode, w.offset)
		if err != nil {
			return nil, err
		}
		if err := w.write(measTree.Bytes); err != nil {
			return nil, err
		}

		deviceEntries = append(deviceEntries, metaindex.Entry{Key: ds.DeviceID.String(), Offset: measTree.RootOffset})
	}

	if len(deviceEntries) == 0 {
		return nil, nil
	}

	devTree, err := metaindex.BuildTree(metaindex.LeafDevice, metaindex.InternalDevice, deviceEntries, w.cfg.MaxDegreeOfIndexNode, w.offset)
	if err != nil {
		return nil, err
	}
	if err := w.write(devTree.Bytes); err != nil {
		return nil, err
	}

	return &footer.TableIndex{TableName: tableName, RootNode: devTree.RootNode}, nil
}

func (w *Writer) writeFooter(tableIndexes []footer.TableIndex, tableSchemas []*schema.TableSchema, bf *metaindex.BloomFilter) error {
	metaStart := w.offset
	meta := &footer.Meta{
		TableIndexes: tableIndexes,
		TableSchemas: tableSchemas,
		MetaOffset:   metaStart,
		TimeEncoding: w.cfg.TimeEncoding,
		BloomFilter:  bf,
	}

	metaBytes, err := meta.Serialize(nil)
	if err != nil {
		return err
	}
	if err := w.write(metaBytes); err != nil {
		return err
	}

	return w.write(footer.AppendTrailer(nil, uint32(len(metaBytes)))) //nolint:gosec
}

func (w *Writer) bloomEstimate() int {
	n := 0
	for _, g := range w.groups {
		n += len(g.Chunks)
	}

	return n
}
