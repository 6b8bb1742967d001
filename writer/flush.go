package writer

import (
	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// Flush forces every open chunk group to disk, per spec.md §4.6's
// Flush algorithm: devices are visited in device-id order so chunk
// groups land in that order on disk, empty groups are skipped
// entirely, and every sealed chunk's metadata is appended to that
// device's accumulator for TSMIterator to pick up at Close.
func (w *Writer) Flush() error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}

	ids := make([]schema.DeviceID, 0, len(w.devices))
	for _, ds := range w.devices {
		ids = append(ids, ds.id)
	}
	schema.SortDeviceIDs(ids)

	for _, id := range ids {
		if err := w.flushDevice(w.devices[id.String()]); err != nil {
			return err
		}
	}

	w.recordsSinceFlush = 0
	w.recordCountForNextMemCheck = 1

	return nil
}

func (w *Writer) flushDevice(ds *deviceState) error {
	if ds.empty() {
		return nil
	}

	if err := w.write([]byte{format.ChunkGroupHeaderMarker}); err != nil {
		return err
	}
	if err := w.write(schema.SerializeDeviceID(nil, ds.id)); err != nil {
		return err
	}

	var metas []metaindex.ChunkMeta

	switch ds.kind {
	case deviceKindAligned:
		m, err := w.flushTimeChunk(ds)
		if err != nil {
			return err
		}
		metas = append(metas, m...)

		for _, name := range ds.valueOrder {
			m, err := w.flushValueChunk(ds, name)
			if err != nil {
				return err
			}
			metas = append(metas, m...)
		}
	case deviceKindUnaligned:
		for _, name := range ds.chunkOrder {
			m, err := w.flushMeasurementChunk(ds, name)
			if err != nil {
				return err
			}
			metas = append(metas, m...)
		}
	}

	w.groups = append(w.groups, metaindex.ChunkGroupMeta{
		DeviceID: ds.id,
		Chunks:   metas,
		Aligned:  ds.kind == deviceKindAligned,
	})

	return nil
}

func (w *Writer) flushTimeChunk(ds *deviceState) ([]metaindex.ChunkMeta, error) {
	if ds.timeWriter.Empty() {
		return nil, nil
	}

	data, st, err := ds.timeWriter.EndEncodeChunk()
	if err != nil {
		return nil, err
	}

	headerOffset := w.offset
	if err := w.write(data); err != nil {
		return nil, err
	}

	tw, err := chunk.NewTimeWriter(w.cfg.TimeEncoding, w.cfg.TimeCompression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
	if err != nil {
		return nil, err
	}
	ds.timeWriter = tw

	return []metaindex.ChunkMeta{{
		MeasurementName: "",
		OffsetOfHeader:  headerOffset,
		DataType:        format.Vector,
		Statistics:      st,
	}}, nil
}

func (w *Writer) flushValueChunk(ds *deviceState, name string) ([]metaindex.ChunkMeta, error) {
	vw := ds.valueWriters[name]
	if vw.Empty() {
		return nil, nil
	}

	data, st, err := vw.EndEncodeChunk()
	if err != nil {
		return nil, err
	}

	headerOffset := w.offset
	if err := w.write(data); err != nil {
		return nil, err
	}

	ms := ds.valueSchema[name]
	nvw, err := chunk.NewValueWriter(ms.Name, ms.DataType, ms.Encoding, ms.Compression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
	if err != nil {
		return nil, err
	}
	ds.valueWriters[name] = nvw

	return []metaindex.ChunkMeta{{
		MeasurementName: name,
		OffsetOfHeader:  headerOffset,
		DataType:        ms.DataType,
		Statistics:      st,
	}}, nil
}

func (w *Writer) flushMeasurementChunk(ds *deviceState, name string) ([]metaindex.ChunkMeta, error) {
	cw := ds.chunkWriters[name]
	if cw.Empty() {
		return nil, nil
	}

	data, st, err := cw.EndEncodeChunk()
	if err != nil {
		return nil, err
	}

	headerOffset := w.offset
	if err := w.write(data); err != nil {
		return nil, err
	}

	ms := ds.chunkSchema[name]
	ncw, err := chunk.NewWriter(ms.Name, ms.DataType, w.cfg.TimeEncoding, ms.Encoding, ms.Compression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
	if err != nil {
		return nil, err
	}
	ds.chunkWriters[name] = ncw

	return []metaindex.ChunkMeta{{
		MeasurementName: name,
		OffsetOfHeader:  headerOffset,
		DataType:        ms.DataType,
		Statistics:      st,
	}}, nil
}
