// Package metaindex builds the hierarchical device/measurement index
// tree and bloom filter that let a reader locate a (device, measurement)
// TimeseriesIndex without scanning the whole file.
package metaindex

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
	"github.com/tsfile-go/tsfile/stats"
)

// ChunkMeta is one chunk's entry in its owning device's accumulator,
// recorded as the writer flushes chunk groups.
type ChunkMeta struct {
	MeasurementName string
	OffsetOfHeader  int64
	DataType        format.DataType
	Statistics      *stats.Statistics
}

// ChunkGroupMeta accumulates every chunk written for one device across
// however many flushes occurred during the file's lifetime.
type ChunkGroupMeta struct {
	DeviceID schema.DeviceID
	Chunks   []ChunkMeta
	Aligned  bool
}

// TimeseriesIndex is the per-(device, measurement) record the reader
// descends the index tree to find.
type TimeseriesIndex struct {
	TsMetaType      byte
	MeasurementName string
	DataType        format.DataType
	Statistics      *stats.Statistics
	ChunkMetas      []chunk.Metadata
}

// tsMetaType bit layout, per spec.md §4.5.
const (
	tsMetaMultiChunk   byte = 0x01
	tsMetaAlignedValue byte = 0x40
	tsMetaAlignedTime  byte = 0x80
)

// NewTimeseriesIndex builds a TimeseriesIndex from the chunk metas of
// one measurement within one device, already sorted by
// OffsetOfChunkHeader ascending.
func NewTimeseriesIndex(measurementName string, dataType format.DataType, metas []chunk.Metadata, alignedTime, alignedValue bool) (TimeseriesIndex, error) {
	merged := stats.New(dataType)
	for _, m := range metas {
		if err := merged.Merge(m.Statistics); err != nil {
			return TimeseriesIndex{}, err
		}
	}

	var tsType byte
	if len(metas) > 1 {
		tsType |= tsMetaMultiChunk
	}
	if alignedTime {
		tsType |= tsMetaAlignedTime
	}
	if alignedValue {
		tsType |= tsMetaAlignedValue
	}

	return TimeseriesIndex{
		TsMetaType:      tsType,
		MeasurementName: measurementName,
		DataType:        dataType,
		Statistics:      merged,
		ChunkMetas:      metas,
	}, nil
}

// IsMultiChunk reports whether this series spans more than one chunk.
func (ts TimeseriesIndex) IsMultiChunk() bool { return ts.TsMetaType&tsMetaMultiChunk != 0 }

// IsAlignedTime reports whether this record is an aligned chunk group's
// shared time-index (MeasurementName == "").
func (ts TimeseriesIndex) IsAlignedTime() bool { return ts.TsMetaType&tsMetaAlignedTime != 0 }

// IsAlignedValue reports whether this record is one FIELD column's index
// within an aligned chunk group, so a reader knows to also fetch the
// group's time-index (MeasurementName == "") to decode it.
func (ts TimeseriesIndex) IsAlignedValue() bool { return ts.TsMetaType&tsMetaAlignedValue != 0 }

// Serialize appends the on-disk form of a TimeseriesIndex to out. Per-
// chunk statistics are elided when there is exactly one chunk (bit 0 of
// tsMetaType is unset), since they then equal the series statistics.
func (ts TimeseriesIndex) Serialize(out []byte) []byte {
	out = append(out, ts.TsMetaType)
	out = format.AppendString(out, ts.MeasurementName)
	out = append(out, byte(ts.DataType))
	out = ts.Statistics.Serialize(out)

	includePerChunkStats := ts.TsMetaType&tsMetaMultiChunk != 0
	out = format.AppendUvarint(out, uint64(len(ts.ChunkMetas)))
	for _, cm := range ts.ChunkMetas {
		out = appendInt64(out, cm.OffsetOfChunkHeader)
		if includePerChunkStats {
			out = cm.Statistics.Serialize(out)
		}
	}

	return out
}

// DeserializeTimeseriesIndex reads one TimeseriesIndex record as written
// by Serialize, returning it and the number of bytes consumed. Per-chunk
// statistics are reconstructed from the series statistics when elided
// (single-chunk series).
func DeserializeTimeseriesIndex(data []byte) (TimeseriesIndex, int, error) {
	if len(data) < 1 {
		return TimeseriesIndex{}, 0, errs.New(errs.KindCorrupted, "truncated timeseries index tag")
	}
	tsType := data[0]
	n := 1

	name, nn, err := format.ReadString(data[n:])
	if err != nil {
		return TimeseriesIndex{}, 0, errs.Wrap(errs.KindCorrupted, "truncated timeseries index name", err)
	}
	n += nn

	if n >= len(data) {
		return TimeseriesIndex{}, 0, errs.New(errs.KindCorrupted, "truncated timeseries index data type")
	}
	dataType := format.DataType(data[n])
	n++

	seriesStats, sn, err := stats.Deserialize(dataType, data[n:])
	if err != nil {
		return TimeseriesIndex{}, 0, err
	}
	n += sn

	chunkCount, cn := binary.Uvarint(data[n:])
	if cn <= 0 {
		return TimeseriesIndex{}, 0, errs.New(errs.KindCorrupted, "truncated timeseries index chunk count")
	}
	n += cn

	includePerChunkStats := tsType&tsMetaMultiChunk != 0

	metas := make([]chunk.Metadata, 0, chunkCount)
	for i := uint64(0); i < chunkCount; i++ {
		if n+8 > len(data) {
			return TimeseriesIndex{}, 0, errs.New(errs.KindCorrupted, "truncated timeseries index chunk offset")
		}
		offset := readInt64LE(data[n:])
		n += 8

		chunkStats := seriesStats
		if includePerChunkStats {
			var sn int
			chunkStats, sn, err = stats.Deserialize(dataType, data[n:])
			if err != nil {
				return TimeseriesIndex{}, 0, err
			}
			n += sn
		}

		metas = append(metas, chunk.Metadata{OffsetOfChunkHeader: offset, Statistics: chunkStats})
	}

	return TimeseriesIndex{
		TsMetaType:      tsType,
		MeasurementName: name,
		DataType:        dataType,
		Statistics:      seriesStats,
		ChunkMetas:      metas,
	}, n, nil
}

func appendInt64(out []byte, v int64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[i] = byte(v >> (8 * i)) //nolint:gosec
	}

	return append(out, tmp[:]...)
}
