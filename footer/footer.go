// Package footer builds and parses TsFileMeta, the trailer record that
// anchors every table's MetaIndexNode root, schema, and bloom filter,
// plus the size/magic framing that lets a reader find it from the end
// of the file.
package footer

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// TableIndex pairs one registered table with the root node of its
// device-index tree.
type TableIndex struct {
	TableName string
	RootNode  metaindex.Node
}

// Meta is the parsed form of TsFileMeta, per spec.md §3/§6.
type Meta struct {
	TableIndexes []TableIndex
	TableSchemas []*schema.TableSchema
	MetaOffset   int64
	BloomFilter  *metaindex.BloomFilter
	Properties   map[string]string

	// TimeEncoding records the encoding kind used for the time stream
	// embedded in every unaligned chunk in this file. An unaligned
	// chunk's own header only carries its value encoding (in the
	// header's single encoding byte), so
	// without this file-wide record a reader would have no way to
	// recover the time-stream encoding needed to decode it. Aligned
	// time-chunks don't need this: they record their own encoding
	// directly, since format.Vector has no value stream to share the
	// header's encoding byte with.
	TimeEncoding format.EncodingKind
}

// Serialize appends TsFileMeta's on-disk form to out:
//
//	uvarint numTables
//	for each table: varstring tableName + MetaIndexNode
//	uvarint numTableSchemas
//	for each: varstring tableName + TableSchema
//	int64 LE metaOffset
//	timeEncoding (1 byte)
//	0x01 + BloomFilter, or a single 0x00 byte if absent
//	uvarint numProperties
//	for each: varstring key + varstring value
func (m *Meta) Serialize(out []byte) ([]byte, error) {
	out = format.AppendUvarint(out, uint64(len(m.TableIndexes)))
	for _, ti := range m.TableIndexes {
		out = format.AppendString(out, ti.TableName)
		out = ti.RootNode.Serialize(out)
	}

	out = format.AppendUvarint(out, uint64(len(m.TableSchemas)))
	for _, ts := range m.TableSchemas {
		out = format.AppendString(out, ts.TableName)
		out = ts.Serialize(out)
	}

	out = appendInt64(out, m.MetaOffset)
	out = append(out, byte(m.TimeEncoding))

	if m.BloomFilter == nil {
		out = append(out, 0x00)
	} else {
		out = append(out, 0x01)
		var err error
		out, err = m.BloomFilter.Serialize(out)
		if err != nil {
			return nil, err
		}
	}

	out = format.AppendUvarint(out, uint64(len(m.Properties)))
	for k, v := range m.Properties {
		out = format.AppendString(out, k)
		out = format.AppendString(out, v)
	}

	return out, nil
}

// Deserialize parses a Meta written by Serialize, including each
// table's full root MetaIndexNode (parsed in place by
// metaindex.DeserializeNode, which reports how many bytes it consumed).
func Deserialize(data []byte) (*Meta, int, error) {
	n := 0

	tableCount, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer table count")
	}
	n += m

	indexes := make([]TableIndex, 0, tableCount)
	for i := uint64(0); i < tableCount; i++ {
		name, ln, err := format.ReadString(data[n:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated footer table name", err)
		}
		n += ln

		node, nn, err := metaindex.DeserializeNode(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += nn

		indexes = append(indexes, TableIndex{TableName: name, RootNode: node})
	}

	schemaCount, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer schema count")
	}
	n += m

	schemas := make([]*schema.TableSchema, 0, schemaCount)
	for i := uint64(0); i < schemaCount; i++ {
		_, ln, err := format.ReadString(data[n:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated footer schema table name", err)
		}
		n += ln

		ts, tn, err := schema.DeserializeTableSchema(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += tn

		schemas = append(schemas, ts)
	}

	if n+8 > len(data) {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer meta offset")
	}
	metaOffset := readInt64(data[n:])
	n += 8

	if n >= len(data) {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer time encoding")
	}
	timeEncoding := format.EncodingKind(data[n])
	n++

	if n >= len(data) {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer bloom filter flag")
	}
	var bf *metaindex.BloomFilter
	switch data[n] {
	case 0x00:
		n++
	case 0x01:
		n++
		var bn int
		var err error
		bf, bn, err = metaindex.DeserializeBloomFilter(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += bn
	default:
		return nil, 0, errs.New(errs.KindCorrupted, "invalid bloom filter presence flag")
	}

	propCount, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return nil, 0, errs.New(errs.KindCorrupted, "truncated footer property count")
	}
	n += m

	var props map[string]string
	if propCount > 0 {
		props = make(map[string]string, propCount)
	}
	for i := uint64(0); i < propCount; i++ {
		k, kn, err := format.ReadString(data[n:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated footer property key", err)
		}
		n += kn
		v, vn, err := format.ReadString(data[n:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated footer property value", err)
		}
		n += vn
		props[k] = v
	}

	return &Meta{
		TableIndexes: indexes,
		TableSchemas: schemas,
		MetaOffset:   metaOffset,
		TimeEncoding: timeEncoding,
		BloomFilter:  bf,
		Properties:   props,
	}, n, nil
}

func appendInt64(out []byte, v int64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[i] = byte(v >> (8 * i)) //nolint:gosec
	}

	return append(out, tmp[:]...)
}

func readInt64(data []byte) int64 {
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(data[i]) << (8 * i)
	}

	return v
}
