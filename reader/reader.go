// Package reader opens a TsFile for random-access query: locating a
// device or (device, measurement) pair via the on-disk index tree
// without scanning the file, decoding chunk/page data on demand, and
// materializing rows in device order. Not safe for concurrent use by
// multiple goroutines — callers needing concurrent reads open
// independent Readers over the same io.ReaderAt.
package reader

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/footer"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// footerProbeBytes is the initial read size spec.md §4.7's footer
// discovery algorithm takes off the tail of the file before deciding
// whether a second, larger read is needed.
const footerProbeBytes = 1024

// chunkProbeBytes is the initial read size readChunk takes at a chunk
// header's offset before it knows the chunk's total on-disk length.
const chunkProbeBytes = 512

var nextFileID uint64

// Reader opens one TsFile for query. Construct with Open.
type Reader struct {
	ra   io.ReaderAt
	size int64
	cfg  *config.Reader

	meta         *footer.Meta
	tableRoots   map[string]metaindex.Node
	tableSchemas map[string]*schema.TableSchema

	cache  *ChunkCache
	fileID uint64

	closed bool
	alive  *bool
}

// FileInfo summarizes a file's shape without materializing any rows.
type FileInfo struct {
	TableCount       int
	DeviceCount      int
	MeasurementCount int
	FileSize         int64
	TimeEncoding     format.EncodingKind
}

// Open validates a TsFile's header and discovers its footer, per
// spec.md §4.7. ra must stay valid and stable (no concurrent writes)
// for the Reader's lifetime.
func Open(ra io.ReaderAt, size int64, cfg *config.Reader) (*Reader, error) {
	if cfg == nil {
		var err error
		cfg, err = config.NewReader()
		if err != nil {
			return nil, err
		}
	}

	headerLen := int64(len(format.Magic)) + 1
	if size < headerLen {
		return nil, errs.New(errs.KindCorrupted, "tsfile: file too small for header")
	}

	header := make([]byte, headerLen)
	if _, err := ra.ReadAt(header, 0); err != nil {
		return nil, errs.Wrap(errs.KindFileReadErr, "tsfile: read header", err)
	}
	if string(header[:len(format.Magic)]) != format.Magic {
		return nil, errs.New(errs.KindCorrupted, "tsfile: invalid magic")
	}
	if cfg.StrictValidation && header[len(format.Magic)] != format.Version {
		return nil, errs.New(errs.KindNotSupported, "tsfile: unsupported format version")
	}

	meta, err := discoverFooter(ra, size)
	if err != nil {
		return nil, err
	}

	tableRoots := make(map[string]metaindex.Node, len(meta.TableIndexes))
	for _, ti := range meta.TableIndexes {
		tableRoots[ti.TableName] = ti.RootNode
	}
	tableSchemas := make(map[string]*schema.TableSchema, len(meta.TableSchemas))
	for _, ts := range meta.TableSchemas {
		tableSchemas[ts.TableName] = ts
	}

	alive := true

	return &Reader{
		ra:           ra,
		size:         size,
		cfg:          cfg,
		meta:         meta,
		tableRoots:   tableRoots,
		tableSchemas: tableSchemas,
		cache:        NewChunkCache(cfg.ChunkCacheCapacity),
		fileID:       atomic.AddUint64(&nextFileID, 1),
		alive:        &alive,
	}, nil
}

// discoverFooter implements spec.md §4.7's footer discovery algorithm:
// read the last min(size, footerProbeBytes) bytes, validate the
// trailing {metaSize, magic} pair, and re-read a wider window only if
// the probe didn't already cover the whole meta record.
func discoverFooter(ra io.ReaderAt, size int64) (*footer.Meta, error) {
	if size < int64(footer.TrailerSize) {
		return nil, errs.New(errs.KindCorrupted, "tsfile: file too small for trailer")
	}

	probeLen := int64(footerProbeBytes)
	if size < probeLen {
		probeLen = size
	}
	probe := make([]byte, probeLen)
	if _, err := ra.ReadAt(probe, size-probeLen); err != nil {
		return nil, errs.Wrap(errs.KindFileReadErr, "tsfile: read trailer", err)
	}

	tail := probe[len(probe)-footer.TrailerSize:]
	metaSize := binary.LittleEndian.Uint32(tail[:4])
	if string(tail[4:]) != format.Magic {
		return nil, errs.New(errs.KindCorrupted, "tsfile: invalid trailer magic")
	}

	need := int64(metaSize) + int64(footer.TrailerSize)
	if need > size {
		return nil, errs.New(errs.KindCorrupted, "tsfile: trailer meta size exceeds file size")
	}

	var metaBytes []byte
	if need > int64(len(probe)) {
		full := make([]byte, need)
		if _, err := ra.ReadAt(full, size-need); err != nil {
			return nil, errs.Wrap(errs.KindFileReadErr, "tsfile: re-read trailer", err)
		}
		metaBytes = full[:metaSize]
	} else {
		start := int64(len(probe)) - need
		metaBytes = probe[start : start+int64(metaSize)]
	}

	meta, n, err := footer.Deserialize(metaBytes)
	if err != nil {
		return nil, err
	}
	if n != int(metaSize) {
		return nil, errs.New(errs.KindCorrupted, "tsfile: trailer meta size mismatch")
	}

	return meta, nil
}

// descendTree walks from an already-known root Node down to leafType,
// at every step choosing the child via metaindex.BinarySearchEntries
// (exact only when exactAtLeaf is set and the current node is the leaf
// level — every other step is a lower-bound descent). It returns the
// chosen child's byte region; found is false when no child qualifies.
func (r *Reader) descendTree(root metaindex.Node, leafType metaindex.NodeType, target string, exactAtLeaf bool) (start, end int64, found bool, err error) {
	node := root
	for {
		exact := exactAtLeaf && node.Type == leafType
		idx, ok := metaindex.BinarySearchEntries(node.Children, target, exact)
		if !ok {
			return 0, 0, false, nil
		}

		childStart := node.Children[idx].Offset
		childEnd := node.EndOffset
		if idx+1 < len(node.Children) {
			childEnd = node.Children[idx+1].Offset
		}

		if node.Type == leafType {
			return childStart, childEnd, true, nil
		}

		child, err := r.readNode(childStart, childEnd)
		if err != nil {
			return 0, 0, false, err
		}
		node = child
	}
}

// iterLeafEntries walks the whole subtree rooted at node in ascending
// key order, calling visit once per leaf entry with its byte region.
func (r *Reader) iterLeafEntries(node metaindex.Node, leafType metaindex.NodeType, visit func(key string, start, end int64) error) error {
	for i, e := range node.Children {
		end := node.EndOffset
		if i+1 < len(node.Children) {
			end = node.Children[i+1].Offset
		}

		if node.Type == leafType {
			if err := visit(e.Key, e.Offset, end); err != nil {
				return err
			}

			continue
		}

		child, err := r.readNode(e.Offset, end)
		if err != nil {
			return err
		}
		if err := r.iterLeafEntries(child, leafType, visit); err != nil {
			return err
		}
	}

	return nil
}

// readNode reads and parses the MetaIndexNode occupying the exact byte
// range [start, end), as computed by a parent node's descent.
func (r *Reader) readNode(start, end int64) (metaindex.Node, error) {
	if end <= start {
		return metaindex.Node{}, errs.New(errs.KindCorrupted, "tsfile: invalid meta index node region")
	}

	buf := make([]byte, end-start)
	if _, err := r.ra.ReadAt(buf, start); err != nil {
		return metaindex.Node{}, errs.Wrap(errs.KindFileReadErr, "tsfile: read meta index node", err)
	}

	node, _, err := metaindex.DeserializeNode(buf)

	return node, err
}

// readChunk reads one chunk's raw on-disk bytes (header + compressed
// body) at offset, probing chunkProbeBytes first since the chunk's
// total length isn't known until its header is parsed, and only
// re-reading the full range when the probe came up short. Results are
// cached by (fileID, offset).
func (r *Reader) readChunk(offset int64) ([]byte, chunk.Header, int, error) {
	if cached, ok := r.cache.Get(r.fileID, offset); ok {
		h, n, err := chunk.ParseHeader(cached)
		if err != nil {
			return nil, chunk.Header{}, 0, err
		}

		return cached, h, n, nil
	}

	probeLen := int64(chunkProbeBytes)
	if remain := r.size - offset; remain < probeLen {
		probeLen = remain
	}
	if probeLen <= 0 {
		return nil, chunk.Header{}, 0, errs.New(errs.KindCorrupted, "tsfile: chunk offset past end of file")
	}

	buf := make([]byte, probeLen)
	if _, err := r.ra.ReadAt(buf, offset); err != nil {
		return nil, chunk.Header{}, 0, errs.Wrap(errs.KindFileReadErr, "tsfile: probe chunk header", err)
	}

	h, n, err := chunk.ParseHeader(buf)
	if err != nil {
		return nil, chunk.Header{}, 0, err
	}

	total := n + h.DataSize
	switch {
	case total > len(buf):
		full := make([]byte, total)
		if _, err := r.ra.ReadAt(full, offset); err != nil {
			return nil, chunk.Header{}, 0, errs.Wrap(errs.KindFileReadErr, "tsfile: read chunk", err)
		}
		buf = full
	default:
		buf = buf[:total]
	}

	r.cache.Put(r.fileID, offset, buf)

	return buf, h, n, nil
}

// Lookup finds the TimeseriesIndex for one (device, measurement) pair,
// per spec.md §4.7 steps 1-4: descend the table's device-index tree
// (exact match required), read the resulting measurement-index tree's
// root, then descend it (prefix/lower-bound, even at the leaf) and
// validate the record found actually names measurementName.
//
// Passing measurementName == "" looks up an aligned device's shared
// time-index, which NewTimeseriesIndex always records under that key.
func (r *Reader) Lookup(deviceID schema.DeviceID, measurementName string) (metaindex.TimeseriesIndex, error) {
	root, ok := r.tableRoots[deviceID.TableName]
	if !ok {
		return metaindex.TimeseriesIndex{}, errs.New(errs.KindTableNotExist, "tsfile: table "+deviceID.TableName+" not found")
	}

	measStart, measEnd, found, err := r.descendTree(root, metaindex.LeafDevice, deviceID.String(), true)
	if err != nil {
		return metaindex.TimeseriesIndex{}, err
	}
	if !found {
		return metaindex.TimeseriesIndex{}, errs.New(errs.KindDeviceNotExist, "tsfile: device "+deviceID.String()+" not found")
	}

	if r.meta.BloomFilter != nil && !r.meta.BloomFilter.MightContain(deviceID.TableName, deviceID, measurementName) {
		return metaindex.TimeseriesIndex{}, errs.New(errs.KindMeasurementNotExist, "tsfile: measurement "+measurementName+" not found")
	}

	measRoot, err := r.readNode(measStart, measEnd)
	if err != nil {
		return metaindex.TimeseriesIndex{}, err
	}

	tsStart, tsEnd, found, err := r.descendTree(measRoot, metaindex.LeafMeasurement, measurementName, false)
	if err != nil {
		return metaindex.TimeseriesIndex{}, err
	}
	if !found {
		return metaindex.TimeseriesIndex{}, errs.New(errs.KindMeasurementNotExist, "tsfile: measurement "+measurementName+" not found")
	}

	buf := make([]byte, tsEnd-tsStart)
	if _, err := r.ra.ReadAt(buf, tsStart); err != nil {
		return metaindex.TimeseriesIndex{}, errs.Wrap(errs.KindFileReadErr, "tsfile: read timeseries index", err)
	}

	ts, _, err := metaindex.DeserializeTimeseriesIndex(buf)
	if err != nil {
		return metaindex.TimeseriesIndex{}, err
	}
	if ts.MeasurementName != measurementName {
		return metaindex.TimeseriesIndex{}, errs.New(errs.KindMeasurementNotExist, "tsfile: measurement "+measurementName+" not found")
	}

	return ts, nil
}

// TableSchema returns the registered schema for tableName, if any.
func (r *Reader) TableSchema(tableName string) (*schema.TableSchema, bool) {
	ts, ok := r.tableSchemas[tableName]

	return ts, ok
}

// FileInfo walks every table's device and measurement index trees to
// report the file's shape.
func (r *Reader) FileInfo() (FileInfo, error) {
	info := FileInfo{
		TableCount:   len(r.meta.TableIndexes),
		FileSize:     r.size,
		TimeEncoding: r.meta.TimeEncoding,
	}

	for _, ti := range r.meta.TableIndexes {
		err := r.iterLeafEntries(ti.RootNode, metaindex.LeafDevice, func(_ string, start, end int64) error {
			info.DeviceCount++

			measRoot, err := r.readNode(start, end)
			if err != nil {
				return err
			}

			return r.iterLeafEntries(measRoot, metaindex.LeafMeasurement, func(_ string, _, _ int64) error {
				info.MeasurementCount++

				return nil
			})
		})
		if err != nil {
			return FileInfo{}, err
		}
	}

	return info, nil
}

// Close invalidates the Reader and every block.Result it produced.
// Idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	*r.alive = false

	return nil
}
