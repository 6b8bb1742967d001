package encoding

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/internal/pool"
)

// DictionaryEncoder implements DICTIONARY for STRING/TEXT/BLOB columns:
// distinct values are assigned ids in first-seen order, the dictionary
// is serialized once, and the per-row id stream is delta-free RLE
// (falling back to plain varints when ids don't run, e.g. high
// cardinality columns that gain little from RLE).
//
// Wire format: {dictSize uvarint, dictSize * (len uvarint, bytes),
// idEncoding byte (0=plain varint, 1=RLE), id stream}.
type DictionaryEncoder struct {
	ids      []uint64
	dict     [][]byte
	index    map[string]uint64
	count    int
}

func NewDictionaryEncoder() *DictionaryEncoder {
	return &DictionaryEncoder{index: make(map[string]uint64)}
}

func (e *DictionaryEncoder) Write(v []byte) { e.WriteSlice([][]byte{v}) }

func (e *DictionaryEncoder) WriteSlice(vs [][]byte) {
	for _, v := range vs {
		key := string(v)
		id, ok := e.index[key]
		if !ok {
			id = uint64(len(e.dict))
			e.dict = append(e.dict, append([]byte(nil), v...))
			e.index[key] = id
		}
		e.ids = append(e.ids, id)
	}
	e.count += len(vs)
}

const (
	dictIDPlain = 0
	dictIDRLE   = 1
)

func (e *DictionaryEncoder) Bytes() []byte {
	buf := pool.Get()
	defer pool.Put(buf)

	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(e.dict)))
	buf.Write(tmp[:n])

	for _, entry := range e.dict {
		n = binary.PutUvarint(tmp[:], uint64(len(entry)))
		buf.Write(tmp[:n])
		buf.Write(entry)
	}

	// Heuristic: RLE wins when the run count is materially smaller than
	// the id count; otherwise plain varints avoid RLE's per-run overhead.
	runs := countRuns(e.ids)
	if len(e.ids) > 0 && runs*2 < len(e.ids) {
		buf.Write([]byte{dictIDRLE})
		rle := NewRLEInt64Encoder()
		idsAsInt64 := make([]int64, len(e.ids))
		for i, id := range e.ids {
			idsAsInt64[i] = int64(id) //nolint:gosec
		}
		rle.WriteSlice(idsAsInt64)
		buf.Write(rle.Bytes())
	} else {
		buf.Write([]byte{dictIDPlain})
		for _, id := range e.ids {
			n = binary.PutUvarint(tmp[:], id)
			buf.Write(tmp[:n])
		}
	}

	return append([]byte(nil), buf.Bytes()...)
}

func countRuns(ids []uint64) int {
	if len(ids) == 0 {
		return 0
	}
	runs := 1
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1] {
			runs++
		}
	}

	return runs
}

func (e *DictionaryEncoder) Len() int  { return e.count }
func (e *DictionaryEncoder) Size() int { return len(e.Bytes()) }

func (e *DictionaryEncoder) Reset() {
	e.ids = nil
	e.dict = nil
	e.index = make(map[string]uint64)
	e.count = 0
}

// DictionaryDecoder decodes DICTIONARY-encoded STRING/TEXT/BLOB columns.
type DictionaryDecoder struct{}

func (DictionaryDecoder) Decode(data []byte, count int) ([][]byte, error) {
	offset := 0

	dictSize, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return nil, nil
	}
	offset += n

	dict := make([][]byte, 0, dictSize)
	for i := uint64(0); i < dictSize; i++ {
		length, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return nil, nil
		}
		offset += n
		end := offset + int(length)
		if end > len(data) {
			return nil, nil
		}
		dict = append(dict, data[offset:end])
		offset = end
	}

	if offset >= len(data) {
		return nil, nil
	}
	idEncoding := data[offset]
	offset++

	var ids []int64
	switch idEncoding {
	case dictIDRLE:
		ids, _ = RLEInt64Decoder{}.Decode(data[offset:], count)
	default:
		ids = make([]int64, 0, count)
		for i := 0; i < count && offset < len(data); i++ {
			id, n := binary.Uvarint(data[offset:])
			if n <= 0 {
				break
			}
			offset += n
			ids = append(ids, int64(id)) //nolint:gosec
		}
	}

	out := make([][]byte, 0, count)
	for _, id := range ids {
		if id < 0 || int(id) >= len(dict) {
			out = append(out, nil)

			continue
		}
		out = append(out, dict[id])
	}

	return out, nil
}
