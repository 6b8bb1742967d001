// Package format defines the stable one-byte tags that identify data
// types, encodings, and compressors on the TsFile wire format. These
// tags are persisted to disk and must never be renumbered.
package format

// DataType identifies the primitive type of a measurement's values.
type DataType uint8

const (
	Boolean   DataType = 0x01
	Int32     DataType = 0x02
	Int64     DataType = 0x03
	Float     DataType = 0x04
	Double    DataType = 0x05
	Text      DataType = 0x06 // legacy bytes series, kept for forward compatibility
	String    DataType = 0x07
	Blob      DataType = 0x08
	Date      DataType = 0x09
	Timestamp DataType = 0x0A
	Vector    DataType = 0x0B // time-only surrogate for aligned chunk groups
)

func (t DataType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Text:
		return "TEXT"
	case String:
		return "STRING"
	case Blob:
		return "BLOB"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	case Vector:
		return "VECTOR"
	default:
		return "UNKNOWN"
	}
}

// IsNumeric reports whether the type carries a min/max/sum value summary.
func (t DataType) IsNumeric() bool {
	switch t {
	case Int32, Int64, Float, Double, Date, Timestamp:
		return true
	default:
		return false
	}
}

// IsBinaryLike reports whether the type carries a first/last-only value summary.
func (t DataType) IsBinaryLike() bool {
	switch t {
	case Text, String, Blob:
		return true
	default:
		return false
	}
}

// EncodingKind identifies the value encoder used for a chunk's pages.
type EncodingKind uint8

const (
	Plain      EncodingKind = 0x01
	Dictionary EncodingKind = 0x02
	RLE        EncodingKind = 0x03
	Diff       EncodingKind = 0x04
	TS2Diff    EncodingKind = 0x05
	Bitmap     EncodingKind = 0x06
	GorillaV1  EncodingKind = 0x07
	Regular    EncodingKind = 0x08
	Gorilla    EncodingKind = 0x09
	Zigzag     EncodingKind = 0x0A
	Freq       EncodingKind = 0x0B
)

func (e EncodingKind) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case Dictionary:
		return "DICTIONARY"
	case RLE:
		return "RLE"
	case Diff:
		return "DIFF"
	case TS2Diff:
		return "TS_2DIFF"
	case Bitmap:
		return "BITMAP"
	case GorillaV1:
		return "GORILLA_V1"
	case Regular:
		return "REGULAR"
	case Gorilla:
		return "GORILLA"
	case Zigzag:
		return "ZIGZAG"
	case Freq:
		return "FREQ"
	default:
		return "UNKNOWN"
	}
}

// CompressionKind identifies the block compressor applied to an encoded page body.
type CompressionKind uint8

const (
	Uncompressed CompressionKind = 0x01
	Snappy       CompressionKind = 0x02
	Gzip         CompressionKind = 0x03
	LZO          CompressionKind = 0x04
	SDT          CompressionKind = 0x05
	PAA          CompressionKind = 0x06
	PLA          CompressionKind = 0x07
	LZ4          CompressionKind = 0x08
	Zstd         CompressionKind = 0x09
)

func (c CompressionKind) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case LZO:
		return "LZO"
	case SDT:
		return "SDT"
	case PAA:
		return "PAA"
	case PLA:
		return "PLA"
	case LZ4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	default:
		return "UNKNOWN"
	}
}

// ColumnCategory distinguishes device-identifying columns from measured values.
type ColumnCategory uint8

const (
	CategoryTag   ColumnCategory = 0x01
	CategoryField ColumnCategory = 0x02
)

func (c ColumnCategory) String() string {
	switch c {
	case CategoryTag:
		return "TAG"
	case CategoryField:
		return "FIELD"
	default:
		return "UNKNOWN"
	}
}
