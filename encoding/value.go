package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// ValueEncoder is the common surface page.Writer drives regardless of
// the underlying data type: values are appended through WriteAny using
// the runtime type matching the chunk's declared format.DataType.
type ValueEncoder interface {
	WriteAny(v any) error
	Bytes() []byte
	Len() int
	Size() int
	Reset()
}

// ValueDecoder is the common surface page readers drive to materialize
// a column back into `any` values (boxed the same way database/sql
// driver values are — the row materializer downstream is the layer
// that knows the concrete type again via schema).
type ValueDecoder interface {
	DecodeAny(data []byte, count int) ([]any, error)
}

// NewValueEncoder returns the encoder for (dataType, kind). Returns
// errs.ErrInvalidDataPoint if the kind cannot encode the type, and
// errs.ErrNotSupported for FREQ (reserved, no write-side per spec).
func NewValueEncoder(dataType format.DataType, kind format.EncodingKind) (ValueEncoder, error) {
	switch kind {
	case format.Plain:
		return newPlainEncoder(dataType)
	case format.Dictionary:
		if !dataType.IsBinaryLike() {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &dictAdapter{enc: NewDictionaryEncoder()}, nil
	case format.RLE:
		if !dataType.IsNumeric() && dataType != format.Boolean {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &rleAdapter{enc: NewRLEInt64Encoder(), dataType: dataType}, nil
	case format.TS2Diff:
		if dataType != format.Int32 && dataType != format.Int64 &&
			dataType != format.Date && dataType != format.Timestamp {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &ts2diffAdapter{enc: NewTS2DiffEncoder(), dataType: dataType}, nil
	case format.Diff:
		if dataType != format.Int32 && dataType != format.Int64 &&
			dataType != format.Date && dataType != format.Timestamp {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &diffAdapter{enc: NewDiffEncoder(), dataType: dataType}, nil
	case format.Regular:
		if dataType != format.Int32 && dataType != format.Int64 &&
			dataType != format.Date && dataType != format.Timestamp {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &regularAdapter{enc: NewRegularEncoder(), dataType: dataType}, nil
	case format.Bitmap:
		if dataType != format.Boolean {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &bitmapAdapter{enc: NewBitmapEncoder()}, nil
	case format.Gorilla, format.GorillaV1:
		if dataType != format.Double && dataType != format.Float {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &gorillaAdapter{enc: NewGorillaEncoder(), dataType: dataType}, nil
	case format.Zigzag:
		if dataType != format.Int32 && dataType != format.Int64 &&
			dataType != format.Date && dataType != format.Timestamp {
			return nil, invalidDataPoint(dataType, kind)
		}

		return &zigzagAdapter{enc: NewZigzagEncoder(), dataType: dataType}, nil
	case format.Freq:
		return nil, unsupportedEncoding(kind)
	default:
		return nil, errs.New(errs.KindInvalidArg, fmt.Sprintf("unknown encoding kind %d", kind))
	}
}

// NewValueDecoder returns the decoder for (dataType, kind).
func NewValueDecoder(dataType format.DataType, kind format.EncodingKind) (ValueDecoder, error) {
	switch kind {
	case format.Plain:
		return newPlainDecoder(dataType)
	case format.Dictionary:
		return dictDecodeAdapter{}, nil
	case format.RLE:
		return rleDecodeAdapter{dataType: dataType}, nil
	case format.TS2Diff:
		return ts2diffDecodeAdapter{dataType: dataType}, nil
	case format.Diff:
		return diffDecodeAdapter{dataType: dataType}, nil
	case format.Regular:
		return regularDecodeAdapter{dataType: dataType}, nil
	case format.Bitmap:
		return bitmapDecodeAdapter{}, nil
	case format.Gorilla, format.GorillaV1:
		return gorillaDecodeAdapter{dataType: dataType}, nil
	case format.Zigzag:
		return zigzagDecodeAdapter{dataType: dataType}, nil
	case format.Freq:
		return nil, unsupportedEncoding(kind)
	default:
		return nil, errs.New(errs.KindInvalidArg, fmt.Sprintf("unknown encoding kind %d", kind))
	}
}

func invalidDataPoint(dataType format.DataType, kind format.EncodingKind) error {
	return errs.New(errs.KindInvalidDataPoint, fmt.Sprintf("encoding %s cannot encode %s", kind, dataType))
}
