package encoding

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// toInt64 widens the concrete numeric/date/timestamp value carried in v
// to the int64 domain the delta-family encoders operate on.
func toInt64(dataType format.DataType, v any) (int64, error) {
	switch dataType {
	case format.Int32, format.Date:
		iv, ok := v.(int32)
		if !ok {
			return 0, errs.New(errs.KindInvalidDataPoint, "expected int32")
		}

		return int64(iv), nil
	case format.Int64, format.Timestamp:
		iv, ok := v.(int64)
		if !ok {
			return 0, errs.New(errs.KindInvalidDataPoint, "expected int64")
		}

		return iv, nil
	default:
		return 0, errs.New(errs.KindInvalidDataPoint, "expected integer-like value")
	}
}

func fromInt64(dataType format.DataType, vals []int64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch dataType {
		case format.Int32, format.Date:
			out[i] = int32(v) //nolint:gosec
		default:
			out[i] = v
		}
	}

	return out
}

// dictAdapter wraps DictionaryEncoder for STRING/TEXT/BLOB columns.
type dictAdapter struct {
	enc *DictionaryEncoder
}

func (a *dictAdapter) WriteAny(v any) error {
	bs, ok := v.([]byte)
	if !ok {
		if str, ok := v.(string); ok {
			bs = []byte(str)
		} else {
			return errs.New(errs.KindInvalidDataPoint, "expected []byte or string")
		}
	}
	a.enc.Write(bs)

	return nil
}

func (a *dictAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *dictAdapter) Len() int      { return a.enc.Len() }
func (a *dictAdapter) Size() int     { return a.enc.Size() }
func (a *dictAdapter) Reset()        { a.enc.Reset() }

type dictDecodeAdapter struct{}

func (dictDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := DictionaryDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}

	return out, nil
}

// rleAdapter wraps RLEInt64Encoder, widening non-int64 numerics and
// booleans into the int64 domain RLE runs over.
type rleAdapter struct {
	enc      *RLEInt64Encoder
	dataType format.DataType
}

func (a *rleAdapter) WriteAny(v any) error {
	if a.dataType == format.Boolean {
		bv, ok := v.(bool)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected bool")
		}
		if bv {
			a.enc.Write(1)
		} else {
			a.enc.Write(0)
		}

		return nil
	}

	iv, err := toInt64(a.dataType, v)
	if err != nil {
		return err
	}
	a.enc.Write(iv)

	return nil
}

func (a *rleAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *rleAdapter) Len() int      { return a.enc.Len() }
func (a *rleAdapter) Size() int     { return a.enc.Size() }
func (a *rleAdapter) Reset()        { a.enc.Reset() }

type rleDecodeAdapter struct {
	dataType format.DataType
}

func (a rleDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := RLEInt64Decoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	if a.dataType == format.Boolean {
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v != 0
		}

		return out, nil
	}

	return fromInt64(a.dataType, vals), nil
}

// ts2diffAdapter wraps TS2DiffEncoder for int32/int64/date/timestamp
// columns.
type ts2diffAdapter struct {
	enc      *TS2DiffEncoder
	dataType format.DataType
}

func (a *ts2diffAdapter) WriteAny(v any) error {
	iv, err := toInt64(a.dataType, v)
	if err != nil {
		return err
	}
	a.enc.Write(iv)

	return nil
}

func (a *ts2diffAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *ts2diffAdapter) Len() int      { return a.enc.Len() }
func (a *ts2diffAdapter) Size() int     { return a.enc.Size() }
func (a *ts2diffAdapter) Reset()        { a.enc.Reset() }

type ts2diffDecodeAdapter struct {
	dataType format.DataType
}

func (a ts2diffDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := TS2DiffDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	return fromInt64(a.dataType, vals), nil
}

// diffAdapter wraps DiffEncoder for int32/int64/date/timestamp columns.
type diffAdapter struct {
	enc      *DiffEncoder
	dataType format.DataType
}

func (a *diffAdapter) WriteAny(v any) error {
	iv, err := toInt64(a.dataType, v)
	if err != nil {
		return err
	}
	a.enc.Write(iv)

	return nil
}

func (a *diffAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *diffAdapter) Len() int      { return a.enc.Len() }
func (a *diffAdapter) Size() int     { return a.enc.Size() }
func (a *diffAdapter) Reset()        { a.enc.Reset() }

type diffDecodeAdapter struct {
	dataType format.DataType
}

func (a diffDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := DiffDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	return fromInt64(a.dataType, vals), nil
}

// regularAdapter wraps RegularEncoder for int32/int64/date/timestamp
// columns, most commonly the time column of a regular-interval chunk.
type regularAdapter struct {
	enc      *RegularEncoder
	dataType format.DataType
}

func (a *regularAdapter) WriteAny(v any) error {
	iv, err := toInt64(a.dataType, v)
	if err != nil {
		return err
	}
	a.enc.Write(iv)
	if !a.enc.Valid() {
		return errs.New(errs.KindInvalidDataPoint, "REGULAR encoding requires a constant interval")
	}

	return nil
}

func (a *regularAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *regularAdapter) Len() int      { return a.enc.Len() }
func (a *regularAdapter) Size() int     { return a.enc.Size() }
func (a *regularAdapter) Reset()        { a.enc.Reset() }

// Valid exposes the underlying encoder's sticky validity flag. Nothing
// falls back to another encoding when the run turns out irregular:
// WriteAny fails instead.
func (a *regularAdapter) Valid() bool { return a.enc.Valid() }

type regularDecodeAdapter struct {
	dataType format.DataType
}

func (a regularDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := RegularDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	return fromInt64(a.dataType, vals), nil
}

// bitmapAdapter wraps BitmapEncoder for boolean columns.
type bitmapAdapter struct {
	enc *BitmapEncoder
}

func (a *bitmapAdapter) WriteAny(v any) error {
	bv, ok := v.(bool)
	if !ok {
		return errs.New(errs.KindInvalidDataPoint, "expected bool")
	}
	a.enc.Write(bv)

	return nil
}

func (a *bitmapAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *bitmapAdapter) Len() int      { return a.enc.Len() }
func (a *bitmapAdapter) Size() int     { return a.enc.Size() }
func (a *bitmapAdapter) Reset()        { a.enc.Reset() }

type bitmapDecodeAdapter struct{}

func (bitmapDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := BitmapDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}

	return out, nil
}

// gorillaAdapter wraps GorillaEncoder for double/float columns, widening
// float32 values to float64 (the algorithm operates on the wider type;
// the chunk's declared DataType tells the decode side to narrow back).
type gorillaAdapter struct {
	enc      *GorillaEncoder
	dataType format.DataType
}

func (a *gorillaAdapter) WriteAny(v any) error {
	switch a.dataType {
	case format.Double:
		fv, ok := v.(float64)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float64")
		}
		a.enc.Write(fv)
	case format.Float:
		fv, ok := v.(float32)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float32")
		}
		a.enc.Write(float64(fv))
	default:
		return errs.New(errs.KindInvalidDataPoint, "GORILLA requires DOUBLE or FLOAT")
	}

	return nil
}

func (a *gorillaAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *gorillaAdapter) Len() int      { return a.enc.Len() }
func (a *gorillaAdapter) Size() int     { return a.enc.Size() }
func (a *gorillaAdapter) Reset()        { a.enc.Reset() }

type gorillaDecodeAdapter struct {
	dataType format.DataType
}

func (a gorillaDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := GorillaDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(vals))
	for i, v := range vals {
		if a.dataType == format.Float {
			out[i] = float32(v)
		} else {
			out[i] = v
		}
	}

	return out, nil
}

// zigzagAdapter wraps ZigzagEncoder for signed integer columns that are
// not necessarily monotonic.
type zigzagAdapter struct {
	enc      *ZigzagEncoder
	dataType format.DataType
}

func (a *zigzagAdapter) WriteAny(v any) error {
	iv, err := toInt64(a.dataType, v)
	if err != nil {
		return err
	}
	a.enc.Write(iv)

	return nil
}

func (a *zigzagAdapter) Bytes() []byte { return a.enc.Bytes() }
func (a *zigzagAdapter) Len() int      { return a.enc.Len() }
func (a *zigzagAdapter) Size() int     { return a.enc.Size() }
func (a *zigzagAdapter) Reset()        { a.enc.Reset() }

type zigzagDecodeAdapter struct {
	dataType format.DataType
}

func (a zigzagDecodeAdapter) DecodeAny(data []byte, count int) ([]any, error) {
	vals, err := ZigzagDecoder{}.Decode(data, count)
	if err != nil {
		return nil, err
	}

	return fromInt64(a.dataType, vals), nil
}
