package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// plainEncoder adapts one of the typed Raw*Encoder implementations to
// the ValueEncoder (any-typed) surface.
type plainEncoder struct {
	dataType format.DataType
	i64      *RawInt64Encoder
	i32      *RawInt32Encoder
	f64      *RawFloat64Encoder
	f32      *RawFloat32Encoder
	b        *RawBoolEncoder
	s        *RawStringEncoder
}

func newPlainEncoder(dataType format.DataType) (ValueEncoder, error) {
	e := &plainEncoder{dataType: dataType}
	switch dataType {
	case format.Int32, format.Date:
		e.i32 = NewRawInt32Encoder()
	case format.Int64, format.Timestamp:
		e.i64 = NewRawInt64Encoder()
	case format.Double:
		e.f64 = NewRawFloat64Encoder()
	case format.Float:
		e.f32 = NewRawFloat32Encoder()
	case format.Boolean:
		e.b = NewRawBoolEncoder()
	case format.Text, format.String, format.Blob:
		e.s = NewRawStringEncoder()
	default:
		return nil, errs.New(errs.KindInvalidDataPoint, fmt.Sprintf("PLAIN cannot encode %s", dataType))
	}

	return e, nil
}

func (e *plainEncoder) WriteAny(v any) error {
	switch e.dataType {
	case format.Int32, format.Date:
		iv, ok := v.(int32)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected int32")
		}
		e.i32.Write(iv)
	case format.Int64, format.Timestamp:
		iv, ok := v.(int64)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected int64")
		}
		e.i64.Write(iv)
	case format.Double:
		fv, ok := v.(float64)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float64")
		}
		e.f64.Write(fv)
	case format.Float:
		fv, ok := v.(float32)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float32")
		}
		e.f32.Write(fv)
	case format.Boolean:
		bv, ok := v.(bool)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected bool")
		}
		e.b.Write(bv)
	case format.Text, format.String, format.Blob:
		bs, ok := v.([]byte)
		if !ok {
			if str, ok := v.(string); ok {
				bs = []byte(str)
			} else {
				return errs.New(errs.KindInvalidDataPoint, "expected []byte or string")
			}
		}
		e.s.Write(bs)
	}

	return nil
}

func (e *plainEncoder) Bytes() []byte {
	switch e.dataType {
	case format.Int32, format.Date:
		return e.i32.Bytes()
	case format.Int64, format.Timestamp:
		return e.i64.Bytes()
	case format.Double:
		return e.f64.Bytes()
	case format.Float:
		return e.f32.Bytes()
	case format.Boolean:
		return e.b.Bytes()
	default:
		return e.s.Bytes()
	}
}

func (e *plainEncoder) Len() int {
	switch e.dataType {
	case format.Int32, format.Date:
		return e.i32.Len()
	case format.Int64, format.Timestamp:
		return e.i64.Len()
	case format.Double:
		return e.f64.Len()
	case format.Float:
		return e.f32.Len()
	case format.Boolean:
		return e.b.Len()
	default:
		return e.s.Len()
	}
}

func (e *plainEncoder) Size() int {
	switch e.dataType {
	case format.Int32, format.Date:
		return e.i32.Size()
	case format.Int64, format.Timestamp:
		return e.i64.Size()
	case format.Double:
		return e.f64.Size()
	case format.Float:
		return e.f32.Size()
	case format.Boolean:
		return e.b.Size()
	default:
		return e.s.Size()
	}
}

func (e *plainEncoder) Reset() {
	switch e.dataType {
	case format.Int32, format.Date:
		e.i32.Reset()
	case format.Int64, format.Timestamp:
		e.i64.Reset()
	case format.Double:
		e.f64.Reset()
	case format.Float:
		e.f32.Reset()
	case format.Boolean:
		e.b.Reset()
	default:
		e.s.Reset()
	}
}

type plainDecoder struct {
	dataType format.DataType
}

func newPlainDecoder(dataType format.DataType) (ValueDecoder, error) {
	switch dataType {
	case format.Int32, format.Date, format.Int64, format.Timestamp,
		format.Double, format.Float, format.Boolean,
		format.Text, format.String, format.Blob:
		return plainDecoder{dataType: dataType}, nil
	default:
		return nil, errs.New(errs.KindInvalidDataPoint, fmt.Sprintf("PLAIN cannot decode %s", dataType))
	}
}

func (d plainDecoder) DecodeAny(data []byte, count int) ([]any, error) {
	out := make([]any, count)
	switch d.dataType {
	case format.Int32, format.Date:
		vs, _ := RawInt32Decoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	case format.Int64, format.Timestamp:
		vs, _ := RawInt64Decoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	case format.Double:
		vs, _ := RawFloat64Decoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	case format.Float:
		vs, _ := RawFloat32Decoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	case format.Boolean:
		vs, _ := RawBoolDecoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	default:
		vs, _ := RawStringDecoder{}.Decode(data, count)
		for i, v := range vs {
			out[i] = v
		}
	}

	return out, nil
}
