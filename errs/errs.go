// Package errs defines the stable, typed error catalogue shared by every
// TsFile package. Every fallible operation in this module returns (or
// wraps) one of these sentinels so callers can dispatch on error kind
// with errors.Is instead of string matching.
package errs

import "errors"

// Kind is a stable integer tag identifying a class of failure. Kinds are
// never renumbered; new kinds are appended.
type Kind int

const (
	KindInvalidArg Kind = iota + 1
	KindInvalidState
	KindAlreadyExists
	KindNotExist
	KindDeviceNotExist
	KindMeasurementNotExist
	KindTableNotExist
	KindColumnNotExist
	KindInvalidDataPoint
	KindFileReadErr
	KindFileWriteErr
	KindCorrupted
	KindOOM
	KindNoMoreData
	KindNotSupported
	KindUnsupportedOrder
	KindStatisticsClassMismatch
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArg:
		return "INVALID_ARG"
	case KindInvalidState:
		return "INVALID_STATE"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindNotExist:
		return "NOT_EXIST"
	case KindDeviceNotExist:
		return "DEVICE_NOT_EXIST"
	case KindMeasurementNotExist:
		return "MEASUREMENT_NOT_EXIST"
	case KindTableNotExist:
		return "TABLE_NOT_EXIST"
	case KindColumnNotExist:
		return "COLUMN_NOT_EXIST"
	case KindInvalidDataPoint:
		return "INVALID_DATA_POINT"
	case KindFileReadErr:
		return "FILE_READ_ERR"
	case KindFileWriteErr:
		return "FILE_WRITE_ERR"
	case KindCorrupted:
		return "TSFILE_CORRUPTED"
	case KindOOM:
		return "OOM"
	case KindNoMoreData:
		return "NO_MORE_DATA"
	case KindNotSupported:
		return "NOT_SUPPORTED"
	case KindUnsupportedOrder:
		return "UNSUPPORTED_ORDER"
	case KindStatisticsClassMismatch:
		return "STATISTICS_CLASS_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// Error pairs a Kind with a human-readable message and an optional
// wrapped cause, implementing the standard unwrap protocol.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}

	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel registered for e.Kind, so
// errors.Is(err, errs.ErrNotExist) works against a wrapped *Error too.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]

	return ok && sentinel == target
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, if err is or wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// Sentinel errors, one per Kind, for direct errors.Is comparisons
// against package-level APIs that don't need a custom message.
var (
	ErrInvalidArg               = &Error{Kind: KindInvalidArg, Message: "invalid argument"}
	ErrInvalidState              = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrAlreadyExists             = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrNotExist                  = &Error{Kind: KindNotExist, Message: "does not exist"}
	ErrDeviceNotExist            = &Error{Kind: KindDeviceNotExist, Message: "device does not exist"}
	ErrMeasurementNotExist       = &Error{Kind: KindMeasurementNotExist, Message: "measurement does not exist"}
	ErrTableNotExist             = &Error{Kind: KindTableNotExist, Message: "table does not exist"}
	ErrColumnNotExist            = &Error{Kind: KindColumnNotExist, Message: "column does not exist"}
	ErrInvalidDataPoint          = &Error{Kind: KindInvalidDataPoint, Message: "invalid data point"}
	ErrFileReadErr               = &Error{Kind: KindFileReadErr, Message: "file read error"}
	ErrFileWriteErr              = &Error{Kind: KindFileWriteErr, Message: "file write error"}
	ErrCorrupted                 = &Error{Kind: KindCorrupted, Message: "tsfile corrupted"}
	ErrOOM                       = &Error{Kind: KindOOM, Message: "out of memory"}
	ErrNoMoreData                = &Error{Kind: KindNoMoreData, Message: "no more data"}
	ErrNotSupported              = &Error{Kind: KindNotSupported, Message: "not supported"}
	ErrUnsupportedOrder          = &Error{Kind: KindUnsupportedOrder, Message: "unsupported order"}
	ErrStatisticsClassMismatch   = &Error{Kind: KindStatisticsClassMismatch, Message: "statistics class mismatch"}
	ErrHashCollision             = &Error{Kind: KindAlreadyExists, Message: "metric hash collision"}
	ErrInvalidHeaderSize         = &Error{Kind: KindCorrupted, Message: "invalid header size"}
	ErrInvalidHeaderFlags        = &Error{Kind: KindCorrupted, Message: "invalid header flags"}
	ErrInvalidMagic              = &Error{Kind: KindCorrupted, Message: "invalid magic string"}
)

var sentinels = map[Kind]error{
	KindInvalidArg:              ErrInvalidArg,
	KindInvalidState:            ErrInvalidState,
	KindAlreadyExists:           ErrAlreadyExists,
	KindNotExist:                ErrNotExist,
	KindDeviceNotExist:          ErrDeviceNotExist,
	KindMeasurementNotExist:     ErrMeasurementNotExist,
	KindTableNotExist:           ErrTableNotExist,
	KindColumnNotExist:          ErrColumnNotExist,
	KindInvalidDataPoint:        ErrInvalidDataPoint,
	KindFileReadErr:             ErrFileReadErr,
	KindFileWriteErr:            ErrFileWriteErr,
	KindCorrupted:               ErrCorrupted,
	KindOOM:                     ErrOOM,
	KindNoMoreData:              ErrNoMoreData,
	KindNotSupported:            ErrNotSupported,
	KindUnsupportedOrder:        ErrUnsupportedOrder,
	KindStatisticsClassMismatch: ErrStatisticsClassMismatch,
}
