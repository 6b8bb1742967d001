package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

func unsupportedEncoding(kind format.EncodingKind) error {
	return errs.Wrap(errs.KindNotSupported, fmt.Sprintf("encoding kind %s has no decoder", kind), nil)
}
