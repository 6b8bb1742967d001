// Package block defines the result shape a device-ordered read yields:
// one Block per device, plus the Result iterator handle a caller drains
// Blocks from.
package block

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/schema"
)

// Block is one device's fully materialized rows: a shared time column,
// and one value column per requested measurement (TAG columns repeat
// the device's segment value across every row; FIELD columns may carry
// nil entries for rows where that column has no value).
type Block struct {
	DeviceID schema.DeviceID
	Times    []int64
	Columns  []string
	Values   map[string][]any
}

// RowCount reports the block's row count.
func (b *Block) RowCount() int { return len(b.Times) }

// Result is the handle a caller drains device Blocks from. It carries a
// weak back-link to the Reader that produced it: once that Reader
// closes, every subsequent Next call fails with KindInvalidState rather
// than reading from a file the owner believes is closed, per spec.md
// §5's reader-invalidates-resultsets rule.
type Result struct {
	alive *bool
	next  func() (*Block, error)
}

// NewResult wraps next with the liveness check against alive. Called by
// reader.Reader; not meant to be constructed directly by library users.
func NewResult(alive *bool, next func() (*Block, error)) *Result {
	return &Result{alive: alive, next: next}
}

// Next returns the next device's Block, or errs.ErrNoMoreData once every
// device has been produced.
func (r *Result) Next() (*Block, error) {
	if r.alive == nil || !*r.alive {
		return nil, errs.New(errs.KindInvalidState, "tsfile: reader closed")
	}

	return r.next()
}
