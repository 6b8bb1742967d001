package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsfile-go/tsfile/block"
	"github.com/tsfile-go/tsfile/errs"
)

func TestResultNextDelegatesWhileAlive(t *testing.T) {
	alive := true
	calls := 0
	res := block.NewResult(&alive, func() (*block.Block, error) {
		calls++

		return &block.Block{Times: []int64{1, 2, 3}}, nil
	})

	blk, err := res.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, blk.RowCount())
	assert.Equal(t, 1, calls)
}

func TestResultNextFailsOnceNotAlive(t *testing.T) {
	alive := false
	res := block.NewResult(&alive, func() (*block.Block, error) {
		t.Fatal("next should not be called once the reader is no longer alive")

		return nil, nil
	})

	_, err := res.Next()
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindInvalidState, kind)
}
