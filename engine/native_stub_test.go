//go:build !fldsdk || !cgo

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeNotLinked(t *testing.T) {
	n := New()
	assert.False(t, Linked())

	_, err := Check(CallInit, n.Init("{}", false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Init: Execution failed")
	assert.Contains(t, err.Error(), "not linked")

	_, err = Check(CallEncoded, n.ProcessEncoded([]byte{0xff, 0xd8}))
	assert.Error(t, err)
	assert.Zero(t, n.Dropped())
	assert.Nil(t, n.Results())
}
