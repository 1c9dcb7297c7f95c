package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocatorZeroSize(t *testing.T) {
	buf, info := HeapAllocator{}.Allocate(PurposeResponse, 0)
	require.True(t, info.IsOk())
	assert.True(t, buf.Empty())
}

func TestHeapAllocatorSizing(t *testing.T) {
	buf, info := HeapAllocator{}.Allocate(PurposeRequest, 5)
	require.True(t, info.IsOk())
	assert.Equal(t, 5, buf.Len())
	assert.Len(t, buf.PDU(), 5)
	assert.Len(t, buf.Frame(), 5+framePrefixPad+frameSuffixPad)
}

func TestStaticAllocatorExhaustion(t *testing.T) {
	a := NewStaticAllocator(5 + framePrefixPad + frameSuffixPad)
	_, info := a.Allocate(PurposeRequest, 5)
	require.True(t, info.IsOk())

	_, info = a.Allocate(PurposeRequest, 6)
	assert.False(t, info.IsOk())
	assert.Equal(t, SourceAllocator, info.Source)
}

func TestFrameBufferSetLenShrinks(t *testing.T) {
	buf, info := HeapAllocator{}.Allocate(PurposeRequest, 10)
	require.True(t, info.IsOk())
	buf.SetLen(3)
	assert.Equal(t, 3, buf.Len())
	assert.Len(t, buf.PDU(), 3)
}
