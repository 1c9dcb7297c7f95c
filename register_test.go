package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterArrayWriteProtection(t *testing.T) {
	mask := make([]byte, 1)
	setBit(mask, 2, true) // index 2 protected

	bank := &RegisterArray{Values: []uint16{1, 2, 3, 4}, Mask: mask}

	require.True(t, bank.WriteOK(0))
	require.True(t, bank.WriteOK(1))
	require.False(t, bank.WriteOK(2))
	require.True(t, bank.WriteOK(3))
	require.False(t, bank.WriteOK(4)) // out of range

	bank.Write(0, 99)
	assert.Equal(t, uint16(99), bank.Read(0))
}

func TestCoilArrayPackedLayout(t *testing.T) {
	bank := &CoilArray{Values: make([]byte, 2), N: 10}
	bank.Write(0, true)
	bank.Write(8, true)
	assert.Equal(t, []byte{0x01, 0x01}, bank.Values)
	assert.True(t, bank.Read(0))
	assert.True(t, bank.Read(8))
	assert.False(t, bank.Read(1))
}

func TestRangeOKOverflowSafe(t *testing.T) {
	assert.True(t, rangeOK(0, 4, 4))
	assert.False(t, rangeOK(3, 2, 4))
	// index + count would wrap a 16-bit sum without the uint32 widening.
	assert.False(t, rangeOK(0xFFFF, 2, 4))
}

func TestRegisterFuncVirtualized(t *testing.T) {
	values := map[uint16]uint16{0: 10, 1: 20}
	bank := RegisterFunc{
		CountFunc:  func() uint16 { return 2 },
		ReadFunc:   func(i uint16) uint16 { return values[i] },
		WriteFunc:  func(i uint16, v uint16) { values[i] = v },
		ReadOKFunc: func(i uint16) bool { return i < 2 },
	}
	assert.Equal(t, uint16(2), bank.Count())
	assert.Equal(t, uint16(20), bank.Read(1))
	assert.False(t, bank.WriteOK(0)) // no WriteOKFunc supplied
}
