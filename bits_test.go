package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteCount(t *testing.T) {
	assert.Equal(t, 0, byteCount(0))
	assert.Equal(t, 1, byteCount(1))
	assert.Equal(t, 1, byteCount(8))
	assert.Equal(t, 2, byteCount(9))
	assert.Equal(t, 250, byteCount(2000))
}

func TestPackUnpackBitsRoundTrip(t *testing.T) {
	values := []bool{true, false, true, false, true, false, true, false, false, true}
	packed := packBits(values)
	assert.Equal(t, []byte{0x55, 0x02}, packed)

	unpacked := unpackBits(packed, uint16(len(values)))
	assert.Equal(t, values, unpacked)
}

func TestGetSetBitLSBFirst(t *testing.T) {
	bank := make([]byte, 1)
	setBit(bank, 0, true)
	assert.Equal(t, byte(0x01), bank[0])
	setBit(bank, 1, true)
	assert.Equal(t, byte(0x03), bank[0])
	setBit(bank, 0, false)
	assert.Equal(t, byte(0x02), bank[0])

	assert.True(t, getBit(bank, 1))
	assert.False(t, getBit(bank, 0))
}
