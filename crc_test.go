package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16KnownVector(t *testing.T) {
	// Read Holding Registers, slave 1, start 0, count 1 -- a commonly
	// cited Modbus CRC example.
	frame := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	sum := crc16(frame)
	assert.Equal(t, byte(0x84), byte(sum), "low byte")
	assert.Equal(t, byte(0x0A), byte(sum>>8), "high byte")
}

func TestCRC16ScenarioVector(t *testing.T) {
	// RTU read holding registers: address 7, f=3, start=1, count=2.
	frame := []byte{0x07, 0x03, 0x00, 0x01, 0x00, 0x02}
	sum := crc16(frame)
	assert.Equal(t, byte(0x95), byte(sum))
	assert.Equal(t, byte(0xAD), byte(sum>>8))
}

func TestCRC16EmptyInput(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), crc16(nil))
}
