package modbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlaveScenario1ReadHoldingRegisters(t *testing.T) {
	s := &Slave{
		Holding: &RegisterArray{Values: []uint16{0x1111, 0x2222, 0x3333, 0x4444}},
	}
	require.True(t, s.Init(7, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	request := []byte{0x07, 0x03, 0x00, 0x01, 0x00, 0x02, 0x95, 0xAD}
	info := s.ParseRequestRTU(request)
	require.True(t, info.IsOk())

	resp := s.GetResponse()
	require.Len(t, resp, 1+6+2)
	require.Equal(t, byte(7), resp[0])
	pdu := resp[1 : len(resp)-2]
	require.Equal(t, []byte{0x03, 0x04, 0x22, 0x22, 0x33, 0x33}, pdu)

	sum := crc16(resp[:len(resp)-2])
	require.Equal(t, byte(sum), resp[len(resp)-2])
	require.Equal(t, byte(sum>>8), resp[len(resp)-1])
}

func TestSlaveScenario2WriteMultipleCoils(t *testing.T) {
	s := &Slave{Coils: &CoilArray{Values: make([]byte, 2), N: 10}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	pdu := []byte{0x0F, 0x00, 0x00, 0x00, 0x0A, 0x02, 0x55, 0x02}
	info := s.ParseRequestPDU(1, pdu)
	require.True(t, info.IsOk())
	require.Equal(t, []byte{0x0F, 0x00, 0x00, 0x00, 0x0A}, s.GetResponse())
	require.Equal(t, []byte{0x55, 0x02}, s.Coils.(*CoilArray).Values)
}

func TestSlaveScenario3IllegalAddressException(t *testing.T) {
	s := &Slave{Holding: &RegisterArray{Values: []uint16{1, 2, 3, 4}}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	pdu := []byte{0x03, 0x00, 0x03, 0x00, 0x02}
	info := s.ParseRequestPDU(1, pdu)
	require.True(t, info.IsOk())
	require.Equal(t, []byte{0x83, 0x02}, s.GetResponse())
	require.Equal(t, ExIllegalDataAddress, s.LastException)
}

func TestSlaveScenario5WriteProtectedRegister(t *testing.T) {
	mask := make([]byte, 1)
	setBit(mask, 2, true)
	s := &Slave{Holding: &RegisterArray{Values: []uint16{0, 0, 0, 0, 0}, Mask: mask}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	original := append([]uint16{}, s.Holding.(*RegisterArray).Values...)
	pdu := []byte{0x10, 0x00, 0x01, 0x00, 0x03, 0x06, 0, 1, 0, 2, 0, 3}
	info := s.ParseRequestPDU(1, pdu)
	require.True(t, info.IsOk())
	require.Equal(t, []byte{0x90, 0x02}, s.GetResponse())
	require.Equal(t, original, s.Holding.(*RegisterArray).Values)
}

func TestSlaveScenario6BroadcastWrite(t *testing.T) {
	s := &Slave{Holding: &RegisterArray{Values: []uint16{0, 0}}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	frame := []byte{0x00, 0x06, 0x00, 0x00, 0x00, 0xFF}
	crc := crc16(frame)
	frame = append(frame, byte(crc), byte(crc>>8))

	info := s.ParseRequestRTU(frame)
	require.True(t, info.IsOk())
	require.Equal(t, 0, s.GetResponseLength())
	require.Equal(t, uint16(0x00FF), s.Holding.(*RegisterArray).Values[0])
}

func TestSlaveReadCoilsBoundary(t *testing.T) {
	s := &Slave{Coils: &CoilArray{Values: make([]byte, 1), N: 4}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	_, ex := slaveReadCoils(s, []byte{0x01, 0x00, 0x00, 0x00, 0x00})
	require.Equal(t, ExIllegalDataValue, ex)

	_, ex = slaveReadCoils(s, []byte{0x01, 0x00, 0x00, 0x07, 0xD1})
	require.Equal(t, ExIllegalDataValue, ex)
}

func TestSlaveWriteSingleCoilRejectsBadValue(t *testing.T) {
	s := &Slave{Coils: &CoilArray{Values: make([]byte, 1), N: 8}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	_, ex := slaveWriteSingleCoil(s, []byte{0x05, 0x00, 0x00, 0x12, 0x34})
	require.Equal(t, ExIllegalDataValue, ex)
}

func TestSlaveUnsupportedFunction(t *testing.T) {
	s := &Slave{}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	info := s.ParseRequestPDU(1, []byte{0x2B, 0x0E, 0x01, 0x00})
	require.True(t, info.IsOk())
	require.Equal(t, []byte{0xAB, 0x01}, s.GetResponse())
}

func TestSlaveRTUShortFrame(t *testing.T) {
	s := &Slave{}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())
	info := s.ParseRequestRTU([]byte{0x01, 0x02})
	require.False(t, info.IsOk())
	require.Equal(t, KindBadFrame, info.Kind)
}

func TestSlaveRTUBadCRC(t *testing.T) {
	s := &Slave{Holding: &RegisterArray{Values: []uint16{1, 2}}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())
	frame := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	info := s.ParseRequestRTU(frame)
	require.False(t, info.IsOk())
	require.Equal(t, KindBadCRC, info.Kind)
}

func TestSlaveRTUAddressedToOthers(t *testing.T) {
	s := &Slave{Holding: &RegisterArray{Values: []uint16{1, 2}}}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	frame := []byte{0x02, 0x03, 0x00, 0x00, 0x00, 0x01}
	crc := crc16(frame)
	frame = append(frame, byte(crc), byte(crc>>8))

	info := s.ParseRequestRTU(frame)
	require.True(t, info.IsOk())
	require.Equal(t, 0, s.GetResponseLength())
}

func TestSlaveTCPRoundTrip(t *testing.T) {
	s := &Slave{Holding: &RegisterArray{Values: []uint16{0xAAAA}}}
	require.True(t, s.Init(9, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	frame := []byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x06, 0x09, 0x03, 0x00, 0x00, 0x00, 0x01}
	info := s.ParseRequestTCP(frame)
	require.True(t, info.IsOk())

	resp := s.GetResponse()
	require.Equal(t, []byte{0x12, 0x34}, resp[0:2]) // transaction echoed
	require.Equal(t, []byte{0x00, 0x00}, resp[2:4]) // protocol id
	require.Equal(t, byte(9), resp[6])              // unit id echoed
	require.Equal(t, []byte{0x03, 0x02, 0xAA, 0xAA}, resp[7:])
}

func TestSlaveTCPBadProtocolID(t *testing.T) {
	s := &Slave{}
	require.True(t, s.Init(1, DefaultSlaveFunctions, HeapAllocator{}).IsOk())
	frame := []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x02, 0x01, 0x03}
	info := s.ParseRequestTCP(frame)
	require.False(t, info.IsOk())
	require.Equal(t, KindBadFrame, info.Kind)
}
