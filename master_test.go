package modbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterScenario1ReadHoldingRegisters(t *testing.T) {
	type reading struct {
		index uint16
		value uint16
	}
	var got []reading

	m := &Master{}
	require.True(t, m.Init(
		func(args DataCallbackArgs) ErrorInfo {
			got = append(got, reading{args.Index, args.Value})
			return Ok
		},
		nil,
		DefaultMasterFunctions,
		HeapAllocator{},
	).IsOk())

	require.True(t, m.ReadHoldingRegistersRTU(7, 1, 2).IsOk())
	request := m.GetRequest()
	require.Equal(t, []byte{0x07, 0x03, 0x00, 0x01, 0x00, 0x02, 0x95, 0xAD}, request)

	response := []byte{0x07, 0x03, 0x04, 0x22, 0x22, 0x33, 0x33}
	crc := crc16(response)
	response = append(response, byte(crc), byte(crc>>8))

	info := m.ParseResponseRTU(request, response)
	require.True(t, info.IsOk())
	require.Equal(t, []reading{{1, 0x2222}, {2, 0x3333}}, got)
}

func TestMasterScenario3ExceptionCallback(t *testing.T) {
	type report struct {
		address, function byte
		code              byte
	}
	var got *report

	m := &Master{}
	require.True(t, m.Init(nil, func(address, function byte, ex Exception) {
		got = &report{address, function, ex.Code()}
	}, DefaultMasterFunctions, HeapAllocator{}).IsOk())

	require.True(t, m.ReadHoldingRegistersPDU(3, 2).IsOk())
	reqPDU := m.GetRequest()

	info := m.ParseResponsePDU(3, reqPDU, []byte{0x83, 0x02})
	require.True(t, info.IsOk())
	require.NotNil(t, got)
	require.Equal(t, report{3, 3, 2}, *got)
}

func TestMasterScenario4TCPTransactionMismatch(t *testing.T) {
	called := false
	m := &Master{}
	require.True(t, m.Init(func(DataCallbackArgs) ErrorInfo {
		called = true
		return Ok
	}, nil, DefaultMasterFunctions, HeapAllocator{}).IsOk())

	require.True(t, m.ReadHoldingRegistersTCP(0x1234, 1, 0, 1).IsOk())
	request := m.GetRequest()

	response := []byte{0x12, 0x35, 0x00, 0x00, 0x00, 0x05, 0x01, 0x03, 0x02, 0x00, 0x00}
	info := m.ParseResponseTCP(request, response)
	require.False(t, info.IsOk())
	require.Equal(t, SourceResponseParse, info.Source)
	require.Equal(t, KindResponseParseFail, info.Kind)
	require.False(t, called)
}

func TestMasterWriteSingleCoilRoundTrip(t *testing.T) {
	var reported DataCallbackArgs
	m := &Master{}
	require.True(t, m.Init(func(args DataCallbackArgs) ErrorInfo {
		reported = args
		return Ok
	}, nil, DefaultMasterFunctions, HeapAllocator{}).IsOk())

	require.True(t, m.WriteSingleCoilRTU(1, 5, true).IsOk())
	request := m.GetRequest()
	require.Equal(t, []byte{0x01, 0x05, 0x00, 0x05, 0xFF, 0x00}, request[:6])

	response := make([]byte, len(request))
	copy(response, request) // a well-behaved slave echoes the request verbatim

	info := m.ParseResponseRTU(request, response)
	require.True(t, info.IsOk())
	require.Equal(t, DataCallbackArgs{Type: KindCoil, Index: 5, Value: 1, Function: FuncWriteSingleCoil, Address: 1}, reported)
}

func TestMasterReadCoilsBoundary(t *testing.T) {
	m := &Master{}
	require.True(t, m.Init(nil, nil, DefaultMasterFunctions, HeapAllocator{}).IsOk())

	info := m.ReadCoilsPDU(0, 0)
	require.False(t, info.IsOk())
	require.Equal(t, SourceRequestBuild, info.Source)

	info = m.ReadCoilsPDU(0, 2001)
	require.False(t, info.IsOk())
}

func TestMasterFullRTURoundTripAgainstSlave(t *testing.T) {
	s := &Slave{
		Holding: &RegisterArray{Values: []uint16{10, 20, 30, 40}},
	}
	require.True(t, s.Init(4, DefaultSlaveFunctions, HeapAllocator{}).IsOk())

	var got []DataCallbackArgs
	m := &Master{}
	require.True(t, m.Init(func(args DataCallbackArgs) ErrorInfo {
		got = append(got, args)
		return Ok
	}, nil, DefaultMasterFunctions, HeapAllocator{}).IsOk())

	require.True(t, m.ReadHoldingRegistersRTU(4, 0, 4).IsOk())
	request := m.GetRequest()

	require.True(t, s.ParseRequestRTU(request).IsOk())
	response := s.GetResponse()

	require.True(t, m.ParseResponseRTU(request, response).IsOk())
	require.Len(t, got, 4)
	for i, args := range got {
		require.Equal(t, s.Holding.(*RegisterArray).Values[i], args.Value)
	}
}
