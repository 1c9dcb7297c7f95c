package modbus

import "encoding/binary"

// Slave is the protocol-engine side of a Modbus server: it dispatches an
// already-delimited request frame to a function handler, performs
// register/coil reads or writes against caller-owned banks honoring
// write-protection masks, and composes a response or exception frame.
// A Slave never touches a socket or serial port; callers place a frame in
// ParseRequestRTU/TCP/PDU and transmit whatever GetResponse returns.
type Slave struct {
	// Address is this slave's RTU/TCP-unit identity, 1-247. Used by
	// ParseRequestRTU to decide whether an incoming frame targets this
	// slave, is a broadcast, or should be ignored.
	Address byte

	// Holding, Input, Coils and Discrete are the four optional register
	// banks. A nil bank means "no registers of this kind": any function
	// that targets it reports ILLEGAL_DATA_ADDRESS, the same response a
	// bank with a real but empty address range would give.
	Holding  WritableRegisterBank
	Input    RegisterBank
	Coils    WritableCoilBank
	Discrete CoilBank

	// Functions is the handler table consulted by ParseRequestPDU,
	// first match wins. Callers needing custom or extended function
	// codes supply their own table; DefaultSlaveFunctions is not
	// implicitly appended.
	Functions []SlaveFunctionHandler

	// LastException records the exception code generated by the most
	// recent dispatch through ParseRequestPDU, for caller inspection. Nil
	// if that dispatch did not produce an exception. Frames rejected
	// before dispatch (bad length, bad CRC, bad MBAP header, another
	// slave's address) leave it unchanged.
	LastException Exception

	allocator     Allocator
	context       interface{}
	response      FrameBuffer
	responseFrame []byte
}

// Init resets the Slave to a fresh state with the given address, handler
// table, and allocator. Passing a nil allocator selects HeapAllocator.
// Banks are left untouched; assign them to the exported fields before
// parsing a request.
func (s *Slave) Init(address byte, functions []SlaveFunctionHandler, allocator Allocator) ErrorInfo {
	if allocator == nil {
		allocator = HeapAllocator{}
	}
	s.Address = address
	s.Functions = functions
	s.allocator = allocator
	s.LastException = nil
	s.response = FrameBuffer{}
	s.responseFrame = nil
	return Ok
}

// Destroy releases the response frame buffer. The Slave remains usable
// for another Init afterwards.
func (s *Slave) Destroy() {
	s.response = FrameBuffer{}
	s.responseFrame = nil
}

// SetUserContext stores an opaque caller-owned pointer.
func (s *Slave) SetUserContext(ctx interface{}) { s.context = ctx }

// GetUserContext returns the pointer set by SetUserContext.
func (s *Slave) GetUserContext() interface{} { return s.context }

// GetResponse returns the bytes to transmit for the most recent parse.
// Empty (nil) if the cycle produced no response -- a broadcast request,
// or a frame addressed to a different slave.
func (s *Slave) GetResponse() []byte { return s.responseFrame }

// GetResponseLength returns len(GetResponse()).
func (s *Slave) GetResponseLength() int { return len(s.responseFrame) }

// BuildException composes an exception response for the given function
// and code directly, bypassing dispatch. Exposed for handlers in the
// caller's own function table that want to report an exception other
// functions need not implement.
func (s *Slave) BuildException(function byte, code Exception) ErrorInfo {
	s.LastException = code
	return s.composePDU([]byte{function | exceptionBit, code.Code()})
}

func (s *Slave) composePDU(respPDU []byte) ErrorInfo {
	buf, info := s.allocator.Allocate(PurposeResponse, uint16(len(respPDU)))
	if !info.IsOk() {
		return info
	}
	if len(respPDU) > 0 {
		copy(buf.PDU(), respPDU)
	}
	s.response = buf
	s.responseFrame = buf.PDU()
	return Ok
}

// ParseRequestPDU dispatches a bare PDU (no RTU address, no MBAP header)
// through the slave's function table and composes a response PDU. addr
// is informational, echoed into DataCallbackArgs-equivalent bookkeeping
// by nothing at this layer -- it exists so ParseRequestRTU and
// ParseRequestTCP can share this dispatch step unmodified.
func (s *Slave) ParseRequestPDU(addr byte, pdu []byte) ErrorInfo {
	if len(pdu) == 0 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	code := pdu[0]
	handler := findSlaveFunction(s.Functions, code)

	var respPDU []byte
	var ex Exception
	if handler == nil {
		ex = ExIllegalFunction
	} else {
		respPDU, ex = handler.Handle(s, pdu)
	}

	if ex != nil {
		s.LastException = ex
		respPDU = []byte{code | exceptionBit, ex.Code()}
	} else {
		s.LastException = nil
	}

	return s.composePDU(respPDU)
}

// ParseRequestRTU parses an RTU frame: address(1) | PDU(n) | CRC-lo | CRC-hi.
// Requires len(frame) >= 4. A bad CRC yields a framing ErrorInfo and no
// response. A frame addressed to neither this slave nor to broadcast (0)
// yields Ok with an empty response. Address 0 (broadcast) dispatches and
// performs any write, but always suppresses the response.
func (s *Slave) ParseRequestRTU(frame []byte) ErrorInfo {
	s.response = FrameBuffer{}
	s.responseFrame = nil

	if len(frame) < 4 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	sum := crc16(frame[:len(frame)-2])
	got := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	if sum != got {
		return errInfo(SourceResponseParse, KindBadCRC)
	}

	addr := frame[0]
	if addr != 0 && addr != s.Address {
		return Ok
	}

	pdu := frame[1 : len(frame)-2]
	if info := s.ParseRequestPDU(addr, pdu); !info.IsOk() {
		return info
	}

	if addr == 0 {
		// Broadcast: the write already happened inside ParseRequestPDU,
		// but no slave replies to a broadcast request.
		s.responseFrame = nil
		return Ok
	}

	frameBuf := s.response.Frame()
	pduBody := s.response.PDU()
	frameBuf[framePrefixPad-1] = s.Address
	sum = crc16(frameBuf[framePrefixPad-1 : framePrefixPad+len(pduBody)])
	suffixStart := framePrefixPad + len(pduBody)
	frameBuf[suffixStart] = byte(sum)
	frameBuf[suffixStart+1] = byte(sum >> 8)
	s.responseFrame = frameBuf[framePrefixPad-1 : suffixStart+2]
	return Ok
}

// ParseRequestTCP parses a full MBAP + PDU frame. Requires len(frame) >= 8,
// protocol id 0, and a length field consistent with the frame's actual
// size. Transaction id and unit id are copied verbatim into the response.
func (s *Slave) ParseRequestTCP(frame []byte) ErrorInfo {
	s.response = FrameBuffer{}
	s.responseFrame = nil

	if len(frame) < 8 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	transaction := binary.BigEndian.Uint16(frame[0:2])
	protocol := binary.BigEndian.Uint16(frame[2:4])
	length := binary.BigEndian.Uint16(frame[4:6])
	unit := frame[6]

	if protocol != 0 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	if int(length) != len(frame)-6 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	if length < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}

	pdu := frame[7:]
	if info := s.ParseRequestPDU(unit, pdu); !info.IsOk() {
		return info
	}

	frameBuf := s.response.Frame()
	pduBody := s.response.PDU()
	mbapLen := uint16(1 + len(pduBody))
	binary.BigEndian.PutUint16(frameBuf[0:2], transaction)
	binary.BigEndian.PutUint16(frameBuf[2:4], 0)
	binary.BigEndian.PutUint16(frameBuf[4:6], mbapLen)
	frameBuf[6] = unit
	s.responseFrame = frameBuf[0 : 7+len(pduBody)]
	return Ok
}
