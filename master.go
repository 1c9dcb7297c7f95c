package modbus

import "encoding/binary"

// Master is the protocol-engine side of a Modbus client: it builds request
// PDUs/frames for the ten standard function codes and parses the matching
// response, invoking DataCallback once per decoded value and
// ExceptionCallback when the response carries an exception. A Master never
// touches a socket or serial port; callers transmit GetRequest() and feed
// the reply back into ParseResponsePDU/RTU/TCP.
type Master struct {
	// Functions is the response-parser table consulted by ParseResponsePDU,
	// first match wins. Callers needing custom function codes supply their
	// own table; DefaultMasterFunctions is not implicitly appended.
	Functions []MasterFunctionHandler

	// DataCallback is invoked once per decoded register/coil value found
	// in a successfully parsed, non-exception response. May be nil, in
	// which case decoded values are simply discarded.
	DataCallback DataCallback

	// ExceptionCallback is invoked when a response PDU carries an
	// exception. May be nil.
	ExceptionCallback ExceptionCallback

	allocator    Allocator
	context      interface{}
	request      FrameBuffer
	requestFrame []byte
}

// Init resets the Master to a fresh state. Passing a nil allocator selects
// HeapAllocator.
func (m *Master) Init(dataCallback DataCallback, exceptionCallback ExceptionCallback, functions []MasterFunctionHandler, allocator Allocator) ErrorInfo {
	if allocator == nil {
		allocator = HeapAllocator{}
	}
	m.DataCallback = dataCallback
	m.ExceptionCallback = exceptionCallback
	m.Functions = functions
	m.allocator = allocator
	m.request = FrameBuffer{}
	m.requestFrame = nil
	return Ok
}

// Destroy releases the request frame buffer. The Master remains usable for
// another Init afterwards.
func (m *Master) Destroy() {
	m.request = FrameBuffer{}
	m.requestFrame = nil
}

// SetUserContext stores an opaque caller-owned pointer.
func (m *Master) SetUserContext(ctx interface{}) { m.context = ctx }

// GetUserContext returns the pointer set by SetUserContext.
func (m *Master) GetUserContext() interface{} { return m.context }

// GetRequest returns the bytes to transmit for the most recently built
// request.
func (m *Master) GetRequest() []byte { return m.requestFrame }

// GetRequestLength returns len(GetRequest()).
func (m *Master) GetRequestLength() int { return len(m.requestFrame) }

// BeginRequestPDU reserves up to maxSize bytes for a request PDU body.
// Exposed for callers building a function code this package does not
// implement; the ten standard functions use it internally.
func (m *Master) BeginRequestPDU(maxSize uint16) ErrorInfo {
	buf, info := m.allocator.Allocate(PurposeRequest, maxSize)
	if !info.IsOk() {
		return info
	}
	m.request = buf
	return Ok
}

// EndRequestPDU finalizes a bare PDU request, with no RTU or TCP framing.
func (m *Master) EndRequestPDU() ErrorInfo {
	m.requestFrame = m.request.PDU()
	return Ok
}

// EndRequestRTU finalizes a request by writing the RTU address byte and
// CRC around the PDU already built via BeginRequestPDU.
func (m *Master) EndRequestRTU(address byte) ErrorInfo {
	frameBuf := m.request.Frame()
	pdu := m.request.PDU()
	frameBuf[framePrefixPad-1] = address
	sum := crc16(frameBuf[framePrefixPad-1 : framePrefixPad+len(pdu)])
	suffixStart := framePrefixPad + len(pdu)
	frameBuf[suffixStart] = byte(sum)
	frameBuf[suffixStart+1] = byte(sum >> 8)
	m.requestFrame = frameBuf[framePrefixPad-1 : suffixStart+2]
	return Ok
}

// EndRequestTCP finalizes a request by writing the MBAP header around the
// PDU already built via BeginRequestPDU.
func (m *Master) EndRequestTCP(transaction uint16, unit byte) ErrorInfo {
	frameBuf := m.request.Frame()
	pdu := m.request.PDU()
	mbapLen := uint16(1 + len(pdu))
	binary.BigEndian.PutUint16(frameBuf[0:2], transaction)
	binary.BigEndian.PutUint16(frameBuf[2:4], 0)
	binary.BigEndian.PutUint16(frameBuf[4:6], mbapLen)
	frameBuf[6] = unit
	m.requestFrame = frameBuf[0 : 7+len(pdu)]
	return Ok
}

func (m *Master) buildRequestPDU(maxSize uint16, write func(pdu []byte) int) ErrorInfo {
	if info := m.BeginRequestPDU(maxSize); !info.IsOk() {
		return info
	}
	n := write(m.request.PDU())
	m.request.SetLen(n)
	return m.EndRequestPDU()
}

// ParseResponsePDU cross-references a response PDU against the request PDU
// that produced it (needed because several responses don't repeat the
// start index or count) and dispatches to either ExceptionCallback or the
// matching MasterFunctionHandler.
func (m *Master) ParseResponsePDU(address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(respPDU) == 0 || len(reqPDU) == 0 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	code := respPDU[0]
	reqCode := reqPDU[0]

	if code&exceptionBit != 0 {
		if code&^exceptionBit != reqCode {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
		if len(respPDU) < 2 {
			return errInfo(SourceResponseParse, KindBadFrame)
		}
		if m.ExceptionCallback != nil {
			m.ExceptionCallback(address, reqCode, ExceptionFromCode(respPDU[1]))
		}
		return Ok
	}

	if code != reqCode {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	handler := findMasterFunction(m.Functions, code)
	if handler == nil {
		return errInfo(SourceResponseParse, KindIllegalFunction)
	}
	return handler.Parse(m, address, reqPDU, respPDU)
}

// ParseResponseRTU validates the CRC and address of an RTU response frame
// against the original request frame, then parses the enclosed PDUs.
func (m *Master) ParseResponseRTU(request, response []byte) ErrorInfo {
	if len(response) < 4 || len(request) < 4 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	sum := crc16(response[:len(response)-2])
	got := uint16(response[len(response)-2]) | uint16(response[len(response)-1])<<8
	if sum != got {
		return errInfo(SourceResponseParse, KindBadCRC)
	}
	reqAddr := request[0]
	respAddr := response[0]
	if reqAddr != respAddr {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	reqPDU := request[1 : len(request)-2]
	respPDU := response[1 : len(response)-2]
	return m.ParseResponsePDU(respAddr, reqPDU, respPDU)
}

// ParseResponseTCP validates the MBAP header of a TCP response against the
// original request, then parses the enclosed PDUs.
func (m *Master) ParseResponseTCP(request, response []byte) ErrorInfo {
	if len(request) < 8 || len(response) < 8 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	reqTxn := binary.BigEndian.Uint16(request[0:2])
	reqUnit := request[6]

	respTxn := binary.BigEndian.Uint16(response[0:2])
	respProto := binary.BigEndian.Uint16(response[2:4])
	respLen := binary.BigEndian.Uint16(response[4:6])
	respUnit := response[6]

	if respProto != 0 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	if int(respLen) != len(response)-6 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	if respLen < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	if respTxn != reqTxn {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	if respUnit != reqUnit {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}

	reqPDU := request[7:]
	respPDU := response[7:]
	return m.ParseResponsePDU(respUnit, reqPDU, respPDU)
}
