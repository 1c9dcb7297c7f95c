package modbus

import "encoding/binary"

// This file pairs, for each of the ten standard function codes, a set of
// request builders (PDU/RTU/TCP flavors) with the response parser
// DefaultMasterFunctions dispatches to. Builders validate their arguments
// against the same bounds the slave side enforces, so a caller gets a
// BadArgument ErrorInfo before anything is put on the wire rather than an
// exception bounced back from the slave.

// -- Read Coils (0x01) --------------------------------------------------

func (m *Master) ReadCoilsPDU(start, qty uint16) ErrorInfo {
	if qty < 1 || qty > 2000 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	if info := m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncReadCoils
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], qty)
		return 5
	}); !info.IsOk() {
		return info
	}
	return Ok
}

func (m *Master) ReadCoilsRTU(address byte, start, qty uint16) ErrorInfo {
	if info := m.ReadCoilsPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) ReadCoilsTCP(transaction uint16, unit byte, start, qty uint16) ErrorInfo {
	if info := m.ReadCoilsPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseReadCoils(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	start := binary.BigEndian.Uint16(reqPDU[1:3])
	qty := binary.BigEndian.Uint16(reqPDU[3:5])
	if len(respPDU) < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	bc := respPDU[1]
	if int(bc) != byteCount(qty) || len(respPDU) != 2+int(bc) {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	values := unpackBits(respPDU[2:], qty)
	for i := uint16(0); i < qty; i++ {
		if m.DataCallback == nil {
			continue
		}
		v := uint16(0)
		if values[i] {
			v = 1
		}
		if info := m.DataCallback(DataCallbackArgs{Type: KindCoil, Index: start + i, Value: v, Function: FuncReadCoils, Address: address}); !info.IsOk() {
			return info
		}
	}
	return Ok
}

// -- Read Discrete Inputs (0x02) ----------------------------------------

func (m *Master) ReadDiscreteInputsPDU(start, qty uint16) ErrorInfo {
	if qty < 1 || qty > 2000 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	if info := m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncReadDiscreteInputs
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], qty)
		return 5
	}); !info.IsOk() {
		return info
	}
	return Ok
}

func (m *Master) ReadDiscreteInputsRTU(address byte, start, qty uint16) ErrorInfo {
	if info := m.ReadDiscreteInputsPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) ReadDiscreteInputsTCP(transaction uint16, unit byte, start, qty uint16) ErrorInfo {
	if info := m.ReadDiscreteInputsPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseReadDiscreteInputs(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	start := binary.BigEndian.Uint16(reqPDU[1:3])
	qty := binary.BigEndian.Uint16(reqPDU[3:5])
	if len(respPDU) < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	bc := respPDU[1]
	if int(bc) != byteCount(qty) || len(respPDU) != 2+int(bc) {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	values := unpackBits(respPDU[2:], qty)
	for i := uint16(0); i < qty; i++ {
		if m.DataCallback == nil {
			continue
		}
		v := uint16(0)
		if values[i] {
			v = 1
		}
		if info := m.DataCallback(DataCallbackArgs{Type: KindDiscreteInput, Index: start + i, Value: v, Function: FuncReadDiscreteInputs, Address: address}); !info.IsOk() {
			return info
		}
	}
	return Ok
}

// -- Read Holding Registers (0x03) ---------------------------------------

func (m *Master) ReadHoldingRegistersPDU(start, qty uint16) ErrorInfo {
	if qty < 1 || qty > 125 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	if info := m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncReadHoldingRegisters
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], qty)
		return 5
	}); !info.IsOk() {
		return info
	}
	return Ok
}

func (m *Master) ReadHoldingRegistersRTU(address byte, start, qty uint16) ErrorInfo {
	if info := m.ReadHoldingRegistersPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) ReadHoldingRegistersTCP(transaction uint16, unit byte, start, qty uint16) ErrorInfo {
	if info := m.ReadHoldingRegistersPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseReadHoldingRegisters(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	start := binary.BigEndian.Uint16(reqPDU[1:3])
	qty := binary.BigEndian.Uint16(reqPDU[3:5])
	if len(respPDU) < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	bc := respPDU[1]
	if int(bc) != 2*int(qty) || len(respPDU) != 2+int(bc) {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := uint16(0); i < qty; i++ {
		if m.DataCallback == nil {
			continue
		}
		v := binary.BigEndian.Uint16(respPDU[2+2*i:])
		if info := m.DataCallback(DataCallbackArgs{Type: KindHoldingRegister, Index: start + i, Value: v, Function: FuncReadHoldingRegisters, Address: address}); !info.IsOk() {
			return info
		}
	}
	return Ok
}

// -- Read Input Registers (0x04) -----------------------------------------

func (m *Master) ReadInputRegistersPDU(start, qty uint16) ErrorInfo {
	if qty < 1 || qty > 125 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	if info := m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncReadInputRegisters
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], qty)
		return 5
	}); !info.IsOk() {
		return info
	}
	return Ok
}

func (m *Master) ReadInputRegistersRTU(address byte, start, qty uint16) ErrorInfo {
	if info := m.ReadInputRegistersPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) ReadInputRegistersTCP(transaction uint16, unit byte, start, qty uint16) ErrorInfo {
	if info := m.ReadInputRegistersPDU(start, qty); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseReadInputRegisters(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	start := binary.BigEndian.Uint16(reqPDU[1:3])
	qty := binary.BigEndian.Uint16(reqPDU[3:5])
	if len(respPDU) < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	bc := respPDU[1]
	if int(bc) != 2*int(qty) || len(respPDU) != 2+int(bc) {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := uint16(0); i < qty; i++ {
		if m.DataCallback == nil {
			continue
		}
		v := binary.BigEndian.Uint16(respPDU[2+2*i:])
		if info := m.DataCallback(DataCallbackArgs{Type: KindInputRegister, Index: start + i, Value: v, Function: FuncReadInputRegisters, Address: address}); !info.IsOk() {
			return info
		}
	}
	return Ok
}

// -- Write Single Coil (0x05) ---------------------------------------------

func (m *Master) WriteSingleCoilPDU(addr uint16, value bool) ErrorInfo {
	val := uint16(0x0000)
	if value {
		val = 0xFF00
	}
	return m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncWriteSingleCoil
		binary.BigEndian.PutUint16(pdu[1:3], addr)
		binary.BigEndian.PutUint16(pdu[3:5], val)
		return 5
	})
}

func (m *Master) WriteSingleCoilRTU(address byte, addr uint16, value bool) ErrorInfo {
	if info := m.WriteSingleCoilPDU(addr, value); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) WriteSingleCoilTCP(transaction uint16, unit byte, addr uint16, value bool) ErrorInfo {
	if info := m.WriteSingleCoilPDU(addr, value); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseWriteSingleCoil(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 || len(respPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := 1; i < 5; i++ {
		if reqPDU[i] != respPDU[i] {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
	}
	if m.DataCallback == nil {
		return Ok
	}
	addr := binary.BigEndian.Uint16(respPDU[1:3])
	val := binary.BigEndian.Uint16(respPDU[3:5])
	v := uint16(0)
	if val == 0xFF00 {
		v = 1
	}
	return m.DataCallback(DataCallbackArgs{Type: KindCoil, Index: addr, Value: v, Function: FuncWriteSingleCoil, Address: address})
}

// -- Write Single Register (0x06) ------------------------------------------

func (m *Master) WriteSingleRegisterPDU(addr, value uint16) ErrorInfo {
	return m.buildRequestPDU(5, func(pdu []byte) int {
		pdu[0] = FuncWriteSingleRegister
		binary.BigEndian.PutUint16(pdu[1:3], addr)
		binary.BigEndian.PutUint16(pdu[3:5], value)
		return 5
	})
}

func (m *Master) WriteSingleRegisterRTU(address byte, addr, value uint16) ErrorInfo {
	if info := m.WriteSingleRegisterPDU(addr, value); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) WriteSingleRegisterTCP(transaction uint16, unit byte, addr, value uint16) ErrorInfo {
	if info := m.WriteSingleRegisterPDU(addr, value); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseWriteSingleRegister(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 5 || len(respPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := 1; i < 5; i++ {
		if reqPDU[i] != respPDU[i] {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
	}
	if m.DataCallback == nil {
		return Ok
	}
	addr := binary.BigEndian.Uint16(respPDU[1:3])
	val := binary.BigEndian.Uint16(respPDU[3:5])
	return m.DataCallback(DataCallbackArgs{Type: KindHoldingRegister, Index: addr, Value: val, Function: FuncWriteSingleRegister, Address: address})
}

// -- Write Multiple Coils (0x0F) -------------------------------------------

func (m *Master) WriteMultipleCoilsPDU(start uint16, values []bool) ErrorInfo {
	qty := len(values)
	if qty < 1 || qty > 1968 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	packed := packBits(values)
	return m.buildRequestPDU(uint16(6+len(packed)), func(pdu []byte) int {
		pdu[0] = FuncWriteMultipleCoils
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], uint16(qty))
		pdu[5] = byte(len(packed))
		copy(pdu[6:], packed)
		return 6 + len(packed)
	})
}

func (m *Master) WriteMultipleCoilsRTU(address byte, start uint16, values []bool) ErrorInfo {
	if info := m.WriteMultipleCoilsPDU(start, values); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) WriteMultipleCoilsTCP(transaction uint16, unit byte, start uint16, values []bool) ErrorInfo {
	if info := m.WriteMultipleCoilsPDU(start, values); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseWriteMultipleCoils(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) < 5 || len(respPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := 1; i < 5; i++ {
		if reqPDU[i] != respPDU[i] {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
	}
	return Ok
}

// -- Write Multiple Registers (0x10) ---------------------------------------

func (m *Master) WriteMultipleRegistersPDU(start uint16, values []uint16) ErrorInfo {
	qty := len(values)
	if qty < 1 || qty > 123 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	return m.buildRequestPDU(uint16(6+2*qty), func(pdu []byte) int {
		pdu[0] = FuncWriteMultipleRegisters
		binary.BigEndian.PutUint16(pdu[1:3], start)
		binary.BigEndian.PutUint16(pdu[3:5], uint16(qty))
		pdu[5] = byte(2 * qty)
		for i, v := range values {
			binary.BigEndian.PutUint16(pdu[6+2*i:], v)
		}
		return 6 + 2*qty
	})
}

func (m *Master) WriteMultipleRegistersRTU(address byte, start uint16, values []uint16) ErrorInfo {
	if info := m.WriteMultipleRegistersPDU(start, values); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) WriteMultipleRegistersTCP(transaction uint16, unit byte, start uint16, values []uint16) ErrorInfo {
	if info := m.WriteMultipleRegistersPDU(start, values); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseWriteMultipleRegisters(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) < 5 || len(respPDU) != 5 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := 1; i < 5; i++ {
		if reqPDU[i] != respPDU[i] {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
	}
	return Ok
}

// -- Mask Write Register (0x16) --------------------------------------------

func (m *Master) MaskWriteRegisterPDU(addr, andMask, orMask uint16) ErrorInfo {
	return m.buildRequestPDU(7, func(pdu []byte) int {
		pdu[0] = FuncMaskWriteRegister
		binary.BigEndian.PutUint16(pdu[1:3], addr)
		binary.BigEndian.PutUint16(pdu[3:5], andMask)
		binary.BigEndian.PutUint16(pdu[5:7], orMask)
		return 7
	})
}

func (m *Master) MaskWriteRegisterRTU(address byte, addr, andMask, orMask uint16) ErrorInfo {
	if info := m.MaskWriteRegisterPDU(addr, andMask, orMask); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) MaskWriteRegisterTCP(transaction uint16, unit byte, addr, andMask, orMask uint16) ErrorInfo {
	if info := m.MaskWriteRegisterPDU(addr, andMask, orMask); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseMaskWriteRegister(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) != 7 || len(respPDU) != 7 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := 1; i < 7; i++ {
		if reqPDU[i] != respPDU[i] {
			return errInfo(SourceResponseParse, KindResponseParseFail)
		}
	}
	return Ok
}

// -- Read/Write Multiple Registers (0x17) -----------------------------------

func (m *Master) ReadWriteMultipleRegistersPDU(readStart, readQty, writeStart uint16, writeValues []uint16) ErrorInfo {
	writeQty := len(writeValues)
	if readQty < 1 || readQty > 125 || writeQty < 1 || writeQty > 121 {
		return errInfo(SourceRequestBuild, KindBadArgument)
	}
	return m.buildRequestPDU(uint16(10+2*writeQty), func(pdu []byte) int {
		pdu[0] = FuncReadWriteMultipleRegisters
		binary.BigEndian.PutUint16(pdu[1:3], readStart)
		binary.BigEndian.PutUint16(pdu[3:5], readQty)
		binary.BigEndian.PutUint16(pdu[5:7], writeStart)
		binary.BigEndian.PutUint16(pdu[7:9], uint16(writeQty))
		pdu[9] = byte(2 * writeQty)
		for i, v := range writeValues {
			binary.BigEndian.PutUint16(pdu[10+2*i:], v)
		}
		return 10 + 2*writeQty
	})
}

func (m *Master) ReadWriteMultipleRegistersRTU(address byte, readStart, readQty, writeStart uint16, writeValues []uint16) ErrorInfo {
	if info := m.ReadWriteMultipleRegistersPDU(readStart, readQty, writeStart, writeValues); !info.IsOk() {
		return info
	}
	return m.EndRequestRTU(address)
}

func (m *Master) ReadWriteMultipleRegistersTCP(transaction uint16, unit byte, readStart, readQty, writeStart uint16, writeValues []uint16) ErrorInfo {
	if info := m.ReadWriteMultipleRegistersPDU(readStart, readQty, writeStart, writeValues); !info.IsOk() {
		return info
	}
	return m.EndRequestTCP(transaction, unit)
}

func masterParseReadWriteMultipleRegisters(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo {
	if len(reqPDU) < 3 {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	readStart := binary.BigEndian.Uint16(reqPDU[1:3])
	if len(respPDU) < 2 {
		return errInfo(SourceResponseParse, KindBadFrame)
	}
	bc := respPDU[1]
	readQty := uint16(bc) / 2
	if int(bc)%2 != 0 || len(respPDU) != 2+int(bc) {
		return errInfo(SourceResponseParse, KindResponseParseFail)
	}
	for i := uint16(0); i < readQty; i++ {
		if m.DataCallback == nil {
			continue
		}
		v := binary.BigEndian.Uint16(respPDU[2+2*i:])
		if info := m.DataCallback(DataCallbackArgs{Type: KindHoldingRegister, Index: readStart + i, Value: v, Function: FuncReadWriteMultipleRegisters, Address: address}); !info.IsOk() {
			return info
		}
	}
	return Ok
}
