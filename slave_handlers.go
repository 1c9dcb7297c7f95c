package modbus

import "encoding/binary"

// slaveReadCoils and its sibling handlers implement the default function
// table. Each returns either a response PDU or an Exception for
// Slave.ParseRequestPDU to compose; none allocate through the Slave's
// Allocator themselves -- that happens once, in composePDU.
//
// Each checks its preconditions -- PDU length, count bounds, address
// range, write protection -- before touching any bank storage, so a
// rejected request never has partial side effects.

func slaveReadCoils(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Coils == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	if qty < 1 || qty > 2000 {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Coils.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Coils.ReadOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	values := make([]bool, qty)
	for i := uint16(0); i < qty; i++ {
		values[i] = s.Coils.Read(start + i)
	}
	packed := packBits(values)
	resp := make([]byte, 2+len(packed))
	resp[0] = FuncReadCoils
	resp[1] = byte(len(packed))
	copy(resp[2:], packed)
	return resp, nil
}

func slaveReadDiscreteInputs(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Discrete == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	if qty < 1 || qty > 2000 {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Discrete.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Discrete.ReadOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	values := make([]bool, qty)
	for i := uint16(0); i < qty; i++ {
		values[i] = s.Discrete.Read(start + i)
	}
	packed := packBits(values)
	resp := make([]byte, 2+len(packed))
	resp[0] = FuncReadDiscreteInputs
	resp[1] = byte(len(packed))
	copy(resp[2:], packed)
	return resp, nil
}

func slaveReadHoldingRegisters(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Holding == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	if qty < 1 || qty > 125 {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Holding.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Holding.ReadOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	resp := make([]byte, 2+2*int(qty))
	resp[0] = FuncReadHoldingRegisters
	resp[1] = byte(2 * qty)
	for i := uint16(0); i < qty; i++ {
		binary.BigEndian.PutUint16(resp[2+2*i:], s.Holding.Read(start+i))
	}
	return resp, nil
}

func slaveReadInputRegisters(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Input == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	if qty < 1 || qty > 125 {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Input.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Input.ReadOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	resp := make([]byte, 2+2*int(qty))
	resp[0] = FuncReadInputRegisters
	resp[1] = byte(2 * qty)
	for i := uint16(0); i < qty; i++ {
		binary.BigEndian.PutUint16(resp[2+2*i:], s.Input.Read(start+i))
	}
	return resp, nil
}

func slaveWriteSingleCoil(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Coils == nil {
		return nil, ExIllegalDataAddress
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	val := binary.BigEndian.Uint16(pdu[3:5])
	var bit bool
	switch val {
	case 0xFF00:
		bit = true
	case 0x0000:
		bit = false
	default:
		return nil, ExIllegalDataValue
	}
	if !s.Coils.WriteOK(addr) {
		return nil, ExIllegalDataAddress
	}
	s.Coils.Write(addr, bit)
	resp := make([]byte, len(pdu))
	copy(resp, pdu)
	return resp, nil
}

func slaveWriteSingleRegister(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 5 {
		return nil, ExIllegalDataValue
	}
	if s.Holding == nil {
		return nil, ExIllegalDataAddress
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	val := binary.BigEndian.Uint16(pdu[3:5])
	if !s.Holding.WriteOK(addr) {
		return nil, ExIllegalDataAddress
	}
	s.Holding.Write(addr, val)
	resp := make([]byte, len(pdu))
	copy(resp, pdu)
	return resp, nil
}

func slaveWriteMultipleCoils(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) < 6 {
		return nil, ExIllegalDataValue
	}
	if s.Coils == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	bc := pdu[5]
	if qty < 1 || qty > 1968 {
		return nil, ExIllegalDataValue
	}
	if int(bc) != byteCount(qty) || len(pdu) != 6+int(bc) {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Coils.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Coils.WriteOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	values := unpackBits(pdu[6:], qty)
	for i := uint16(0); i < qty; i++ {
		s.Coils.Write(start+i, values[i])
	}
	resp := make([]byte, 5)
	copy(resp, pdu[:5])
	return resp, nil
}

func slaveWriteMultipleRegisters(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) < 6 {
		return nil, ExIllegalDataValue
	}
	if s.Holding == nil {
		return nil, ExIllegalDataAddress
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	bc := pdu[5]
	if qty < 1 || qty > 123 {
		return nil, ExIllegalDataValue
	}
	if int(bc) != 2*int(qty) || len(pdu) != 6+int(bc) {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(start, qty, s.Holding.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < qty; i++ {
		if !s.Holding.WriteOK(start + i) {
			return nil, ExIllegalDataAddress
		}
	}
	data := pdu[6:]
	for i := uint16(0); i < qty; i++ {
		s.Holding.Write(start+i, binary.BigEndian.Uint16(data[2*i:]))
	}
	resp := make([]byte, 5)
	copy(resp, pdu[:5])
	return resp, nil
}

func slaveMaskWriteRegister(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) != 7 {
		return nil, ExIllegalDataValue
	}
	if s.Holding == nil {
		return nil, ExIllegalDataAddress
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	andMask := binary.BigEndian.Uint16(pdu[3:5])
	orMask := binary.BigEndian.Uint16(pdu[5:7])
	if !s.Holding.ReadOK(addr) || !s.Holding.WriteOK(addr) {
		return nil, ExIllegalDataAddress
	}
	current := s.Holding.Read(addr)
	s.Holding.Write(addr, (current&andMask)|(orMask&^andMask))
	resp := make([]byte, len(pdu))
	copy(resp, pdu)
	return resp, nil
}

func slaveReadWriteMultipleRegisters(s *Slave, pdu []byte) ([]byte, Exception) {
	if len(pdu) < 10 {
		return nil, ExIllegalDataValue
	}
	if s.Holding == nil {
		return nil, ExIllegalDataAddress
	}
	readStart := binary.BigEndian.Uint16(pdu[1:3])
	readQty := binary.BigEndian.Uint16(pdu[3:5])
	writeStart := binary.BigEndian.Uint16(pdu[5:7])
	writeQty := binary.BigEndian.Uint16(pdu[7:9])
	bc := pdu[9]

	if readQty < 1 || readQty > 125 || writeQty < 1 || writeQty > 121 {
		return nil, ExIllegalDataValue
	}
	if int(bc) != 2*int(writeQty) || len(pdu) != 10+int(bc) {
		return nil, ExIllegalDataValue
	}
	if !rangeOK(readStart, readQty, s.Holding.Count()) {
		return nil, ExIllegalDataAddress
	}
	if !rangeOK(writeStart, writeQty, s.Holding.Count()) {
		return nil, ExIllegalDataAddress
	}
	for i := uint16(0); i < writeQty; i++ {
		if !s.Holding.WriteOK(writeStart + i) {
			return nil, ExIllegalDataAddress
		}
	}
	for i := uint16(0); i < readQty; i++ {
		if !s.Holding.ReadOK(readStart + i) {
			return nil, ExIllegalDataAddress
		}
	}

	// Write happens before read, per the standard function 23 semantics:
	// a write to a register the read range also covers is visible in the
	// same response.
	writeData := pdu[10:]
	for i := uint16(0); i < writeQty; i++ {
		s.Holding.Write(writeStart+i, binary.BigEndian.Uint16(writeData[2*i:]))
	}

	resp := make([]byte, 2+2*int(readQty))
	resp[0] = FuncReadWriteMultipleRegisters
	resp[1] = byte(2 * readQty)
	for i := uint16(0); i < readQty; i++ {
		binary.BigEndian.PutUint16(resp[2+2*i:], s.Holding.Read(readStart+i))
	}
	return resp, nil
}
