package modbus

// RegisterKind tags which of the four Modbus address spaces a
// DataCallbackArgs value belongs to.
type RegisterKind byte

const (
	KindHoldingRegister RegisterKind = iota
	KindInputRegister
	KindCoil
	KindDiscreteInput
)

func (k RegisterKind) String() string {
	switch k {
	case KindHoldingRegister:
		return "holding"
	case KindInputRegister:
		return "input"
	case KindCoil:
		return "coil"
	case KindDiscreteInput:
		return "discrete"
	}
	return "unknown"
}

// SlaveFunctionHandler associates a Modbus function code with a request
// handler. Handle receives the request PDU (function code byte included)
// and returns either a response PDU to echo back to the master, or a
// non-nil Exception to have the dispatcher compose an exception response.
type SlaveFunctionHandler struct {
	Code   byte
	Handle func(s *Slave, pdu []byte) (respPDU []byte, ex Exception)
}

// DataCallbackArgs is passed to a Master's DataCallback once per decoded
// register/coil value, in ascending index order.
type DataCallbackArgs struct {
	Type     RegisterKind
	Index    uint16
	Value    uint16
	Function byte
	Address  byte
}

// DataCallback receives one decoded value per invocation. A non-Ok return
// aborts the remainder of the parse with that ErrorInfo.
type DataCallback func(args DataCallbackArgs) ErrorInfo

// ExceptionCallback is invoked at most once per parse, when the response
// PDU's function code has its top bit set.
type ExceptionCallback func(address, function byte, code Exception)

// MasterFunctionHandler associates a Modbus function code with a response
// parser. Parse cross-references the original request PDU (to recover
// the start index / count that isn't repeated in every response) and
// invokes the Master's DataCallback for each reported value.
type MasterFunctionHandler struct {
	Code  byte
	Parse func(m *Master, address byte, reqPDU, respPDU []byte) ErrorInfo
}

// findSlaveFunction performs a first-match linear lookup: the caller's
// table is consulted alone, defaults are never implicitly appended.
func findSlaveFunction(table []SlaveFunctionHandler, code byte) *SlaveFunctionHandler {
	for i := range table {
		if table[i].Code == code {
			return &table[i]
		}
	}
	return nil
}

func findMasterFunction(table []MasterFunctionHandler, code byte) *MasterFunctionHandler {
	for i := range table {
		if table[i].Code == code {
			return &table[i]
		}
	}
	return nil
}

// DefaultSlaveFunctions is the standard mapping from function code to
// request handler for codes 1, 2, 3, 4, 5, 6, 15, 16, 22, 23.
var DefaultSlaveFunctions = []SlaveFunctionHandler{
	{Code: FuncReadCoils, Handle: slaveReadCoils},
	{Code: FuncReadDiscreteInputs, Handle: slaveReadDiscreteInputs},
	{Code: FuncReadHoldingRegisters, Handle: slaveReadHoldingRegisters},
	{Code: FuncReadInputRegisters, Handle: slaveReadInputRegisters},
	{Code: FuncWriteSingleCoil, Handle: slaveWriteSingleCoil},
	{Code: FuncWriteSingleRegister, Handle: slaveWriteSingleRegister},
	{Code: FuncWriteMultipleCoils, Handle: slaveWriteMultipleCoils},
	{Code: FuncWriteMultipleRegisters, Handle: slaveWriteMultipleRegisters},
	{Code: FuncMaskWriteRegister, Handle: slaveMaskWriteRegister},
	{Code: FuncReadWriteMultipleRegisters, Handle: slaveReadWriteMultipleRegisters},
}

// DefaultMasterFunctions is the standard mapping from function code to
// response parser, symmetric with DefaultSlaveFunctions.
var DefaultMasterFunctions = []MasterFunctionHandler{
	{Code: FuncReadCoils, Parse: masterParseReadCoils},
	{Code: FuncReadDiscreteInputs, Parse: masterParseReadDiscreteInputs},
	{Code: FuncReadHoldingRegisters, Parse: masterParseReadHoldingRegisters},
	{Code: FuncReadInputRegisters, Parse: masterParseReadInputRegisters},
	{Code: FuncWriteSingleCoil, Parse: masterParseWriteSingleCoil},
	{Code: FuncWriteSingleRegister, Parse: masterParseWriteSingleRegister},
	{Code: FuncWriteMultipleCoils, Parse: masterParseWriteMultipleCoils},
	{Code: FuncWriteMultipleRegisters, Parse: masterParseWriteMultipleRegisters},
	{Code: FuncMaskWriteRegister, Parse: masterParseMaskWriteRegister},
	{Code: FuncReadWriteMultipleRegisters, Parse: masterParseReadWriteMultipleRegisters},
}

// Standard Modbus function codes implemented by the default tables.
const (
	FuncReadCoils                  byte = 0x01
	FuncReadDiscreteInputs         byte = 0x02
	FuncReadHoldingRegisters       byte = 0x03
	FuncReadInputRegisters         byte = 0x04
	FuncWriteSingleCoil            byte = 0x05
	FuncWriteSingleRegister        byte = 0x06
	FuncWriteMultipleCoils         byte = 0x0F
	FuncWriteMultipleRegisters     byte = 0x10
	FuncMaskWriteRegister          byte = 0x16
	FuncReadWriteMultipleRegisters byte = 0x17

	exceptionBit byte = 0x80
)
