package modbus

// RegisterBank is a read-only source of 16-bit register values, the
// shared shape of input registers (always read-only) and the readable
// half of holding registers.
type RegisterBank interface {
	Count() uint16
	ReadOK(index uint16) bool
	Read(index uint16) uint16
}

// WritableRegisterBank is a RegisterBank that additionally accepts
// writes, used for holding registers.
type WritableRegisterBank interface {
	RegisterBank
	WriteOK(index uint16) bool
	Write(index uint16, value uint16)
}

// CoilBank is a read-only source of single-bit values, the shape of
// discrete inputs and the readable half of coils.
type CoilBank interface {
	Count() uint16
	ReadOK(index uint16) bool
	Read(index uint16) bool
}

// WritableCoilBank is a CoilBank that additionally accepts writes, used
// for coils.
type WritableCoilBank interface {
	CoilBank
	WriteOK(index uint16) bool
	Write(index uint16, value bool)
}

// RegisterArray is the materialized RegisterBank: a flat slice of values
// plus an optional write-protection mask (one bit per element, 1 =
// protected, nil = nothing protected). This is the common case, used
// whenever a bank is backed by an actual array of memory.
type RegisterArray struct {
	Values []uint16
	Mask   []byte
}

func (r *RegisterArray) Count() uint16 { return uint16(len(r.Values)) }

func (r *RegisterArray) ReadOK(index uint16) bool { return int(index) < len(r.Values) }

func (r *RegisterArray) Read(index uint16) uint16 { return r.Values[index] }

func (r *RegisterArray) WriteOK(index uint16) bool {
	if int(index) >= len(r.Values) {
		return false
	}
	return r.Mask == nil || !getBit(r.Mask, int(index))
}

func (r *RegisterArray) Write(index uint16, value uint16) { r.Values[index] = value }

var (
	_ RegisterBank         = (*RegisterArray)(nil)
	_ WritableRegisterBank = (*RegisterArray)(nil)
)

// CoilArray is the materialized CoilBank: a packed, LSB-first byte slice
// plus an explicit element count (packed bytes alone cannot recover a
// count that isn't a multiple of 8) and an optional write-protection
// mask in the same packed layout.
type CoilArray struct {
	Values []byte
	N      uint16
	Mask   []byte
}

func (c *CoilArray) Count() uint16 { return c.N }

func (c *CoilArray) ReadOK(index uint16) bool { return index < c.N }

func (c *CoilArray) Read(index uint16) bool { return getBit(c.Values, int(index)) }

func (c *CoilArray) WriteOK(index uint16) bool {
	if index >= c.N {
		return false
	}
	return c.Mask == nil || !getBit(c.Mask, int(index))
}

func (c *CoilArray) Write(index uint16, value bool) { setBit(c.Values, int(index), value) }

var (
	_ CoilBank         = (*CoilArray)(nil)
	_ WritableCoilBank = (*CoilArray)(nil)
)

// RegisterFunc is the virtualized RegisterBank: a capability providing
// read/write/read-check/write-check queries instead of a backing array,
// letting a caller virtualize a bank behind computed values (a live
// sensor reading, a value derived from other state) instead of memory.
// Mirrors the C library's ModbusRegisterCallbackFunction together with
// its MODBUS_REGQ_R / _W / _R_CHECK / _W_CHECK query enum, split here
// into four separate closures rather than one function with a query tag.
type RegisterFunc struct {
	CountFunc   func() uint16
	ReadFunc    func(index uint16) uint16
	WriteFunc   func(index uint16, value uint16)
	ReadOKFunc  func(index uint16) bool
	WriteOKFunc func(index uint16) bool
}

func (r RegisterFunc) Count() uint16                  { return r.CountFunc() }
func (r RegisterFunc) ReadOK(index uint16) bool       { return r.ReadOKFunc(index) }
func (r RegisterFunc) Read(index uint16) uint16       { return r.ReadFunc(index) }
func (r RegisterFunc) WriteOK(index uint16) bool      { return r.WriteOKFunc != nil && r.WriteOKFunc(index) }
func (r RegisterFunc) Write(index uint16, value uint16) { r.WriteFunc(index, value) }

var (
	_ RegisterBank         = RegisterFunc{}
	_ WritableRegisterBank = RegisterFunc{}
)

// CoilFunc is the virtualized CoilBank, the bit-addressed counterpart of
// RegisterFunc.
type CoilFunc struct {
	CountFunc   func() uint16
	ReadFunc    func(index uint16) bool
	WriteFunc   func(index uint16, value bool)
	ReadOKFunc  func(index uint16) bool
	WriteOKFunc func(index uint16) bool
}

func (c CoilFunc) Count() uint16             { return c.CountFunc() }
func (c CoilFunc) ReadOK(index uint16) bool  { return c.ReadOKFunc(index) }
func (c CoilFunc) Read(index uint16) bool    { return c.ReadFunc(index) }
func (c CoilFunc) WriteOK(index uint16) bool { return c.WriteOKFunc != nil && c.WriteOKFunc(index) }
func (c CoilFunc) Write(index uint16, value bool) { c.WriteFunc(index, value) }

var (
	_ CoilBank         = CoilFunc{}
	_ WritableCoilBank = CoilFunc{}
)

// rangeOK reports whether [index, index+count) lies entirely within a
// bank of the given element count.
func rangeOK(index, count, bankCount uint16) bool {
	end := uint32(index) + uint32(count)
	return end <= uint32(bankCount)
}
