package modbus

// framePrefixPad and frameSuffixPad bound the PDU body inside a
// FrameBuffer's backing array. The prefix must hold a complete 7-byte TCP
// MBAP header (transaction id, protocol id, length, unit id) since the RTU
// framer only ever needs the last byte of it (the address, written
// immediately before the PDU); the suffix holds the 2-byte RTU CRC. Note
// this reserves 9 bytes total rather than the 6 a literal reading of "4
// prefix + 2 suffix" would give -- see DESIGN.md for why: a 4-byte prefix
// cannot fit the 7-byte MBAP header the TCP frame maximum (260 = 7+253)
// already assumes.
const (
	framePrefixPad = 7
	frameSuffixPad = 2
)

// BufferPurpose tells an Allocator whether it is sizing a request or a
// response buffer, mirroring ModbusBufferPurpose in the C original so a
// caller-supplied allocator can keep separate pools per purpose.
type BufferPurpose byte

const (
	PurposeRequest BufferPurpose = iota
	PurposeResponse
)

// FrameBuffer is a byte array with three regions: the framePrefixPad
// bytes, the PDU body, and the frameSuffixPad bytes. PDU, RTU, and TCP
// entry points all view the same underlying array through different
// offsets, so moving from one framing to another never copies the PDU.
type FrameBuffer struct {
	raw    []byte
	length int // PDU length, excluding both pads
}

func newFrameBuffer(raw []byte, length int) FrameBuffer {
	return FrameBuffer{raw: raw, length: length}
}

// PDU returns the PDU-only view: function code byte followed by payload.
func (b FrameBuffer) PDU() []byte {
	if b.raw == nil {
		return nil
	}
	return b.raw[framePrefixPad : framePrefixPad+b.length]
}

// Frame returns the full backing array, including both pads, for framers
// to fill in the RTU address+CRC or TCP MBAP header around the PDU.
func (b FrameBuffer) Frame() []byte {
	return b.raw
}

// Len returns the current PDU length.
func (b FrameBuffer) Len() int {
	return b.length
}

// SetLen shrinks the PDU length. Used once a request/response builder
// reserved an upper-bound size up front and then wrote fewer bytes --
// the exact value, per the three-phase Begin/write/End builder pattern.
func (b *FrameBuffer) SetLen(n int) {
	b.length = n
}

// Empty reports whether the buffer has no backing storage, the state a
// Slave or Master starts in and the state an Allocator must return to on
// a zero-size Allocate call.
func (b FrameBuffer) Empty() bool {
	return b.raw == nil
}

// Allocator supplies and releases the byte storage backing a FrameBuffer.
// On success it returns a FrameBuffer with at least size+framePrefixPad+
// frameSuffixPad bytes of backing storage and PDU length set to size. On
// failure it returns a zero FrameBuffer and a SourceAllocator ErrorInfo.
// Calling Allocate with size 0 must release any prior buffer and return a
// zero FrameBuffer with Ok.
type Allocator interface {
	Allocate(purpose BufferPurpose, size uint16) (FrameBuffer, ErrorInfo)
}

// HeapAllocator is the default Allocator: every call returns a freshly
// made slice. This is the Go analogue of the C library's malloc-backed
// default allocator (modbusMasterDefaultAllocator / slave equivalent).
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(_ BufferPurpose, size uint16) (FrameBuffer, ErrorInfo) {
	if size == 0 {
		return FrameBuffer{}, Ok
	}
	raw := make([]byte, int(size)+framePrefixPad+frameSuffixPad)
	return newFrameBuffer(raw, int(size)), Ok
}

// StaticAllocator is a fixed-capacity Allocator for static-memory builds:
// it hands out slices of one preallocated backing array and fails once
// Allocate is asked for more than it can provide. This mirrors the C
// library's LIGHTMODBUS_STATIC_MEM_* build variant, for callers on
// controllers that cannot tolerate a heap allocation per cycle.
type StaticAllocator struct {
	storage []byte
}

// NewStaticAllocator creates a StaticAllocator backed by a single
// capacity-sized array, reused across every Allocate call.
func NewStaticAllocator(capacity int) *StaticAllocator {
	return &StaticAllocator{storage: make([]byte, capacity)}
}

// Allocate implements Allocator.
func (a *StaticAllocator) Allocate(_ BufferPurpose, size uint16) (FrameBuffer, ErrorInfo) {
	if size == 0 {
		return FrameBuffer{}, Ok
	}
	need := int(size) + framePrefixPad + frameSuffixPad
	if need > len(a.storage) {
		return FrameBuffer{}, errInfo(SourceAllocator, KindAlloc)
	}
	return newFrameBuffer(a.storage[:need:need], int(size)), Ok
}
