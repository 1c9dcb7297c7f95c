package modbus

// byteCount returns the number of bytes needed to hold bitCount packed
// bits, i.e. ceil(bitCount/8).
func byteCount(bitCount uint16) int {
	return int((bitCount + 7) / 8)
}

// getBit reads bit k of a packed coil/discrete-input bank: bit k lives at
// bank[k/8], mask 1<<(k%8) (LSB first within a byte), matching the wire
// layout used for coil/discrete-input bitstrings.
func getBit(bank []byte, k int) bool {
	return bank[k/8]&(1<<uint(k%8)) != 0
}

// setBit writes bit k of a packed coil bank to v, LSB first within a byte.
func setBit(bank []byte, k int, v bool) {
	if v {
		bank[k/8] |= 1 << uint(k%8)
	} else {
		bank[k/8] &^= 1 << uint(k%8)
	}
}

// packBits packs quantity bools into a freshly allocated, LSB-first byte
// slice sized byteCount(quantity), the same layout used on the wire for
// coil/discrete-input bitstrings.
func packBits(values []bool) []byte {
	out := make([]byte, byteCount(uint16(len(values))))
	for i, v := range values {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// unpackBits unpacks quantity LSB-first bits from data into a []bool.
func unpackBits(data []byte, quantity uint16) []bool {
	out := make([]bool, quantity)
	for i := range out {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			break
		}
		out[i] = data[byteIdx]&(1<<uint(i%8)) != 0
	}
	return out
}
