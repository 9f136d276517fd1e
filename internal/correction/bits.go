package correction

// ByteToBitsBE converts a byte to 8 bits in big-endian order
// (bits[0] = MSB, bits[7] = LSB)
func ByteToBitsBE(b uint8, bits []bool) {
	if len(bits) < 8 {
		return
	}
	for i := 0; i < 8; i++ {
		bits[i] = b&(0x80>>uint(i)) != 0
	}
}

// BitsToByteBE converts 8 bits in big-endian order to a byte
func BitsToByteBE(bits []bool) uint8 {
	if len(bits) < 8 {
		return 0
	}

	var b uint8
	for i := 0; i < 8; i++ {
		if bits[i] {
			b |= 0x80 >> uint(i)
		}
	}
	return b
}

// BytesToBits unpacks data MSB first
func BytesToBits(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		ByteToBitsBE(b, bits[i*8:])
	}
	return bits
}

// BitsToBytes packs bits MSB first; len(bits) must be a multiple of 8
func BitsToBytes(bits []bool) []byte {
	data := make([]byte, len(bits)/8)
	for i := range data {
		data[i] = BitsToByteBE(bits[i*8:])
	}
	return data
}
