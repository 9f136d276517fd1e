package correction

import "sync"

// Golay (24,12,8) parity matrix. Row r holds the parity contribution of data
// bit 11-r. The matrix is symmetric and every non-zero codeword has weight >= 8.
var golay24128Parity = [12]uint16{
	0xDC5, 0xB8B, 0x717, 0xE2D,
	0xC5B, 0x8B7, 0x16F, 0x2DD,
	0x5B9, 0xB71, 0x6E3, 0xFFE,
}

// GolayUncorrectable is returned as the error count when a received word
// has more than three bit errors.
const GolayUncorrectable = 0xFF

var (
	golaySyndromeOnce sync.Once
	golayErrorPattern [4096]uint32
	golayErrorWeight  [4096]uint8
)

// golay24128ParityOf calculates the 12 parity bits of a 12-bit data word
func golay24128ParityOf(data uint16) uint16 {
	var p uint16
	for r := 0; r < 12; r++ {
		if data&(1<<uint(11-r)) != 0 {
			p ^= golay24128Parity[r]
		}
	}
	return p
}

// Golay24128Encode encodes 12-bit data into a 24-bit systematic codeword
// Data occupies bits 23..12, parity bits 11..0
func Golay24128Encode(data uint16) uint32 {
	data &= 0xFFF
	return uint32(data)<<12 | uint32(golay24128ParityOf(data))
}

// Golay24128Decode corrects up to three bit errors in a 24-bit codeword.
// Returns the data bits and the number of corrected errors, or
// GolayUncorrectable with the uncorrected data bits.
func Golay24128Decode(codeword uint32) (uint16, uint8) {
	golaySyndromeOnce.Do(buildGolaySyndromeTable)

	codeword &= 0xFFFFFF
	data := uint16(codeword >> 12)
	syndrome := golay24128ParityOf(data) ^ uint16(codeword&0xFFF)
	if syndrome == 0 {
		return data, 0
	}

	weight := golayErrorWeight[syndrome]
	if weight == GolayUncorrectable {
		return data, GolayUncorrectable
	}

	corrected := codeword ^ golayErrorPattern[syndrome]
	return uint16(corrected >> 12), weight
}

// buildGolaySyndromeTable maps the syndrome of every error pattern of weight
// one to three onto that pattern
func buildGolaySyndromeTable() {
	for i := range golayErrorWeight {
		golayErrorWeight[i] = GolayUncorrectable
	}
	golayErrorWeight[0] = 0

	add := func(pattern uint32, weight uint8) {
		s := golay24128ParityOf(uint16(pattern>>12)) ^ uint16(pattern&0xFFF)
		if golayErrorWeight[s] == GolayUncorrectable {
			golayErrorWeight[s] = weight
			golayErrorPattern[s] = pattern
		}
	}

	for i := uint(0); i < 24; i++ {
		add(1<<i, 1)
	}
	for i := uint(0); i < 24; i++ {
		for j := i + 1; j < 24; j++ {
			add(1<<i|1<<j, 2)
		}
	}
	for i := uint(0); i < 24; i++ {
		for j := i + 1; j < 24; j++ {
			for k := j + 1; k < 24; k++ {
				add(1<<i|1<<j|1<<k, 3)
			}
		}
	}
}
