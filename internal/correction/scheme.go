package correction

import (
	"bytes"
	"fmt"
	"strings"
)

// Check is an error-detection scheme appended to a message
type Check int

const (
	CheckNone Check = iota
	CheckCRC8
	CheckCRC16
	CheckCRC24
	CheckCRC32
)

var checkNames = map[Check]string{
	CheckNone:  "none",
	CheckCRC8:  "crc8",
	CheckCRC16: "crc16",
	CheckCRC24: "crc24",
	CheckCRC32: "crc32",
}

func (c Check) String() string {
	if name, ok := checkNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Check(%d)", int(c))
}

// Len returns the check value length in bytes
func (c Check) Len() int {
	switch c {
	case CheckCRC8:
		return 1
	case CheckCRC16:
		return 2
	case CheckCRC24:
		return 3
	case CheckCRC32:
		return 4
	default:
		return 0
	}
}

// Append appends data and its check value to dst
func (c Check) Append(dst, data []byte) []byte {
	dst = append(dst, data...)
	return appendCheck(c, dst, data)
}

// Verify reports whether the trailing check value of msg matches its data
func (c Check) Verify(msg []byte) bool {
	n := c.Len()
	if len(msg) < n {
		return false
	}
	data := msg[:len(msg)-n]
	return bytes.Equal(appendCheck(c, nil, data), msg[len(msg)-n:])
}

// ParseCheck parses a check scheme name such as "crc24"
func ParseCheck(name string) (Check, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range checkNames {
		if n == name {
			return c, nil
		}
	}
	return CheckNone, fmt.Errorf("unknown check scheme %q", name)
}

// FEC is a forward error correction scheme operating on bit streams
type FEC int

const (
	FECNone FEC = iota
	FECHamming1511
	FECGolay2412
)

var fecNames = map[FEC]string{
	FECNone:        "none",
	FECHamming1511: "hamming1511",
	FECGolay2412:   "golay2412",
}

func (f FEC) String() string {
	if name, ok := fecNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FEC(%d)", int(f))
}

// ParseFEC parses a FEC scheme name such as "golay2412"
func ParseFEC(name string) (FEC, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fecNames {
		if n == name {
			return f, nil
		}
	}
	return FECNone, fmt.Errorf("unknown FEC scheme %q", name)
}

// blockSize returns the data and codeword bit lengths of one block
func (f FEC) blockSize() (int, int) {
	switch f {
	case FECHamming1511:
		return 11, 15
	case FECGolay2412:
		return 12, 24
	default:
		return 1, 1
	}
}

// EncodedLen returns the number of coded bits for n data bits
func (f FEC) EncodedLen(n int) int {
	k, cw := f.blockSize()
	return (n + k - 1) / k * cw
}

// Encode returns the coded bit stream. The last block is zero padded.
func (f FEC) Encode(bits []bool) []bool {
	k, cw := f.blockSize()
	out := make([]bool, f.EncodedLen(len(bits)))

	switch f {
	case FECHamming1511:
		for b := 0; b*k < len(bits); b++ {
			block := out[b*cw : (b+1)*cw]
			copy(block, bits[b*k:min((b+1)*k, len(bits))])
			Encode15113(block)
		}
	case FECGolay2412:
		for b := 0; b*k < len(bits); b++ {
			var data uint16
			for i := 0; i < k; i++ {
				data <<= 1
				if j := b*k + i; j < len(bits) && bits[j] {
					data |= 1
				}
			}
			putWord(out[b*cw:(b+1)*cw], Golay24128Encode(data))
		}
	default:
		copy(out, bits)
	}
	return out
}

// Decode recovers n data bits from a coded bit stream. It returns the
// number of corrected bits and false if any block was uncorrectable.
func (f FEC) Decode(coded []bool, n int) ([]bool, int, bool) {
	k, cw := f.blockSize()
	if len(coded) < f.EncodedLen(n) {
		return nil, 0, false
	}

	out := make([]bool, n)
	corrected := 0
	ok := true

	switch f {
	case FECHamming1511:
		block := make([]bool, cw)
		for b := 0; b*k < n; b++ {
			copy(block, coded[b*cw:(b+1)*cw])
			before := append([]bool(nil), block...)
			if !Decode15113(block) {
				ok = false
			}
			for i := range block {
				if block[i] != before[i] {
					corrected++
				}
			}
			copy(out[b*k:min((b+1)*k, n)], block)
		}
	case FECGolay2412:
		for b := 0; b*k < n; b++ {
			data, errs := Golay24128Decode(getWord(coded[b*cw : (b+1)*cw]))
			if errs == GolayUncorrectable {
				ok = false
			} else {
				corrected += int(errs)
			}
			for i := 0; i < k && b*k+i < n; i++ {
				out[b*k+i] = data&(1<<uint(k-1-i)) != 0
			}
		}
	default:
		copy(out, coded[:n])
	}
	return out, corrected, ok
}

func putWord(bits []bool, w uint32) {
	n := len(bits)
	for i := 0; i < n; i++ {
		bits[i] = w&(1<<uint(n-1-i)) != 0
	}
}

func getWord(bits []bool) uint32 {
	var w uint32
	for _, b := range bits {
		w <<= 1
		if b {
			w |= 1
		}
	}
	return w
}
