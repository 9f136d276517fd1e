package correction

import "fmt"

// Hamming (15,11,3): data bits 0-10, parity bits 11-14.
// Each mask selects the data bits covered by one parity bit.
var hamming15113Masks = [4]uint16{
	0x07F, // d0 d1 d2 d3 d4 d5 d6
	0x38F, // d0 d1 d2 d3 d7 d8 d9
	0x5B3, // d0 d1 d4 d5 d7 d8 d10
	0x6D5, // d0 d2 d4 d6 d7 d9 d10
}

// hamming15113Syndromes maps a non-zero syndrome to the bit position in error
var hamming15113Syndromes = func() [16]int {
	var table [16]int
	for i := range table {
		table[i] = -1
	}
	for bit := 0; bit < 11; bit++ {
		var s int
		for p, mask := range hamming15113Masks {
			if mask&(1<<uint(bit)) != 0 {
				s |= 1 << uint(p)
			}
		}
		table[s] = bit
	}
	for p := 0; p < 4; p++ {
		table[1<<uint(p)] = 11 + p
	}
	return table
}()

func hamming15113Parity(data []bool) [4]bool {
	var parity [4]bool
	for p, mask := range hamming15113Masks {
		for bit := 0; bit < 11; bit++ {
			if mask&(1<<uint(bit)) != 0 && data[bit] {
				parity[p] = !parity[p]
			}
		}
	}
	return parity
}

// Encode15113 fills parity bits 11-14 of a 15-bit Hamming codeword
func Encode15113(data []bool) error {
	if len(data) != 15 {
		return fmt.Errorf("invalid data length for Hamming (15,11,3): got %d, want 15", len(data))
	}

	parity := hamming15113Parity(data)
	copy(data[11:], parity[:])
	return nil
}

// Decode15113 corrects a single bit error in place.
// Returns false if the codeword has the wrong length (cannot be corrected).
func Decode15113(data []bool) bool {
	if len(data) != 15 {
		return false
	}

	parity := hamming15113Parity(data)
	var syndrome int
	for p := range parity {
		if parity[p] != data[11+p] {
			syndrome |= 1 << uint(p)
		}
	}
	if syndrome == 0 {
		return true
	}

	pos := hamming15113Syndromes[syndrome]
	if pos < 0 {
		return false
	}
	data[pos] = !data[pos]
	return true
}
