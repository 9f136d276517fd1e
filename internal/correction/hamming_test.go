package correction

import (
	"testing"
)

func TestHamming15113(t *testing.T) {
	tests := []struct {
		name    string
		input   []bool // 11 data bits + 4 parity bits = 15 bits total
		corrupt int    // bit position to corrupt (-1 for no corruption)
	}{
		{
			name:    "all zeros uncorrupted",
			input:   make([]bool, 15),
			corrupt: -1,
		},
		{
			name:    "all zeros with single bit error",
			input:   make([]bool, 15),
			corrupt: 5,
		},
		{
			name:    "data pattern with error in data bit",
			input:   []bool{true, false, true, false, true, false, true, false, true, false, true, false, false, false, false},
			corrupt: 3,
		},
		{
			name:    "data pattern with error in parity bit",
			input:   []bool{true, false, true, false, true, false, true, false, true, false, true, false, false, false, false},
			corrupt: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]bool, len(tt.input))
			copy(data, tt.input)
			if err := Encode15113(data); err != nil {
				t.Fatalf("Encode15113() error = %v", err)
			}

			encoded := make([]bool, len(data))
			copy(encoded, data)

			if tt.corrupt >= 0 {
				data[tt.corrupt] = !data[tt.corrupt]
			}

			if !Decode15113(data) {
				t.Fatalf("Decode15113() failed")
			}
			for i := range data {
				if data[i] != encoded[i] {
					t.Errorf("Decode15113() bit %d = %v, want %v", i, data[i], encoded[i])
				}
			}
		})
	}
}

func TestHamming15113_EveryPosition(t *testing.T) {
	data := []bool{true, true, false, true, false, false, true, true, false, true, false, false, false, false, false}
	Encode15113(data)

	for pos := 0; pos < 15; pos++ {
		word := append([]bool(nil), data...)
		word[pos] = !word[pos]
		if !Decode15113(word) {
			t.Fatalf("position %d: Decode15113() failed", pos)
		}
		for i := range word {
			if word[i] != data[i] {
				t.Errorf("position %d: bit %d not restored", pos, i)
			}
		}
	}
}

func TestHamming15113_InvalidLength(t *testing.T) {
	if err := Encode15113(make([]bool, 14)); err == nil {
		t.Errorf("Encode15113() expected error for short input")
	}
	if Decode15113(make([]bool, 16)) {
		t.Errorf("Decode15113() accepted a 16-bit word")
	}
}

func TestFEC_RoundTrip(t *testing.T) {
	payload := BytesToBits([]byte{0x00, 0xFF, 0x5A, 0xC3, 0x81, 0x7E, 0x12, 0x34, 0x56})

	for _, f := range []FEC{FECNone, FECHamming1511, FECGolay2412} {
		t.Run(f.String(), func(t *testing.T) {
			coded := f.Encode(payload)
			if len(coded) != f.EncodedLen(len(payload)) {
				t.Fatalf("Encode() length = %d, want %d", len(coded), f.EncodedLen(len(payload)))
			}

			// one error per block is always correctable for the coded schemes
			_, cw := f.blockSize()
			blocks := len(coded) / cw
			if f != FECNone {
				for b := 0; b < len(coded); b += cw {
					coded[b+1] = !coded[b+1]
				}
			}

			decoded, corrected, ok := f.Decode(coded, len(payload))
			if !ok {
				t.Fatalf("Decode() reported an uncorrectable block")
			}
			if f != FECNone && corrected != blocks {
				t.Errorf("Decode() corrected %d bits, want %d", corrected, blocks)
			}
			if string(BitsToBytes(decoded)) != string(BitsToBytes(payload)) {
				t.Errorf("Decode() = % X, want % X", BitsToBytes(decoded), BitsToBytes(payload))
			}
		})
	}
}

func TestFEC_EncodedLen(t *testing.T) {
	tests := []struct {
		fec  FEC
		n    int
		want int
	}{
		{FECNone, 600, 600},
		{FECGolay2412, 600, 1200},
		{FECGolay2412, 601, 1224},
		{FECHamming1511, 600, 825},
	}
	for _, tt := range tests {
		if got := tt.fec.EncodedLen(tt.n); got != tt.want {
			t.Errorf("%v.EncodedLen(%d) = %d, want %d", tt.fec, tt.n, got, tt.want)
		}
	}
}
