package correction

import (
	"testing"
)

var checkString = []byte("123456789")

func TestCRC8(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint8
	}{
		{
			name:     "empty data",
			input:    []byte{},
			expected: 0x00,
		},
		{
			name:     "single byte",
			input:    []byte{0x01},
			expected: 0x07,
		},
		{
			name:     "multiple bytes",
			input:    []byte{0x12, 0x34, 0x56},
			expected: 0x7C,
		},
		{
			name:     "check string",
			input:    checkString,
			expected: 0xF4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC8(tt.input)
			if result != tt.expected {
				t.Errorf("CRC8() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestCRC16(t *testing.T) {
	if got := CRC16(checkString); got != 0x29B1 {
		t.Errorf("CRC16() = 0x%04X, want 0x29B1", got)
	}
	if got := CRC16(nil); got != 0xFFFF {
		t.Errorf("CRC16(nil) = 0x%04X, want 0xFFFF", got)
	}
}

func TestCRC24(t *testing.T) {
	if got := CRC24(checkString); got != 0x351948 {
		t.Errorf("CRC24() = 0x%06X, want 0x351948", got)
	}
	if got := CRC24(nil); got != 0x000000 {
		t.Errorf("CRC24(nil) = 0x%06X, want 0x000000", got)
	}
}

func TestCRC32(t *testing.T) {
	if got := CRC32(checkString); got != 0xCBF43926 {
		t.Errorf("CRC32() = 0x%08X, want 0xCBF43926", got)
	}
}

func TestCheck_AppendVerify(t *testing.T) {
	checks := []Check{CheckNone, CheckCRC8, CheckCRC16, CheckCRC24, CheckCRC32}
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02}

	for _, c := range checks {
		t.Run(c.String(), func(t *testing.T) {
			msg := c.Append(nil, data)
			if len(msg) != len(data)+c.Len() {
				t.Fatalf("Append() length = %d, want %d", len(msg), len(data)+c.Len())
			}
			if !c.Verify(msg) {
				t.Errorf("Verify() rejected a freshly appended check value")
			}
			if c == CheckNone {
				return
			}
			msg[0] ^= 0x10
			if c.Verify(msg) {
				t.Errorf("Verify() accepted a corrupted message")
			}
		})
	}
}

func TestCheck_AppendCRC24Layout(t *testing.T) {
	msg := CheckCRC24.Append(nil, checkString)
	tail := msg[len(msg)-3:]
	if tail[0] != 0x35 || tail[1] != 0x19 || tail[2] != 0x48 {
		t.Errorf("CRC24 tail = % X, want 35 19 48", tail)
	}
}

func TestParseCheck(t *testing.T) {
	c, err := ParseCheck(" CRC24 ")
	if err != nil || c != CheckCRC24 {
		t.Errorf("ParseCheck(crc24) = %v, %v", c, err)
	}
	if _, err := ParseCheck("crc7"); err == nil {
		t.Errorf("ParseCheck(crc7) expected error")
	}
}
