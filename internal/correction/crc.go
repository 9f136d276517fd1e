package correction

import (
	"encoding/binary"
	"hash/crc32"
)

// CRC8 calculates CRC-8 (polynomial 0x07, init 0x00)
func CRC8(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC16 calculates CRC-16/CCITT (polynomial 0x1021, init 0xFFFF)
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC24 calculates a 24-bit CRC (polynomial 0x5D6DCB, init and final XOR 0xFFFFFF)
func CRC24(data []byte) uint32 {
	crc := uint32(0xFFFFFF)
	for _, b := range data {
		crc ^= uint32(b) << 16
		for i := 0; i < 8; i++ {
			if crc&0x800000 != 0 {
				crc = (crc<<1 ^ 0x5D6DCB) & 0xFFFFFF
			} else {
				crc = (crc << 1) & 0xFFFFFF
			}
		}
	}
	return crc ^ 0xFFFFFF
}

// CRC32 calculates the IEEE CRC-32
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// appendCheck appends the big-endian check value of data for the scheme
func appendCheck(c Check, dst, data []byte) []byte {
	switch c {
	case CheckCRC8:
		return append(dst, CRC8(data))
	case CheckCRC16:
		return binary.BigEndian.AppendUint16(dst, CRC16(data))
	case CheckCRC24:
		v := CRC24(data)
		return append(dst, byte(v>>16), byte(v>>8), byte(v))
	case CheckCRC32:
		return binary.BigEndian.AppendUint32(dst, CRC32(data))
	default:
		return dst
	}
}
