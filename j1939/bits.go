package j1939

import (
	"fmt"
	"math"

	"j1939-dbc-core/dbc"
)

// ExtractBits reads an unsigned bitLength-bit field from data.
//
// Little-endian (Intel): the buffer is treated as a little-endian
// integer and the field occupies bits [startBit, startBit+bitLength) of
// it. Big-endian (Motorola): startBit names the most significant bit of
// the field; bit numbering decreases within a byte and wraps to bit 7
// of the following byte.
//
// Fields of any width 1..64 at any start bit are handled, including
// spans crossing several byte boundaries.
func ExtractBits(data []byte, startBit, bitLength int, order dbc.ByteOrder) (uint64, error) {
	if err := checkSpan(len(data), startBit, bitLength, order); err != nil {
		return 0, err
	}

	byteIdx := startBit / 8
	bitIdx := startBit % 8

	var v uint64
	switch order {
	case dbc.LittleEndian:
		for i := 0; i < bitLength; i++ {
			v |= uint64(data[byteIdx]>>bitIdx&1) << i
			if bitIdx == 7 {
				bitIdx = 0
				byteIdx++
			} else {
				bitIdx++
			}
		}
	case dbc.BigEndian:
		for i := 0; i < bitLength; i++ {
			v = v<<1 | uint64(data[byteIdx]>>bitIdx&1)
			if bitIdx == 0 {
				bitIdx = 7
				byteIdx++
			} else {
				bitIdx--
			}
		}
	}
	return v, nil
}

// PackBits writes the low bitLength bits of value into data at startBit.
// Read-modify-write: exactly the target bits are cleared and set, all
// other bits of the touched bytes keep their value, so signals sharing
// a byte do not clobber each other. On error the buffer is unmodified.
func PackBits(data []byte, startBit, bitLength int, order dbc.ByteOrder, value uint64) error {
	if err := checkSpan(len(data), startBit, bitLength, order); err != nil {
		return err
	}

	byteIdx := startBit / 8
	bitIdx := startBit % 8

	switch order {
	case dbc.LittleEndian:
		for i := 0; i < bitLength; i++ {
			mask := byte(1) << bitIdx
			if value>>i&1 == 1 {
				data[byteIdx] |= mask
			} else {
				data[byteIdx] &^= mask
			}
			if bitIdx == 7 {
				bitIdx = 0
				byteIdx++
			} else {
				bitIdx++
			}
		}
	case dbc.BigEndian:
		for i := 0; i < bitLength; i++ {
			mask := byte(1) << bitIdx
			if value>>(bitLength-1-i)&1 == 1 {
				data[byteIdx] |= mask
			} else {
				data[byteIdx] &^= mask
			}
			if bitIdx == 0 {
				bitIdx = 7
				byteIdx++
			} else {
				bitIdx--
			}
		}
	}
	return nil
}

func checkSpan(bufLen, startBit, bitLength int, order dbc.ByteOrder) error {
	if bitLength < 1 || bitLength > 64 {
		return fmt.Errorf("%w: got %d", ErrBitWidth, bitLength)
	}
	if startBit < 0 || startBit >= bufLen*8 {
		return fmt.Errorf("%w: start bit %d in %d-byte buffer", ErrBitRange, startBit, bufLen)
	}
	var avail int
	switch order {
	case dbc.LittleEndian:
		avail = bufLen*8 - startBit
	case dbc.BigEndian:
		avail = (bufLen-startBit/8-1)*8 + startBit%8 + 1
	default:
		return fmt.Errorf("unknown byte order %d", order)
	}
	if bitLength > avail {
		return fmt.Errorf("%w: %d bits at start bit %d, %d available", ErrBitRange, bitLength, startBit, avail)
	}
	return nil
}

// signExtend interprets the low bitLength bits of u as a two's
// complement value.
func signExtend(u uint64, bitLength int) int64 {
	if bitLength >= 64 {
		return int64(u)
	}
	signBit := uint64(1) << (bitLength - 1)
	if u&signBit == 0 {
		return int64(u)
	}
	return int64(u | ^(signBit<<1 - 1))
}

// rawToUnsigned converts a two's complement raw value back to its
// bitLength-bit unsigned pattern.
func rawToUnsigned(raw int64, bitLength int) uint64 {
	if bitLength >= 64 {
		return uint64(raw)
	}
	return uint64(raw) & (1<<bitLength - 1)
}

// rawBounds returns the representable raw range for a field.
func rawBounds(bitLength int, signed bool) (min, max int64) {
	if signed {
		if bitLength >= 64 {
			return math.MinInt64, math.MaxInt64
		}
		return -(1 << (bitLength - 1)), 1<<(bitLength-1) - 1
	}
	if bitLength >= 63 {
		// raw values are carried as int64; the unreachable top half of
		// a full 64-bit unsigned field is outside float64 precision
		// anyway
		return 0, math.MaxInt64
	}
	return 0, 1<<bitLength - 1
}
