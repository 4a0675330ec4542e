// Package j1939 implements the generic bit-field codec and PGN
// derivation used to decode and encode J1939 frames against a
// dbc.Database. The codec is stateless; a Database built once may be
// decoded against from any number of goroutines.
package j1939

// 29-bit CAN ID layout:
// Priority (3) | Reserved (1) | Data Page (1) | PDU Format (8) | PDU Specific (8) | Source Address (8)
//   bits 28-26 |    bit 25    |    bit 24     |   bits 23-16   |    bits 15-8     |     bits 7-0

// Special addresses per J1939-81.
const (
	AddrGlobal = 0xFF // broadcast destination
	AddrNull   = 0xFE
)

// pduFormat values below this are PDU1 (destination-specific).
const pdu2Threshold = 240

// PGN describes the addressing fields derived from a 29-bit CAN ID.
type PGN struct {
	Priority      uint8
	DataPage      uint8
	PDUFormat     uint8
	PDUSpecific   uint8
	SourceAddress uint8
	// Number is the Parameter Group Number (up to 18 bits).
	Number uint32
	// PDU1 is true for destination-specific addressing, where
	// PDUSpecific is the destination and is not part of Number.
	PDU1 bool
}

// ResolvePGN derives the PGN descriptor from a 29-bit CAN identifier.
// Total over all inputs; bits above 28 are ignored.
func ResolvePGN(canID uint32) PGN {
	p := PGN{
		Priority: uint8(canID >> 26 & 0x07),
		// the data page field is one bit; bit 25 is reserved (EDP)
		// and never folded into the PGN
		DataPage:      uint8(canID >> 24 & 0x01),
		PDUFormat:     uint8(canID >> 16 & 0xFF),
		PDUSpecific:   uint8(canID >> 8 & 0xFF),
		SourceAddress: uint8(canID & 0xFF),
	}
	p.Number = uint32(p.DataPage)<<16 | uint32(p.PDUFormat)<<8
	if p.PDUFormat < pdu2Threshold {
		p.PDU1 = true
	} else {
		p.Number |= uint32(p.PDUSpecific)
	}
	return p
}

// Destination returns the destination address: the PDU-specific byte in
// PDU1 mode, the global address for PDU2 broadcasts.
func (p PGN) Destination() uint8 {
	if p.PDU1 {
		return p.PDUSpecific
	}
	return AddrGlobal
}

// CANID rebuilds a 29-bit identifier from a PGN number, priority and
// source address. For PDU1 PGNs the destination lands in the
// PDU-specific byte.
func CANID(pgn uint32, priority, destination, source uint8) uint32 {
	id := uint32(priority&0x07)<<26 | (pgn&0x3FFFF)<<8 | uint32(source)
	if uint8(pgn>>8) < pdu2Threshold {
		id |= uint32(destination) << 8
	}
	return id
}
