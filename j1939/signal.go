package j1939

import (
	"fmt"
	"math"

	"j1939-dbc-core/dbc"
)

// Kind classifies a decoded signal value.
type Kind int

const (
	// Valid carries a physical engineering value.
	Valid Kind = iota
	// NotAvailable is the all-ones sentinel: the sender does not know
	// the value. Not an error.
	NotAvailable
	// ErrorIndicator is the reserved range just below the sentinel
	// (top byte 0xFE per J1939-71): the sender knows the value is bad.
	ErrorIndicator
)

func (k Kind) String() string {
	switch k {
	case NotAvailable:
		return "not available"
	case ErrorIndicator:
		return "error indicator"
	default:
		return "valid"
	}
}

// Value is one decoded signal.
type Value struct {
	Kind Kind
	// Physical is raw*scale+offset; meaningful only when Kind == Valid.
	Physical float64
	// Raw is the sign-extended raw field value.
	Raw int64
	// Label is the schema's description for Raw, when one is defined.
	Label string
}

// Valid reports whether the value carries usable physical data.
func (v Value) Valid() bool { return v.Kind == Valid }

func (v Value) String() string {
	if v.Kind != Valid {
		return v.Kind.String()
	}
	if v.Label != "" {
		return fmt.Sprintf("%g (%s)", v.Physical, v.Label)
	}
	return fmt.Sprintf("%g", v.Physical)
}

// DecodeSignal extracts one signal from a payload and applies sign
// extension, sentinel classification and linear scaling.
func DecodeSignal(data []byte, sig *dbc.Signal) (Value, error) {
	u, err := ExtractBits(data, sig.StartBit, sig.BitLength, sig.ByteOrder)
	if err != nil {
		return Value{}, fmt.Errorf("signal %s: %w", sig.Name, err)
	}

	raw := int64(u)
	if sig.Signed {
		raw = signExtend(u, sig.BitLength)
	}

	v := Value{Raw: raw, Label: sig.Values[u]}
	switch classifySentinel(u, sig.BitLength) {
	case NotAvailable:
		v.Kind = NotAvailable
	case ErrorIndicator:
		v.Kind = ErrorIndicator
	default:
		v.Physical = float64(raw)*sig.Scale + sig.Offset
	}
	return v, nil
}

// classifySentinel checks the unsigned bit pattern against the J1939-71
// reserved ranges: all ones is "not available", a 0xFE top byte is the
// error indicator. A 1-bit field has no room for either.
func classifySentinel(u uint64, bitLength int) Kind {
	if bitLength < 2 {
		return Valid
	}
	allOnes := ^uint64(0)
	if bitLength < 64 {
		allOnes = 1<<bitLength - 1
	}
	if u == allOnes {
		return NotAvailable
	}
	if bitLength >= 8 && u>>(bitLength-8) == 0xFE {
		return ErrorIndicator
	}
	return Valid
}

// EncodeOptions adjusts EncodeSignal behavior.
type EncodeOptions struct {
	// Clamp saturates out-of-range raw values to the representable
	// bounds instead of failing.
	Clamp bool
}

// EncodeSignal converts a physical value back to raw bits and packs
// them into data. Values outside the field's representable range fail
// with *OutOfRangeError unless opts.Clamp is set; the buffer is never
// modified on failure.
//
// Raw values travel as int64, so unsigned fields of 63 bits or more
// top out at MaxInt64. Physical values mapping above that are rejected
// even though the bits exist; float64 cannot represent them exactly
// either.
func EncodeSignal(data []byte, sig *dbc.Signal, physical float64, opts EncodeOptions) error {
	rawF := math.Round((physical - sig.Offset) / sig.Scale)
	min, max := rawBounds(sig.BitLength, sig.Signed)

	var raw int64
	switch {
	case rawF >= float64(min) && rawF <= float64(max):
		raw = int64(rawF)
	case opts.Clamp && rawF < float64(min):
		raw = min
	case opts.Clamp && rawF > float64(max):
		raw = max
	default:
		// also reached for NaN, which clamping cannot repair
		return &OutOfRangeError{
			Signal: sig.Name, Physical: physical, Raw: int64(rawF), Min: min, Max: max,
		}
	}

	u := rawToUnsigned(raw, sig.BitLength)
	if err := PackBits(data, sig.StartBit, sig.BitLength, sig.ByteOrder, u); err != nil {
		return fmt.Errorf("signal %s: %w", sig.Name, err)
	}
	return nil
}

// EncodeNotAvailable packs the all-ones sentinel into the signal's bits.
func EncodeNotAvailable(data []byte, sig *dbc.Signal) error {
	if err := PackBits(data, sig.StartBit, sig.BitLength, sig.ByteOrder, ^uint64(0)); err != nil {
		return fmt.Errorf("signal %s: %w", sig.Name, err)
	}
	return nil
}
