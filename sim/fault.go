package sim

import (
	"fmt"
	"time"
)

// lampMIL is the malfunction indicator bit in the DM1 lamp flash byte.
const lampMIL = 0x10

// Fault is a DM1 active diagnostic trouble code injected into a
// generated capture at a fixed time.
type Fault struct {
	At  time.Duration
	SPN uint32 // suspect parameter number, 19 bits
	FMI uint8  // failure mode identifier, 5 bits
	OC  uint8  // occurrence count, 7 bits
}

func (f Fault) validate() error {
	if f.SPN > 0x7FFFF {
		return fmt.Errorf("fault SPN %d exceeds 19 bits", f.SPN)
	}
	if f.FMI > 0x1F {
		return fmt.Errorf("fault FMI %d exceeds 5 bits", f.FMI)
	}
	if f.OC > 0x7F {
		return fmt.Errorf("fault occurrence count %d exceeds 7 bits", f.OC)
	}
	return nil
}

// values maps the fault onto the DM1 schema signals. The SPN is split
// into its low word and the three bits above the FMI; the trailing two
// payload bytes stay at the padding pattern.
func (f Fault) values() map[string]float64 {
	return map[string]float64{
		"LampStatus":          0,
		"LampFlash":           lampMIL,
		"SPNLow":              float64(f.SPN & 0xFFFF),
		"SPNHigh":             float64(f.SPN >> 16),
		"FMI":                 float64(f.FMI),
		"OccurrenceCount":     float64(f.OC),
		"SPNConversionMethod": 0,
	}
}

// InjectFault schedules a DM1 frame for subsequent Generate calls.
// Faults whose time falls outside the generated duration are dropped.
func (g *Generator) InjectFault(f Fault) {
	g.faults = append(g.faults, f)
}
