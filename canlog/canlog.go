// Package canlog reads and writes CAN capture formats: candump/
// SocketCAN logs, Vector ASC traces and a raw CSV export. These are the
// fixture formats the test-data generator emits and the decoder CLI
// consumes.
package canlog

import (
	"encoding/hex"
	"fmt"
	"strings"

	"go.einride.tech/can"
)

// Record is one captured frame with its relative timestamp.
type Record struct {
	// Timestamp in seconds from the start of the capture.
	Timestamp float64
	Channel   string
	Frame     can.Frame
}

func formatData(f can.Frame, sep string) string {
	parts := make([]string, f.Length)
	for i := 0; i < int(f.Length); i++ {
		parts[i] = fmt.Sprintf("%02X", f.Data[i])
	}
	return strings.Join(parts, sep)
}

func parseDataBytes(fields []string, f *can.Frame) error {
	if len(fields) > 8 {
		return fmt.Errorf("frame carries %d data bytes, max 8", len(fields))
	}
	for i, s := range fields {
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != 1 {
			return fmt.Errorf("bad data byte %q", s)
		}
		f.Data[i] = b[0]
	}
	f.Length = uint8(len(fields))
	return nil
}
