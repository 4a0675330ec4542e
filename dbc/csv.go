package dbc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV builds a Database from a can_map.csv file: one row per signal,
// frame columns repeated on every row of the same frame. An alternate
// schema source for rigs that maintain the map in a spreadsheet rather
// than a DBC file.
func LoadCSV(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	req := []string{
		"frame_id", "frame_name", "transmitter", "cycle_ms", "dlc",
		"signal_name", "start_bit", "bit_length", "endianness",
		"signed", "factor", "offset", "min", "max", "unit", "comment",
	}
	for _, k := range req {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("can_map.csv missing required column: %q", k)
		}
	}

	b := NewBuilder()
	seen := map[uint32]*Message{}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		frameID, err := parseHexOrDecUint32(rec[idx["frame_id"]])
		if err != nil {
			return nil, fmt.Errorf("invalid frame_id %q: %w", rec[idx["frame_id"]], err)
		}
		frameName := strings.TrimSpace(rec[idx["frame_name"]])
		dlc := mustInt(rec[idx["dlc"]])

		order := LittleEndian
		switch e := strings.TrimSpace(rec[idx["endianness"]]); e {
		case "", "little", "intel":
			order = LittleEndian
		case "big", "motorola":
			order = BigEndian
		default:
			return nil, fmt.Errorf("frame %s: unknown endianness %q", frameName, e)
		}

		sig := Signal{
			Name:      strings.TrimSpace(rec[idx["signal_name"]]),
			StartBit:  mustInt(rec[idx["start_bit"]]),
			BitLength: mustInt(rec[idx["bit_length"]]),
			ByteOrder: order,
			Signed:    mustBool(rec[idx["signed"]]),
			Scale:     mustFloat(rec[idx["factor"]]),
			Offset:    mustFloat(rec[idx["offset"]]),
			Min:       mustFloat(rec[idx["min"]]),
			Max:       mustFloat(rec[idx["max"]]),
			Unit:      strings.TrimSpace(rec[idx["unit"]]),
			Comment:   strings.TrimSpace(rec[idx["comment"]]),
		}

		msg, ok := seen[frameID]
		if !ok {
			msg = &Message{
				ID:          frameID,
				Name:        frameName,
				Length:      dlc,
				Transmitter: strings.TrimSpace(rec[idx["transmitter"]]),
				CycleMS:     mustInt(rec[idx["cycle_ms"]]),
			}
			seen[frameID] = msg
		}
		if msg.Length != dlc {
			return nil, fmt.Errorf("frame %s (0x%X) has inconsistent DLC (%d vs %d)",
				frameName, frameID, msg.Length, dlc)
		}
		msg.Signals = append(msg.Signals, sig)
	}

	for _, msg := range seen {
		b.AddMessage(*msg)
	}
	return b.Build()
}

func parseHexOrDecUint32(s string) (uint32, error) {
	ss := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(ss, "0x") || strings.HasPrefix(ss, "0X") {
		base = 16
		ss = ss[2:]
	}
	u, err := strconv.ParseUint(ss, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

func mustInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func mustFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func mustBool(s string) bool {
	ss := strings.TrimSpace(strings.ToLower(s))
	return ss == "true" || ss == "1" || ss == "yes"
}
