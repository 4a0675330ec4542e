package canlog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// candump -l format: (1692179443.894123) can0 0CF00400#007D7D803EFFFFFF
var reCandump = regexp.MustCompile(`^\((\d+\.\d+)\)\s+(\S+)\s+([0-9A-Fa-f]+)#([0-9A-Fa-f]*)$`)

// ReadCandump parses a SocketCAN candump log. Blank lines are skipped;
// anything else malformed is an error.
func ReadCandump(r io.Reader) ([]Record, error) {
	var out []Record
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		m := reCandump.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("candump line %d: malformed: %s", lineNo, line)
		}

		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("candump line %d: timestamp: %w", lineNo, err)
		}
		id, err := strconv.ParseUint(m[3], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("candump line %d: id: %w", lineNo, err)
		}
		if len(m[4])%2 != 0 {
			return nil, fmt.Errorf("candump line %d: odd data length", lineNo)
		}

		rec := Record{Timestamp: ts, Channel: m[2]}
		rec.Frame.ID = uint32(id)
		// candump prints extended IDs with 8 hex digits
		rec.Frame.IsExtended = len(m[3]) == 8

		var bytes []string
		for i := 0; i < len(m[4]); i += 2 {
			bytes = append(bytes, m[4][i:i+2])
		}
		if err := parseDataBytes(bytes, &rec.Frame); err != nil {
			return nil, fmt.Errorf("candump line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteCandump renders records in candump -l format.
func WriteCandump(w io.Writer, records []Record) error {
	for _, rec := range records {
		ch := rec.Channel
		if ch == "" {
			ch = "can0"
		}
		idDigits := 3
		if rec.Frame.IsExtended {
			idDigits = 8
		}
		if _, err := fmt.Fprintf(w, "(%.6f) %s %0*X#%s\n",
			rec.Timestamp, ch, idDigits, rec.Frame.ID, formatData(rec.Frame, "")); err != nil {
			return err
		}
	}
	return nil
}
