package canlog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Vector ASC data line:
//   0.000000 1  0CF00400x       Rx   d 8 00 7D 7D 80 3E 00 00 00
var reASCLine = regexp.MustCompile(`^\s*(\d+\.\d+)\s+(\d+)\s+([0-9A-Fa-f]+)(x?)\s+Rx\s+d\s+(\d+)\s+(.*)$`)

// ReadASC parses a Vector ASC trace, skipping the header and anything
// that is not a received data frame (comments, internal events).
func ReadASC(r io.Reader) ([]Record, error) {
	var out []Record
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") ||
			strings.HasPrefix(trimmed, "date") || strings.HasPrefix(trimmed, "base") ||
			strings.Contains(trimmed, "no internal events") {
			continue
		}
		m := reASCLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("asc line %d: timestamp: %w", lineNo, err)
		}
		id, err := strconv.ParseUint(m[3], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("asc line %d: id: %w", lineNo, err)
		}
		length, err := strconv.Atoi(m[5])
		if err != nil {
			return nil, fmt.Errorf("asc line %d: length: %w", lineNo, err)
		}

		rec := Record{Timestamp: ts, Channel: m[2]}
		rec.Frame.ID = uint32(id)
		rec.Frame.IsExtended = m[4] == "x"

		fields := strings.Fields(m[6])
		if len(fields) < length {
			return nil, fmt.Errorf("asc line %d: %d data bytes, header says %d", lineNo, len(fields), length)
		}
		if err := parseDataBytes(fields[:length], &rec.Frame); err != nil {
			return nil, fmt.Errorf("asc line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteASC renders records as a Vector ASC trace with the usual header.
func WriteASC(w io.Writer, records []Record, now time.Time) error {
	bw := bufio.NewWriter(w)
	date := now.Format("Mon Jan 2 03:04:05 PM 2006")
	fmt.Fprintf(bw, "; CANalyzer/CANoe ASC Log File\n")
	fmt.Fprintf(bw, ";\n")
	fmt.Fprintf(bw, "date %s\n", date)
	fmt.Fprintf(bw, "base hex  timestamps absolute\n")
	fmt.Fprintf(bw, "no internal events logged\n\n")

	for _, rec := range records {
		ext := ""
		if rec.Frame.IsExtended {
			ext = "x"
		}
		// ASC channels are bus numbers, not interface names
		ch := 1
		if n, err := strconv.Atoi(rec.Channel); err == nil {
			ch = n
		}
		fmt.Fprintf(bw, "  %10.6f %d  %08X%s       Rx   d %d %s\n",
			rec.Timestamp, ch, rec.Frame.ID, ext, rec.Frame.Length, formatData(rec.Frame, " "))
	}
	return bw.Flush()
}
