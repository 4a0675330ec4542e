package canlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"j1939-dbc-core/j1939"
)

// WriteCSV renders records as the raw CSV export: one row per frame
// with its derived PGN and source address alongside the payload hex.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "can_id", "pgn", "source_addr", "data_hex"}); err != nil {
		return err
	}
	for _, rec := range records {
		pgn := j1939.ResolvePGN(rec.Frame.ID)
		row := []string{
			strconv.FormatFloat(rec.Timestamp, 'f', 6, 64),
			fmt.Sprintf("0x%08X", rec.Frame.ID),
			strconv.FormatUint(uint64(pgn.Number), 10),
			strconv.FormatUint(uint64(pgn.SourceAddress), 10),
			formatData(rec.Frame, " "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDecodedCSV renders records as a long-format table of decoded
// signal values: one row per signal per frame. Frames whose PGN is not
// in the codec's schema produce no rows, as do signals carrying a
// sentinel instead of a value.
func WriteDecodedCSV(w io.Writer, codec *j1939.Codec, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "pgn", "pgn_name", "parameter", "value", "unit"}); err != nil {
		return err
	}
	for _, rec := range records {
		msg, values, err := codec.DecodeFrame(rec.Frame)
		if msg == nil || err != nil && values == nil {
			continue
		}
		for i := range msg.Signals {
			sig := &msg.Signals[i]
			v, ok := values[sig.Name]
			if !ok || !v.Valid() {
				continue
			}
			row := []string{
				strconv.FormatFloat(rec.Timestamp, 'f', 6, 64),
				strconv.FormatUint(uint64(j1939.ResolvePGN(rec.Frame.ID).Number), 10),
				msg.Name,
				sig.Name,
				strconv.FormatFloat(v.Physical, 'f', 2, 64),
				sig.Unit,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
