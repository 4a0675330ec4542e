// Package export renders decoded CAN traffic as line-delimited JSON
// for downstream consumers.
package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"j1939-dbc-core/canlog"
	"j1939-dbc-core/j1939"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SignalReport is one decoded signal. Value is omitted when the field
// carried a not-available or error-indicator pattern.
type SignalReport struct {
	Value  *float64 `json:"value,omitempty"`
	Status string   `json:"status"`
	Unit   string   `json:"unit,omitempty"`
	Label  string   `json:"label,omitempty"`
}

// FrameReport is one frame of a capture: identity, raw bytes and
// whatever signals the schema could decode. Unknown PGNs are reported
// with an empty Message and no signals rather than dropped.
type FrameReport struct {
	Timestamp float64                 `json:"ts"`
	Channel   string                  `json:"channel,omitempty"`
	ID        string                  `json:"id"`
	PGN       uint32                  `json:"pgn"`
	Source    uint8                   `json:"sa"`
	Message   string                  `json:"message,omitempty"`
	Raw       string                  `json:"raw"`
	Signals   map[string]SignalReport `json:"signals,omitempty"`
	Errors    []string                `json:"errors,omitempty"`
}

// NewFrameReport decodes one record against the codec's schema.
func NewFrameReport(codec *j1939.Codec, rec canlog.Record) FrameReport {
	pgn := j1939.ResolvePGN(rec.Frame.ID)
	rep := FrameReport{
		Timestamp: rec.Timestamp,
		Channel:   rec.Channel,
		ID:        fmt.Sprintf("%08X", rec.Frame.ID),
		PGN:       pgn.Number,
		Source:    pgn.SourceAddress,
		Raw:       strings.ToUpper(hex.EncodeToString(rec.Frame.Data[:rec.Frame.Length])),
	}

	msg, values, err := codec.DecodeFrame(rec.Frame)
	if msg == nil {
		return rep // PGN not in schema
	}
	rep.Message = msg.Name
	if err != nil {
		rep.Errors = append(rep.Errors, err.Error())
	}

	rep.Signals = make(map[string]SignalReport, len(values))
	for name, v := range values {
		sig, _ := msg.Signal(name)
		sr := SignalReport{Status: v.Kind.String(), Label: v.Label}
		if sig != nil {
			sr.Unit = sig.Unit
		}
		if v.Kind == j1939.Valid {
			phys := v.Physical
			sr.Value = &phys
		}
		rep.Signals[name] = sr
	}
	return rep
}

// WriteJSON streams the records as one JSON object per line.
func WriteJSON(w io.Writer, codec *j1939.Codec, records []canlog.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(NewFrameReport(codec, rec)); err != nil {
			return err
		}
	}
	return nil
}
