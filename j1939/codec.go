package j1939

import (
	"errors"
	"fmt"

	"go.einride.tech/can"

	"j1939-dbc-core/dbc"
)

// Codec decodes and encodes message payloads against a schema. The PGN
// index is built once in NewCodec; after that every method is read-only
// on the codec and safe for concurrent use, provided concurrent encodes
// target distinct buffers.
type Codec struct {
	db    *dbc.Database
	byPGN map[uint32]*dbc.Message
}

func NewCodec(db *dbc.Database) *Codec {
	c := &Codec{db: db, byPGN: map[uint32]*dbc.Message{}}
	for _, m := range db.Messages() {
		pgn := ResolvePGN(m.ID).Number
		if _, dup := c.byPGN[pgn]; !dup {
			c.byPGN[pgn] = m
		}
	}
	return c
}

func (c *Codec) Database() *dbc.Database { return c.db }

// MessageByPGN finds the schema message whose identifier resolves to
// the given Parameter Group Number, regardless of source address.
func (c *Codec) MessageByPGN(pgn uint32) (*dbc.Message, error) {
	m, ok := c.byPGN[pgn]
	if !ok {
		return nil, fmt.Errorf("no message for PGN %d (0x%X)", pgn, pgn)
	}
	return m, nil
}

// DecodeMessage decodes every signal of msg from data. Decoding is
// best-effort and per-signal: a sentinel or a failed signal never stops
// the remaining signals. Per-signal failures are joined into the
// returned error; the map holds everything that did decode.
func (c *Codec) DecodeMessage(msg *dbc.Message, data []byte) (map[string]Value, error) {
	if len(data) < msg.Length {
		return nil, fmt.Errorf("message %s: payload %d bytes, schema expects %d",
			msg.Name, len(data), msg.Length)
	}

	out := make(map[string]Value, len(msg.Signals))
	var errs []error
	for i := range msg.Signals {
		sig := &msg.Signals[i]
		v, err := DecodeSignal(data[:msg.Length], sig)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[sig.Name] = v
	}
	return out, errors.Join(errs...)
}

// EncodeMessage packs the given physical values into a fresh payload.
// Bits not covered by a provided value are left all ones, the J1939
// padding and not-available convention. Any failure discards the
// buffer; a partial payload is never returned.
func (c *Codec) EncodeMessage(msg *dbc.Message, values map[string]float64, opts EncodeOptions) ([]byte, error) {
	data := make([]byte, msg.Length)
	for i := range data {
		data[i] = 0xFF
	}
	for i := range msg.Signals {
		sig := &msg.Signals[i]
		phys, ok := values[sig.Name]
		if !ok {
			continue // stays at the not-available pattern
		}
		if err := EncodeSignal(data, sig, phys, opts); err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.Name, err)
		}
	}
	return data, nil
}

// DecodeFrame resolves the frame's PGN, finds the schema message and
// decodes the payload.
func (c *Codec) DecodeFrame(f can.Frame) (*dbc.Message, map[string]Value, error) {
	pgn := ResolvePGN(f.ID)
	msg, err := c.MessageByPGN(pgn.Number)
	if err != nil {
		return nil, nil, err
	}
	if int(f.Length) < msg.Length {
		return msg, nil, fmt.Errorf("message %s: frame carries %d bytes, schema expects %d",
			msg.Name, f.Length, msg.Length)
	}
	values, err := c.DecodeMessage(msg, f.Data[:f.Length])
	return msg, values, err
}

// EncodeFrame encodes values for the named message into a ready-to-send
// extended frame, using the schema identifier's priority and the given
// source address.
func (c *Codec) EncodeFrame(msgName string, values map[string]float64, source uint8) (can.Frame, error) {
	msg, err := c.db.MessageByName(msgName)
	if err != nil {
		return can.Frame{}, err
	}
	data, err := c.EncodeMessage(msg, values, EncodeOptions{})
	if err != nil {
		return can.Frame{}, err
	}

	pgn := ResolvePGN(msg.ID)
	f := can.Frame{
		ID:         CANID(pgn.Number, pgn.Priority, pgn.Destination(), source),
		Length:     uint8(len(data)),
		IsExtended: true,
	}
	copy(f.Data[:], data)
	return f, nil
}
