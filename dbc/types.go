// Package dbc holds the in-memory CAN message/signal schema and the
// parsers that build it from Vector DBC text or a can_map.csv file.
//
// A Database is assembled once through a Builder and is read-only from
// then on; codec packages share it freely across goroutines.
package dbc

import (
	"fmt"
	"sort"
)

// ByteOrder selects the bit numbering convention of a signal.
type ByteOrder int

const (
	// LittleEndian (Intel, DBC "@1"): start bit counts from the least
	// significant bit of byte 0.
	LittleEndian ByteOrder = iota
	// BigEndian (Motorola, DBC "@0"): start bit names the most
	// significant bit of the field in Motorola numbering.
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// Signal describes one bit field within a message payload.
type Signal struct {
	Name      string
	StartBit  int
	BitLength int
	ByteOrder ByteOrder
	Signed    bool
	Scale     float64
	Offset    float64
	Min       float64
	Max       float64
	Unit      string
	Comment   string
	Receivers []string
	// Values maps raw integer values to their labels (DBC VAL_).
	Values map[uint64]string
}

// Message is one CAN frame layout: a 29-bit identifier, a payload width
// and an ordered set of signals unique by name.
type Message struct {
	ID          uint32
	Name        string
	Length      int // payload bytes, 1..8
	Transmitter string
	CycleMS     int // 0 = aperiodic
	Comment     string
	Signals     []Signal

	byName map[string]int
}

// Signal returns the named signal, if present.
func (m *Message) Signal(name string) (*Signal, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return &m.Signals[i], true
}

// Database is the full schema. Built once, never mutated afterwards.
type Database struct {
	Version string
	Nodes   []string

	messages []*Message
	byID     map[uint32]*Message
	byName   map[string]*Message
}

// Messages returns all messages ordered by CAN ID.
func (d *Database) Messages() []*Message {
	out := make([]*Message, len(d.messages))
	copy(out, d.messages)
	return out
}

func (d *Database) MessageByID(id uint32) (*Message, error) {
	m, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown message id 0x%X", id)
	}
	return m, nil
}

func (d *Database) MessageByName(name string) (*Message, error) {
	m, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown message %q (available: %v)", name, d.MessageNames())
	}
	return m, nil
}

func (d *Database) MessageNames() []string {
	out := make([]string, 0, len(d.byName))
	for k := range d.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
