package dbc

import (
	"fmt"
	"sort"
)

// Builder accumulates messages and signals, then Build validates the
// whole schema and freezes it into a Database. All construction-time
// mutation stays inside the builder; the resulting Database is shared
// read-only.
type Builder struct {
	version  string
	nodes    []string
	messages []*Message
	byID     map[uint32]*Message
}

func NewBuilder() *Builder {
	return &Builder{byID: map[uint32]*Message{}}
}

func (b *Builder) SetVersion(v string) *Builder {
	b.version = v
	return b
}

func (b *Builder) AddNodes(names ...string) *Builder {
	b.nodes = append(b.nodes, names...)
	return b
}

// AddMessage registers a message layout. Signals may be attached here or
// via AddSignal; duplicate IDs are rejected at Build time.
func (b *Builder) AddMessage(msg Message) *Builder {
	m := msg
	m.Signals = append([]Signal(nil), msg.Signals...)
	b.messages = append(b.messages, &m)
	if _, dup := b.byID[m.ID]; !dup {
		// duplicates keep the first entry here; Build reports them
		b.byID[m.ID] = &m
	}
	return b
}

// AddSignal attaches a signal to a previously added message.
func (b *Builder) AddSignal(msgID uint32, sig Signal) *Builder {
	if m, ok := b.byID[msgID]; ok {
		m.Signals = append(m.Signals, sig)
	}
	return b
}

// Build validates every invariant and returns the frozen Database.
func (b *Builder) Build() (*Database, error) {
	db := &Database{
		Version: b.version,
		Nodes:   append([]string(nil), b.nodes...),
		byID:    make(map[uint32]*Message, len(b.messages)),
		byName:  make(map[string]*Message, len(b.messages)),
	}

	for _, m := range b.messages {
		if err := validateMessage(m); err != nil {
			return nil, err
		}
		if _, dup := db.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate message id 0x%X (%s)", m.ID, m.Name)
		}
		if _, dup := db.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate message name %q", m.Name)
		}

		m.byName = make(map[string]int, len(m.Signals))
		for i, s := range m.Signals {
			if _, dup := m.byName[s.Name]; dup {
				return nil, fmt.Errorf("message %s: duplicate signal %q", m.Name, s.Name)
			}
			m.byName[s.Name] = i
		}

		db.messages = append(db.messages, m)
		db.byID[m.ID] = m
		db.byName[m.Name] = m
	}

	sort.Slice(db.messages, func(i, j int) bool { return db.messages[i].ID < db.messages[j].ID })
	return db, nil
}

func validateMessage(m *Message) error {
	if m.Name == "" {
		return fmt.Errorf("message 0x%X: empty name", m.ID)
	}
	if m.ID >= 1<<29 {
		return fmt.Errorf("message %s: id 0x%X exceeds 29 bits", m.Name, m.ID)
	}
	if m.Length <= 0 || m.Length > 8 {
		return fmt.Errorf("message %s (0x%X): invalid length %d", m.Name, m.ID, m.Length)
	}
	if m.CycleMS < 0 {
		return fmt.Errorf("message %s: negative cycle time %d", m.Name, m.CycleMS)
	}
	for _, s := range m.Signals {
		if err := validateSignal(m, &s); err != nil {
			return err
		}
	}
	return nil
}

func validateSignal(m *Message, s *Signal) error {
	if s.Name == "" {
		return fmt.Errorf("message %s: signal with empty name", m.Name)
	}
	if s.BitLength < 1 || s.BitLength > 64 {
		return fmt.Errorf("message %s signal %s: invalid bit_length %d", m.Name, s.Name, s.BitLength)
	}
	if s.StartBit < 0 || s.StartBit >= m.Length*8 {
		return fmt.Errorf("message %s signal %s: start_bit %d outside %d-byte payload",
			m.Name, s.Name, s.StartBit, m.Length)
	}
	if s.Scale == 0 {
		return fmt.Errorf("message %s signal %s: zero scale", m.Name, s.Name)
	}
	switch s.ByteOrder {
	case LittleEndian:
		if s.StartBit+s.BitLength > m.Length*8 {
			return fmt.Errorf("message %s signal %s: bits [%d,%d) exceed %d-byte payload",
				m.Name, s.Name, s.StartBit, s.StartBit+s.BitLength, m.Length)
		}
	case BigEndian:
		// Motorola: the field runs from (byte, bit) toward lower bit
		// numbers, wrapping into the following byte's bit 7.
		avail := (m.Length-s.StartBit/8-1)*8 + s.StartBit%8 + 1
		if s.BitLength > avail {
			return fmt.Errorf("message %s signal %s: %d bits from motorola bit %d exceed %d-byte payload",
				m.Name, s.Name, s.BitLength, s.StartBit, m.Length)
		}
	default:
		return fmt.Errorf("message %s signal %s: unknown byte order %d", m.Name, s.Name, s.ByteOrder)
	}
	return nil
}
