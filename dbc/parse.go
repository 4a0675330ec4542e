package dbc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DBC keywords handled by the parser. Everything else is ignored.
const (
	kVersion  = "VERSION"
	kBU       = "BU_:"
	kBO       = "BO_"
	kSG       = "SG_"
	kCM       = "CM_"
	kVAL      = "VAL_"
	kValTable = "VAL_TABLE_"
	kBA       = "BA_"
)

// BO_ <CAN-ID> <MessageName>: <Length> <Transmitter>
var reMessage = regexp.MustCompile(`^BO_\s+(\d+)\s+(\w+)\s*:\s*(\d+)\s+(\w+)`)

// SG_ <Name> : <StartBit>|<Length>@<Order><Sign> (<Scale>,<Offset>) [<Min>|<Max>] "<Unit>" <Receivers>
var reSignal = regexp.MustCompile(
	`^SG_\s+(\w+)\s*:\s*(\d+)\|(\d+)@([01])([+-])\s*` +
		`\(([^,]+),([^)]+)\)\s*\[([^|]+)\|([^\]]+)\]\s*` +
		`"([^"]*)"\s*(\S+)`)

var (
	reMsgComment  = regexp.MustCompile(`^CM_\s+BO_\s+(\d+)\s+"([^"]*)"`)
	reSigComment  = regexp.MustCompile(`^CM_\s+SG_\s+(\d+)\s+(\w+)\s+"([^"]*)"`)
	reValue       = regexp.MustCompile(`^VAL_\s+(\d+)\s+(\w+)\s+(.*?);`)
	reValuePair   = regexp.MustCompile(`(\d+)\s+"([^"]*)"`)
	reCycleTime   = regexp.MustCompile(`^BA_\s+"GenMsgCycleTime"\s+BO_\s+(\d+)\s+(\d+)`)
	reVersionLine = regexp.MustCompile(`^VERSION\s+"([^"]*)"`)
)

// ParseFile reads a Vector DBC file and builds the schema.
func ParseFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return db, nil
}

// Parse reads DBC text and returns the validated Database. Unrecognized
// lines are skipped; structural problems surface from Builder.Build.
func Parse(r io.Reader) (*Database, error) {
	p := &parser{
		b:       NewBuilder(),
		msgs:    map[uint32]*Message{},
		scanner: bufio.NewScanner(r),
	}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if err := p.run(); err != nil {
		return nil, err
	}
	for _, m := range p.order {
		p.b.AddMessage(*p.msgs[m])
	}
	return p.b.Build()
}

type parser struct {
	b       *Builder
	msgs    map[uint32]*Message
	order   []uint32
	current *Message // message whose SG_ block we are inside
	scanner *bufio.Scanner
	lineNo  int
}

func (p *parser) run() error {
	for p.scanner.Scan() {
		p.lineNo++
		line := strings.TrimSpace(p.scanner.Text())
		switch {
		case line == "":
			p.current = nil
		case strings.HasPrefix(line, kSG):
			if err := p.parseSignal(line); err != nil {
				return err
			}
		case strings.HasPrefix(line, kBO) && !strings.HasPrefix(line, "BO_TX_BU_"):
			if err := p.parseMessage(line); err != nil {
				return err
			}
		case strings.HasPrefix(line, kBU):
			p.b.AddNodes(strings.Fields(strings.TrimPrefix(line, kBU))...)
			p.current = nil
		case strings.HasPrefix(line, kValTable):
			// standalone table, not bound to a signal; skipped
			p.current = nil
		case strings.HasPrefix(line, kVAL):
			p.parseValues(line)
		case strings.HasPrefix(line, kCM):
			p.parseComment(line)
		case strings.HasPrefix(line, kBA):
			p.parseAttribute(line)
		case strings.HasPrefix(line, kVersion):
			if m := reVersionLine.FindStringSubmatch(line); m != nil {
				p.b.SetVersion(m[1])
			}
		default:
			p.current = nil
		}
	}
	if err := p.scanner.Err(); err != nil {
		return err
	}
	return nil
}

func (p *parser) parseMessage(line string) error {
	m := reMessage.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("line %d: malformed BO_: %s", p.lineNo, line)
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: message id: %w", p.lineNo, err)
	}
	length, _ := strconv.Atoi(m[3])
	msg := &Message{
		// DBC stores extended IDs with bit 31 set
		ID:          uint32(id) &^ 0x80000000,
		Name:        m[2],
		Length:      length,
		Transmitter: m[4],
	}
	p.msgs[msg.ID] = msg
	p.order = append(p.order, msg.ID)
	p.current = msg
	return nil
}

func (p *parser) parseSignal(line string) error {
	if p.current == nil {
		return fmt.Errorf("line %d: SG_ outside a BO_ block", p.lineNo)
	}
	m := reSignal.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("line %d: malformed SG_: %s", p.lineNo, line)
	}
	startBit, _ := strconv.Atoi(m[2])
	bitLen, _ := strconv.Atoi(m[3])
	scale, err := strconv.ParseFloat(strings.TrimSpace(m[6]), 64)
	if err != nil {
		return fmt.Errorf("line %d: signal %s scale: %w", p.lineNo, m[1], err)
	}
	offset, err := strconv.ParseFloat(strings.TrimSpace(m[7]), 64)
	if err != nil {
		return fmt.Errorf("line %d: signal %s offset: %w", p.lineNo, m[1], err)
	}
	min, _ := strconv.ParseFloat(strings.TrimSpace(m[8]), 64)
	max, _ := strconv.ParseFloat(strings.TrimSpace(m[9]), 64)

	order := BigEndian // DBC "@0"
	if m[4] == "1" {
		order = LittleEndian
	}
	p.current.Signals = append(p.current.Signals, Signal{
		Name:      m[1],
		StartBit:  startBit,
		BitLength: bitLen,
		ByteOrder: order,
		Signed:    m[5] == "-",
		Scale:     scale,
		Offset:    offset,
		Min:       min,
		Max:       max,
		Unit:      m[10],
		Receivers: strings.Split(m[11], ","),
	})
	return nil
}

func (p *parser) parseValues(line string) {
	m := reValue.FindStringSubmatch(line)
	if m == nil {
		return
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return
	}
	msg, ok := p.msgs[uint32(id)&^0x80000000]
	if !ok {
		return
	}
	for i := range msg.Signals {
		if msg.Signals[i].Name != m[2] {
			continue
		}
		if msg.Signals[i].Values == nil {
			msg.Signals[i].Values = map[uint64]string{}
		}
		for _, pair := range reValuePair.FindAllStringSubmatch(m[3], -1) {
			raw, _ := strconv.ParseUint(pair[1], 10, 64)
			msg.Signals[i].Values[raw] = pair[2]
		}
		return
	}
}

func (p *parser) parseComment(line string) {
	if m := reSigComment.FindStringSubmatch(line); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 32)
		if msg, ok := p.msgs[uint32(id)&^0x80000000]; ok {
			for i := range msg.Signals {
				if msg.Signals[i].Name == m[2] {
					msg.Signals[i].Comment = m[3]
					return
				}
			}
		}
		return
	}
	if m := reMsgComment.FindStringSubmatch(line); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 32)
		if msg, ok := p.msgs[uint32(id)&^0x80000000]; ok {
			msg.Comment = m[2]
		}
	}
}

func (p *parser) parseAttribute(line string) {
	m := reCycleTime.FindStringSubmatch(line)
	if m == nil {
		return
	}
	id, _ := strconv.ParseUint(m[1], 10, 32)
	if msg, ok := p.msgs[uint32(id)&^0x80000000]; ok {
		msg.CycleMS, _ = strconv.Atoi(m[2])
	}
}
