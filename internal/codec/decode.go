package codec

import (
	"bytes"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

// Ack decode error taxonomy (spec.md §4.3).
var (
	ErrBadParameter  = errors.New("codec: bad parameter")
	ErrNotAckMessage = errors.New("codec: not an ack message")
	ErrNoNameMatch   = errors.New("codec: ack name does not match")
)

const maxAckIndex = (1 << 31) - 1

var ackJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeAck parses an acknowledgement datagram of the form
// `{ "n" : "<name>" , "i" : <non-negative integer> }` (whitespace
// tolerated around structural tokens; trailing bytes after the closing
// brace are ignored) and returns the acknowledged report index.
func DecodeAck(buf []byte, expectedName string, maxNameLen int) (int32, error) {
	if len(expectedName) > maxNameLen {
		return 0, ErrBadParameter
	}

	// Cheap structural reject: if this isn't even well-formed JSON at
	// the start, it is certainly not-ack-message. A generic parser
	// can't enforce the exact field order/grammar below, so it is used
	// only as a fast filter, never as the source of truth.
	var probe map[string]interface{}
	if err := ackJSON.NewDecoder(bytes.NewReader(buf)).Decode(&probe); err != nil {
		return 0, ErrNotAckMessage
	}

	p := &parser{buf: buf}
	p.skipSpace()
	if !p.consume('{') {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consumeLiteral(`"n"`) {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consume(':') {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	name, ok := p.consumeString()
	if !ok {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consume(',') {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consumeLiteral(`"i"`) {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consume(':') {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	index, ok := p.consumeUint()
	if !ok {
		return 0, ErrNotAckMessage
	}
	p.skipSpace()
	if !p.consume('}') {
		return 0, ErrNotAckMessage
	}

	if index > maxAckIndex {
		return 0, ErrNotAckMessage
	}

	if name != expectedName {
		return 0, ErrNoNameMatch
	}

	return int32(index), nil
}

type parser struct {
	buf []byte
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.buf) {
		switch p.buf[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.buf) && p.buf[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) consumeLiteral(lit string) bool {
	if p.pos+len(lit) > len(p.buf) {
		return false
	}
	if string(p.buf[p.pos:p.pos+len(lit)]) != lit {
		return false
	}
	p.pos += len(lit)
	return true
}

func (p *parser) consumeString() (string, bool) {
	if !p.consume('"') {
		return "", false
	}
	start := p.pos
	for p.pos < len(p.buf) && p.buf[p.pos] != '"' {
		if p.buf[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.buf) {
		return "", false
	}
	s := string(p.buf[start:p.pos])
	p.pos++ // closing quote
	return s, true
}

func (p *parser) consumeUint() (uint64, bool) {
	start := p.pos
	for p.pos < len(p.buf) && p.buf[p.pos] >= '0' && p.buf[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	var v uint64
	for _, c := range p.buf[start:p.pos] {
		v = v*10 + uint64(c-'0')
	}
	return v, true
}
