// Package message decodes a validated raw ACARS frame — the byte slice
// the frame state machine accepts, running from SOH through its two
// trailing CRC bytes — into the positional fields ARINC 618-7 defines.
package message

import (
	"fmt"
	"math"
)

// Field byte lengths and offsets, counted from the byte immediately
// following SOH, per acars/message.h.
const (
	modeLen     = 1
	addressLen  = 7
	ackLen      = 1
	labelLen    = 2
	blockIDLen  = 1
	preambleLen = 1 // STX, skipped
	seqNoLen    = 4
	flightIDLen = 6

	addressOff  = modeLen
	ackOff      = addressOff + addressLen
	labelOff    = ackOff + ackLen
	blockIDOff  = labelOff + labelLen
	preambleOff = blockIDOff + blockIDLen
	seqNoOff    = preambleOff + preambleLen
	flightIDOff = seqNoOff + seqNoLen
	textOff     = flightIDOff + flightIDLen

	// minBodyLen is mode+address+ack+label+blockid+STX+seq+flightid+
	// ETX/ETB with an empty text payload.
	minBodyLen = textOff + 1

	h1SublabelOff = 1 // relative to the start of text
	h1SublabelLen = 2
)

// Message is a fully decoded ACARS block.
type Message struct {
	Mode         byte
	Address      string
	Ack          byte
	Label        string
	BlockID      byte
	SeqNo        string
	FlightID     string
	Text         string
	CRCCorrected bool

	// IsUplink and IsMultiblock are derived classifications, not part of
	// the positional field table: a ground-to-air block id byte (>=
	// 0x40, or NUL) marks an uplink; a trailing ETB instead of ETX marks
	// a block that continues in a following frame.
	IsUplink     bool
	IsMultiblock bool

	// Sublabel is populated only when Label == "H1", surfacing the two
	// bytes the H1 applications-layer convention nests inside the text.
	Sublabel string

	// SignalDB is the bit synchronizer's amplitude tracker at
	// acceptance time, expressed as an approximate dB level.
	SignalDB float64
}

// Parse decodes raw — SOH, body, ETX-or-ETB, two CRC bytes — into a
// Message. level is the bit synchronizer's linear amplitude estimate at
// the moment the frame was accepted; pass 0 if unavailable.
func Parse(raw []byte, crcCorrected bool, level float64) (*Message, error) {
	if len(raw) < 1+minBodyLen+2 {
		return nil, fmt.Errorf("message: frame too short: %d bytes", len(raw))
	}

	body := raw[1 : len(raw)-2] // strip SOH and the two CRC bytes
	if len(body) < minBodyLen {
		return nil, fmt.Errorf("message: body too short: %d bytes, want >= %d", len(body), minBodyLen)
	}

	m := &Message{
		Mode:         decodeChar(body[0]),
		Address:      decodeString(body[addressOff : addressOff+addressLen]),
		Ack:          decodeChar(body[ackOff]),
		Label:        decodeString(body[labelOff : labelOff+labelLen]),
		BlockID:      decodeChar(body[blockIDOff]),
		SeqNo:        decodeString(body[seqNoOff : seqNoOff+seqNoLen]),
		FlightID:     decodeString(body[flightIDOff : flightIDOff+flightIDLen]),
		CRCCorrected: crcCorrected,
	}

	if textOff < len(body)-1 {
		m.Text = decodeString(body[textOff : len(body)-1])
	}

	suffix := body[len(body)-1] & 0x7f
	m.IsMultiblock = suffix == 0x17 // ETB

	rawBlockID := body[blockIDOff]
	m.IsUplink = rawBlockID&0x7f >= 0x40 || rawBlockID&0x7f == 0x00

	if m.Label == "H1" && len(m.Text) >= h1SublabelOff+h1SublabelLen {
		m.Sublabel = m.Text[h1SublabelOff : h1SublabelOff+h1SublabelLen]
	}

	if level > 0 {
		m.SignalDB = 10 * math.Log10(level)
	}

	return m, nil
}

// decodeChar strips the odd-parity bit and maps non-printable,
// non-CR/LF bytes to '.', per spec.md §4.E.
func decodeChar(b byte) byte {
	c := b & 0x7f
	if c >= 0x20 && c < 0x7f {
		return c
	}
	if c == 0x0d || c == 0x0a {
		return c
	}
	return '.'
}

func decodeString(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = decodeChar(c)
	}
	return string(out)
}
