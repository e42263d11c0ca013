package message

import (
	"testing"

	"github.com/dglatting/rtl-acars-ng2/crc"
)

// buildRaw assembles SOH + odd-parity body + CRC, the shape Parse
// expects from an accepted frame.
func buildRaw(body string) []byte {
	encoded := make([]byte, len(body)+1)
	encoded[0] = crc.ToOddParity(0x01) // SOH
	for i := 0; i < len(body); i++ {
		encoded[i+1] = crc.ToOddParity(body[i])
	}
	return crc.AppendCRC(encoded)
}

func TestParseMinimumLengthFrame(t *testing.T) {
	body := "2" + ".N12345" + "A" + "H1" + "1" + "\x02" + "M01A" + "AB1234" + "\x03"
	raw := buildRaw(body)

	m, err := Parse(raw, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Mode != '2' {
		t.Errorf("Mode = %q, want '2'", m.Mode)
	}
	if m.Address != ".N12345" {
		t.Errorf("Address = %q, want %q", m.Address, ".N12345")
	}
	if m.Ack != 'A' {
		t.Errorf("Ack = %q, want 'A'", m.Ack)
	}
	if m.Label != "H1" {
		t.Errorf("Label = %q, want %q", m.Label, "H1")
	}
	if m.SeqNo != "M01A" {
		t.Errorf("SeqNo = %q, want %q", m.SeqNo, "M01A")
	}
	if m.FlightID != "AB1234" {
		t.Errorf("FlightID = %q, want %q", m.FlightID, "AB1234")
	}
	if m.Text != "" {
		t.Errorf("Text = %q, want empty", m.Text)
	}
}

func TestParseH1Sublabel(t *testing.T) {
	// mode+addr(7)+ack+label("H1")+blockid+STX+seq(4)+flightid(6)+text+ETX
	text := "#DFBA47/A31947,1,1/AMDAR"
	body := "2" + ".N12345" + "A" + "H1" + "1" + "\x02" + "M01A" + "AB1234" + text + "\x03"
	raw := buildRaw(body)

	m, err := Parse(raw, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Label != "H1" {
		t.Fatalf("Label = %q, want H1", m.Label)
	}
	want := text[1:3]
	if m.Sublabel != want {
		t.Errorf("Sublabel = %q, want %q", m.Sublabel, want)
	}
}

func TestParseUplinkClassification(t *testing.T) {
	body := "2" + ".N12345" + "A" + "H1" + string(rune(0x40)) + "\x02" + "M01A" + "AB1234" + "\x03"
	raw := buildRaw(body)

	m, err := Parse(raw, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.IsUplink {
		t.Errorf("IsUplink = false, want true for block id 0x40")
	}
}

func TestParseMultiblockClassification(t *testing.T) {
	body := "2" + ".N12345" + "A" + "H1" + "1" + "\x02" + "M01A" + "AB1234" + "\x17" // ETB
	raw := buildRaw(body)

	m, err := Parse(raw, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.IsMultiblock {
		t.Errorf("IsMultiblock = false, want true for a trailing ETB")
	}
}

func TestParseNonPrintableReplaced(t *testing.T) {
	body := "2" + ".N12345" + "A" + "H1" + "1" + "\x02" + "M01A" + "AB1234" + "\x01\x7f" + "\x03"
	raw := buildRaw(body)

	m, err := Parse(raw, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Text != ".." {
		t.Errorf("Text = %q, want %q", m.Text, "..")
	}
}

func TestParseSignalDB(t *testing.T) {
	body := "2" + ".N12345" + "A" + "H1" + "1" + "\x02" + "M01A" + "AB1234" + "\x03"
	raw := buildRaw(body)

	m, err := Parse(raw, false, 1000)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.SignalDB <= 0 {
		t.Errorf("SignalDB = %v, want > 0 for level 1000", m.SignalDB)
	}
}

func TestParseTooShort(t *testing.T) {
	if _, err := Parse([]byte{0x01, 0x02, 0x03}, false, 0); err == nil {
		t.Errorf("expected an error for a too-short frame")
	}
}
