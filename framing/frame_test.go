package framing

import (
	"testing"

	"github.com/dglatting/rtl-acars-ng2/crc"
)

// feedAll drives a byte sequence through a fresh machine's Feed, byte by
// byte, and returns the last accepted frame (if any).
func feedAll(m *Machine, data []byte) *AcceptedFrame {
	var last *AcceptedFrame
	for _, b := range data {
		if _, f := m.Feed(b); f != nil {
			last = f
		}
	}
	return last
}

// buildFrame assembles a raw ACARS block (SOH..ETX/ETB + CRC) from an
// odd-parity-encoded body, ready to be prepended with prekey and sync.
func buildFrame(body []byte) []byte {
	withSOH := append([]byte{crc.ToOddParity(SOH)}, body...)
	return crc.AppendCRC(withSOH)
}

// preamble returns consecutivePreKeyLimit+1 pre-key bytes followed by the
// BIT_SYNC/CHAR_SYNC odd-parity sync word, i.e. everything the machine
// needs to reach the Text state.
func preamble() []byte {
	out := make([]byte, 0, consecutivePreKeyLimit+1+5)
	for i := 0; i <= consecutivePreKeyLimit; i++ {
		out = append(out, preKeyChar)
	}
	out = append(out,
		crc.ToOddParity(bitSync1),
		crc.ToOddParity(bitSync2),
		crc.ToOddParity(SYN),
		crc.ToOddParity(SYN),
		crc.ToOddParity(SOH),
	)
	return out
}

func oddBytes(s string) []byte {
	out := make([]byte, len(s))
	for i := range s {
		out[i] = crc.ToOddParity(s[i])
	}
	return out
}

func TestMinimumLengthFrame(t *testing.T) {
	m := New()

	body := append(oddBytes("2.AAAAAA1234"), crc.ToOddParity(ETX))
	frame := buildFrame(body)

	seq := append(preamble(), frame...)
	got := feedAll(m, seq)

	if got == nil {
		t.Fatalf("expected an accepted frame, got none")
	}
	if got.CRCCorrected {
		t.Errorf("expected CRCCorrected=false on a clean frame")
	}
	if m.State() != HeadLost {
		t.Errorf("after acceptance, state = %v, want HeadLost", m.State())
	}
}

func TestLongTextFrame(t *testing.T) {
	m := New()

	text := make([]byte, 220)
	for i := range text {
		text[i] = crc.ToOddParity(byte('A' + i%26))
	}
	body := append(oddBytes("2.AAAAAA1234"), text...)
	body = append(body, crc.ToOddParity(ETX))
	frame := buildFrame(body)

	seq := append(preamble(), frame...)
	got := feedAll(m, seq)

	if got == nil {
		t.Fatalf("expected an accepted frame for a 220-byte text payload")
	}
}

func TestNoiseBurstBeforePreamble(t *testing.T) {
	m := New()

	noise := []byte{0x55, 0xaa, 0x33, 0xcc, 0x11}
	body := append(oddBytes("2.AAAAAA1234"), crc.ToOddParity(ETX))
	frame := buildFrame(body)

	seq := append(noise, preamble()...)
	seq = append(seq, frame...)

	got := feedAll(m, seq)
	if got == nil {
		t.Fatalf("expected the valid frame after the noise burst to be accepted")
	}
}

func TestTwoConcatenatedFrames(t *testing.T) {
	m := New()

	body1 := append(oddBytes("2.AAAAAA1111"), crc.ToOddParity(ETX))
	body2 := append(oddBytes("2.BBBBBB2222"), crc.ToOddParity(ETX))
	frame1 := buildFrame(body1)
	frame2 := buildFrame(body2)

	seq := append(preamble(), frame1...)
	seq = append(seq, preamble()...)
	seq = append(seq, frame2...)

	var frames []*AcceptedFrame
	for _, b := range seq {
		if _, f := m.Feed(b); f != nil {
			frames = append(frames, f)
		}
	}

	if len(frames) != 2 {
		t.Fatalf("got %d accepted frames, want 2", len(frames))
	}
}

func TestSingleBitFlipCorrected(t *testing.T) {
	m := New()

	body := append(oddBytes("2.AAAAAA1234"), crc.ToOddParity(ETX))
	frame := buildFrame(body)
	frame[2] ^= 0x04 // flip one bit in the middle of the body

	seq := append(preamble(), frame...)
	got := feedAll(m, seq)

	if got == nil {
		t.Fatalf("expected the single-bit-flip frame to be correctable")
	}
	if !got.CRCCorrected {
		t.Errorf("expected CRCCorrected=true")
	}
}

func TestTwoBitFlipsRejected(t *testing.T) {
	m := New()

	body := append(oddBytes("2.AAAAAA1234"), crc.ToOddParity(ETX))
	frame := buildFrame(body)
	frame[2] ^= 0x04
	frame[5] ^= 0x10

	seq := append(preamble(), frame...)
	got := feedAll(m, seq)

	if got != nil {
		t.Errorf("expected a two-bit-flip frame to be rejected, got %+v", got)
	}
	if m.State() != HeadLost {
		t.Errorf("after rejection, state = %v, want HeadLost", m.State())
	}
}

func TestTruncatedFrameNoEmission(t *testing.T) {
	m := New()

	body := append(oddBytes("2.AAAAAA1234"), crc.ToOddParity(ETX))
	frame := buildFrame(body)

	seq := append(preamble(), frame[:len(frame)-3]...) // drop ETX/ETB+CRC tail
	for _, b := range seq {
		if _, f := m.Feed(b); f != nil {
			t.Fatalf("truncated frame must not emit, got %+v", f)
		}
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		HeadLost:  "HeadLost",
		HeadFound: "HeadFound",
		Sync:      "Sync",
		Text:      "Text",
		Crc1:      "Crc1",
		Crc2:      "Crc2",
		End:       "End",
		State(99): "Unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
