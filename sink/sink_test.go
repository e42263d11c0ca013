package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dglatting/rtl-acars-ng2/message"
)

func TestStdoutEmitContainsFields(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)

	msg := &message.Message{
		Mode:     '2',
		Address:  ".N12345",
		Ack:      'A',
		Label:    "H1",
		BlockID:  '1',
		SeqNo:    "M01A",
		FlightID: "AB1234",
		Text:     "hello",
	}

	if err := s.Emit(msg, false, 42); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	out := buf.String()
	for _, want := range []string{".N12345", "AB1234", "hello", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
