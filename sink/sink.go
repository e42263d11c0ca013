// Package sink defines the ACARS receiver's output interface — emit a
// decoded message — and two implementations: a human-readable stdout
// printer and an MQTT publisher.
package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/dglatting/rtl-acars-ng2/message"
)

// Sink is the push-oriented output interface, matching spec.md §6:
// emit(msg, crc_corrected, rx_idx).
type Sink interface {
	Emit(msg *message.Message, crcCorrected bool, rxIdx uint64) error
}

// Stdout writes one human-readable block per message to w, the way
// printAcarsDetailedFrame formats a decoded ACARS block.
type Stdout struct {
	w io.Writer
}

// NewStdout returns a Stdout sink writing to w.
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Emit(msg *message.Message, crcCorrected bool, rxIdx uint64) error {
	_, err := fmt.Fprintf(s.w,
		"Time: %s\n RxIdx: %d\n  Lvl: %.1f dB\n Mode: %c\n  Add: %s\n  Ack: %c\n  Lbl: %s\n  Blk: %c\n  Slb: %s\n  Seq: %s\n  Flt: %s\n  Txt: %s\nUplk: %t\nMult: %t\nCorr: %t\n\n",
		time.Now().Format(time.RFC1123),
		rxIdx,
		msg.SignalDB,
		msg.Mode,
		msg.Address,
		msg.Ack,
		msg.Label,
		msg.BlockID,
		msg.Sublabel,
		msg.SeqNo,
		msg.FlightID,
		msg.Text,
		msg.IsUplink,
		msg.IsMultiblock,
		crcCorrected,
	)
	return err
}
