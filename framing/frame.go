// Package framing implements the seven-state ACARS frame decoder: it
// locates the pre-key, acquires bit/character sync plus start-of-header,
// collects the message body, recovers the CRC, and performs single-bit
// error correction, per spec.md §4.D.
package framing

import (
	"math/bits"

	"github.com/dglatting/rtl-acars-ng2/crc"
)

// State discriminates the frame machine's seven states.
type State int

const (
	HeadLost State = iota
	HeadFound
	Sync
	Text
	Crc1
	Crc2
	End
)

var stateNames = [...]string{
	HeadLost:  "HeadLost",
	HeadFound: "HeadFound",
	Sync:      "Sync",
	Text:      "Text",
	Crc1:      "Crc1",
	Crc2:      "Crc2",
	End:       "End",
}

// String renders the state as a flat lookup rather than a conditional
// chain, per spec.md §9's redesign note.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// syncCheck is the 40-bit pattern BIT_SYNC_1 | BIT_SYNC_2 | SYN | SYN | SOH,
// each byte odd-parity encoded, in the order the bits are received.
var syncCheck = uint64(crc.ToOddParity(bitSync1)) |
	uint64(crc.ToOddParity(bitSync2))<<8 |
	uint64(crc.ToOddParity(SYN))<<16 |
	uint64(crc.ToOddParity(SYN))<<24 |
	uint64(crc.ToOddParity(SOH))<<32

// AcceptedFrame is a completed, CRC-valid (possibly CRC-corrected) raw
// frame: SOH through the two trailing CRC bytes.
type AcceptedFrame struct {
	Raw          []byte
	CRCCorrected bool
}

// Machine is the owned, long-lived frame decoder state: the current
// state tag, the forming sync word, the consecutive-prekey counter, and
// the raw-frame buffer. It exclusively owns rawFrame; nothing else
// mutates it.
type Machine struct {
	state             State
	consecutivePreKey int
	syncForming       uint64
	syncBitsHave      int
	rawFrame          []byte

	// ReenteredHeadLost is set during Feed whenever the state machine
	// falls back to HeadLost (sync timeout, buffer overrun, or CRC
	// failure with no correcting bit flip). The owning pipeline checks
	// this after each call and resets the bit synchronizer's sign
	// memoization accordingly, per spec.md §4.C's reset rule.
	ReenteredHeadLost bool

	// DroppedFrame is set alongside ReenteredHeadLost specifically when
	// a fully-collected frame failed CRC validation and no single-bit
	// correction matched, distinguishing a real drop from a sync
	// timeout or buffer overrun.
	DroppedFrame bool
}

// New returns a frame machine in its initial HeadLost state.
func New() *Machine {
	return &Machine{state: HeadLost}
}

// State reports the machine's current state, for diagnostics.
func (m *Machine) State() State { return m.state }

// Reset returns the machine to HeadLost and clears the raw frame buffer,
// as if a sync timeout or CRC failure had just occurred.
func (m *Machine) Reset() {
	m.state = HeadLost
	m.consecutivePreKey = 0
	m.rawFrame = m.rawFrame[:0]
}

// Feed processes one byte (the bit-synchronizer's current 8-bit shift
// register) and returns the number of bits consumed: 1 in HeadLost and
// HeadFound, 1 to 8 in Sync (fewer than 8 when sync matches or times out
// mid-byte), 8 in the collecting states and on a dropped frame, and -1
// together with the accepted frame when End validates one.
func (m *Machine) Feed(r byte) (bitsConsumed int, frame *AcceptedFrame) {
	m.ReenteredHeadLost = false
	m.DroppedFrame = false

	for {
		switch m.state {

		case HeadLost:
			if r == preKeyChar {
				m.consecutivePreKey++
				if m.consecutivePreKey > consecutivePreKeyLimit {
					m.state = HeadFound
				}
			} else {
				m.consecutivePreKey = 0
				m.rawFrame = m.rawFrame[:0]
			}
			return 1, nil

		case HeadFound:
			if r == preKeyChar {
				return 1, nil
			}
			m.state = Sync
			m.syncForming = 0
			m.syncBitsHave = 0
			continue // re-process r under Sync

		case Sync:
			return m.feedSync(r)

		case Text:
			m.rawFrame = append(m.rawFrame, r)
			if len(m.rawFrame) > maxBlockBytes {
				m.toHeadLost()
				return 8, nil
			}
			odd := crc.ToOddParity
			if r == odd(ETX) || r == odd(ETB) {
				m.state = Crc1
			}
			return 8, nil

		case Crc1:
			m.rawFrame = append(m.rawFrame, r)
			m.state = Crc2
			return 8, nil

		case Crc2:
			m.rawFrame = append(m.rawFrame, r)
			m.state = End
			return 8, nil

		case End:
			return m.feedEnd()
		}
	}
}

// feedSync consumes bits from r one at a time, LSB-first, shifting each
// into bit 39 of the forming 40-bit sync word, per spec.md §4.D.
func (m *Machine) feedSync(r byte) (int, *AcceptedFrame) {
	bitsConsumed := 0

	for i := 0; i < 8; i++ {
		mask := byte(1) << uint(i)

		m.syncForming >>= 1
		if r&mask != 0 {
			m.syncForming |= uint64(1) << 39
		}
		bitsConsumed++
		m.syncBitsHave++

		if m.syncBitsHave >= 40 {
			if bits.OnesCount64(m.syncForming^syncCheck) <= syncErrorLimit {
				m.state = Text
				m.rawFrame = append(m.rawFrame[:0], crc.ToOddParity(SOH))
				return bitsConsumed, nil
			}
		}

		if m.syncBitsHave >= syncBitsLimit {
			m.toHeadLost()
			return bitsConsumed, nil
		}
	}

	return bitsConsumed, nil
}

// feedEnd validates the collected frame's CRC, attempting a deterministic
// single-bit correction scan (i outer, j inner) if the raw CRC fails, per
// spec.md §4.D's tie-break rule.
func (m *Machine) feedEnd() (int, *AcceptedFrame) {
	m.state = HeadLost

	if crc.GenCRC(m.rawFrame) == 0 {
		out := append([]byte{}, m.rawFrame...)
		return -1, &AcceptedFrame{Raw: out, CRCCorrected: false}
	}

	for i := range m.rawFrame {
		for j := 0; j < 8; j++ {
			m.rawFrame[i] ^= 1 << uint(j)
			if crc.GenCRC(m.rawFrame) == 0 {
				out := append([]byte{}, m.rawFrame...)
				return -1, &AcceptedFrame{Raw: out, CRCCorrected: true}
			}
			m.rawFrame[i] ^= 1 << uint(j)
		}
	}

	m.ReenteredHeadLost = true
	m.DroppedFrame = true
	return 8, nil
}

func (m *Machine) toHeadLost() {
	m.state = HeadLost
	m.ReenteredHeadLost = true
}
