// Package bitsync recovers a 2400 bit/s MSK bitstream from 48 kHz AM
// envelope audio using two quadrature VFO tracking loops and a bit-clock
// recovery loop, the way the ACARS receiver's original C++ implementation
// and the pack's NAVTEX/FSK decoders both track mark/space tones and
// slice bits at a recovered clock edge.
package bitsync

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// SampleRateHz is the audio rate the synchronizer is tuned for.
	SampleRateHz = 48000
	// BitRateHz is the 1200 Hz low-tone rate whose period sets BitLen
	// (the ACARS data rate itself is 2400 bit/s).
	BitRateHz = 1200
	// BitLen is samples per bit at SampleRateHz (40 at 48 kHz).
	BitLen = SampleRateHz / BitRateHz

	vfoPLL  = 7e-4
	bitPLL  = 0.2
	twoPi   = 6.283185307179586
	fourPi  = 2 * twoPi
	freqH   = twoPi * 4800.0 / SampleRateHz
	freqL   = twoPi * 2400.0 / SampleRateHz
)

// Result is what Feed returns for a single input sample.
type Result struct {
	BitReady bool
	Byte     byte // the 8-bit shift register, valid only when BitReady
	Level    float64
}

// State holds all per-sample mutable state for one bit synchronizer
// instance: the five circular signal buffers, the two VFO phase/drift
// pairs, the bit clock, the sign memoizations, the correlator history,
// and the timing adjustment. It owns its buffers exclusively; nothing
// downstream reaches into them.
type State struct {
	is int // circular buffer write cursor, always in [0, BitLen)

	hsample, lsample, isample, qsample, csample [BitLen]float64
	corrWindow                                   [BitLen]float64 // scratch for the h[i] correlator weights

	phiH, phiL float64
	dfH, dfL   float64

	clock float64
	ea    float64

	pC, ppC float64

	sgI, sgQ int

	lin float64

	outbits byte
}

// New returns a freshly reset bit synchronizer.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset zeroes all state, including VFO phase. Used at process start and
// after an unrecoverable error in the owning pipeline.
func (s *State) Reset() {
	*s = State{is: BitLen - 1}
	for i := 0; i < BitLen; i++ {
		s.corrWindow[i] = math.Sin(twoPi * float64(i) / float64(BitLen))
	}
}

// ResetSync re-zeroes the sign-memoization decision state without
// touching VFO phase, mirroring the original design's separation between
// "lost frame sync" (cheap recovery) and "lost carrier" (full reset).
// Called by the frame state machine whenever it falls back to its
// head-lost state.
func (s *State) ResetSync() {
	s.sgI, s.sgQ = 0, 0
}

// Feed processes one 16-bit audio sample and reports whether a bit was
// produced. It implements spec.md §4.C's feed(s) algorithm verbatim: the
// amplitude tracker, the two VFO loops (2400 Hz phase driving the 1200 Hz
// "low" tone and 4800 Hz phase driving the 2400 Hz "high" tone, per the
// original's doubled-phase convention), the three mixers, and the
// bit-clock correlator.
func (s *State) Feed(sample int16) Result {
	s.is = (s.is - 1 + BitLen) % BitLen

	fs := float64(sample)
	absS := fs
	if absS < 0 {
		absS = -absS
	}
	s.lin = 0.003*absS + 0.997*s.lin
	if s.lin == 0 {
		s.lin = 1e-9
	}

	u := fs / s.lin
	u2 := u * u

	// High VFO (2400 Hz tone, tracked via its 4800 Hz doubled phase).
	s.phiH += freqH - vfoPLL*s.dfH
	for s.phiH >= fourPi {
		s.phiH -= fourPi
	}
	for s.phiH < 0 {
		s.phiH += fourPi
	}
	s.hsample[s.is] = u2 * math.Sin(s.phiH)
	s.dfH = sumHalfWindow(&s.hsample, s.is)
	oscH := math.Cos(s.phiH / 2)

	// Low VFO (1200 Hz half-cycle tone).
	s.phiL += freqL - vfoPLL*s.dfL
	for s.phiL >= fourPi {
		s.phiL -= fourPi
	}
	for s.phiL < 0 {
		s.phiL += fourPi
	}
	s.lsample[s.is] = u2 * math.Sin(s.phiL)
	s.dfL = sumHalfWindow(&s.lsample, s.is)
	oscL := math.Cos(s.phiL / 2)

	s.isample[s.is] = u * (oscL + oscH)
	s.qsample[s.is] = u * (oscL - oscH)
	s.csample[s.is] = oscL * oscH

	result := Result{Level: s.lin}

	s.clock++
	if s.clock >= float64(BitLen)/4+s.ea {
		s.clock = 0

		c := correlate(&s.corrWindow, &s.csample, s.is)

		switch {
		case s.pC < c && s.pC < s.ppC:
			q := sumFull(&s.qsample, s.is)
			if s.sgQ == 0 {
				s.sgQ = sign(q)
			}
			bit := byte(0)
			if q*float64(s.sgQ) > 0 {
				bit = 0x80
			}
			s.outbits = (s.outbits >> 1) | bit
			s.ea = clamp(-bitPLL*(c-s.ppC), -2, 2)
			result.BitReady = true

		case s.pC > c && s.pC > s.ppC:
			i := sumFull(&s.isample, s.is)
			if s.sgI == 0 {
				s.sgI = sign(i)
			}
			bit := byte(0)
			if i*float64(s.sgI) > 0 {
				bit = 0x80
			}
			s.outbits = (s.outbits >> 1) | bit
			s.ea = clamp(bitPLL*(c-s.ppC), -2, 2)
			result.BitReady = true
		}

		s.ppC, s.pC = s.pC, c
	}

	result.Byte = s.outbits
	return result
}

// sumHalfWindow sums the most recent BitLen/2 entries of buf starting at
// cursor is, matching spec.md §4.C step 3's df_h/df_l recompute.
func sumHalfWindow(buf *[BitLen]float64, is int) float64 {
	var window [BitLen / 2]float64
	for i := 0; i < BitLen/2; i++ {
		window[i] = buf[(is+i)%BitLen]
	}
	return floats.Sum(window[:])
}

// sumFull sums all BitLen entries of buf starting at cursor is.
func sumFull(buf *[BitLen]float64, is int) float64 {
	var window [BitLen]float64
	for i := 0; i < BitLen; i++ {
		window[i] = buf[(is+i)%BitLen]
	}
	return floats.Sum(window[:])
}

// correlate computes C = Σ h[i]·csample[(is+i) mod BitLen] as a dot
// product over the linearized window.
func correlate(h *[BitLen]float64, csample *[BitLen]float64, is int) float64 {
	var window [BitLen]float64
	for i := 0; i < BitLen; i++ {
		window[i] = csample[(is+i)%BitLen]
	}
	return floats.Dot(h[:], window[:])
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
