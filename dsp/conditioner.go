// Package dsp conditions raw offset-127 IQ samples into the int16 AM
// envelope audio the bit synchronizer expects: a quarter-sample-rate
// rotation to dodge the tuner's DC spike, a boxcar (or Hamming) decimating
// low-pass, envelope detection, a DC-block stage plus
// mean-absolute-deviation squelch, the way the original receiver's
// low_pass/am_demod/dc_block_filter/post_squelch chain does it. The DC
// blocker runs on every block; there is no de-emphasis filter.
package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// OutputRateHz is the audio rate the bit synchronizer is tuned for.
const OutputRateHz = 48000

// deemphAlpha is the DC blocker's first-order smoothing constant for its
// running mean (spec.md §4.B step 4).
const deemphAlpha = 0.9

// Conditioner holds one run's decimation and filter state. It owns its
// accumulator fields exclusively — nothing outside Process touches them.
type Conditioner struct {
	// Downsample is the input oversampling factor; the boxcar/Hamming
	// FIR length and the decimation stride.
	Downsample int
	// OutputScale is max(1, (1<<15)/(128*Downsample)).
	OutputScale int
	// Hamming selects a Hamming-windowed FIR instead of the plain
	// boxcar sum.
	Hamming bool
	// SquelchLevel is the MAD threshold below which a block is
	// considered silent; zero disables squelch.
	SquelchLevel int

	fir    []int32
	firF   []float64 // float64 copy of fir, for floats.Dot
	firSum float64

	rWin, jWin []float64 // current decimation window, length Downsample
	prevIndex  int
	seq        int

	dcAvg       int32
	squelchHits int
}

// NewConditioner returns a Conditioner with its FIR coefficients built
// from Downsample, per spec.md §4.B.
func NewConditioner(downsample int, hamming bool, squelchLevel int) *Conditioner {
	c := &Conditioner{
		Downsample:   downsample,
		OutputScale:  outputScale(downsample),
		Hamming:      hamming,
		SquelchLevel: squelchLevel,
		rWin:         make([]float64, downsample),
		jWin:         make([]float64, downsample),
	}
	if hamming {
		c.buildHammingFIR()
	}
	return c
}

func outputScale(downsample int) int {
	s := (1 << 15) / (128 * downsample)
	if s < 1 {
		return 1
	}
	return s
}

// buildHammingFIR fills fir[i] = (a - b*cos(2*pi*i/(N-1))) * 255, the
// 25/46, 21/46 Hamming window rtl_acars_ng.cc's build_fir uses. The
// coefficients and their sum are reduced with floats.Scale/.Sum rather
// than a hand-rolled accumulator.
func (c *Conditioner) buildHammingFIR() {
	const a = 25.0 / 46.0
	const b = 21.0 / 46.0
	n := c.Downsample
	n1 := float64(n - 1)

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = a - b*math.Cos(2*math.Pi*float64(i)/n1)
	}
	floats.Scale(255, weights)

	c.fir = make([]int32, n)
	c.firF = make([]float64, n)
	for i, w := range weights {
		c.fir[i] = int32(w)
		c.firF[i] = float64(c.fir[i])
	}
	c.firSum = floats.Sum(c.firF)
}

// Rotate90 rotates every run of 8 bytes (4 IQ pairs) by successive
// powers of j, shifting DC-centered baseband by Fs_in/4 in place.
func Rotate90(buf []byte) {
	for i := 0; i+7 < len(buf); i += 8 {
		tmp := byte(255 - buf[i+3])
		buf[i+3] = buf[i+2]
		buf[i+2] = tmp

		buf[i+4] = 255 - buf[i+4]
		buf[i+5] = 255 - buf[i+5]

		tmp = byte(255 - buf[i+6])
		buf[i+6] = buf[i+7]
		buf[i+7] = tmp
	}
}

// decimate runs the boxcar-with-attenuated-odd-output low-pass (Hamming
// FIR when c.Hamming is set) and returns the decimated I/Q pairs as
// int32 (I0,Q0,I1,Q1,...). Each decimation window is reduced with
// floats.Dot (Hamming) or floats.Sum (boxcar) instead of an incremental
// hand-rolled accumulator.
func (c *Conditioner) decimate(buf []byte) []int32 {
	out := make([]int32, 0, 2*(len(buf)/2/c.Downsample+1))

	for i := 0; i+1 < len(buf); i += 2 {
		c.rWin[c.prevIndex] = float64(buf[i]) - 127
		c.jWin[c.prevIndex] = float64(buf[i+1]) - 127
		c.prevIndex++
		if c.prevIndex < c.Downsample {
			continue
		}
		c.prevIndex = 0

		if c.Hamming {
			r := floats.Dot(c.rWin, c.firF) * float64(c.Downsample) / c.firSum
			j := floats.Dot(c.jWin, c.firF) * float64(c.Downsample) / c.firSum
			out = append(out, int32(r), int32(j))
			continue
		}

		r := floats.Sum(c.rWin)
		j := floats.Sum(c.jWin)
		if c.seq%2 == 1 {
			r *= 5.0 / 8.0
			j *= 5.0 / 8.0
		}
		c.seq++
		out = append(out, int32(r), int32(j))
	}
	return out
}

// amEnvelope returns sqrt(I^2+Q^2) * OutputScale * 8 for each decimated
// IQ pair, per spec.md §4.B step 3.
func (c *Conditioner) amEnvelope(iq []int32) []int16 {
	out := make([]int16, len(iq)/2)
	for i := 0; i+1 < len(iq); i += 2 {
		r, j := float64(iq[i]), float64(iq[i+1])
		pcm := math.Sqrt(r*r + j*j)
		out[i/2] = int16(pcm) * int16(c.OutputScale) * 8
	}
	return out
}

// dcBlock subtracts a smoothed running mean from audio in place, per
// spec.md §4.B step 4's DC blocker. Process applies it to every block.
func (c *Conditioner) dcBlock(audio []int16) {
	if len(audio) == 0 {
		return
	}
	var sum int64
	for _, v := range audio {
		sum += int64(v)
	}
	avg := int32(sum / int64(len(audio)))
	avg = int32((1-deemphAlpha)*float64(avg) + deemphAlpha*float64(c.dcAvg))
	for i := range audio {
		audio[i] -= int16(avg)
	}
	c.dcAvg = avg
}

// mad returns the mean absolute deviation of samples taken at the given
// stride, the way post_squelch's per-channel MAD does.
func mad(samples []int32, stride int) int32 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	n := 0
	for i := 0; i < len(samples); i += stride {
		sum += int64(samples[i])
		n++
	}
	if n == 0 {
		return 0
	}
	avg := sum / int64(n)
	var devSum int64
	for i := 0; i < len(samples); i += stride {
		d := int64(samples[i]) - avg
		if d < 0 {
			d = -d
		}
		devSum += d
	}
	return int32(devSum / int64(n))
}

// squelched reports whether both I and Q mean absolute deviation stay at
// or below SquelchLevel, per spec.md §4.B step 5. SquelchLevel == 0
// disables squelch entirely.
func (c *Conditioner) squelched(iq []int32) bool {
	if c.SquelchLevel == 0 {
		return false
	}
	devR := mad(iq, 2)
	devJ := mad(iq[minInt(1, len(iq)):], 2)
	if devR > int32(c.SquelchLevel) || devJ > int32(c.SquelchLevel) {
		c.squelchHits = 0
		return false
	}
	c.squelchHits++
	return c.squelchHits > 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Process runs one IQ block through the full conditioning chain and
// returns its AM-envelope audio plus whether the block should be muted
// for squelch. buf is mutated in place by the rotation stage. On
// squelch, audio is zero-filled rather than withheld — samples flow on
// every call, the way full_demod runs unconditionally every iteration
// regardless of squelch state.
func (c *Conditioner) Process(buf []byte) (audio []int16, squelch bool) {
	Rotate90(buf)
	iq := c.decimate(buf)
	squelch = c.squelched(iq)
	audio = c.amEnvelope(iq)
	c.dcBlock(audio)
	if squelch {
		for i := range audio {
			audio[i] = 0
		}
	}
	return audio, squelch
}
