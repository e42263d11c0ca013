package dsp

import "testing"

func TestRotate90FixedPoints(t *testing.T) {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 127 // DC, should rotate to itself under negation
	}
	Rotate90(buf)
	for i, v := range buf {
		if v != 128 && v != 127 {
			t.Errorf("buf[%d] = %d, want 127 or 128 (255-127)", i, v)
		}
	}
}

func TestRotate90Involution(t *testing.T) {
	// Applying the 4-step rotation 4 times returns to the original
	// sequence (j^4 == 1).
	orig := []byte{10, 200, 50, 30, 90, 5, 220, 15}
	buf := append([]byte{}, orig...)
	for i := 0; i < 4; i++ {
		Rotate90(buf)
	}
	for i := range orig {
		if buf[i] != orig[i] {
			t.Errorf("after 4 rotations, buf[%d] = %d, want %d", i, buf[i], orig[i])
		}
	}
}

func TestOutputScaleFloor(t *testing.T) {
	if got := outputScale(1000000); got != 1 {
		t.Errorf("outputScale(1000000) = %d, want 1 (floor)", got)
	}
	if got := outputScale(1); got != 256 {
		t.Errorf("outputScale(1) = %d, want 256", got)
	}
}

func TestProcessProducesAudio(t *testing.T) {
	c := NewConditioner(24, false, 0)

	buf := make([]byte, 2*24*10) // 10 decimated output pairs
	for i := range buf {
		if i%4 < 2 {
			buf[i] = 200
		} else {
			buf[i] = 50
		}
	}

	audio, squelch := c.Process(buf)
	if len(audio) == 0 {
		t.Fatalf("expected decimated audio output, got none")
	}
	if squelch {
		t.Errorf("expected a strongly-varying signal to not be squelched")
	}
}

func TestSquelchMutesFlatSignal(t *testing.T) {
	c := NewConditioner(24, false, 50)

	buf := make([]byte, 2*24*10)
	for i := range buf {
		buf[i] = 127 // dead flat: zero deviation
	}

	// First block only increments squelchHits; squelch requires more
	// than one consecutive silent block.
	_, squelch1 := c.Process(append([]byte{}, buf...))
	_, squelch2 := c.Process(append([]byte{}, buf...))

	if squelch1 {
		t.Errorf("first silent block should not yet mute")
	}
	if !squelch2 {
		t.Errorf("second consecutive silent block should mute")
	}
}

func TestHammingFIRBuilt(t *testing.T) {
	c := NewConditioner(8, true, 0)
	if len(c.fir) != 8 {
		t.Fatalf("fir length = %d, want 8", len(c.fir))
	}
	if c.firSum == 0 {
		t.Errorf("firSum must be non-zero for a valid Hamming window")
	}
}
