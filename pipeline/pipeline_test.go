package pipeline

import (
	"io"
	"sync"
	"testing"

	"github.com/dglatting/rtl-acars-ng2/dsp"
	"github.com/dglatting/rtl-acars-ng2/message"
)

// fakeSource yields a fixed number of blocks of random-ish noise, then
// io.EOF, so Run() terminates deterministically in a test.
type fakeSource struct {
	blocks [][]byte
	i      int
}

func (f *fakeSource) ReadBlock(out []byte) (int, error) {
	if f.i >= len(f.blocks) {
		return 0, io.EOF
	}
	n := copy(out, f.blocks[f.i])
	f.i++
	return n, nil
}

// fakeSink records every message it's asked to emit.
type fakeSink struct {
	mu   sync.Mutex
	msgs []*message.Message
}

func (f *fakeSink) Emit(msg *message.Message, crcCorrected bool, rxIdx uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func TestRunDrainsSourceAndExits(t *testing.T) {
	blocks := make([][]byte, 5)
	for i := range blocks {
		b := make([]byte, 2*24*200)
		for j := range b {
			b[j] = byte((i*7 + j*13) % 256)
		}
		blocks[i] = b
	}

	src := &fakeSource{blocks: blocks}
	snk := &fakeSink{}
	cond := dsp.NewConditioner(24, false, 0)

	p := New(src, snk, cond, 0, nil)
	// Shrink the block buffer to match our synthetic blocks' size so a
	// single ReadBlock call fills it exactly.
	p.block = make([]byte, len(blocks[0]))

	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.i != len(blocks) {
		t.Errorf("consumed %d blocks, want %d", src.i, len(blocks))
	}
}

func TestStopTerminatesRun(t *testing.T) {
	src := &fakeSource{blocks: [][]byte{make([]byte, 2*24*200)}}
	snk := &fakeSink{}
	cond := dsp.NewConditioner(24, false, 0)

	p := New(src, snk, cond, 0, nil)
	p.block = make([]byte, len(src.blocks[0]))

	done := make(chan error, 1)
	go func() { done <- p.Run() }()

	p.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
}
