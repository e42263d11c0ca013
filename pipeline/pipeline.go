// Package pipeline wires the sample source through the baseband
// conditioner, bit synchronizer, and frame state machine to the output
// sink, using a single-writer/single-reader handoff grounded on the
// reference receiver's HPSDR client send-loop condition-variable
// pattern: a producer thread fills a shared buffer under a write lock
// and signals, a consumer thread waits on the condition variable, copies
// the block out under the same write-held lock (the RWMutex's read side
// is not used), and runs the full demod/bit/frame chain with no further
// blocking inside.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/dglatting/rtl-acars-ng2/bitsync"
	"github.com/dglatting/rtl-acars-ng2/dsp"
	"github.com/dglatting/rtl-acars-ng2/framing"
	"github.com/dglatting/rtl-acars-ng2/message"
	"github.com/dglatting/rtl-acars-ng2/metrics"
	"github.com/dglatting/rtl-acars-ng2/sink"
	"github.com/dglatting/rtl-acars-ng2/source"
)

// Pipeline owns the shared IQ block buffer, the producer/consumer
// handoff, and the single-threaded cooperative demod chain run by the
// consumer. Nothing outside Run reaches into its buffers.
type Pipeline struct {
	src  source.Sample
	sink sink.Sink

	cond      *sync.Cond
	mu        *sync.RWMutex // the same lock cond is built on
	block     []byte
	blockN    int
	haveBlock bool

	doExit atomic.Bool

	conditioner *dsp.Conditioner
	bitSync     *bitsync.State
	frame       *framing.Machine

	rxIdx uint64

	metrics *metrics.Receiver

	// onMessage, when set, is invoked after sink.Emit for every accepted
	// frame — test hook only.
	onMessage func(*message.Message)
}

// New wires a pipeline from src to sink, sizing the shared IQ block
// buffer by source.BlockSize(postDownsample). m may be nil, in which
// case no metrics are recorded.
func New(src source.Sample, snk sink.Sink, conditioner *dsp.Conditioner, postDownsample int, m *metrics.Receiver) *Pipeline {
	mu := &sync.RWMutex{}
	p := &Pipeline{
		src:         src,
		sink:        snk,
		mu:          mu,
		cond:        sync.NewCond(mu),
		block:       make([]byte, source.BlockSize(postDownsample)),
		conditioner: conditioner,
		bitSync:     bitsync.New(),
		frame:       framing.New(),
		metrics:     m,
	}
	return p
}

// Stop requests both loops exit at their next poll.
func (p *Pipeline) Stop() {
	p.doExit.Store(true)
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Run starts the producer and consumer loops and blocks until both
// exit — on Stop, on end-of-stream (io.EOF from the source), or on a
// non-recoverable source error.
func (p *Pipeline) Run() error {
	var wg sync.WaitGroup
	var srcErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		srcErr = p.produce()
	}()
	go func() {
		defer wg.Done()
		p.consume()
	}()
	wg.Wait()

	return srcErr
}

// produce is the producer thread: synchronous source reads, copied into
// the shared buffer under a write lock, followed by a signal.
func (p *Pipeline) produce() error {
	buf := make([]byte, len(p.block))

	for !p.doExit.Load() {
		n, err := p.src.ReadBlock(buf)
		if n > 0 {
			p.mu.Lock()
			copy(p.block, buf[:n])
			p.blockN = n
			p.haveBlock = true
			p.cond.Signal()
			p.mu.Unlock()
		}
		if err != nil {
			p.Stop()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("pipeline: source read: %w", err)
		}
	}
	return nil
}

// consume is the consumer thread: waits for a block, then runs the full
// demod/bit/frame/message/sink chain with no further blocking.
func (p *Pipeline) consume() {
	local := make([]byte, len(p.block))

	for {
		p.mu.Lock()
		for !p.haveBlock && !p.doExit.Load() {
			p.cond.Wait()
		}
		if p.doExit.Load() && !p.haveBlock {
			p.mu.Unlock()
			return
		}
		n := p.blockN
		copy(local, p.block[:n])
		p.haveBlock = false
		p.mu.Unlock()

		p.processBlock(local[:n])

		if p.doExit.Load() {
			return
		}
	}
}

// processBlock runs one IQ block through conditioning, bit recovery, and
// frame assembly, emitting any accepted messages along the way.
func (p *Pipeline) processBlock(iq []byte) {
	if p.metrics != nil {
		p.metrics.BlocksProcessed.Inc()
	}

	audio, squelched := p.conditioner.Process(iq)
	if p.metrics != nil {
		if squelched {
			p.metrics.Squelched.Set(1)
		} else {
			p.metrics.Squelched.Set(0)
		}
	}

	nbits := 0
	var currentByte byte

	for _, sample := range audio {
		r := p.bitSync.Feed(sample)
		if !r.BitReady {
			continue
		}
		if p.metrics != nil {
			p.metrics.BitsProcessed.Inc()
		}
		currentByte = r.Byte
		nbits++

		for nbits >= 8 {
			bitsConsumed, accepted := p.frame.Feed(currentByte)
			if p.frame.ReenteredHeadLost {
				p.bitSync.ResetSync()
			}
			if p.frame.DroppedFrame && p.metrics != nil {
				p.metrics.FramesDropped.Inc()
			}
			if accepted != nil {
				p.rxIdx++
				p.handleAccepted(accepted, r.Level)
			}
			if bitsConsumed < 0 {
				nbits = 0
			} else {
				nbits -= bitsConsumed
			}
		}
	}
}

func (p *Pipeline) handleAccepted(frame *framing.AcceptedFrame, level float64) {
	msg, err := message.Parse(frame.Raw, frame.CRCCorrected, level)
	if err != nil {
		log.Printf("[pipeline] dropping frame: %v", err)
		return
	}
	if err := p.sink.Emit(msg, frame.CRCCorrected, p.rxIdx); err != nil {
		log.Printf("[pipeline] sink emit: %v", err)
	}
	if p.metrics != nil {
		if frame.CRCCorrected {
			p.metrics.FramesCorrected.Inc()
		} else {
			p.metrics.FramesAccepted.Inc()
		}
		p.metrics.SignalLevelDB.Set(msg.SignalDB)
	}
	if p.onMessage != nil {
		p.onMessage(msg)
	}
}
