// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"slices"
	"sync"

	"github.com/livekit/protocol/logger"
)

// Mixer is the alignment loop and its driver. Every exported entry point
// (Attach, Detach, Run, SetGain) takes the mixer lock internally, so the
// "caller holds the mixer lock" precondition is enforced by the mutex
// itself rather than documented-only discipline.
type Mixer struct {
	format Format
	clock  Clock
	log    logger.Logger

	nbSamplesPerBlock int64
	maxBlocksPerRun   int // soft cap; 0 = unbounded, matching the source

	mu sync.Mutex // the mixer lock

	inputsMu sync.Mutex // the input-FIFO lock
	inputs   []*Input

	outputMu   sync.Mutex // the output-FIFO lock
	outputDate dateAccum
	sink       Sink

	kernel          MixKernel
	allocatesOutput bool
	gain            float32

	stats *Stats
}

// Option configures a Mixer at construction time.
type Option func(*Mixer)

// WithStats attaches a caller-owned Stats block instead of a private one.
func WithStats(s *Stats) Option {
	return func(m *Mixer) { m.stats = s }
}

// WithMaxBlocksPerRun caps the number of blocks Run produces per call. The
// source loops Run until NotReady with no upper bound; this is an explicit
// deviation for schedulers that need a fairness bound after a long catch-up
// burst. Zero (the default) preserves the unbounded source behavior.
func WithMaxBlocksPerRun(n int) Option {
	return func(m *Mixer) { m.maxBlocksPerRun = n }
}

// NewMixer constructs a Mixer for the given format, driven by clock and
// handing assembled blocks to sink. nbSamplesPerBlock is the fixed output
// block size in samples.
func NewMixer(format Format, clock Clock, log logger.Logger, sink Sink, nbSamplesPerBlock int64, gain float32, opts ...Option) *Mixer {
	m := &Mixer{
		format:            format,
		clock:             clock,
		log:               log,
		sink:              sink,
		nbSamplesPerBlock: nbSamplesPerBlock,
		gain:              gain,
		stats:             new(Stats),
	}
	m.outputDate.rate = int64(format.Rate)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mixer) Stats() *Stats {
	return m.stats
}

// AddInput registers a new producer input and returns its handle.
func (m *Mixer) AddInput() *Input {
	m.inputsMu.Lock()
	defer m.inputsMu.Unlock()
	in := &Input{m: m}
	m.inputs = append(m.inputs, in)
	return in
}

// RemoveInput unregisters a previously added input.
func (m *Mixer) RemoveInput(in *Input) {
	if in == nil {
		return
	}
	m.inputsMu.Lock()
	defer m.inputsMu.Unlock()
	i := slices.Index(m.inputs, in)
	if i < 0 {
		return
	}
	m.inputs = slices.Delete(m.inputs, i, i+1)
}

// Attach resolves and installs a MixKernel for the mixer's format and gain.
// Preconditions: no mixer currently attached. Attach takes both the mixer
// lock and the input-FIFO lock itself, matching spec's "attach additionally
// requires input-FIFO lock held".
func (m *Mixer) Attach(resolver KernelResolver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputsMu.Lock()
	defer m.inputsMu.Unlock()

	if m.kernel != nil {
		panic("core: Attach called while a mixer is already attached")
	}

	k, err := resolver.Resolve(m.format, m.gain)
	if err != nil || k == nil {
		return ErrNoKernel
	}
	m.kernel = k
	m.allocatesOutput = k.AllocatesOutput()
	return nil
}

// Detach unloads the kernel binding. Idempotent: calling it with no mixer
// attached is a no-op. Does not touch input FIFOs.
func (m *Mixer) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kernel == nil {
		return
	}
	m.kernel = nil
	m.allocatesOutput = false
}

// SetGain updates the mixer's gain, propagating it to the live kernel if
// attached. No validation; callers clamp.
func (m *Mixer) SetGain(f float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain = f
	if m.kernel != nil {
		m.kernel.SetGain(f)
	}
}

// Run repeatedly calls assembleOne until it reports NotReady, producing as
// many output blocks as currently feasible without blocking on producers.
// It does not sleep; the enclosing scheduler re-invokes Run. When
// WithMaxBlocksPerRun set a non-zero cap, Run also returns after that many
// blocks even if more could be assembled, a deviation from the unbounded
// source loop.
func (m *Mixer) Run() {
	m.mu.Lock()
	defer m.mu.Unlock()

	blocks := 0
	for {
		if m.maxBlocksPerRun > 0 && blocks >= m.maxBlocksPerRun {
			return
		}
		if m.assembleOne() != Ready {
			return
		}
		blocks++
	}
}

// assembleOne is the per-tick alignment/admission algorithm. Steps are
// lettered to match the algorithm's own step structure.
func (m *Mixer) assembleOne() Result {
	// Step A: unbound fast path. Free every buffer in every non-errored
	// input's queue so memory doesn't grow while the mixer is absent.
	if m.kernel == nil {
		m.inputsMu.Lock()
		for _, in := range m.inputs {
			if in.error {
				continue
			}
			for !in.queue.Empty() {
				in.queue.Pop()
			}
			in.begin, in.hasBegin = 0, false
		}
		m.inputsMu.Unlock()
		m.stats.NotReady.Add(1)
		return NotReady
	}

	// Step B: lock and read the output clock.
	m.inputsMu.Lock()
	m.outputMu.Lock()
	startDate := m.outputDate.Get()
	now := m.clock.NowMicro()

	// Step C: late-output reset.
	if startDate != 0 && startDate < now {
		m.log.Warnw("output clock is in the past, resetting", nil,
			"startDate", startDate, "now", now)
		m.stats.LateResets.Add(1)
		m.sink.Clear()
		m.outputDate.Set(0)
		startDate = 0
	}
	m.outputMu.Unlock()

	// Step D: start-date discovery, only when the clock was just reset or
	// never set.
	if startDate == 0 {
		for _, in := range m.inputs {
			if in.isInvalid() {
				continue
			}
			for {
				head := in.queue.Head()
				if head == nil {
					break
				}
				if head.PTS >= now {
					break
				}
				m.log.Warnw("dropping stale input buffer", nil,
					"lag", now-head.PTS)
				in.queue.Pop()
				in.begin, in.hasBegin = 0, false
				m.stats.StaleDrops.Add(1)
			}
			if in.queue.Empty() {
				m.inputsMu.Unlock()
				m.stats.NotReady.Add(1)
				return NotReady
			}
			if h := in.queue.Head(); h.PTS > startDate {
				startDate = h.PTS
			}
		}
		m.outputMu.Lock()
		m.outputDate.Set(startDate)
		m.outputMu.Unlock()
	}

	// Step E: compute end_date by advancing the output date accumulator.
	m.outputMu.Lock()
	endDate := m.outputDate.Increment(m.nbSamplesPerBlock)
	m.outputMu.Unlock()

	// Step F: per-input admission and pruning.
	firstValid := -1
	brokeEarly := false

loop:
	for _, in := range m.inputs {
		if in.isInvalid() {
			continue
		}
		if firstValid < 0 {
			firstValid = slices.Index(m.inputs, in)
		}

		if in.queue.Empty() {
			m.inputsMu.Unlock()
			m.stats.NotReady.Add(1)
			return NotReady
		}

		// Past-packet drop: +/-1us tolerance absorbs rounding on Length.
		for {
			head := in.queue.Head()
			if head == nil {
				break
			}
			if head.End() >= startDate-1 {
				break
			}
			in.queue.Pop()
			in.begin, in.hasBegin = 0, false
			m.stats.StaleDrops.Add(1)
		}
		if in.queue.Empty() {
			m.inputsMu.Unlock()
			m.stats.NotReady.Add(1)
			return NotReady
		}

		// Sufficiency + contiguity scan, restarting after a gap drop. The
		// coverage check allows the same 1us of rounding slack as the
		// past-packet drop: buffer lengths are truncated to whole
		// microseconds while the output date accumulator carries its
		// remainder forward.
	rescan:
		for idx := 0; ; idx++ {
			cur := in.queue.At(idx)
			if cur == nil {
				m.inputsMu.Unlock()
				m.stats.NotReady.Add(1)
				return NotReady
			}
			if idx > 0 {
				prev := in.queue.At(idx - 1)
				if prev.End() != cur.PTS {
					m.log.Warnw("gap in input buffer chain, dropping pre-gap buffers", nil,
						"expected", prev.End(), "got", cur.PTS)
					for k := 0; k < idx; k++ {
						in.queue.Pop()
					}
					in.begin, in.hasBegin = 0, false
					m.stats.GapDrops.Add(1)
					idx = -1
					continue rescan
				}
			}
			if cur.End() >= endDate-1 {
				break rescan
			}
		}

		// Linear cursor reconciliation; compressed formats skip this, the
		// kernel is responsible for frame-granular alignment.
		if m.format.Linear {
			head := in.queue.Head()
			bpf := int64(m.format.BytesPerFrame)
			frameLen := int64(m.format.FrameLength)
			if frameLen == 0 {
				frameLen = 1
			}
			iBuffer := (startDate - head.PTS) * bpf * int64(m.format.Rate) / (frameLen * 1_000_000)

			if !in.hasBegin {
				in.begin, in.hasBegin = 0, true
			}
			cursorBytes := in.begin

			if cursorBytes < iBuffer-bpf || cursorBytes > iBuffer+bpf {
				m.log.Warnw("input cursor drift detected", nil,
					"cursor", cursorBytes, "ideal", iBuffer)
				m.stats.CursorDrifts.Add(1)
				rounded := iBuffer
				if bpf > 0 {
					rounded = (iBuffer / bpf) * bpf
				}
				if rounded < 0 {
					m.sink.Clear()
					m.outputMu.Lock()
					m.outputDate.Set(0)
					m.outputMu.Unlock()
					brokeEarly = true
					break loop
				}
				in.begin = rounded
			}
		}
	}

	// Step G: global feasibility.
	if brokeEarly || firstValid < 0 {
		m.inputsMu.Unlock()
		m.stats.NotReady.Add(1)
		return NotReady
	}

	// Step H: destination buffer.
	var out *Buffer
	if m.allocatesOutput {
		if m.format.FrameLength == 0 || m.nbSamplesPerBlock <= 0 {
			m.stats.AllocFailures.Add(1)
			m.inputsMu.Unlock()
			m.stats.NotReady.Add(1)
			return NotReady
		}
		nBytes := int64(m.nbSamplesPerBlock) * int64(m.format.BytesPerFrame) / int64(m.format.FrameLength)
		out = &Buffer{
			NumSamples: uint32(m.nbSamplesPerBlock),
			Payload:    make([]byte, nBytes),
		}
	} else {
		lead := m.inputs[firstValid]
		out = lead.queue.Pop()
		lead.begin, lead.hasBegin = 0, false
		if out == nil {
			m.stats.AllocFailures.Add(1)
			m.inputsMu.Unlock()
			m.stats.NotReady.Add(1)
			return NotReady
		}
	}
	out.PTS = startDate
	out.Length = endDate - startDate

	valid := make([]*Input, 0, len(m.inputs))
	for _, in := range m.inputs {
		if !in.isInvalid() {
			valid = append(valid, in)
		}
	}

	if err := m.kernel.Mix(out, valid); err != nil {
		m.inputsMu.Unlock()
		m.stats.NotReady.Add(1)
		return NotReady
	}
	m.stats.Mixes.Add(1)
	m.stats.OutputFrames.Add(1)
	m.stats.InputFrames.Add(uint64(len(valid)))

	// Step I: handoff.
	m.inputsMu.Unlock()
	if err := m.sink.PlayBlock(out); err != nil {
		m.log.Errorw("failed to play mixed block", err)
	}
	return Ready
}
