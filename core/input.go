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

// Input wraps one producer's buffer queue with the flags and cursor the
// alignment loop needs. It is created by Mixer.AddInput and is only ever
// mutated while the owning Mixer's input-FIFO lock is held.
type Input struct {
	m     *Mixer
	queue bufferQueue

	// begin is the byte offset into queue.Head().Payload that the mixer
	// has reconciled to the current start date; non-owning, valid only
	// while the head buffer it points into remains in the queue.
	begin    int64
	hasBegin bool

	error  bool
	paused bool
}

// isInvalid mirrors spec's is_invalid := error || paused. Caller must hold
// the input-FIFO lock.
func (in *Input) isInvalid() bool {
	return in.error || in.paused
}

// Push enqueues a producer-supplied buffer. It takes the mixer's input-FIFO
// lock itself, so producers (decoders) call it without holding that lock.
func (in *Input) Push(b *Buffer) {
	in.m.inputsMu.Lock()
	defer in.m.inputsMu.Unlock()
	in.queue.Push(b)
}

// SetError marks the input as errored; the mixer treats it as invalid,
// excluded from admission and mixing, until reset.
func (in *Input) SetError(v bool) {
	in.m.inputsMu.Lock()
	defer in.m.inputsMu.Unlock()
	in.error = v
}

// SetPaused marks the input as paused by its producer.
func (in *Input) SetPaused(v bool) {
	in.m.inputsMu.Lock()
	defer in.m.inputsMu.Unlock()
	in.paused = v
}

// QueueLen reports the number of buffers currently queued, for diagnostics.
func (in *Input) QueueLen() int {
	in.m.inputsMu.Lock()
	defer in.m.inputsMu.Unlock()
	return in.queue.Len()
}

// GatherLinear returns up to want contiguous payload bytes starting at the
// reconciled cursor, spanning queued buffers as needed (the admission loop
// already verified contiguity over the target interval). Intended for use
// by a MixKernel's Mix implementation; caller must hold the input-FIFO lock.
func (in *Input) GatherLinear(want int) []byte {
	out := make([]byte, 0, want)
	for i := 0; len(out) < want; i++ {
		buf := in.queue.At(i)
		if buf == nil {
			break
		}
		start := 0
		if i == 0 {
			start = int(in.begin)
		}
		if start > len(buf.Payload) {
			start = len(buf.Payload)
		}
		chunk := buf.Payload[start:]
		if need := want - len(out); len(chunk) > need {
			chunk = chunk[:need]
		}
		out = append(out, chunk...)
	}
	return out
}

// Consume advances the cursor by n bytes (linear formats only), crossing
// buffer boundaries and popping fully-consumed buffers as it goes; popping
// resets the cursor per the InputState invariant. Caller must hold the
// input-FIFO lock.
func (in *Input) Consume(n int) {
	for n > 0 {
		head := in.queue.Head()
		if head == nil {
			return
		}
		avail := len(head.Payload) - int(in.begin)
		if avail <= 0 {
			in.queue.Pop()
			in.begin = 0
			in.hasBegin = false
			continue
		}
		if n < avail {
			in.begin += int64(n)
			return
		}
		n -= avail
		in.queue.Pop()
		in.begin = 0
		in.hasBegin = false
	}
}
