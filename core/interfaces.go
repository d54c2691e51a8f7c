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

// MixKernel is resolved at Attach time and performs the actual sample
// combination; it is the one piece of the design explicitly out of scope
// for the core (format-specific mixing, resampling, dither) and so is kept
// behind this capability interface.
type MixKernel interface {
	// AllocatesOutput reports whether the core should allocate the
	// destination buffer (true) or reuse the first valid input's head
	// buffer as the destination (false).
	AllocatesOutput() bool
	// SetGain updates the multiplier applied during Mix. Called under the
	// mixer lock, same as every other entry point.
	SetGain(gain float32)
	// Mix reads from every input's head buffer where the input is valid,
	// respecting its cursor, advances those cursors, applies gain, and
	// writes the combined result into out. Must not block or fail on data
	// conditions; format mismatches are configuration errors caught at
	// Attach time via KernelResolver.
	Mix(out *Buffer, inputs []*Input) error
}

// KernelResolver is the host's plug-in resolver (spec's resolve_kernel).
type KernelResolver interface {
	Resolve(format Format, gain float32) (MixKernel, error)
}

// Sink is the downstream output consumer: the device play-out collaborator
// and its end_date-bearing queue, named out of scope in spec.md's
// component list beyond the end_date/clear/play-out operations the core
// itself drives.
type Sink interface {
	// PlayBlock hands a fully mixed block to the output device queue.
	PlayBlock(buf *Buffer) error
	// Clear drains the output queue, used on a late-output clock reset.
	Clear()
}
