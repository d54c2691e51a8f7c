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

// Package core implements the mixer's temporal alignment and
// admission-control loop: picking a common start PTS across every live
// input, pruning stale or non-contiguous buffers, reconciling per-input
// byte cursors, and driving a pluggable mixing kernel.
package core

// Format is the immutable PCM layout a Mixer operates on for its entire
// lifetime; it is fixed at construction time.
type Format struct {
	// BytesPerFrame is the byte size of one frame (all channels) of audio.
	BytesPerFrame uint32
	// FrameLength is the number of samples represented by one frame.
	FrameLength uint32
	// Rate is the sampling rate in Hz.
	Rate uint32
	// Linear is false for compressed or pass-through formats, where
	// sub-frame byte math is meaningless.
	Linear bool
}
