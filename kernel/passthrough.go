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

package kernel

import "github.com/livekit/aoutmix/core"

// Passthrough ships the single valid input's buffer unmodified, for
// single-talker rooms or compressed formats the core can't touch sample by
// sample. It never allocates output: assembleOne reuses the lead input's
// popped buffer directly.
type Passthrough struct{}

var _ core.MixKernel = Passthrough{}

func (Passthrough) AllocatesOutput() bool { return false }

func (Passthrough) SetGain(float32) {
	// Gain is meaningless on an opaque compressed payload and is ignored.
}

func (Passthrough) Mix(out *core.Buffer, inputs []*core.Input) error {
	return nil
}
