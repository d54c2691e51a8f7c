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

// Package kernel provides reference MixKernel implementations and the
// registry that resolves one for a given format, the host collaborator
// spec.md calls resolve_kernel.
package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/livekit/aoutmix/core"
)

// Linear additively mixes linear PCM16 input buffers into a freshly
// allocated destination, the same accumulate-then-clamp shape as the
// teacher mixer's mixOnce: sum into an int32 accumulator, apply gain, clamp
// to int16 range.
type Linear struct {
	format core.Format
	gain   float32
}

var _ core.MixKernel = (*Linear)(nil)

// NewLinear constructs a Linear kernel for format. It errors if format
// isn't linear or has a zero bytes-per-frame or frame length. The sample
// width is not checked: Mix always reads and writes 16-bit samples.
func NewLinear(format core.Format, gain float32) (*Linear, error) {
	if !format.Linear {
		return nil, fmt.Errorf("kernel: linear kernel requires a linear format")
	}
	if format.BytesPerFrame == 0 || format.FrameLength == 0 {
		return nil, fmt.Errorf("kernel: format must have non-zero bytes-per-frame and frame length")
	}
	return &Linear{format: format, gain: gain}, nil
}

func (k *Linear) AllocatesOutput() bool { return true }

func (k *Linear) SetGain(gain float32) { k.gain = gain }

func (k *Linear) Mix(out *core.Buffer, inputs []*core.Input) error {
	n := len(out.Payload) / 2
	acc := make([]int32, n)

	for _, in := range inputs {
		chunk := in.GatherLinear(len(out.Payload))
		for i := 0; i+1 < len(chunk); i += 2 {
			acc[i/2] += int32(int16(binary.LittleEndian.Uint16(chunk[i:])))
		}
		in.Consume(len(out.Payload))
	}

	gain := k.gain
	for i, v := range acc {
		scaled := int32(float32(v) * gain)
		switch {
		case scaled > 0x7FFF:
			scaled = 0x7FFF
		case scaled < -0x7FFF:
			scaled = -0x7FFF
		}
		binary.LittleEndian.PutUint16(out.Payload[i*2:], uint16(int16(scaled)))
	}
	return nil
}
