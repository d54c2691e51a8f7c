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

import (
	"encoding/binary"
	"testing"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
	"github.com/stretchr/testify/require"
)

func fmt16() core.Format {
	return core.Format{BytesPerFrame: 2, FrameLength: 1, Rate: 48000, Linear: true}
}

type nopSink struct{}

func (nopSink) PlayBlock(*core.Buffer) error { return nil }
func (nopSink) Clear()                       {}

// newInputs builds n live core.Input handles off a throwaway Mixer, since
// Input's fields are only ever mutated through its owning Mixer.
func newInputs(t *testing.T, n int) []*core.Input {
	t.Helper()
	m := core.NewMixer(fmt16(), core.SystemClock{}, logger.NewTestLogger(t), nopSink{}, 1024, 1.0)
	out := make([]*core.Input, n)
	for i := range out {
		out[i] = m.AddInput()
	}
	return out
}

func pcm(vals ...int16) []byte {
	b := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func samples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestNewLinear_RejectsNonLinearFormat(t *testing.T) {
	_, err := NewLinear(core.Format{Linear: false}, 1.0)
	require.Error(t, err)
}

func TestLinear_AllocatesOutput(t *testing.T) {
	k, err := NewLinear(fmt16(), 1.0)
	require.NoError(t, err)
	require.True(t, k.AllocatesOutput())
}

func TestLinear_Mix_SumsInputs(t *testing.T) {
	k, err := NewLinear(fmt16(), 1.0)
	require.NoError(t, err)

	out := &core.Buffer{Payload: make([]byte, 4)}
	ins := newInputs(t, 2)
	ins[0].Push(&core.Buffer{PTS: 0, Length: 1000, NumSamples: 2, Payload: pcm(100, 200)})
	ins[1].Push(&core.Buffer{PTS: 0, Length: 1000, NumSamples: 2, Payload: pcm(50, -50)})

	require.NoError(t, k.Mix(out, ins))
	require.Equal(t, []int16{150, 150}, samples(out.Payload))
}

func TestLinear_Mix_ClampsOnOverflow(t *testing.T) {
	k, err := NewLinear(fmt16(), 1.0)
	require.NoError(t, err)

	out := &core.Buffer{Payload: make([]byte, 2)}
	ins := newInputs(t, 2)
	ins[0].Push(&core.Buffer{PTS: 0, Length: 1000, NumSamples: 1, Payload: pcm(30000)})
	ins[1].Push(&core.Buffer{PTS: 0, Length: 1000, NumSamples: 1, Payload: pcm(30000)})

	require.NoError(t, k.Mix(out, ins))
	require.Equal(t, []int16{0x7FFF}, samples(out.Payload))
}

func TestLinear_Mix_AppliesGain(t *testing.T) {
	k, err := NewLinear(fmt16(), 0.5)
	require.NoError(t, err)

	out := &core.Buffer{Payload: make([]byte, 2)}
	ins := newInputs(t, 1)
	ins[0].Push(&core.Buffer{PTS: 0, Length: 1000, NumSamples: 1, Payload: pcm(1000)})

	require.NoError(t, k.Mix(out, ins))
	require.Equal(t, []int16{500}, samples(out.Payload))
}
