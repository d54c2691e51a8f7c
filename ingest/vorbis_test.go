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

package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	media "github.com/livekit/aoutmix"
	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

func TestPushWriter_FullFramesChunksAndHoldsPartialFrame(t *testing.T) {
	m := core.NewMixer(core.Format{BytesPerFrame: 2, FrameLength: 1, Rate: 1000, Linear: true}, core.SystemClock{}, logger.NewTestLogger(t), nopSink{}, 1024, 1.0)
	input := m.AddInput()

	w := media.FullFrames[[]int16](&pushWriter{input: input, rate: 1000}, 4)

	// 10 samples at a frame size of 4: two full frames pushed immediately,
	// two leftover samples held back until Close forces the remainder out.
	require.NoError(t, w.WriteSample(make([]int16, 10)))
	require.Equal(t, 2, input.QueueLen())

	require.NoError(t, w.Close())
	require.Equal(t, 3, input.QueueLen())
}

func TestPushWriter_WriteSample_AdvancesPTSByFrameDuration(t *testing.T) {
	m := core.NewMixer(core.Format{BytesPerFrame: 2, FrameLength: 1, Rate: 1000, Linear: true}, core.SystemClock{}, logger.NewTestLogger(t), nopSink{}, 1024, 1.0)
	input := m.AddInput()

	pw := &pushWriter{input: input, rate: 1000, pts: 500}
	require.NoError(t, pw.WriteSample(make([]int16, 4)))
	require.Equal(t, int64(4_500), pw.pts)
}
