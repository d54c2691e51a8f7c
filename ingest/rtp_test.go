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
	"io"
	"testing"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

type fakeReader struct {
	pkts []*rtp.Packet
	i    int
}

func (r *fakeReader) ReadRTP() (*rtp.Packet, interceptor.Attributes, error) {
	if r.i >= len(r.pkts) {
		return nil, nil, io.EOF
	}
	p := r.pkts[r.i]
	r.i++
	return p, nil, nil
}

type nopSink struct{}

func (nopSink) PlayBlock(*core.Buffer) error { return nil }
func (nopSink) Clear()                       {}

func TestRTPSource_Run_PushesEveryPacketUntilEOF(t *testing.T) {
	reader := &fakeReader{pkts: []*rtp.Packet{
		{Header: rtp.Header{Timestamp: 160000}, Payload: make([]byte, 320)},
		{Header: rtp.Header{Timestamp: 160960}, Payload: make([]byte, 320)},
	}}

	m := core.NewMixer(core.Format{BytesPerFrame: 2, FrameLength: 1, Rate: 48000, Linear: true}, core.SystemClock{}, logger.NewTestLogger(t), nopSink{}, 1024, 1.0)
	input := m.AddInput()

	src := NewRTPSource(logger.NewTestLogger(t), reader, input, webrtc.RTPCodecTypeAudio, 48000)
	require.NoError(t, src.Run())
	require.Equal(t, 2, input.QueueLen())
}
