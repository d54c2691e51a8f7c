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

package outsink

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

type recordedPacket struct {
	header  rtp.Header
	payload []byte
}

type fakeRTPWriter struct {
	sent []recordedPacket
}

func (w *fakeRTPWriter) WriteRTP(header *rtp.Header, payload []byte) (int, error) {
	w.sent = append(w.sent, recordedPacket{header: *header, payload: append([]byte(nil), payload...)})
	return len(payload), nil
}

func TestRTPSink_PlayBlock_WritesPayload(t *testing.T) {
	w := &fakeRTPWriter{}
	sink := NewRTPSink(logger.NewTestLogger(t), w, 0xCAFE, 111, 160)

	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{1, 2, 3, 4}}))
	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{5, 6, 7, 8}}))

	require.Len(t, w.sent, 2)
	require.Equal(t, []byte{1, 2, 3, 4}, w.sent[0].payload)
	require.Equal(t, []byte{5, 6, 7, 8}, w.sent[1].payload)
	require.Equal(t, uint32(0xCAFE), w.sent[0].header.SSRC)
	require.Equal(t, byte(111), w.sent[0].header.PayloadType)
	require.NotEqual(t, w.sent[0].header.Timestamp, w.sent[1].header.Timestamp)
	require.Equal(t, w.sent[0].header.SequenceNumber+1, w.sent[1].header.SequenceNumber)
}

func TestRTPSink_Clear_IsNoop(t *testing.T) {
	w := &fakeRTPWriter{}
	sink := NewRTPSink(logger.NewTestLogger(t), w, 1, 0, 160)
	sink.Clear()
}

func TestNewRTPSinkUDP_SendsOverLoopback(t *testing.T) {
	remote, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	defer remote.Close()
	remoteAddr := remote.LocalAddr().(*net.UDPAddr)

	sink, err := NewRTPSinkUDP(logger.NewTestLogger(t), 0, 0, netip.MustParseAddr("127.0.0.1"), remoteAddr, 0x1234, 96, 160)
	require.NoError(t, err)

	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{1, 2, 3, 4}}))

	buf := make([]byte, 1500)
	require.NoError(t, remote.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := remote.ReadFromUDP(buf)
	require.NoError(t, err)

	var pkt rtp.Packet
	require.NoError(t, pkt.Unmarshal(buf[:n]))
	require.Equal(t, []byte{1, 2, 3, 4}, pkt.Payload)
	require.Equal(t, uint32(0x1234), pkt.SSRC)
	require.Equal(t, byte(96), pkt.PayloadType)
}
