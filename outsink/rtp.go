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

// Package outsink implements core.Sink for the transports a mixed block can
// be delivered over: plain RTP, SRTP-secured RTP, and a local WebM file for
// offline inspection.
package outsink

import (
	"fmt"

	"github.com/pion/rtp"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// RTPWriter is the minimal send side RTPSink needs from a transport: a
// packetized RTP send, given an already-built header and payload. Both
// *net.UDPConn (via NewUDPWriter) and the write stream returned by an SRTP
// session satisfy it.
type RTPWriter interface {
	WriteRTP(header *rtp.Header, payload []byte) (int, error)
}

// RTPSink implements core.Sink by remuxing mixed blocks onto an outbound RTP
// stream. Sequence number and timestamp advance directly here instead of
// through a separate stream-bookkeeping type: there's exactly one stream per
// sink, so the extra layer of indirection the teacher's multi-stream
// rtp.SeqWriter/rtp.Stream pair existed for buys nothing in this domain.
type RTPSink struct {
	log logger.Logger
	w   RTPWriter

	ssrc  uint32
	pt    byte
	seq   uint16
	ts    uint32
	ptime uint32
}

var _ core.Sink = (*RTPSink)(nil)

// NewRTPSink wraps w, sending payloadType packets under ssrc with the
// timestamp advancing by samplesPerBlock (the RTP clock-rate step of one
// mixed block) on every PlayBlock.
func NewRTPSink(log logger.Logger, w RTPWriter, ssrc uint32, payloadType byte, samplesPerBlock uint32) *RTPSink {
	return &RTPSink{log: log, w: w, ssrc: ssrc, pt: payloadType, ptime: samplesPerBlock}
}

func (s *RTPSink) PlayBlock(buf *core.Buffer) error {
	header := &rtp.Header{
		Version:        2,
		PayloadType:    s.pt,
		SequenceNumber: s.seq,
		Timestamp:      s.ts,
		SSRC:           s.ssrc,
	}
	if _, err := s.w.WriteRTP(header, buf.Payload); err != nil {
		return fmt.Errorf("outsink: write rtp payload: %w", err)
	}
	s.seq++
	s.ts += s.ptime
	return nil
}

// Clear is a no-op for RTP: there's no local output queue to drain, the
// stream just keeps sending. The late-reset path still calls it so the
// Sink interface stays uniform across transports.
func (s *RTPSink) Clear() {}
