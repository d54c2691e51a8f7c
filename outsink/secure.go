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
	"fmt"
	"net"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/srtp/v3"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// SecureRTPSink pairs an SRTP media write stream with an SRTCP control
// stream opened off the same srtp.Config, so a receiver still gets Sender
// Reports alongside the mixer's encrypted media output.
type SecureRTPSink struct {
	log     logger.Logger
	w       *srtp.WriteStreamSRTP
	rtcpOut *srtp.WriteStreamSRTCP

	ssrc  uint32
	seq   uint16
	ts    uint32
	ptime uint32
	rate  uint32

	blocksSinceSR int
	srInterval    int
}

var _ core.Sink = (*SecureRTPSink)(nil)

// NewSecureRTPSink opens an SRTP session over mediaConn and an SRTCP
// session over rtcpConn, sending with a fixed clock-rate ptime step of
// samplesPerBlock and a Sender Report every srIntervalBlocks blocks.
func NewSecureRTPSink(log logger.Logger, mediaConn, rtcpConn net.Conn, config *srtp.Config, ssrc uint32, rate, samplesPerBlock uint32, srIntervalBlocks int) (*SecureRTPSink, error) {
	session, err := srtp.NewSessionSRTP(mediaConn, config)
	if err != nil {
		return nil, fmt.Errorf("outsink: new srtp session: %w", err)
	}
	w, err := session.OpenWriteStream()
	if err != nil {
		return nil, fmt.Errorf("outsink: open srtp write stream: %w", err)
	}

	rtcpSession, err := srtp.NewSessionSRTCP(rtcpConn, config)
	if err != nil {
		return nil, fmt.Errorf("outsink: new srtcp session: %w", err)
	}
	rtcpOut, err := rtcpSession.OpenWriteStream()
	if err != nil {
		return nil, fmt.Errorf("outsink: open srtcp write stream: %w", err)
	}

	if srIntervalBlocks <= 0 {
		srIntervalBlocks = 50
	}
	return &SecureRTPSink{
		log:        log,
		w:          w,
		rtcpOut:    rtcpOut,
		ssrc:       ssrc,
		ptime:      samplesPerBlock,
		rate:       rate,
		srInterval: srIntervalBlocks,
	}, nil
}

func (s *SecureRTPSink) PlayBlock(buf *core.Buffer) error {
	header := &rtp.Header{
		Version:        2,
		PayloadType:    0,
		SequenceNumber: s.seq,
		Timestamp:      s.ts,
		SSRC:           s.ssrc,
	}
	if _, err := s.w.WriteRTP(header, buf.Payload); err != nil {
		return fmt.Errorf("outsink: srtp write: %w", err)
	}
	s.seq++
	s.ts += s.ptime

	s.blocksSinceSR++
	if s.blocksSinceSR >= s.srInterval {
		s.blocksSinceSR = 0
		if err := s.sendSenderReport(); err != nil {
			s.log.Warnw("failed to send SRTCP sender report", err)
		}
	}
	return nil
}

func (s *SecureRTPSink) sendSenderReport() error {
	now := time.Now()
	sr := &rtcp.SenderReport{
		SSRC:        s.ssrc,
		NTPTime:     ntpTime(now),
		RTPTime:     s.ts,
		PacketCount: uint32(s.seq),
	}
	buf, err := sr.Marshal()
	if err != nil {
		return fmt.Errorf("outsink: marshal sender report: %w", err)
	}
	_, err = s.rtcpOut.Write(buf)
	return err
}

// ntpTime converts a wall-clock time.Time to the 64-bit fixed-point NTP
// timestamp format RTCP Sender Reports carry.
func ntpTime(t time.Time) uint64 {
	const ntpEpochOffset = 2208988800 // seconds between 1900 and 1970
	secs := uint64(t.Unix()) + ntpEpochOffset
	frac := uint64(t.Nanosecond()) * (1 << 32) / 1e9
	return secs<<32 | frac
}

// Clear is a no-op: SRTP has no local output queue, same as plain RTPSink.
func (s *SecureRTPSink) Clear() {}
