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

// Package ingest adapts producer-side transports (live RTP, decoded
// compressed payloads, file-backed test sources) into pushes onto a
// core.Input. Everything here runs upstream of core.Mixer: by the time a
// buffer reaches Input.Push it is already linear PCM16 (or, for a
// passthrough-kernel format, whatever opaque payload the kernel expects),
// so the core itself never performs format conversion.
package ingest

import (
	"fmt"
	"io"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// Reader is the subset of a pion RTP receiver this package consumes,
// matching the teacher rtp.Reader contract.
type Reader interface {
	ReadRTP() (*rtp.Packet, interceptor.Attributes, error)
}

// RTPSource pulls RTP packets off a Reader and pushes their payload onto an
// Input as linear PCM (for codecs already wire-compatible with the mixer's
// format, e.g. L16) or leaves the payload opaque for a compressed format
// whose MixKernel is a Passthrough.
type RTPSource struct {
	log       logger.Logger
	reader    Reader
	input     *core.Input
	codecType webrtc.RTPCodecType
	clockRate uint32

	firstTS  uint32
	haveBase bool
}

// NewRTPSource builds a source that pushes onto input. clockRate is the
// RTP clock rate (e.g. 48000 for Opus, 8000 for G.722) used to convert RTP
// timestamps to the microsecond PTS core.Buffer expects.
func NewRTPSource(log logger.Logger, reader Reader, input *core.Input, codecType webrtc.RTPCodecType, clockRate uint32) *RTPSource {
	return &RTPSource{
		log:       log,
		reader:    reader,
		input:     input,
		codecType: codecType,
		clockRate: clockRate,
	}
}

// Run reads packets until the Reader errors (typically io.EOF on stream
// close) and pushes each one onto the Input. It's meant to run in its own
// goroutine per input, the same shape as teacher rtp.HandleLoop.
func (s *RTPSource) Run() error {
	for {
		pkt, _, err := s.reader.ReadRTP()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("ingest: rtp read: %w", err)
		}
		s.push(pkt)
	}
}

func (s *RTPSource) push(pkt *rtp.Packet) {
	if !s.haveBase {
		s.firstTS = pkt.Timestamp
		s.haveBase = true
	}
	elapsed := pkt.Timestamp - s.firstTS
	pts := int64(elapsed) * 1_000_000 / int64(s.clockRate)

	nbSamples := uint32(len(pkt.Payload))
	if s.codecType == webrtc.RTPCodecTypeAudio {
		nbSamples = uint32(len(pkt.Payload)) / 2
	}

	length := int64(nbSamples) * 1_000_000 / int64(s.clockRate)
	s.input.Push(&core.Buffer{
		PTS:        pts,
		Length:     length,
		NumSamples: nbSamples,
		Payload:    pkt.Payload,
	})
}
