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
	"encoding/binary"
	"fmt"

	"gopkg.in/hraban/opus.v2"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// OpusSource decodes Opus RTP payloads to linear PCM16, mono, at the
// decoder's native rate, mirroring teacher opus/opus_jitter.go's per-packet
// decode-then-forward shape.
type OpusSource struct {
	log   logger.Logger
	dec   *opus.Decoder
	input *core.Input
	rate  int

	scratch  []int16
	firstTS  uint32
	haveBase bool
}

// NewOpusSource builds a decoding source for mono Opus at rate Hz (48000 is
// the common case but Opus allows 8/12/16/24/48 kHz decode targets).
func NewOpusSource(log logger.Logger, input *core.Input, rate int) (*OpusSource, error) {
	dec, err := opus.NewDecoder(rate, 1)
	if err != nil {
		return nil, fmt.Errorf("ingest: new opus decoder: %w", err)
	}
	return &OpusSource{
		log:     log,
		dec:     dec,
		input:   input,
		rate:    rate,
		scratch: make([]int16, rate/50), // 20ms worst case at max ptime
	}, nil
}

// PushRTP decodes one RTP packet's Opus payload and enqueues PCM16 onto the
// Input. Opus's RTP clock is always 48kHz regardless of decode rate.
func (s *OpusSource) PushRTP(timestamp uint32, payload []byte) error {
	if !s.haveBase {
		s.firstTS = timestamp
		s.haveBase = true
	}

	n, err := s.dec.Decode(payload, s.scratch)
	if err != nil {
		return fmt.Errorf("ingest: opus decode: %w", err)
	}
	if n == 0 {
		return nil
	}

	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s.scratch[i]))
	}

	const opusClockRate = 48000
	elapsed := timestamp - s.firstTS
	pts := int64(elapsed) * 1_000_000 / opusClockRate
	length := int64(n) * 1_000_000 / int64(s.rate)

	s.input.Push(&core.Buffer{
		PTS:        pts,
		Length:     length,
		NumSamples: uint32(n),
		Payload:    out,
	})
	return nil
}
