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

	"github.com/gotranspile/g722"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// G722Source decodes G.722 RTP payloads to linear PCM16 before pushing them
// onto an Input, the same shape as teacher opus/opus_jitter.go's decode
// step but for a constant 16kHz-sampled, 8kHz-clocked codec.
type G722Source struct {
	log   logger.Logger
	dec   *g722.Decoder
	input *core.Input

	firstTS  uint32
	haveBase bool
}

// NewG722Source builds a decoding source. G.722 always runs its RTP clock
// at 8kHz regardless of the actual 16kHz output sample rate.
func NewG722Source(log logger.Logger, input *core.Input) *G722Source {
	return &G722Source{
		log:   log,
		dec:   g722.NewDecoder(g722.Rate64000, 0),
		input: input,
	}
}

const (
	g722RTPClockRate  = 8000
	g722PCMSampleRate = 16000
)

// PushRTP decodes one RTP packet's payload and enqueues the resulting PCM16
// onto the Input.
func (s *G722Source) PushRTP(timestamp uint32, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if !s.haveBase {
		s.firstTS = timestamp
		s.haveBase = true
	}

	pcm := s.dec.Decode(payload)
	if len(pcm) == 0 {
		return fmt.Errorf("ingest: g722 decode produced no samples")
	}

	out := make([]byte, len(pcm)*2)
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}

	elapsed := timestamp - s.firstTS
	pts := int64(elapsed) * 1_000_000 / g722RTPClockRate
	length := int64(len(pcm)) * 1_000_000 / g722PCMSampleRate

	s.input.Push(&core.Buffer{
		PTS:        pts,
		Length:     length,
		NumSamples: uint32(len(pcm)),
		Payload:    out,
	})
	return nil
}
