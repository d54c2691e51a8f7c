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
	"io"

	"github.com/jfreymuth/oggvorbis"

	media "github.com/livekit/aoutmix"
	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// VorbisFileSource decodes an entire Ogg/Vorbis file up front and replays
// it onto an Input in fixed-size PCM16 chunks, standing in for a live RTP
// feed in the bench CLI and in tests that want deterministic input without
// a network source.
type VorbisFileSource struct {
	log   logger.Logger
	input *core.Input
	rate  int64

	samples []float32
}

// NewVorbisFileSource reads r fully and decodes it to mono float32 PCM.
// Stereo files are downmixed by averaging channels.
func NewVorbisFileSource(log logger.Logger, input *core.Input, r io.Reader) (*VorbisFileSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open vorbis stream: %w", err)
	}

	channels := dec.Channels()
	if channels <= 0 {
		channels = 1
	}

	buf := make([]float32, 4096*channels)
	var mono []float32
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			for i := 0; i < n; i += channels {
				var sum float32
				for c := 0; c < channels; c++ {
					sum += buf[i+c]
				}
				mono = append(mono, sum/float32(channels))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: decode vorbis stream: %w", err)
		}
	}

	return &VorbisFileSource{
		log:     log,
		input:   input,
		rate:    int64(dec.SampleRate()),
		samples: mono,
	}, nil
}

// PushAll enqueues the entire decoded file onto the Input as consecutive
// chunkSamples-sized PCM16 buffers starting at PTS startPTS. Chunking is
// done by media.FullFrames, the same frame-aligning writer the teacher
// interposes between a sample producer and a fixed-size-frame consumer.
func (s *VorbisFileSource) PushAll(startPTS int64, chunkSamples int) {
	pcm := make([]int16, len(s.samples))
	for i, f := range s.samples {
		v := f * 32767
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		pcm[i] = int16(v)
	}

	w := media.FullFrames[[]int16](&pushWriter{input: s.input, rate: s.rate, pts: startPTS}, chunkSamples)
	_ = w.WriteSample(pcm)
	_ = w.Close()
}

// pushWriter is a media.WriteCloser[[]int16] that turns each fixed-size
// frame FullFrames hands it into a core.Buffer push, advancing PTS by the
// frame's duration at the decoded sample rate.
type pushWriter struct {
	input *core.Input
	rate  int64
	pts   int64
}

func (w *pushWriter) String() string  { return "ingest.pushWriter" }
func (w *pushWriter) SampleRate() int { return int(w.rate) }

func (w *pushWriter) WriteSample(chunk []int16) error {
	if len(chunk) == 0 {
		return nil
	}
	payload := make([]byte, len(chunk)*2)
	for i, v := range chunk {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(v))
	}
	length := int64(len(chunk)) * 1_000_000 / w.rate
	w.input.Push(&core.Buffer{
		PTS:        w.pts,
		Length:     length,
		NumSamples: uint32(len(chunk)),
		Payload:    payload,
	})
	w.pts += length
	return nil
}

func (w *pushWriter) Close() error { return nil }
