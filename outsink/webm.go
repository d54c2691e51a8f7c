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
	"io"

	"github.com/at-wat/ebml-go/webm"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// WebMFileSink muxes mixed PCM16 blocks into a single-audio-track WebM
// container, capturing mixer output for offline inspection; no video track
// is ever written.
type WebMFileSink struct {
	log logger.Logger
	w   io.Closer
	bw  webm.BlockWriteCloser
}

var _ core.Sink = (*WebMFileSink)(nil)

// NewWebMFileSink opens a single PCM audio track on w at sampleRate.
func NewWebMFileSink(log logger.Logger, w io.WriteCloser, sampleRate int) (*WebMFileSink, error) {
	writers, err := webm.NewSimpleBlockWriter(w, []webm.TrackEntry{
		{
			Name:        "Audio",
			TrackNumber: 1,
			TrackUID:    1,
			CodecID:     "A_PCM/INT/LIT",
			TrackType:   2,
			Audio: &webm.Audio{
				SamplingFrequency: float64(sampleRate),
				Channels:          1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("outsink: open webm track: %w", err)
	}
	return &WebMFileSink{log: log, w: w, bw: writers[0]}, nil
}

func (s *WebMFileSink) PlayBlock(buf *core.Buffer) error {
	if _, err := s.bw.Write(true, buf.PTS/1000, buf.Payload); err != nil {
		return fmt.Errorf("outsink: write webm block: %w", err)
	}
	return nil
}

// Clear has nothing to drain on a file sink; the mixer calling it on a
// late-output reset just means the next block's timestamp jumps, which
// ebml-go records as-is.
func (s *WebMFileSink) Clear() {}

// Close finalizes the WebM file.
func (s *WebMFileSink) Close() error {
	return s.w.Close()
}
