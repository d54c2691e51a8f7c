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
	"io"

	media "github.com/livekit/aoutmix"
	"github.com/livekit/aoutmix/core"
)

// RawFileSink implements core.Sink by appending each mixed block's raw PCM16
// payload to one or more local files, reusing the teacher's generic
// WriteCloser[Frame] file writer rather than a bespoke file-writing loop.
// More than one destination fans out through media.MultiWriter.
type RawFileSink struct {
	w media.WriteCloser[media.FrameSample]
}

var _ core.Sink = (*RawFileSink)(nil)

// NewRawFileSink opens one media.NewFileWriter per destination, all driven
// by a single PlayBlock call.
func NewRawFileSink(sampleRate int, files ...io.WriteCloser) *RawFileSink {
	writers := make(media.MultiWriter[media.FrameSample], len(files))
	for i, f := range files {
		writers[i] = media.NewFileWriter[media.FrameSample](f, sampleRate)
	}
	return &RawFileSink{w: writers}
}

func (s *RawFileSink) PlayBlock(buf *core.Buffer) error {
	return s.w.WriteSample(media.FrameSample(buf.Payload))
}

// Clear is a no-op: a raw file dump has no local queue to flush, same as
// RTPSink and SecureRTPSink.
func (s *RawFileSink) Clear() {}

// Close flushes and closes every underlying destination file.
func (s *RawFileSink) Close() error {
	return s.w.Close()
}
