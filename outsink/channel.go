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
	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

// ChannelSink implements core.Sink by handing each mixed block to a channel
// instead of calling a downstream writer directly, unblocking the mixer's
// own goroutine from whatever consumes the blocks. Mirrors the teacher
// mixer's WithOutputChannel/outchan: the channel is 1-deep by default, which
// still blocks PlayBlock when the reader falls behind rather than dropping
// blocks, preserving the effects of calling the consumer directly.
type ChannelSink struct {
	log logger.Logger
	ch  chan *core.Buffer
}

var _ core.Sink = (*ChannelSink)(nil)

// NewChannelSink creates a ChannelSink with the given channel depth. size<=0
// is treated as 1, the teacher's WithOutputChannel default.
func NewChannelSink(log logger.Logger, size int) *ChannelSink {
	if size <= 0 {
		size = 1
	}
	return &ChannelSink{log: log, ch: make(chan *core.Buffer, size)}
}

func (s *ChannelSink) PlayBlock(buf *core.Buffer) error {
	s.ch <- buf
	return nil
}

// Clear drains any blocks already queued but not yet consumed, mirroring
// the other sinks' response to a late-output clock reset.
func (s *ChannelSink) Clear() {
	for {
		select {
		case <-s.ch:
		default:
			return
		}
	}
}

// Out returns the channel mixed blocks are delivered on. The caller is
// expected to drain it continuously; PlayBlock blocks once it fills.
func (s *ChannelSink) Out() <-chan *core.Buffer {
	return s.ch
}

// Close signals no further blocks will arrive, letting a reader ranging
// over Out() terminate.
func (s *ChannelSink) Close() {
	close(s.ch)
}
