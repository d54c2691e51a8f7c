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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/aoutmix/core"
)

func TestChannelSink_PlayBlock_DeliversOnOut(t *testing.T) {
	sink := NewChannelSink(nil, 1)
	buf := &core.Buffer{Payload: []byte{1, 2, 3}}

	require.NoError(t, sink.PlayBlock(buf))

	select {
	case got := <-sink.Out():
		require.Same(t, buf, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for block")
	}
}

func TestChannelSink_PlayBlock_BlocksWhenFull(t *testing.T) {
	sink := NewChannelSink(nil, 1)
	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{1}}))

	done := make(chan struct{})
	go func() {
		_ = sink.PlayBlock(&core.Buffer{Payload: []byte{2}})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("PlayBlock should have blocked with a full 1-deep channel")
	case <-time.After(50 * time.Millisecond):
	}

	<-sink.Out()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PlayBlock did not unblock once the channel drained")
	}
}

func TestChannelSink_Clear_DrainsQueuedBlocks(t *testing.T) {
	sink := NewChannelSink(nil, 2)
	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{1}}))
	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{2}}))

	sink.Clear()

	select {
	case <-sink.Out():
		t.Fatal("expected channel to be empty after Clear")
	default:
	}
}
