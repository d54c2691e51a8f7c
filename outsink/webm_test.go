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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/protocol/logger"
)

type bufWriteCloser struct {
	*bytes.Buffer
}

func (bufWriteCloser) Close() error { return nil }

func TestWebMFileSink_PlayBlock_WritesFrames(t *testing.T) {
	w := bufWriteCloser{&bytes.Buffer{}}
	sink, err := NewWebMFileSink(logger.NewTestLogger(t), w, 48000)
	require.NoError(t, err)

	require.NoError(t, sink.PlayBlock(&core.Buffer{PTS: 0, Payload: []byte{1, 2, 3, 4}}))
	require.NoError(t, sink.PlayBlock(&core.Buffer{PTS: 21333, Payload: []byte{5, 6, 7, 8}}))
	require.NoError(t, sink.Close())

	require.Greater(t, w.Buffer.Len(), 0)
}
