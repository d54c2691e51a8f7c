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
)

func TestRawFileSink_PlayBlock_FansOutToAllDestinations(t *testing.T) {
	a := bufWriteCloser{&bytes.Buffer{}}
	b := bufWriteCloser{&bytes.Buffer{}}

	sink := NewRawFileSink(48000, a, b)
	require.NoError(t, sink.PlayBlock(&core.Buffer{Payload: []byte{1, 2, 3, 4}}))
	require.NoError(t, sink.Close())

	require.Equal(t, []byte{1, 2, 3, 4}, a.Bytes())
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())
}
