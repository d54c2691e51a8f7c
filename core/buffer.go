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

package core

// Buffer is one time-stamped unit of queued PCM audio. PTS and Length are
// expressed in microseconds; Length should equal NumSamples*1e6/Rate within
// +/-1us of rounding.
type Buffer struct {
	PTS        int64
	Length     int64
	NumSamples uint32
	Payload    []byte
}

// End returns the presentation time one sample past the buffer's end.
func (b *Buffer) End() int64 {
	return b.PTS + b.Length
}
