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

// Result reports whether one assembleOne tick produced an output block.
type Result int

const (
	// NotReady means there wasn't enough data to assemble a block this tick.
	NotReady Result = iota
	// Ready means a block was assembled and handed to the Sink.
	Ready
)

func (r Result) String() string {
	if r == Ready {
		return "ready"
	}
	return "not-ready"
}
