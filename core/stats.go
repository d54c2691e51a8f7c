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

import "sync/atomic"

// Stats accumulates counters describing mixer activity across its
// lifetime. Fields are incremented without holding any lock, same as the
// teacher mixer's stats block: they're monotonic counters, not control
// state.
type Stats struct {
	Mixes    atomic.Uint64
	NotReady atomic.Uint64

	LateResets   atomic.Uint64
	StaleDrops   atomic.Uint64
	GapDrops     atomic.Uint64
	CursorDrifts atomic.Uint64

	AllocFailures atomic.Uint64

	InputFrames  atomic.Uint64
	OutputFrames atomic.Uint64
}
