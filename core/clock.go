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

import "time"

// Clock is the host's monotonic microsecond wall clock (spec's now()).
type Clock interface {
	NowMicro() int64
}

// SystemClock is the real wall clock, backed by time.Now().
type SystemClock struct{}

func (SystemClock) NowMicro() int64 {
	return time.Now().UnixMicro()
}

// dateAccum is the sample-accurate date accumulator: it advances by an
// integer number of samples at a fixed rate, carrying the fractional
// microsecond remainder forward so repeated small advances don't drift.
type dateAccum struct {
	rate      int64
	value     int64
	remainder int64
}

func (d *dateAccum) Set(v int64) {
	d.value = v
	d.remainder = 0
}

func (d *dateAccum) Get() int64 {
	return d.value
}

// Increment advances the date by nbSamples samples and returns the new date.
func (d *dateAccum) Increment(nbSamples int64) int64 {
	if d.rate == 0 {
		return d.value
	}
	total := nbSamples*1_000_000 + d.remainder
	d.value += total / d.rate
	d.remainder = total % d.rate
	return d.value
}
