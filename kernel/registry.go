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

package kernel

import (
	"fmt"
	"sync"

	"github.com/livekit/aoutmix/core"
)

// Factory builds a MixKernel for the given format and initial gain.
type Factory func(format core.Format, gain float32) (core.MixKernel, error)

// Registry is a core.KernelResolver that dispatches on Format.Linear, the
// only axis the core cares about: linear formats get an additive mixer,
// everything else goes to the compressed-format factory registered under
// the format's tag. Passthrough is returned only when no compressed
// factory is registered at all; with factories registered, a format whose
// tag matches none of them (or a nil tag func) is an error.
type Registry struct {
	mu         sync.Mutex
	compressed map[string]Factory
	tag        func(core.Format) string
}

// NewRegistry builds a Registry. tag classifies a non-linear Format into a
// codec key used to look up a registered compressed factory; callers that
// only ever see one compressed format can pass a constant-returning func.
func NewRegistry(tag func(core.Format) string) *Registry {
	return &Registry{
		compressed: make(map[string]Factory),
		tag:        tag,
	}
}

// RegisterCompressed associates a codec tag with a Factory, for formats the
// core treats as opaque (e.g. Opus, G.722).
func (r *Registry) RegisterCompressed(tag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compressed[tag] = f
}

// Resolve implements core.KernelResolver.
func (r *Registry) Resolve(format core.Format, gain float32) (core.MixKernel, error) {
	if format.Linear {
		return NewLinear(format, gain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tag != nil {
		if f, ok := r.compressed[r.tag(format)]; ok {
			return f(format, gain)
		}
	}
	if len(r.compressed) > 0 {
		return nil, fmt.Errorf("kernel: no compressed factory registered for this format")
	}
	return Passthrough{}, nil
}
