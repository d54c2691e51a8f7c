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
	"testing"

	"github.com/livekit/aoutmix/core"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveLinear(t *testing.T) {
	r := NewRegistry(nil)
	k, err := r.Resolve(fmt16(), 1.0)
	require.NoError(t, err)
	_, ok := k.(*Linear)
	require.True(t, ok)
}

func TestRegistry_ResolveCompressed_FallsBackToPassthrough(t *testing.T) {
	r := NewRegistry(nil)
	k, err := r.Resolve(core.Format{Linear: false}, 1.0)
	require.NoError(t, err)
	require.Equal(t, Passthrough{}, k)
}

func TestRegistry_ResolveCompressed_UsesRegisteredFactory(t *testing.T) {
	called := false
	r := NewRegistry(func(core.Format) string { return "opus" })
	r.RegisterCompressed("opus", func(f core.Format, gain float32) (core.MixKernel, error) {
		called = true
		return Passthrough{}, nil
	})

	_, err := r.Resolve(core.Format{Linear: false}, 1.0)
	require.NoError(t, err)
	require.True(t, called)
}

func TestRegistry_ResolveCompressed_UnknownTagErrors(t *testing.T) {
	r := NewRegistry(func(core.Format) string { return "g722" })
	r.RegisterCompressed("opus", func(f core.Format, gain float32) (core.MixKernel, error) {
		return Passthrough{}, nil
	})

	_, err := r.Resolve(core.Format{Linear: false}, 1.0)
	require.Error(t, err)
}
