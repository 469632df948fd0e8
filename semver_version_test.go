// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mixology

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemverVersionOrdering(t *testing.T) {
	require.Negative(t, ver("1.0.0").Compare(ver("1.0.1")))
	require.Positive(t, ver("2.0.0").Compare(ver("1.9.9")))
	require.Zero(t, ver("1.2.0").Compare(ver("1.2.0")))
	// A prerelease precedes its release.
	require.Negative(t, ver("1.2.0-beta.1").Compare(ver("1.2.0")))
}

func TestSemverVersionCoercesPartial(t *testing.T) {
	require.Equal(t, "1.2.0", ver("1.2").String())
	require.Zero(t, ver("1.2").Compare(ver("1.2.0")))
}

func TestSemverVersionPrerelease(t *testing.T) {
	require.True(t, ver("1.2.0-rc.1").IsPrerelease())
	require.False(t, ver("1.2.0").IsPrerelease())
}

func TestSemverVersionNextPatch(t *testing.T) {
	require.Equal(t, "1.2.4", ver("1.2.3").NextPatch().String())
	// The next patch of a prerelease is the release it announces.
	require.Equal(t, "1.2.3", ver("1.2.3-beta.2").NextPatch().String())
}

func TestSemverVersionInvalid(t *testing.T) {
	_, err := NewSemverVersion("not-a-version")
	require.Error(t, err)
}
