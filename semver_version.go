// Copyright 2024 The University of Queensland
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
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SemverVersion is the built-in Version implementation, backed by semantic
// versioning. Partial versions such as "1.2" are accepted and coerced.
type SemverVersion struct {
	v *semver.Version
}

// NewSemverVersion parses a semantic version string.
func NewSemverVersion(text string) (*SemverVersion, error) {
	v, err := semver.NewVersion(text)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", text, err)
	}
	return &SemverVersion{v: v}, nil
}

// MustSemverVersion parses a semantic version string and panics on error.
// Intended for fixtures and tests.
func MustSemverVersion(text string) *SemverVersion {
	v, err := NewSemverVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Semver exposes the underlying semantic version.
func (s *SemverVersion) Semver() *semver.Version { return s.v }

// String returns the normalized version string.
func (s *SemverVersion) String() string { return s.v.String() }

// Compare compares this version to another. Versions of a foreign type are
// ordered by their string form.
func (s *SemverVersion) Compare(other Version) int {
	if o, ok := other.(*SemverVersion); ok {
		return s.v.Compare(o.v)
	}
	return strings.Compare(s.String(), other.String())
}

// IsPrerelease reports whether the version carries a prerelease tag.
func (s *SemverVersion) IsPrerelease() bool { return s.v.Prerelease() != "" }

// NextPatch returns the release of this patch for a prerelease, the next
// patch otherwise.
func (s *SemverVersion) NextPatch() Version {
	next := s.v.IncPatch()
	return &SemverVersion{v: &next}
}

var _ Version = (*SemverVersion)(nil)
