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
	"slices"
	"strings"
)

// Source types a dependency may point at. A dependency with an empty source
// type refers to the default package repository; the single-version kinds
// (VCS, URL, file, directory) pin exactly one candidate.
const (
	SourceTypeGit       = "git"
	SourceTypeURL       = "url"
	SourceTypeFile      = "file"
	SourceTypeDirectory = "directory"
)

// Dependency identifies a package requirement: a package name with optional
// extras, a source, a version constraint and an environment marker.
// Dependencies are compared by value over these fields.
type Dependency struct {
	Name   string
	Extras []string

	Constraint Constraint
	Marker     Marker

	SourceType      string
	SourceURL       string
	SourceReference string

	// Root marks the synthetic dependency on the project itself.
	Root bool
}

// NewDependency creates a dependency on a package with a version constraint.
func NewDependency(name string, constraint Constraint) *Dependency {
	return &Dependency{Name: name, Constraint: constraint}
}

// CompleteName returns the package name qualified with its extras,
// e.g. "coverage[toml]". Two dependencies on the same package with different
// extras are tracked as distinct packages by the solver.
func (d *Dependency) CompleteName() string {
	if len(d.Extras) == 0 {
		return d.Name
	}
	return fmt.Sprintf("%s[%s]", d.Name, strings.Join(d.Extras, ","))
}

// WithConstraint returns a copy of the dependency with a different
// constraint.
func (d *Dependency) WithConstraint(constraint Constraint) *Dependency {
	clone := *d
	clone.Constraint = constraint
	return &clone
}

// IsSamePackageAs reports whether both dependencies identify the same
// package: same complete name and same source.
func (d *Dependency) IsSamePackageAs(other *Dependency) bool {
	return d.CompleteName() == other.CompleteName() && d.sameSourceAs(other)
}

func (d *Dependency) sameSourceAs(other *Dependency) bool {
	return d.SourceType == other.SourceType &&
		d.SourceURL == other.SourceURL &&
		d.SourceReference == other.SourceReference
}

// Equal reports value equality over identity, constraint and marker.
func (d *Dependency) Equal(other *Dependency) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	return d.Name == other.Name &&
		slices.Equal(d.Extras, other.Extras) &&
		d.sameSourceAs(other) &&
		d.Root == other.Root &&
		markerString(d.Marker) == markerString(other.Marker) &&
		constraintsEqual(d.Constraint, other.Constraint)
}

// IsVCS reports whether the dependency points at a version control source.
func (d *Dependency) IsVCS() bool { return d.SourceType == SourceTypeGit }

// IsURL reports whether the dependency points at a remote artifact URL.
func (d *Dependency) IsURL() bool { return d.SourceType == SourceTypeURL }

// IsFile reports whether the dependency points at a local archive.
func (d *Dependency) IsFile() bool { return d.SourceType == SourceTypeFile }

// IsDirectory reports whether the dependency points at a local directory.
func (d *Dependency) IsDirectory() bool { return d.SourceType == SourceTypeDirectory }

// String returns a human-readable representation, e.g. "foo[bar] (>=1.0.0,<2.0.0)".
func (d *Dependency) String() string {
	if d.Constraint == nil || d.Constraint.IsAny() {
		return fmt.Sprintf("%s (*)", d.CompleteName())
	}
	return fmt.Sprintf("%s (%s)", d.CompleteName(), d.Constraint)
}

// cacheKey renders the full dependency value, used to memoize provider
// queries. Two dependencies with equal keys are interchangeable queries.
func (d *Dependency) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		d.CompleteName(), d.SourceType, d.SourceURL, d.SourceReference,
		constraintString(d.Constraint), markerString(d.Marker))
}

func constraintString(c Constraint) string {
	if c == nil {
		return "*"
	}
	return c.String()
}
