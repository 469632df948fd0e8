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

// IncompatibilityCause records why an incompatibility holds. The concrete
// cause drives failure reporting: ConflictCause links a learned clause back
// to the two incompatibilities it was resolved from, forming the derivation
// tree a reporter walks to explain a SolveFailure.
type IncompatibilityCause interface {
	incompatibilityCause()
}

// RootCause marks the seed incompatibility declaring that the root package
// must be selected.
type RootCause struct{}

func (RootCause) incompatibilityCause() {}

// DependencyCause marks an incompatibility derived from a package's declared
// dependency: {P positive, D negative}.
type DependencyCause struct{}

func (DependencyCause) incompatibilityCause() {}

// NoVersionsCause marks an incompatibility recording that no candidate
// version satisfies a constraint.
type NoVersionsCause struct{}

func (NoVersionsCause) incompatibilityCause() {}

// PackageNotFoundCause marks an incompatibility recording that the provider
// could not locate a package at all.
type PackageNotFoundCause struct {
	Err error
}

func (PackageNotFoundCause) incompatibilityCause() {}

// PlatformCause marks an environment incompatibility reported by the
// provider, such as an unsupported interpreter or platform. Label names the
// requirement that cannot be met.
type PlatformCause struct {
	Label string
}

func (PlatformCause) incompatibilityCause() {}

// ConflictCause marks an incompatibility learned during conflict resolution
// from two parent incompatibilities.
type ConflictCause struct {
	// Conflict is the incompatibility that was satisfied by the solution.
	Conflict *Incompatibility
	// Other is the cause of the satisfier the conflict was resolved against.
	Other *Incompatibility
}

func (*ConflictCause) incompatibilityCause() {}
