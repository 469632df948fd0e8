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
)

// Provider supplies the solver with the package universe. Implementations
// can serve from in-memory registries, repositories on disk, or network
// indexes; the solver only ever calls these four methods synchronously.
type Provider interface {
	// SearchFor returns the candidate packages for a dependency, sorted
	// newest first and pre-filtered by the dependency's source and
	// constraint. A package missing from the universe entirely is reported
	// with an error satisfying errors.As against *PackageNotFoundError.
	SearchFor(dependency *Dependency) ([]*DependencyPackage, error)

	// CompletePackage materializes the package's declared dependencies,
	// resolving extras and evaluating markers.
	CompletePackage(pkg *DependencyPackage) (*DependencyPackage, error)

	// IncompatibilitiesFor returns the incompatibilities implied by the
	// package's declared dependencies: for each declared dependency D of P,
	// the clause {P positive, D negative}.
	IncompatibilitiesFor(pkg *DependencyPackage) ([]*Incompatibility, error)

	// Debug receives the solver's trace lines together with the number of
	// solutions attempted so far.
	Debug(message string, attemptedSolutions int)
}

// MemoryProvider is an in-memory Provider for tests and embedders. It stores
// package versions with their declared dependencies and records the solver's
// debug trace.
//
// Example:
//
//	root := NewRootPackage("myapp", MustSemverVersion("1.0.0")).
//	    AddDependency(NewDependency("foo", MustParseConstraint("^1.0")))
//	provider := NewMemoryProvider(root)
//	provider.AddPackage(NewPackage("foo", MustSemverVersion("1.2.0")))
type MemoryProvider struct {
	root     *Package
	packages map[string][]*Package

	// Trace collects the lines passed to Debug.
	Trace []string
}

// NewMemoryProvider creates a provider serving the given root project.
func NewMemoryProvider(root *Package) *MemoryProvider {
	return &MemoryProvider{
		root:     root,
		packages: make(map[string][]*Package),
	}
}

// AddPackage registers a package version in the universe.
func (p *MemoryProvider) AddPackage(pkg *Package) *MemoryProvider {
	p.packages[pkg.Name] = append(p.packages[pkg.Name], pkg)
	return p
}

// SearchFor returns the registered candidates allowed by the dependency,
// newest first. The synthetic root dependency resolves to the root package.
func (p *MemoryProvider) SearchFor(dependency *Dependency) ([]*DependencyPackage, error) {
	if dependency.Root {
		return NewPackageCollection(dependency, []*Package{p.root}), nil
	}

	candidates, ok := p.packages[dependency.Name]
	if !ok {
		return nil, &PackageNotFoundError{Name: dependency.Name}
	}

	matched := make([]*Package, 0, len(candidates))
	for _, pkg := range candidates {
		if dependency.SourceType != pkg.SourceType ||
			dependency.SourceURL != pkg.SourceURL ||
			dependency.SourceReference != pkg.SourceReference {
			continue
		}
		if dependency.Constraint != nil && !dependency.Constraint.Allows(pkg.Version) {
			continue
		}
		matched = append(matched, pkg)
	}

	slices.SortFunc(matched, func(a, b *Package) int {
		return b.Version.Compare(a.Version)
	})

	return NewPackageCollection(dependency, matched), nil
}

// CompletePackage returns the package with the extras of the requesting
// dependency applied, so that the selected package carries the complete name
// the solver tracked the requirement under.
func (p *MemoryProvider) CompletePackage(pkg *DependencyPackage) (*DependencyPackage, error) {
	if len(pkg.Dependency.Extras) == 0 || pkg.Package.Root {
		return pkg, nil
	}
	completed := *pkg.Package
	completed.Extras = pkg.Dependency.Extras
	return NewDependencyPackage(pkg.Dependency, &completed), nil
}

// IncompatibilitiesFor derives the dependency clauses of the package.
func (p *MemoryProvider) IncompatibilitiesFor(pkg *DependencyPackage) ([]*Incompatibility, error) {
	self := pkg.Package.ToDependency()

	incompatibilities := make([]*Incompatibility, 0, len(pkg.Package.Requires))
	for _, dep := range pkg.Package.Requires {
		incompatibilities = append(incompatibilities, NewIncompatibility(
			[]*Term{NewTerm(self, true), NewTerm(dep, false)},
			DependencyCause{},
		))
	}
	return incompatibilities, nil
}

// Debug records a trace line.
func (p *MemoryProvider) Debug(message string, attemptedSolutions int) {
	p.Trace = append(p.Trace, fmt.Sprintf("%d: %s", attemptedSolutions, message))
}

var _ Provider = (*MemoryProvider)(nil)
