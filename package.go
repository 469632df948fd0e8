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
)

// Package is a concrete package at a chosen version, together with its
// declared dependencies. The dependency list of a package fetched from a
// provider is only authoritative after CompletePackage has materialized it.
type Package struct {
	Name    string
	Version Version

	// Extras are the optional feature groups enabled on this package.
	// They qualify the package identity the same way Dependency.Extras do.
	Extras []string

	SourceType      string
	SourceURL       string
	SourceReference string

	// Root marks the synthetic project package.
	Root bool

	// Requires are the package's declared dependencies.
	Requires []*Dependency
}

// NewPackage creates a package with a name and version.
func NewPackage(name string, version Version) *Package {
	return &Package{Name: name, Version: version}
}

// NewRootPackage creates the synthetic root package for a project.
// Its declared dependencies are the project's direct requirements.
func NewRootPackage(name string, version Version) *Package {
	return &Package{Name: name, Version: version, Root: true}
}

// AddDependency appends a declared dependency and returns the package for
// chaining.
func (p *Package) AddDependency(dep *Dependency) *Package {
	p.Requires = append(p.Requires, dep)
	return p
}

// CompleteName returns the package name qualified with its extras.
func (p *Package) CompleteName() string {
	if len(p.Extras) == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s[%s]", p.Name, strings.Join(p.Extras, ","))
}

// ToDependency returns the dependency that this exact package satisfies.
func (p *Package) ToDependency() *Dependency {
	return &Dependency{
		Name:            p.Name,
		Extras:          p.Extras,
		Constraint:      NewExactConstraint(p.Version),
		SourceType:      p.SourceType,
		SourceURL:       p.SourceURL,
		SourceReference: p.SourceReference,
		Root:            p.Root,
	}
}

// String returns a human-readable representation of the package.
func (p *Package) String() string {
	return fmt.Sprintf("%s (%s)", p.CompleteName(), p.Version)
}

// DependencyPackage pairs the dependency that requested a package with the
// package found for it. The solver passes these pairs between the provider,
// the candidate cache and the partial solution.
type DependencyPackage struct {
	Dependency *Dependency
	Package    *Package
}

// NewDependencyPackage pairs a requesting dependency with a found package.
func NewDependencyPackage(dependency *Dependency, pkg *Package) *DependencyPackage {
	return &DependencyPackage{Dependency: dependency, Package: pkg}
}

// CompleteName returns the complete name of the requesting dependency.
func (dp *DependencyPackage) CompleteName() string {
	return dp.Dependency.CompleteName()
}

// Version returns the found package's version.
func (dp *DependencyPackage) Version() Version {
	return dp.Package.Version
}

// String returns a human-readable representation of the pairing.
func (dp *DependencyPackage) String() string {
	return fmt.Sprintf("%s (%s)", dp.CompleteName(), dp.Package.Version)
}

// NewPackageCollection pairs each found package with the dependency that
// requested it, producing the shape Provider.SearchFor returns. Packages
// already paired keep only their package half; the requesting dependency
// always wins.
func NewPackageCollection(dependency *Dependency, packages []*Package) []*DependencyPackage {
	collection := make([]*DependencyPackage, 0, len(packages))
	for _, pkg := range packages {
		collection = append(collection, NewDependencyPackage(dependency, pkg))
	}
	return collection
}
