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

// Package mixology implements the core version-solving engine of a package
// manager: given a root project with declared dependency constraints and a
// universe of candidate packages served by a Provider, it either produces a
// set of concrete package versions that jointly satisfy all constraints, or
// fails with a minimal explanation of why no such set exists.
//
// The engine is a conflict-driven clause-learning solver built on the
// PubGrub algorithm: unit propagation over incompatibilities, conflict
// resolution that synthesizes new incompatibilities as root causes, and
// non-chronological backjumping. Package manifests, repositories, lockfiles
// and ecosystem-specific constraint syntax live behind the Provider and
// Constraint abstractions; the engine never parses a version string itself.
//
// A minimal solve:
//
//	root := mixology.NewRootPackage("myapp", mixology.MustSemverVersion("1.0.0")).
//	    AddDependency(mixology.NewDependency("foo", mixology.MustParseConstraint("^1.0")))
//
//	provider := mixology.NewMemoryProvider(root)
//	provider.AddPackage(mixology.NewPackage("foo", mixology.MustSemverVersion("1.2.0")))
//
//	result, err := mixology.Solve(root, provider)
//	if err != nil {
//	    var failure *mixology.SolveFailure
//	    if errors.As(err, &failure) {
//	        fmt.Println(failure) // human-readable derivation of the conflict
//	    }
//	    return err
//	}
//	for _, pkg := range result.Packages {
//	    fmt.Printf("%s %s\n", pkg.CompleteName(), pkg.Version)
//	}
package mixology

// Solve resolves the root package's dependencies against the provider with a
// freshly constructed solver.
func Solve(root *Package, provider Provider, opts ...SolverOption) (*SolverResult, error) {
	return NewVersionSolver(root, provider, opts...).Solve()
}
