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

import "fmt"

// Assignment is a single entry in the partial solution's log: either a
// decision (a version selected for a package) or a derivation (a term forced
// by unit propagation). An assignment is the term it carries, plus the
// bookkeeping conflict resolution needs: its decision level, its insertion
// rank, and the incompatibility that forced it (nil for decisions).
type Assignment struct {
	*Term

	DecisionLevel int
	Index         int

	// Cause is the incompatibility whose unit propagation produced this
	// derivation. Decisions have no cause.
	Cause *Incompatibility

	// Package is the package selected by a decision, nil for derivations.
	Package *Package
}

// newDecision creates a decision assignment selecting a package version.
func newDecision(pkg *Package, decisionLevel, index int) *Assignment {
	return &Assignment{
		Term:          NewTerm(pkg.ToDependency(), true),
		DecisionLevel: decisionLevel,
		Index:         index,
		Package:       pkg,
	}
}

// newDerivation creates a derivation assignment forced by an incompatibility.
func newDerivation(dependency *Dependency, positive bool, cause *Incompatibility, decisionLevel, index int) *Assignment {
	return &Assignment{
		Term:          NewTerm(dependency, positive),
		DecisionLevel: decisionLevel,
		Index:         index,
		Cause:         cause,
	}
}

// IsDecision reports whether the assignment selects a concrete version
// rather than deriving a constraint.
func (a *Assignment) IsDecision() bool { return a.Package != nil }

// String returns a human-readable representation of the assignment.
func (a *Assignment) String() string {
	kind := "derivation"
	if a.IsDecision() {
		kind = "decision"
	}
	return fmt.Sprintf("%s: %s (level %d)", kind, a.Term, a.DecisionLevel)
}
