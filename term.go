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

// Term represents a dependency constraint, either positive or negative.
// A positive term (e.g., "foo >=1.0.0") asserts that a selected version of
// the package must satisfy the constraint. A negative term excludes the
// versions that match it.
//
// Terms are the building blocks of incompatibilities and assignments; all of
// their set algebra delegates to the Constraint abstraction.
type Term struct {
	Dependency *Dependency
	Positive   bool
}

// NewTerm creates a term about a dependency with the given polarity.
func NewTerm(dependency *Dependency, positive bool) *Term {
	return &Term{Dependency: dependency, Positive: positive}
}

// IsPositive reports whether the term asserts a positive constraint.
func (t *Term) IsPositive() bool { return t.Positive }

// Constraint returns the version set the term is about.
func (t *Term) Constraint() Constraint { return t.Dependency.Constraint }

// Inverse returns the logical negation of the term.
func (t *Term) Inverse() *Term {
	return &Term{Dependency: t.Dependency, Positive: !t.Positive}
}

// Satisfies reports whether every selection allowed by this term is also
// allowed by other.
func (t *Term) Satisfies(other *Term) bool {
	return t.Dependency.CompleteName() == other.Dependency.CompleteName() &&
		t.Relation(other) == SetRelationSubset
}

// Relation returns the relationship between the selections allowed by this
// term and by other. Terms about different packages always overlap.
func (t *Term) Relation(other *Term) SetRelation {
	if t.Dependency.CompleteName() != other.Dependency.CompleteName() {
		return SetRelationOverlapping
	}

	otherConstraint := other.Constraint()
	if other.Positive {
		if t.Positive {
			// foo from one source is disjoint with foo from another
			if !t.compatibleDependency(other.Dependency) {
				return SetRelationDisjoint
			}
			if otherConstraint.AllowsAll(t.Constraint()) {
				return SetRelationSubset
			}
			if !t.Constraint().AllowsAny(otherConstraint) {
				return SetRelationDisjoint
			}
			return SetRelationOverlapping
		}

		if !t.compatibleDependency(other.Dependency) {
			return SetRelationOverlapping
		}
		if t.Constraint().AllowsAll(otherConstraint) {
			return SetRelationDisjoint
		}
		return SetRelationOverlapping
	}

	if t.Positive {
		if !t.compatibleDependency(other.Dependency) {
			return SetRelationSubset
		}
		if !otherConstraint.AllowsAny(t.Constraint()) {
			return SetRelationSubset
		}
		if otherConstraint.AllowsAll(t.Constraint()) {
			return SetRelationDisjoint
		}
		return SetRelationOverlapping
	}

	if !t.compatibleDependency(other.Dependency) {
		return SetRelationOverlapping
	}
	if t.Constraint().AllowsAll(otherConstraint) {
		return SetRelationSubset
	}
	return SetRelationOverlapping
}

// Intersect returns a term allowing exactly the selections allowed by both
// terms, or nil if no selection satisfies both. Terms about different
// packages have no intersection.
func (t *Term) Intersect(other *Term) *Term {
	if t.Dependency.CompleteName() != other.Dependency.CompleteName() {
		return nil
	}

	if t.compatibleDependency(other.Dependency) {
		if t.Positive != other.Positive {
			// foo ^1.0.0 ∩ not foo ^1.5.0 → foo >=1.0.0,<1.5.0
			positive, negative := t, other
			if !t.Positive {
				positive, negative = other, t
			}
			return t.nonEmptyTerm(
				positive.Constraint().Difference(negative.Constraint()), true, other)
		}
		if t.Positive {
			return t.nonEmptyTerm(
				t.Constraint().Intersect(other.Constraint()), true, other)
		}
		return t.nonEmptyTerm(
			t.Constraint().Union(other.Constraint()), false, other)
	}

	if t.Positive != other.Positive {
		if t.Positive {
			return t
		}
		return other
	}
	return nil
}

// Difference returns the selections allowed by this term but not by other,
// or nil if there are none.
func (t *Term) Difference(other *Term) *Term {
	return t.Intersect(other.Inverse())
}

func (t *Term) compatibleDependency(other *Dependency) bool {
	return t.Dependency.Root || other.Root || t.Dependency.IsSamePackageAs(other)
}

func (t *Term) nonEmptyTerm(constraint Constraint, positive bool, other *Term) *Term {
	if constraint.IsEmpty() {
		return nil
	}
	// Prefer the non-root dependency as the carrier of the new constraint.
	dependency := t.Dependency
	if dependency.Root {
		dependency = other.Dependency
	}
	return NewTerm(dependency.WithConstraint(constraint), positive)
}

// Equal reports value equality of polarity and dependency.
func (t *Term) Equal(other *Term) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.Positive == other.Positive && t.Dependency.Equal(other.Dependency)
}

// String returns a human-readable representation of the term.
func (t *Term) String() string {
	if t.Positive {
		return t.Dependency.String()
	}
	return fmt.Sprintf("not %s", t.Dependency)
}
