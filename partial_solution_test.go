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

import "testing"

func derivationCause(name string) *Incompatibility {
	return NewIncompatibility([]*Term{NewTerm(dep(name, "*"), false)}, RootCause{})
}

func TestPartialSolutionDecisionLevels(t *testing.T) {
	s := NewPartialSolution()
	if s.DecisionLevel() != 0 {
		t.Fatalf("expected level 0 before any decision, got %d", s.DecisionLevel())
	}

	s.Decide(pkgWith("root", "1.0.0"))
	if s.DecisionLevel() != 1 {
		t.Fatalf("expected level 1 after root decision, got %d", s.DecisionLevel())
	}

	s.Derive(dep("foo", "^1.0"), true, derivationCause("foo"))
	if got := s.assignments[len(s.assignments)-1].DecisionLevel; got != 1 {
		t.Fatalf("derivation should share the current decision level, got %d", got)
	}

	s.Decide(pkgWith("foo", "1.2.0"))
	if s.DecisionLevel() != 2 {
		t.Fatalf("expected level 2, got %d", s.DecisionLevel())
	}
}

func TestPartialSolutionRelation(t *testing.T) {
	s := NewPartialSolution()
	s.Derive(dep("foo", ">=1.0.0"), true, derivationCause("foo"))
	s.Derive(dep("foo", "<2.0.0"), true, derivationCause("foo"))

	if got := s.Relation(positive("foo", "^1.0")); got != SetRelationSubset {
		t.Fatalf("expected subset, got %s", got)
	}
	if got := s.Relation(positive("foo", "^2.0")); got != SetRelationDisjoint {
		t.Fatalf("expected disjoint, got %s", got)
	}
	if got := s.Relation(positive("foo", ">=1.5.0")); got != SetRelationOverlapping {
		t.Fatalf("expected overlapping, got %s", got)
	}
	if got := s.Relation(positive("bar", "*")); got != SetRelationOverlapping {
		t.Fatalf("expected overlapping for unknown package, got %s", got)
	}
	if !s.Satisfies(positive("foo", "^1.0")) {
		t.Fatalf("solution should satisfy foo ^1.0")
	}
}

func TestPartialSolutionNegativeSummary(t *testing.T) {
	s := NewPartialSolution()
	s.Derive(dep("foo", "^2.0"), false, derivationCause("foo"))

	if !s.Satisfies(negative("foo", "2.1.0")) {
		t.Fatalf("excluding ^2.0 should imply excluding 2.1.0")
	}
	if got := s.Relation(positive("foo", "^2.0")); got != SetRelationDisjoint {
		t.Fatalf("expected disjoint, got %s", got)
	}

	if got := len(s.Unsatisfied()); got != 0 {
		t.Fatalf("negative-only packages are not unsatisfied, got %d", got)
	}
}

// The satisfier of a term is the earliest assignment whose prefix satisfies
// it, even when no single assignment does.
func TestPartialSolutionPartialSatisfier(t *testing.T) {
	s := NewPartialSolution()
	s.Derive(dep("foo", ">=1.0.0"), true, derivationCause("foo"))
	s.Derive(dep("foo", "<2.0.0"), true, derivationCause("foo"))

	term := positive("foo", "^1.0")
	satisfier := s.Satisfier(term)
	if satisfier == nil {
		t.Fatalf("expected a satisfier")
	}
	if satisfier.Index != 1 {
		t.Fatalf("expected the second assignment to complete satisfaction, got index %d", satisfier.Index)
	}

	// The satisfier alone covers the term only partially; the residue is
	// what conflict resolution folds back into the learned clause.
	difference := satisfier.Difference(term)
	if difference == nil {
		t.Fatalf("expected a partial-satisfaction residue")
	}
	if !difference.Constraint().Allows(ver("0.5.0")) || difference.Constraint().Allows(ver("1.5.0")) {
		t.Fatalf("unexpected residue constraint %s", difference.Constraint())
	}

	if s.Satisfier(positive("foo", "^3.0")) != nil {
		t.Fatalf("unsatisfied term must have no satisfier")
	}
}

func TestPartialSolutionBacktrack(t *testing.T) {
	s := NewPartialSolution()
	s.Decide(pkgWith("root", "1.0.0"))
	s.Derive(dep("foo", "^1.0"), true, derivationCause("foo"))
	s.Decide(pkgWith("foo", "1.2.0"))
	s.Derive(dep("bar", "^2.0"), true, derivationCause("bar"))
	s.Decide(pkgWith("bar", "2.0.0"))

	s.Backtrack(1)

	if s.DecisionLevel() != 1 {
		t.Fatalf("expected level 1 after backtrack, got %d", s.DecisionLevel())
	}
	// The level-1 derivation survives; the summary is rebuilt from it.
	if got := s.Relation(positive("foo", "^1.0")); got != SetRelationSubset {
		t.Fatalf("expected foo summary to be rebuilt, got %s", got)
	}
	if got := s.Relation(positive("bar", "*")); got != SetRelationOverlapping {
		t.Fatalf("expected bar assignments to be gone, got %s", got)
	}

	unsatisfied := s.Unsatisfied()
	if len(unsatisfied) != 1 || unsatisfied[0].CompleteName() != "foo" {
		t.Fatalf("expected foo to be unsatisfied again, got %v", unsatisfied)
	}
}

func TestPartialSolutionAttemptedSolutions(t *testing.T) {
	s := NewPartialSolution()
	if s.AttemptedSolutions() != 1 {
		t.Fatalf("expected 1 attempted solution initially, got %d", s.AttemptedSolutions())
	}

	s.Decide(pkgWith("root", "1.0.0"))
	s.Decide(pkgWith("foo", "1.2.0"))
	if s.AttemptedSolutions() != 1 {
		t.Fatalf("deciding without backtracking must not count, got %d", s.AttemptedSolutions())
	}

	s.Backtrack(1)
	if s.AttemptedSolutions() != 1 {
		t.Fatalf("backtracking alone must not count, got %d", s.AttemptedSolutions())
	}

	s.Decide(pkgWith("foo", "1.1.0"))
	if s.AttemptedSolutions() != 2 {
		t.Fatalf("the first decision after a backtrack starts attempt 2, got %d", s.AttemptedSolutions())
	}
}

func TestPartialSolutionUnsatisfiedOrderAndNarrowing(t *testing.T) {
	s := NewPartialSolution()
	s.Decide(pkgWith("root", "1.0.0"))
	s.Derive(dep("b", "*"), true, derivationCause("b"))
	s.Derive(dep("a", "^1.0"), true, derivationCause("a"))
	s.Derive(dep("a", "<1.5.0"), true, derivationCause("a"))

	unsatisfied := s.Unsatisfied()
	if len(unsatisfied) != 2 {
		t.Fatalf("expected 2 unsatisfied dependencies, got %d", len(unsatisfied))
	}
	if unsatisfied[0].CompleteName() != "b" || unsatisfied[1].CompleteName() != "a" {
		t.Fatalf("expected first-seen order [b a], got [%s %s]",
			unsatisfied[0].CompleteName(), unsatisfied[1].CompleteName())
	}

	// The dependency carries the narrowed summary constraint.
	narrowed := unsatisfied[1].Constraint
	if !narrowed.Allows(ver("1.2.0")) || narrowed.Allows(ver("1.5.0")) {
		t.Fatalf("expected narrowed constraint, got %s", narrowed)
	}

	s.Decide(pkgWith("a", "1.2.0"))
	unsatisfied = s.Unsatisfied()
	if len(unsatisfied) != 1 || unsatisfied[0].CompleteName() != "b" {
		t.Fatalf("expected only b unsatisfied after deciding a, got %v", unsatisfied)
	}
}

func TestPartialSolutionDecisions(t *testing.T) {
	s := NewPartialSolution()
	root := pkgWith("root", "1.0.0")
	foo := pkgWith("foo", "1.2.0")
	s.Decide(root)
	s.Derive(dep("foo", "^1.0"), true, derivationCause("foo"))
	s.Decide(foo)

	decisions := s.Decisions()
	if len(decisions) != 2 || decisions[0] != root || decisions[1] != foo {
		t.Fatalf("unexpected decisions %v", decisions)
	}
}
