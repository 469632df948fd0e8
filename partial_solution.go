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

// PartialSolution maintains the evolving solution during dependency
// resolution: a chronological log of assignments plus, per package, a cached
// summary of everything the log says about it. The summary keeps the
// intersection of all positive terms (or, failing any positive term, the
// accumulated negative term), which makes Relation queries amortized
// constant time.
//
// The partial solution grows as the solver decides package versions and
// derives constraints via unit propagation, and shrinks when conflict
// resolution backtracks.
type PartialSolution struct {
	assignments []*Assignment

	// decisions maps complete package names to the selected packages.
	decisions map[string]*Package

	// positive and negative hold the per-package constraint summaries;
	// positiveOrder remembers when each positive summary first appeared.
	positive      map[string]*Term
	negative      map[string]*Term
	positiveOrder []string

	backtracking       bool
	attemptedSolutions int
}

// NewPartialSolution creates an empty partial solution.
func NewPartialSolution() *PartialSolution {
	return &PartialSolution{
		decisions:          make(map[string]*Package),
		positive:           make(map[string]*Term),
		negative:           make(map[string]*Term),
		attemptedSolutions: 1,
	}
}

// AttemptedSolutions returns the number of distinct decision paths explored.
func (s *PartialSolution) AttemptedSolutions() int { return s.attemptedSolutions }

// DecisionLevel returns the current decision level: the number of decisions
// made so far. Level 0 precedes any decision; the root decision establishes
// level 1.
func (s *PartialSolution) DecisionLevel() int { return len(s.decisions) }

// Decisions returns the selected packages in decision order.
func (s *PartialSolution) Decisions() []*Package {
	decisions := make([]*Package, 0, len(s.decisions))
	for _, assignment := range s.assignments {
		if assignment.IsDecision() {
			decisions = append(decisions, assignment.Package)
		}
	}
	return decisions
}

// Decide appends a decision selecting the package's version, opening a new
// decision level.
func (s *PartialSolution) Decide(pkg *Package) {
	// A decision after a backjump starts a new candidate solution.
	if s.backtracking {
		s.attemptedSolutions++
	}
	s.backtracking = false
	s.decisions[pkg.CompleteName()] = pkg
	s.assign(newDecision(pkg, s.DecisionLevel(), len(s.assignments)))
}

// Derive appends a derivation forced by the given incompatibility at the
// current decision level.
func (s *PartialSolution) Derive(dependency *Dependency, positive bool, cause *Incompatibility) {
	s.assign(newDerivation(dependency, positive, cause, s.DecisionLevel(), len(s.assignments)))
}

func (s *PartialSolution) assign(assignment *Assignment) {
	s.assignments = append(s.assignments, assignment)
	s.register(assignment)
}

// register folds an assignment into the per-package summary.
func (s *PartialSolution) register(assignment *Assignment) {
	name := assignment.Dependency.CompleteName()

	term := assignment.Term
	if existing, ok := s.positive[name]; ok {
		term = existing.Intersect(assignment.Term)
	} else if existing, ok := s.negative[name]; ok {
		term = existing.Intersect(assignment.Term)
	}
	if term == nil {
		// The log never empties a package's summary; propagation would have
		// reported a conflict before deriving such a term.
		return
	}

	if term.Positive {
		delete(s.negative, name)
		if _, ok := s.positive[name]; !ok {
			s.positiveOrder = append(s.positiveOrder, name)
		}
		s.positive[name] = term
	} else {
		s.negative[name] = term
	}
}

// Backtrack discards every assignment above the given decision level and
// rebuilds the summaries of the packages that lost assignments.
func (s *PartialSolution) Backtrack(decisionLevel int) {
	s.backtracking = true

	touched := make(map[string]bool)
	for len(s.assignments) > 0 {
		last := s.assignments[len(s.assignments)-1]
		if last.DecisionLevel <= decisionLevel {
			break
		}
		s.assignments = s.assignments[:len(s.assignments)-1]
		name := last.Dependency.CompleteName()
		touched[name] = true
		if last.IsDecision() {
			delete(s.decisions, name)
		}
	}

	for name := range touched {
		delete(s.positive, name)
		delete(s.negative, name)
	}
	kept := s.positiveOrder[:0]
	for _, name := range s.positiveOrder {
		if !touched[name] {
			kept = append(kept, name)
		}
	}
	s.positiveOrder = kept
	for _, assignment := range s.assignments {
		if touched[assignment.Dependency.CompleteName()] {
			s.register(assignment)
		}
	}
}

// Relation compares a term against the cached summary of its package:
// SetRelationSubset if the solution already implies the term,
// SetRelationDisjoint if it already excludes every selection the term
// allows, SetRelationOverlapping otherwise.
func (s *PartialSolution) Relation(term *Term) SetRelation {
	name := term.Dependency.CompleteName()
	if positive, ok := s.positive[name]; ok {
		return positive.Relation(term)
	}
	if negative, ok := s.negative[name]; ok {
		return negative.Relation(term)
	}
	return SetRelationOverlapping
}

// Satisfies reports whether the solution implies the term.
func (s *PartialSolution) Satisfies(term *Term) bool {
	return s.Relation(term) == SetRelationSubset
}

// Satisfier returns the earliest assignment such that the log prefix up to
// and including it satisfies the term, or nil if the term is not satisfied.
func (s *PartialSolution) Satisfier(term *Term) *Assignment {
	var accumulated *Term

	for _, assignment := range s.assignments {
		if assignment.Dependency.CompleteName() != term.Dependency.CompleteName() {
			continue
		}

		if !assignment.Dependency.Root && !assignment.Dependency.IsSamePackageAs(term.Dependency) {
			// A positive assignment about another source of the same package
			// satisfies a negative term outright; anything else about a
			// foreign source is irrelevant here.
			if !assignment.Positive {
				continue
			}
			return assignment
		}

		if accumulated == nil {
			accumulated = assignment.Term
		} else {
			accumulated = accumulated.Intersect(assignment.Term)
		}
		if accumulated != nil && accumulated.Satisfies(term) {
			return assignment
		}
	}

	return nil
}

// Unsatisfied lists the dependencies that have a positive constraint in the
// solution but no decision yet, in first-seen order. The constraints carried
// are the narrowed per-package summaries.
func (s *PartialSolution) Unsatisfied() []*Dependency {
	unsatisfied := make([]*Dependency, 0)
	for _, name := range s.positiveOrder {
		if _, decided := s.decisions[name]; decided {
			continue
		}
		unsatisfied = append(unsatisfied, s.positive[name].Dependency)
	}
	return unsatisfied
}
