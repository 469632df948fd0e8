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
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// VersionSolver finds a set of package versions that satisfy the root
// package's dependencies, or fails with a SolveFailure explaining why no
// such set exists.
//
// The solver implements the PubGrub algorithm with conflict-driven clause
// learning: unit propagation over incompatibilities, conflict resolution
// that synthesizes new incompatibilities as root causes, and
// non-chronological backjumping. See
// https://github.com/dart-lang/pub/tree/master/doc/solver.md for details on
// how this solver works.
//
// A solver instance is good for a single Solve call.
//
// Basic usage:
//
//	root := NewRootPackage("myapp", MustSemverVersion("1.0.0")).
//	    AddDependency(NewDependency("foo", MustParseConstraint("^1.0")))
//	provider := NewMemoryProvider(root)
//	// ... populate provider with packages ...
//
//	solver := NewVersionSolver(root, provider)
//	result, err := solver.Solve()
type VersionSolver struct {
	root     *Package
	provider Provider
	cache    *DependencyCache

	locked    map[string][]*DependencyPackage
	useLatest map[string]bool
	logger    *slog.Logger

	incompatibilities map[string][]*Incompatibility
	contradicted      map[*Incompatibility]bool
	solution          *PartialSolution
}

// SolverOption is a functional option configuring a VersionSolver.
type SolverOption func(*VersionSolver)

// WithLocked supplies previously locked packages by name. A locked version
// compatible with a dependency is preferred over newer candidates.
func WithLocked(locked map[string][]*DependencyPackage) SolverOption {
	return func(s *VersionSolver) {
		s.locked = locked
	}
}

// WithUseLatest names packages that must ignore the locked preference and
// resolve to their newest candidate.
func WithUseLatest(names ...string) SolverOption {
	return func(s *VersionSolver) {
		for _, name := range names {
			s.useLatest[name] = true
		}
	}
}

// WithLogger sets a structured logger for solver diagnostics. When nil, no
// logging is performed. The human-readable trace additionally goes to the
// provider's Debug sink regardless of this option.
func WithLogger(logger *slog.Logger) SolverOption {
	return func(s *VersionSolver) {
		s.logger = logger
	}
}

// NewVersionSolver creates a solver for the given root project and provider.
func NewVersionSolver(root *Package, provider Provider, opts ...SolverOption) *VersionSolver {
	s := &VersionSolver{
		root:              root,
		provider:          provider,
		cache:             NewDependencyCache(provider),
		locked:            make(map[string][]*DependencyPackage),
		useLatest:         make(map[string]bool),
		incompatibilities: make(map[string][]*Incompatibility),
		contradicted:      make(map[*Incompatibility]bool),
		solution:          NewPartialSolution(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Solution exposes the partial solution, mainly for inspection in tests and
// diagnostics.
func (s *VersionSolver) Solution() *PartialSolution { return s.solution }

// Solve finds a set of dependencies that match the root package's
// constraints, or returns an error if no such set is available. The elapsed
// time and attempted solution count are reported to the debug sink on every
// exit path.
func (s *VersionSolver) Solve() (*SolverResult, error) {
	start := time.Now()
	defer func() {
		s.log(fmt.Sprintf("Version solving took %.3f seconds.\nTried %d solutions.",
			time.Since(start).Seconds(), s.solution.AttemptedSolutions()))
	}()

	rootDependency := s.root.ToDependency()
	rootDependency.Root = true

	s.addIncompatibility(NewIncompatibility(
		[]*Term{NewTerm(rootDependency, false)}, RootCause{}))

	if s.logger != nil {
		s.logger.Debug("starting version solving", "root", s.root.String())
	}

	next := rootDependency.CompleteName()
	for {
		if err := s.propagate(next); err != nil {
			return nil, err
		}

		name, more, err := s.choosePackageVersion()
		if err != nil {
			return nil, err
		}
		if !more {
			return s.result(), nil
		}
		next = name
	}
}

// propagationOutcome is what propagating a single incompatibility concluded.
type propagationOutcome int

const (
	// propagationNone means nothing could be deduced.
	propagationNone propagationOutcome = iota
	// propagationConflict means the incompatibility is fully satisfied by
	// the solution.
	propagationConflict
	// propagationDerived means the negation of the single unsatisfied term
	// was added to the solution.
	propagationDerived
)

type propagationResult struct {
	outcome      propagationOutcome
	completeName string
}

// propagate performs unit propagation on incompatibilities transitively
// related to the package, deriving new assignments for the solution.
func (s *VersionSolver) propagate(completeName string) error {
	changed := []string{completeName}
	inChanged := map[string]bool{completeName: true}

	for len(changed) > 0 {
		name := changed[0]
		changed = changed[1:]
		delete(inChanged, name)

		// Iterate in reverse because conflict resolution tends to produce
		// more general incompatibilities as time goes on; looking at those
		// first derives stronger assignments sooner.
		incompatibilities := s.incompatibilities[name]
	scan:
		for i := len(incompatibilities) - 1; i >= 0; i-- {
			incompatibility := incompatibilities[i]
			if s.contradicted[incompatibility] {
				continue
			}

			result := s.propagateIncompatibility(incompatibility)
			switch result.outcome {
			case propagationConflict:
				// Determine the root cause of the conflict and backjump to
				// a point where the learned clause derives new assignments.
				rootCause, err := s.resolveConflict(incompatibility)
				if err != nil {
					return err
				}

				// Backjumping erased the assignments of the discarded
				// decision levels, so restart the worklist from the
				// assignment the learned clause now derives.
				changed = changed[:0]
				clear(inChanged)
				if seeded := s.propagateIncompatibility(rootCause); seeded.outcome == propagationDerived {
					changed = append(changed, seeded.completeName)
					inChanged[seeded.completeName] = true
				}
				break scan
			case propagationDerived:
				if !inChanged[result.completeName] {
					changed = append(changed, result.completeName)
					inChanged[result.completeName] = true
				}
			}
		}
	}

	return nil
}

// propagateIncompatibility examines an incompatibility against the solution.
// If the solution satisfies all of its terms, that is a conflict. If exactly
// one term is unsatisfied, the incompatibility is almost satisfied: the
// negation of that term is derived and its package name returned. Otherwise
// nothing can be deduced.
func (s *VersionSolver) propagateIncompatibility(incompatibility *Incompatibility) propagationResult {
	var unsatisfied *Term

	for _, term := range incompatibility.Terms {
		switch s.solution.Relation(term) {
		case SetRelationDisjoint:
			// A contradicted term contradicts the whole incompatibility;
			// nothing new can be deduced from it until a backjump.
			s.contradicted[incompatibility] = true
			return propagationResult{outcome: propagationNone}
		case SetRelationOverlapping:
			if unsatisfied != nil {
				return propagationResult{outcome: propagationNone}
			}
			unsatisfied = term
		}
	}

	if unsatisfied == nil {
		return propagationResult{outcome: propagationConflict}
	}

	// The derivation below is what contradicts the incompatibility.
	s.contradicted[incompatibility] = true

	adverb := ""
	if unsatisfied.Positive {
		adverb = "not "
	}
	s.log(fmt.Sprintf("derived: %s%s", adverb, unsatisfied.Dependency))

	s.solution.Derive(unsatisfied.Dependency, !unsatisfied.Positive, incompatibility)

	return propagationResult{
		outcome:      propagationDerived,
		completeName: unsatisfied.Dependency.CompleteName(),
	}
}

// resolveConflict, given an incompatibility satisfied by the solution,
// constructs the incompatibility that encapsulates the root cause of the
// conflict and backtracks the solution until the new incompatibility lets
// propagation deduce new assignments. The learned clause is added to the
// index and returned; if conflict resolution bottoms out at the root, the
// returned error is the *SolveFailure.
func (s *VersionSolver) resolveConflict(incompatibility *Incompatibility) (*Incompatibility, error) {
	s.log(fmt.Sprintf("conflict: %s", incompatibility))
	if s.logger != nil {
		s.logger.Debug("resolving conflict", "incompatibility", incompatibility.String())
	}

	learned := false
	for !incompatibility.IsFailure() {
		// The term whose satisfier appears latest in the assignment log,
		// and that satisfier.
		var mostRecentTerm *Term
		var mostRecentSatisfier *Assignment

		// The versions allowed by the most recent satisfier and not by the
		// most recent term, when the satisfier only partially satisfies it.
		var difference *Term

		// The decision level of the latest assignment before the satisfier
		// that also contributes to satisfying the incompatibility. Floored
		// at 1, the level of the root decision: backjumping past the root
		// is pointless and anchoring there keeps error output readable.
		previousSatisfierLevel := 1

		for _, term := range incompatibility.Terms {
			satisfier := s.solution.Satisfier(term)
			if satisfier == nil {
				return nil, fmt.Errorf("mixology: internal error: %s is not satisfied by the solution", term)
			}

			switch {
			case mostRecentSatisfier == nil:
				mostRecentTerm = term
				mostRecentSatisfier = satisfier
			case mostRecentSatisfier.Index < satisfier.Index:
				previousSatisfierLevel = max(previousSatisfierLevel, mostRecentSatisfier.DecisionLevel)
				mostRecentTerm = term
				mostRecentSatisfier = satisfier
				difference = nil
			default:
				previousSatisfierLevel = max(previousSatisfierLevel, satisfier.DecisionLevel)
			}

			if mostRecentTerm == term {
				// If the satisfier doesn't satisfy the term on its own, the
				// residual is covered by an earlier assignment whose level
				// also bounds the backjump.
				difference = mostRecentSatisfier.Difference(mostRecentTerm)
				if difference != nil {
					if residual := s.solution.Satisfier(difference.Inverse()); residual != nil {
						previousSatisfierLevel = max(previousSatisfierLevel, residual.DecisionLevel)
					}
				}
			}
		}

		// If the most recent satisfier is the only one at its decision
		// level, or is a decision rather than a derivation, this
		// incompatibility is the root cause: backjump to where it is
		// guaranteed to let propagation produce new assignments.
		if previousSatisfierLevel < mostRecentSatisfier.DecisionLevel || mostRecentSatisfier.Cause == nil {
			s.solution.Backtrack(previousSatisfierLevel)
			s.contradicted = make(map[*Incompatibility]bool)
			s.cache.Clear()
			if learned {
				s.addIncompatibility(incompatibility)
			}

			if s.logger != nil {
				s.logger.Debug("backjumped",
					"level", previousSatisfierLevel,
					"learned", incompatibility.String())
			}
			return incompatibility, nil
		}

		// Combine this incompatibility with the cause of the most recent
		// satisfier. The result is still guaranteed unsatisfiable while
		// approximating the intuitive root cause of the conflict.
		newTerms := make([]*Term, 0, len(incompatibility.Terms))
		for _, term := range incompatibility.Terms {
			if term != mostRecentTerm {
				newTerms = append(newTerms, term)
			}
		}
		for _, term := range mostRecentSatisfier.Cause.Terms {
			if !term.Dependency.Equal(mostRecentSatisfier.Dependency) {
				newTerms = append(newTerms, term)
			}
		}
		// A partially satisfying assignment contributes only the versions
		// it shares with the term; exclude the rest explicitly.
		if difference != nil {
			newTerms = append(newTerms, difference.Inverse())
		}

		incompatibility = NewIncompatibility(newTerms,
			&ConflictCause{Conflict: incompatibility, Other: mostRecentSatisfier.Cause})
		learned = true

		partially := ""
		if difference != nil {
			partially = " partially"
		}
		s.log(fmt.Sprintf("! %s is%s satisfied by %s", mostRecentTerm, partially, mostRecentSatisfier))
		s.log(fmt.Sprintf("! which is caused by %q", mostRecentSatisfier.Cause.String()))
		s.log(fmt.Sprintf("! thus: %s", incompatibility))
	}

	return nil, NewSolveFailure(incompatibility)
}

// choosePackageVersion tries to select a version of a required package.
// It returns the complete name of the package whose incompatibilities should
// be propagated next, or more == false when version solving is complete.
func (s *VersionSolver) choosePackageVersion() (name string, more bool, err error) {
	unsatisfied := s.solution.Unsatisfied()
	if len(unsatisfied) == 0 {
		return "", false, nil
	}

	// Prefer dependencies with as few remaining candidate versions as
	// possible, so that a necessary conflict is forced quickly.
	dependency := unsatisfied[0]
	if len(unsatisfied) > 1 {
		bestSpecific, bestCount, err := s.decisionKey(dependency)
		if err != nil {
			return "", false, err
		}
		for _, candidate := range unsatisfied[1:] {
			specific, count, err := s.decisionKey(candidate)
			if err != nil {
				return "", false, err
			}
			if specific != bestSpecific {
				if !specific {
					dependency, bestSpecific, bestCount = candidate, specific, count
				}
				continue
			}
			if count < bestCount {
				dependency, bestCount = candidate, count
			}
		}
	}

	locked := s.getLocked(dependency, false)
	var pkg *DependencyPackage
	if locked == nil {
		packages, err := s.cache.SearchFor(dependency)
		if err != nil {
			var notFound *PackageNotFoundError
			if !errors.As(err, &notFound) {
				return "", false, err
			}
			s.addIncompatibility(NewIncompatibility(
				[]*Term{NewTerm(dependency, true)}, PackageNotFoundCause{Err: err}))
			return dependency.CompleteName(), true, nil
		}

		if !s.useLatest[dependency.Name] {
			// Prefer the locked version of a compatible (not exact same)
			// dependency, so that enabling extras does not force an update,
			// e.g. "coverage" vs. "coverage[toml]".
			locked = s.getLocked(dependency, true)
		}
		if locked != nil {
			for _, candidate := range packages {
				if candidate.Package.Version.Compare(locked.Package.Version) == 0 {
					pkg = candidate
					break
				}
			}
		}
		if pkg == nil && len(packages) > 0 {
			pkg = packages[0]
		}

		if pkg == nil {
			// No version satisfies the constraint; record that as a fact.
			s.addIncompatibility(NewIncompatibility(
				[]*Term{NewTerm(dependency, true)}, NoVersionsCause{}))
			return dependency.CompleteName(), true, nil
		}
	} else {
		pkg = locked
	}

	pkg, err = s.provider.CompletePackage(pkg)
	if err != nil {
		return "", false, err
	}

	incompatibilities, err := s.provider.IncompatibilitiesFor(pkg)
	if err != nil {
		return "", false, err
	}

	conflict := false
	for _, incompatibility := range incompatibilities {
		s.addIncompatibility(incompatibility)

		// If an incompatibility is already satisfied, selecting this version
		// would immediately conflict. Keep adding its dependencies anyway and
		// let unit propagation steer the next round to a better version.
		satisfied := true
		for _, term := range incompatibility.Terms {
			if term.Dependency.CompleteName() == dependency.CompleteName() {
				continue
			}
			if !s.solution.Satisfies(term) {
				satisfied = false
				break
			}
		}
		conflict = conflict || satisfied
	}

	if !conflict {
		s.solution.Decide(pkg.Package)
		s.log(fmt.Sprintf("selecting %s (%s)", pkg.CompleteName(), pkg.Package.Version))
		if s.logger != nil {
			s.logger.Debug("decision",
				"package", pkg.CompleteName(),
				"version", pkg.Package.Version.String(),
				"level", s.solution.DecisionLevel())
		}
	}

	return dependency.CompleteName(), true, nil
}

// decisionKey computes the selection key of the decision heuristic: whether
// the dependency's marker is environment-specific, and how many candidate
// versions remain. Locked, latest-forced and single-version (VCS, URL, file,
// directory) dependencies count as one candidate; a missing package counts
// as zero so its incompatibility is learned promptly.
func (s *VersionSolver) decisionKey(dependency *Dependency) (specific bool, count int, err error) {
	specific = !markerIsAny(dependency.Marker)

	if s.useLatest[dependency.Name] {
		return specific, 1, nil
	}
	if s.getLocked(dependency, false) != nil {
		return specific, 1, nil
	}
	if dependency.IsVCS() || dependency.IsURL() || dependency.IsFile() || dependency.IsDirectory() {
		return specific, 1, nil
	}

	packages, err := s.cache.SearchFor(dependency)
	if err != nil {
		var notFound *PackageNotFoundError
		if errors.As(err, &notFound) {
			return specific, 0, nil
		}
		return false, 0, err
	}
	return specific, len(packages), nil
}

// getLocked returns the locked package compatible with the dependency, if
// any. With allowSimilar, a locked package for the same base name but a
// different extras set also qualifies.
func (s *VersionSolver) getLocked(dependency *Dependency, allowSimilar bool) *DependencyPackage {
	if s.useLatest[dependency.Name] {
		return nil
	}

	for _, locked := range s.locked[dependency.Name] {
		pkg := locked.Package
		if !allowSimilar && !dependency.IsSamePackageAs(pkg.ToDependency()) {
			continue
		}
		if dependency.Constraint == nil ||
			dependency.Constraint.Allows(pkg.Version) ||
			(pkg.Version.IsPrerelease() && dependency.Constraint.Allows(pkg.Version.NextPatch())) {
			return NewDependencyPackage(dependency, pkg)
		}
	}
	return nil
}

// result creates a SolverResult from the decisions in the solution.
func (s *VersionSolver) result() *SolverResult {
	decisions := s.solution.Decisions()
	packages := make([]*Package, 0, len(decisions))
	for _, pkg := range decisions {
		if !pkg.Root {
			packages = append(packages, pkg)
		}
	}

	return &SolverResult{
		Root:               s.root,
		Packages:           packages,
		AttemptedSolutions: s.solution.AttemptedSolutions(),
	}
}

// addIncompatibility records a fact in the per-package index, deduplicating
// structurally equal clauses.
func (s *VersionSolver) addIncompatibility(incompatibility *Incompatibility) {
	s.log(fmt.Sprintf("fact: %s", incompatibility))

	for _, term := range incompatibility.Terms {
		name := term.Dependency.CompleteName()
		duplicate := false
		for _, existing := range s.incompatibilities[name] {
			if existing.Equal(incompatibility) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		s.incompatibilities[name] = append(s.incompatibilities[name], incompatibility)
	}
}

func (s *VersionSolver) log(text string) {
	s.provider.Debug(text, s.solution.AttemptedSolutions())
}
