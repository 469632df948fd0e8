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

// Incompatibility is a set of terms that cannot all be satisfied at once,
// together with the cause that makes the set unsatisfiable. Incompatibilities
// are immutable once constructed and are shared between the solver's index
// and the causes of learned clauses.
type Incompatibility struct {
	Terms []*Term
	Cause IncompatibilityCause
}

// NewIncompatibility constructs an incompatibility, canonicalizing its terms:
// terms about the same package are coalesced by intersection, and positive
// root terms are dropped from learned clauses (the root is always selected,
// so they carry no information and only obscure error reports).
func NewIncompatibility(terms []*Term, cause IncompatibilityCause) *Incompatibility {
	if len(terms) != 1 {
		if _, ok := cause.(*ConflictCause); ok && hasPositiveRootTerm(terms) {
			filtered := make([]*Term, 0, len(terms))
			for _, term := range terms {
				if term.Positive && term.Dependency.Root {
					continue
				}
				filtered = append(filtered, term)
			}
			terms = filtered
		}
	}

	if len(terms) > 1 {
		terms = coalesceTerms(terms)
	}

	return &Incompatibility{Terms: terms, Cause: cause}
}

func hasPositiveRootTerm(terms []*Term) bool {
	for _, term := range terms {
		if term.Positive && term.Dependency.Root {
			return true
		}
	}
	return false
}

// coalesceTerms merges terms about the same package, preserving first-seen
// order. Mutually exclusive terms about one package would make the whole
// incompatibility irrelevant; the solver never derives such a clause, so the
// merge keeps the running term when an intersection comes back empty.
func coalesceTerms(terms []*Term) []*Term {
	order := make([]string, 0, len(terms))
	byName := make(map[string]*Term, len(terms))

	for _, term := range terms {
		name := term.Dependency.CompleteName()
		existing, ok := byName[name]
		if !ok {
			order = append(order, name)
			byName[name] = term
			continue
		}
		if merged := existing.Intersect(term); merged != nil {
			byName[name] = merged
		}
	}

	coalesced := make([]*Term, 0, len(order))
	for _, name := range order {
		coalesced = append(coalesced, byName[name])
	}
	return coalesced
}

// IsFailure reports whether the incompatibility means version solving has
// failed outright: it has no terms, or its single term is the positive root.
func (inc *Incompatibility) IsFailure() bool {
	if len(inc.Terms) == 0 {
		return true
	}
	return len(inc.Terms) == 1 && inc.Terms[0].Positive && inc.Terms[0].Dependency.Root
}

// Equal reports structural equality over terms and cause. Learned causes
// compare by the identity of their parent incompatibilities.
func (inc *Incompatibility) Equal(other *Incompatibility) bool {
	if inc == other {
		return true
	}
	if inc == nil || other == nil {
		return false
	}
	if len(inc.Terms) != len(other.Terms) {
		return false
	}
	for i, term := range inc.Terms {
		if !term.Equal(other.Terms[i]) {
			return false
		}
	}
	return causesEqual(inc.Cause, other.Cause)
}

func causesEqual(a, b IncompatibilityCause) bool {
	switch ca := a.(type) {
	case RootCause:
		_, ok := b.(RootCause)
		return ok
	case DependencyCause:
		_, ok := b.(DependencyCause)
		return ok
	case NoVersionsCause:
		_, ok := b.(NoVersionsCause)
		return ok
	case PackageNotFoundCause:
		cb, ok := b.(PackageNotFoundCause)
		return ok && ca.Err == cb.Err
	case PlatformCause:
		cb, ok := b.(PlatformCause)
		return ok && ca.Label == cb.Label
	case *ConflictCause:
		cb, ok := b.(*ConflictCause)
		return ok && ca.Conflict == cb.Conflict && ca.Other == cb.Other
	default:
		return false
	}
}

// String returns a human-readable statement of the incompatibility.
func (inc *Incompatibility) String() string {
	switch cause := inc.Cause.(type) {
	case DependencyCause:
		if depender, dependee, ok := inc.dependencyTerms(); ok {
			return fmt.Sprintf("%s depends on %s", depender.Dependency, dependee.Dependency)
		}
	case NoVersionsCause:
		if len(inc.Terms) == 1 {
			return fmt.Sprintf("no versions of %s match %s",
				inc.Terms[0].Dependency.CompleteName(), constraintString(inc.Terms[0].Constraint()))
		}
	case PackageNotFoundCause:
		if len(inc.Terms) == 1 {
			return fmt.Sprintf("%s doesn't exist", inc.Terms[0].Dependency.CompleteName())
		}
	case PlatformCause:
		if len(inc.Terms) >= 1 {
			return fmt.Sprintf("%s requires %s", inc.Terms[0].Dependency, cause.Label)
		}
	case RootCause:
		if len(inc.Terms) == 1 {
			return fmt.Sprintf("%s is required", inc.Terms[0].Dependency)
		}
	}

	if len(inc.Terms) == 0 {
		return "version solving failed"
	}
	if len(inc.Terms) == 1 {
		term := inc.Terms[0]
		if term.Positive {
			if term.Dependency.Root {
				return "version solving failed"
			}
			return fmt.Sprintf("%s is forbidden", term.Dependency)
		}
		return fmt.Sprintf("%s is required", term.Dependency)
	}
	if len(inc.Terms) == 2 && inc.Terms[0].Positive && !inc.Terms[1].Positive {
		return fmt.Sprintf("%s requires %s", inc.Terms[0].Dependency, inc.Terms[1].Dependency)
	}

	parts := make([]string, 0, len(inc.Terms))
	for _, term := range inc.Terms {
		parts = append(parts, term.String())
	}
	return fmt.Sprintf("%s are incompatible", strings.Join(parts, " and "))
}

// dependencyTerms splits a dependency-caused incompatibility {P, not D} into
// the depending package term and the (un-negated) dependency term.
func (inc *Incompatibility) dependencyTerms() (depender, dependee *Term, ok bool) {
	if len(inc.Terms) != 2 {
		return nil, nil, false
	}
	for _, term := range inc.Terms {
		if term.Positive {
			depender = term
		} else {
			dependee = term.Inverse()
		}
	}
	if depender == nil || dependee == nil {
		return nil, nil, false
	}
	return depender, dependee, true
}
