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
	"strings"
	"testing"
)

func TestIncompatibilityCoalescesTerms(t *testing.T) {
	inc := NewIncompatibility([]*Term{
		positive("foo", ">=1.0.0"),
		positive("bar", "^2.0"),
		positive("foo", "<2.0.0"),
	}, NoVersionsCause{})

	if len(inc.Terms) != 2 {
		t.Fatalf("expected terms about foo to coalesce, got %d terms", len(inc.Terms))
	}
	if inc.Terms[0].Dependency.CompleteName() != "foo" {
		t.Fatalf("expected first-seen order to be preserved, got %s first", inc.Terms[0].Dependency.CompleteName())
	}
	merged := inc.Terms[0].Constraint()
	if !merged.Allows(ver("1.5.0")) || merged.Allows(ver("2.0.0")) {
		t.Fatalf("expected merged constraint >=1.0.0,<2.0.0, got %s", merged)
	}
}

func TestIncompatibilityDropsRootFromLearnedClauses(t *testing.T) {
	rootDep := dep("myapp", "1.0.0")
	rootDep.Root = true
	parent := NewIncompatibility([]*Term{positive("foo", "*")}, NoVersionsCause{})

	inc := NewIncompatibility([]*Term{
		NewTerm(rootDep, true),
		positive("foo", "^1.0"),
	}, &ConflictCause{Conflict: parent, Other: parent})

	if len(inc.Terms) != 1 || inc.Terms[0].Dependency.CompleteName() != "foo" {
		t.Fatalf("expected the root term to be dropped, got %v", inc.Terms)
	}

	// A non-learned clause keeps its root term.
	plain := NewIncompatibility([]*Term{
		NewTerm(rootDep, true),
		positive("foo", "^1.0"),
	}, DependencyCause{})
	if len(plain.Terms) != 2 {
		t.Fatalf("expected dependency clause to keep the root term, got %v", plain.Terms)
	}
}

func TestIncompatibilityIsFailure(t *testing.T) {
	if !NewIncompatibility(nil, &ConflictCause{}).IsFailure() {
		t.Fatalf("empty incompatibility must be a failure")
	}

	rootDep := dep("myapp", "1.0.0")
	rootDep.Root = true
	if !NewIncompatibility([]*Term{NewTerm(rootDep, true)}, RootCause{}).IsFailure() {
		t.Fatalf("single positive root term must be a failure")
	}
	if NewIncompatibility([]*Term{NewTerm(rootDep, false)}, RootCause{}).IsFailure() {
		t.Fatalf("the root seed clause is not a failure")
	}
	if NewIncompatibility([]*Term{positive("foo", "*")}, NoVersionsCause{}).IsFailure() {
		t.Fatalf("a non-root clause is not a failure")
	}
}

func TestIncompatibilityEqual(t *testing.T) {
	a := NewIncompatibility([]*Term{positive("foo", "^1.0"), negative("bar", "^2.0")}, DependencyCause{})
	b := NewIncompatibility([]*Term{positive("foo", "^1.0"), negative("bar", "^2.0")}, DependencyCause{})
	c := NewIncompatibility([]*Term{positive("foo", "^1.5"), negative("bar", "^2.0")}, DependencyCause{})

	if !a.Equal(b) {
		t.Fatalf("structurally identical incompatibilities must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("different constraints must not be equal")
	}
	if a.Equal(NewIncompatibility(a.Terms, NoVersionsCause{})) {
		t.Fatalf("different causes must not be equal")
	}
}

func TestIncompatibilityString(t *testing.T) {
	depClause := NewIncompatibility([]*Term{
		positive("foo", "1.2.0"),
		negative("bar", "^2.0"),
	}, DependencyCause{})
	if got := depClause.String(); !strings.Contains(got, "depends on") {
		t.Fatalf("unexpected dependency clause rendering %q", got)
	}

	noVersions := NewIncompatibility([]*Term{positive("foo", "^9.0")}, NoVersionsCause{})
	if got := noVersions.String(); !strings.Contains(got, "no versions of foo") {
		t.Fatalf("unexpected no-versions rendering %q", got)
	}

	notFound := NewIncompatibility([]*Term{positive("ghost", "*")}, PackageNotFoundCause{})
	if got := notFound.String(); !strings.Contains(got, "ghost doesn't exist") {
		t.Fatalf("unexpected not-found rendering %q", got)
	}

	platform := NewIncompatibility([]*Term{positive("foo", "^1.0")}, PlatformCause{Label: "python >=3.9"})
	if got := platform.String(); !strings.Contains(got, "requires python >=3.9") {
		t.Fatalf("unexpected platform rendering %q", got)
	}
}

func TestSolverIndexInvariant(t *testing.T) {
	root := rootWith(dep("a", "*"))
	provider := NewMemoryProvider(root)
	provider.AddPackage(pkgWith("a", "1.0.0", dep("b", "^1")))
	provider.AddPackage(pkgWith("b", "1.0.0"))

	solver := NewVersionSolver(root, provider)
	if _, err := solver.Solve(); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	// Every indexed incompatibility mentions the package it is indexed under.
	for name, incompatibilities := range solver.incompatibilities {
		for _, inc := range incompatibilities {
			found := false
			for _, term := range inc.Terms {
				if term.Dependency.CompleteName() == name {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("incompatibility %s indexed under %s has no term about it", inc, name)
			}
		}
	}
}
