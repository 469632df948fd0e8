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

type countingProvider struct {
	Provider
	searches int
}

func (p *countingProvider) SearchFor(dependency *Dependency) ([]*DependencyPackage, error) {
	p.searches++
	return p.Provider.SearchFor(dependency)
}

func newCountingProvider(versions ...string) *countingProvider {
	root := NewRootPackage("myapp", ver("1.0.0"))
	memory := NewMemoryProvider(root)
	for _, v := range versions {
		memory.AddPackage(pkgWith("foo", v))
	}
	return &countingProvider{Provider: memory}
}

func versionsOf(packages []*DependencyPackage) []string {
	out := make([]string, 0, len(packages))
	for _, p := range packages {
		out = append(out, p.Package.Version.String())
	}
	return out
}

func TestDependencyCacheMemoizesIdenticalQueries(t *testing.T) {
	provider := newCountingProvider("1.2.0", "1.1.0", "1.0.0")
	cache := NewDependencyCache(provider)

	first, err := cache.SearchFor(dep("foo", "^1.0"))
	if err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	if provider.searches != 1 {
		t.Fatalf("expected 1 provider search, got %d", provider.searches)
	}
	if got := versionsOf(first); len(got) != 3 || got[0] != "1.2.0" {
		t.Fatalf("expected newest-first candidates, got %v", got)
	}

	second, err := cache.SearchFor(dep("foo", "^1.0"))
	if err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	if provider.searches != 1 {
		t.Fatalf("identical query must hit the memo, provider searched %d times", provider.searches)
	}
	if len(second) != len(first) {
		t.Fatalf("memoized result differs: %v vs %v", versionsOf(second), versionsOf(first))
	}
}

func TestDependencyCacheNarrowsMonotonically(t *testing.T) {
	provider := newCountingProvider("1.2.0", "1.1.0", "1.0.0")
	cache := NewDependencyCache(provider)

	if _, err := cache.SearchFor(dep("foo", "^1.0")); err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}

	narrowed, err := cache.SearchFor(dep("foo", "<1.2.0"))
	if err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	if provider.searches != 1 {
		t.Fatalf("a narrowed query must filter the stored list, provider searched %d times", provider.searches)
	}
	if got := versionsOf(narrowed); len(got) != 2 || got[0] != "1.1.0" {
		t.Fatalf("expected [1.1.0 1.0.0], got %v", got)
	}

	// The stored list was replaced: a broader re-query sees only what the
	// narrowed epoch left behind.
	broad, err := cache.SearchFor(dep("foo", "^1.0"))
	if err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	if got := versionsOf(broad); len(got) != 2 {
		t.Fatalf("expected the narrowed universe within the epoch, got %v", got)
	}
}

func TestDependencyCacheClearRestoresCandidates(t *testing.T) {
	provider := newCountingProvider("1.2.0", "1.1.0")
	cache := NewDependencyCache(provider)

	if _, err := cache.SearchFor(dep("foo", "<1.2.0")); err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	cache.Clear()

	restored, err := cache.SearchFor(dep("foo", "^1.0"))
	if err != nil {
		t.Fatalf("SearchFor returned error: %v", err)
	}
	if provider.searches != 2 {
		t.Fatalf("expected a fresh provider search after Clear, got %d", provider.searches)
	}
	if got := versionsOf(restored); len(got) != 2 {
		t.Fatalf("expected the full candidate list after Clear, got %v", got)
	}
}

func TestDependencyCacheDoesNotCacheErrors(t *testing.T) {
	provider := newCountingProvider()
	cache := NewDependencyCache(provider)

	if _, err := cache.SearchFor(dep("missing", "*")); err == nil {
		t.Fatalf("expected a not-found error")
	}
	if _, err := cache.SearchFor(dep("missing", "*")); err == nil {
		t.Fatalf("expected a not-found error on re-query")
	}
	if provider.searches != 2 {
		t.Fatalf("errors must not be cached, provider searched %d times", provider.searches)
	}
}
