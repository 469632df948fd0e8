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

import "github.com/golang/groupcache/lru"

// searchMemoSize bounds the MRU memoization fronting the candidate cache.
const searchMemoSize = 128

// DependencyCache memoizes the candidate lists the provider returns for
// dependencies. During the search - except across backjumps - once a
// candidate has been ruled out it never needs to be checked again, so a
// repeat query for a package narrows the stored list instead of going back
// to the provider.
//
// Two layers are kept: a keyed cache per package identity (complete name and
// source) holding the monotonically narrowing candidate list, and a bounded
// MRU memo keyed on the whole dependency value so that identical queries
// are answered without filtering while the keyed list has not narrowed since.
type DependencyCache struct {
	provider Provider

	cache map[searchKey][]*DependencyPackage
	memo  *lru.Cache
}

type searchKey struct {
	completeName    string
	sourceType      string
	sourceURL       string
	sourceReference string
}

// NewDependencyCache creates a cache over the given provider.
func NewDependencyCache(provider Provider) *DependencyCache {
	return &DependencyCache{
		provider: provider,
		cache:    make(map[searchKey][]*DependencyPackage),
		memo:     lru.New(searchMemoSize),
	}
}

// SearchFor returns the candidate packages for a dependency, newest first.
// The first query for a package identity asks the provider; later queries
// filter the stored list down to the versions the dependency still allows
// and store the narrowed list.
func (c *DependencyCache) SearchFor(dependency *Dependency) ([]*DependencyPackage, error) {
	memoKey := dependency.cacheKey()
	key := searchKey{
		completeName:    dependency.CompleteName(),
		sourceType:      dependency.SourceType,
		sourceURL:       dependency.SourceURL,
		sourceReference: dependency.SourceReference,
	}

	// The keyed list only ever narrows, so a memoized list of the same length
	// is still current; a shorter keyed list means the memo is stale.
	if cached, ok := c.memo.Get(memoKey); ok {
		if packages := cached.([]*DependencyPackage); len(packages) == len(c.cache[key]) {
			return packages, nil
		}
	}

	packages, seen := c.cache[key]
	if !seen {
		found, err := c.provider.SearchFor(dependency)
		if err != nil {
			return nil, err
		}
		packages = found
	} else {
		filtered := make([]*DependencyPackage, 0, len(packages))
		for _, pkg := range packages {
			if dependency.Constraint == nil || dependency.Constraint.Allows(pkg.Package.Version) {
				filtered = append(filtered, pkg)
			}
		}
		packages = filtered
	}

	c.cache[key] = packages
	c.memo.Add(memoKey, packages)

	return packages, nil
}

// Clear drops both layers. It must be called on every backjump: candidates
// narrowed away under discarded assignments may be viable again.
func (c *DependencyCache) Clear() {
	c.cache = make(map[searchKey][]*DependencyPackage)
	c.memo = lru.New(searchMemoSize)
}
