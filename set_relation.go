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

// SetRelation describes how the version selections allowed by one term relate
// to the selections allowed by another term about the same package.
type SetRelation int

const (
	// SetRelationSubset means every selection allowed by the first term is
	// also allowed by the second.
	SetRelationSubset SetRelation = iota
	// SetRelationDisjoint means no selection is allowed by both terms.
	SetRelationDisjoint
	// SetRelationOverlapping means the terms share some selections but
	// neither is a subset of the other.
	SetRelationOverlapping
)

// String returns a human-readable representation of the relation.
func (r SetRelation) String() string {
	switch r {
	case SetRelationSubset:
		return "subset"
	case SetRelationDisjoint:
		return "disjoint"
	default:
		return "overlapping"
	}
}
