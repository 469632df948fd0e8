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
	"slices"
	"strings"
)

// VersionRange implements Constraint as sorted, disjoint version intervals.
// Intervals are kept normalized: non-empty, sorted, non-overlapping and
// non-adjacent, which makes the set operations straightforward and the
// string form canonical.
//
// The algebra is generic over the Version interface; it only ever compares
// versions.
type VersionRange struct {
	intervals []versionInterval
}

// RangeConverter lets a foreign Constraint implementation interoperate with
// VersionRange by exposing an equivalent interval representation.
type RangeConverter interface {
	ToVersionRange() *VersionRange
}

type versionBound struct {
	version   Version
	inclusive bool
	infinite  bool
}

type versionInterval struct {
	lower versionBound
	upper versionBound
}

// EmptyConstraint returns the constraint allowing no versions.
func EmptyConstraint() *VersionRange { return &VersionRange{} }

// AnyConstraint returns the constraint allowing every version.
func AnyConstraint() *VersionRange {
	return &VersionRange{intervals: []versionInterval{{
		lower: versionBound{infinite: true},
		upper: versionBound{infinite: true},
	}}}
}

// NewExactConstraint returns the constraint allowing exactly one version.
func NewExactConstraint(version Version) *VersionRange {
	if version == nil {
		return EmptyConstraint()
	}
	return &VersionRange{intervals: []versionInterval{{
		lower: versionBound{version: version, inclusive: true},
		upper: versionBound{version: version, inclusive: true},
	}}}
}

// NewRangeConstraint returns the constraint for a single interval. A nil
// bound leaves that side unbounded.
func NewRangeConstraint(lower Version, lowerInclusive bool, upper Version, upperInclusive bool) *VersionRange {
	interval := versionInterval{
		lower: versionBound{version: lower, inclusive: lowerInclusive, infinite: lower == nil},
		upper: versionBound{version: upper, inclusive: upperInclusive, infinite: upper == nil},
	}
	if !intervalValid(interval.lower, interval.upper) {
		return EmptyConstraint()
	}
	return &VersionRange{intervals: []versionInterval{interval}}
}

// ToVersionRange implements RangeConverter trivially.
func (r *VersionRange) ToVersionRange() *VersionRange { return r }

// Allows reports whether the version is a member of the set.
func (r *VersionRange) Allows(version Version) bool {
	for _, interval := range r.intervals {
		if interval.contains(version) {
			return true
		}
	}
	return false
}

// AllowsAll reports whether every version allowed by other is allowed here.
func (r *VersionRange) AllowsAll(other Constraint) bool {
	o := asRange(other)
	if o == nil {
		return false
	}
	return o.Intersect(r.complement()).IsEmpty()
}

// AllowsAny reports whether the two constraints share a version.
func (r *VersionRange) AllowsAny(other Constraint) bool {
	return !r.Intersect(other).IsEmpty()
}

// Intersect returns the versions allowed by both constraints.
func (r *VersionRange) Intersect(other Constraint) Constraint {
	o := asRange(other)
	if o == nil {
		return EmptyConstraint()
	}

	var result []versionInterval
	for _, a := range r.intervals {
		for _, b := range o.intervals {
			lower := a.lower
			if compareLowerBounds(b.lower, lower) > 0 {
				lower = b.lower
			}
			upper := a.upper
			if compareUpperBounds(b.upper, upper) < 0 {
				upper = b.upper
			}
			if intervalValid(lower, upper) {
				result = append(result, versionInterval{lower: lower, upper: upper})
			}
		}
	}
	return &VersionRange{intervals: normalizeIntervals(result)}
}

// Union returns the versions allowed by either constraint.
func (r *VersionRange) Union(other Constraint) Constraint {
	o := asRange(other)
	if o == nil {
		return r
	}
	combined := make([]versionInterval, 0, len(r.intervals)+len(o.intervals))
	combined = append(combined, r.intervals...)
	combined = append(combined, o.intervals...)
	return &VersionRange{intervals: normalizeIntervals(combined)}
}

// Difference returns the versions allowed here but not by other.
func (r *VersionRange) Difference(other Constraint) Constraint {
	o := asRange(other)
	if o == nil {
		return r
	}
	return r.Intersect(o.complement())
}

// IsEmpty reports whether the set contains no versions.
func (r *VersionRange) IsEmpty() bool { return len(r.intervals) == 0 }

// IsAny reports whether the set contains every version.
func (r *VersionRange) IsAny() bool {
	return len(r.intervals) == 1 && r.intervals[0].lower.infinite && r.intervals[0].upper.infinite
}

// complement returns the versions outside the set.
func (r *VersionRange) complement() *VersionRange {
	if len(r.intervals) == 0 {
		return AnyConstraint()
	}

	var result []versionInterval
	cursor := versionBound{infinite: true}

	for _, interval := range r.intervals {
		if !interval.lower.infinite {
			gapUpper := versionBound{version: interval.lower.version, inclusive: !interval.lower.inclusive}
			if intervalValid(cursor, gapUpper) {
				result = append(result, versionInterval{lower: cursor, upper: gapUpper})
			}
		}
		if interval.upper.infinite {
			return &VersionRange{intervals: normalizeIntervals(result)}
		}
		cursor = versionBound{version: interval.upper.version, inclusive: !interval.upper.inclusive}
	}

	result = append(result, versionInterval{lower: cursor, upper: versionBound{infinite: true}})
	return &VersionRange{intervals: normalizeIntervals(result)}
}

// String returns a canonical representation: "*" for any, "<empty>" for
// none, otherwise intervals joined by " || ".
func (r *VersionRange) String() string {
	if r.IsEmpty() {
		return "<empty>"
	}
	if r.IsAny() {
		return "*"
	}

	parts := make([]string, 0, len(r.intervals))
	for _, interval := range r.intervals {
		parts = append(parts, interval.String())
	}
	return strings.Join(parts, " || ")
}

func (i versionInterval) String() string {
	if !i.lower.infinite && !i.upper.infinite &&
		i.lower.inclusive && i.upper.inclusive &&
		i.lower.version.Compare(i.upper.version) == 0 {
		return i.lower.version.String()
	}

	var parts []string
	if !i.lower.infinite {
		op := ">"
		if i.lower.inclusive {
			op = ">="
		}
		parts = append(parts, op+i.lower.version.String())
	}
	if !i.upper.infinite {
		op := "<"
		if i.upper.inclusive {
			op = "<="
		}
		parts = append(parts, op+i.upper.version.String())
	}
	return strings.Join(parts, ",")
}

func (i versionInterval) contains(version Version) bool {
	if !i.lower.infinite {
		c := version.Compare(i.lower.version)
		if c < 0 || (c == 0 && !i.lower.inclusive) {
			return false
		}
	}
	if !i.upper.infinite {
		c := version.Compare(i.upper.version)
		if c > 0 || (c == 0 && !i.upper.inclusive) {
			return false
		}
	}
	return true
}

// asRange converts a Constraint to the interval representation, falling back
// to the trivially convertible cases. Constraints that cannot be converted
// must implement RangeConverter to participate in the algebra.
func asRange(c Constraint) *VersionRange {
	switch r := c.(type) {
	case *VersionRange:
		return r
	case RangeConverter:
		return r.ToVersionRange()
	}
	if c == nil || c.IsAny() {
		return AnyConstraint()
	}
	if c.IsEmpty() {
		return EmptyConstraint()
	}
	return nil
}

// compareLowerBounds orders lower bounds; an infinite bound is smallest and
// an inclusive bound precedes an exclusive one at the same version.
func compareLowerBounds(a, b versionBound) int {
	if a.infinite || b.infinite {
		if a.infinite && b.infinite {
			return 0
		}
		if a.infinite {
			return -1
		}
		return 1
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return -1
	}
	return 1
}

// compareUpperBounds orders upper bounds; an infinite bound is largest and
// an inclusive bound follows an exclusive one at the same version.
func compareUpperBounds(a, b versionBound) int {
	if a.infinite || b.infinite {
		if a.infinite && b.infinite {
			return 0
		}
		if a.infinite {
			return 1
		}
		return -1
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return 1
	}
	return -1
}

// intervalValid reports whether the bounds delimit a non-empty interval.
func intervalValid(lower, upper versionBound) bool {
	if lower.infinite || upper.infinite {
		return true
	}
	c := lower.version.Compare(upper.version)
	if c < 0 {
		return true
	}
	if c > 0 {
		return false
	}
	return lower.inclusive && upper.inclusive
}

// boundsTouch reports whether an interval ending at upper and one starting
// at lower overlap or adjoin, i.e. whether they can be merged.
func boundsTouch(upper, lower versionBound) bool {
	if upper.infinite || lower.infinite {
		return true
	}
	c := lower.version.Compare(upper.version)
	if c < 0 {
		return true
	}
	if c > 0 {
		return false
	}
	return lower.inclusive || upper.inclusive
}

// normalizeIntervals sorts, deduplicates and merges intervals into the
// canonical form.
func normalizeIntervals(intervals []versionInterval) []versionInterval {
	valid := make([]versionInterval, 0, len(intervals))
	for _, interval := range intervals {
		if intervalValid(interval.lower, interval.upper) {
			valid = append(valid, interval)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	slices.SortFunc(valid, func(a, b versionInterval) int {
		if c := compareLowerBounds(a.lower, b.lower); c != 0 {
			return c
		}
		return compareUpperBounds(a.upper, b.upper)
	})

	merged := valid[:1]
	for _, interval := range valid[1:] {
		last := &merged[len(merged)-1]
		if boundsTouch(last.upper, interval.lower) {
			if compareUpperBounds(interval.upper, last.upper) > 0 {
				last.upper = interval.upper
			}
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}

var _ Constraint = (*VersionRange)(nil)
