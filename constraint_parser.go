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
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// ParseConstraint parses a version constraint string into a Constraint.
//
// Supported syntax:
//   - Comparison operators: >=, >, <=, <, ==, =, !=
//   - Caret requirements: "^1.2.3" (compatible within the leftmost non-zero
//     component)
//   - Tilde requirements: "~1.2.3" (compatible within the minor release),
//     "~1" (within the major release)
//   - Conjunctions separated by commas or spaces: ">=1.0.0,<2.0.0"
//   - Disjunctions separated by "||": "^1.0 || ^2.0"
//   - Wildcard "*" for any version
//
// Examples:
//
//	ParseConstraint("^1.2.3")          // >=1.2.3,<2.0.0
//	ParseConstraint(">=1.0.0 <2.0.0")  // [1.0.0, 2.0.0)
//	ParseConstraint("!=1.5.0")         // everything but 1.5.0
//	ParseConstraint("*")               // any version
func ParseConstraint(text string) (Constraint, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "*" {
		return AnyConstraint(), nil
	}

	var result Constraint = EmptyConstraint()
	for _, branch := range strings.Split(text, "||") {
		branch = strings.TrimSpace(branch)
		if branch == "" {
			return nil, fmt.Errorf("invalid empty branch in constraint %q", text)
		}

		var current Constraint = AnyConstraint()
		for _, atom := range splitConstraintAtoms(branch) {
			parsed, err := parseConstraintAtom(atom)
			if err != nil {
				return nil, err
			}
			current = current.Intersect(parsed)
		}
		result = result.Union(current)
	}

	return result, nil
}

// MustParseConstraint parses a constraint string and panics on error.
// Intended for fixtures and tests.
func MustParseConstraint(text string) Constraint {
	c, err := ParseConstraint(text)
	if err != nil {
		panic(err)
	}
	return c
}

// splitConstraintAtoms splits a conjunction on commas and whitespace,
// re-joining an operator token with the version that follows it so that
// ">= 1.0" parses the same as ">=1.0".
func splitConstraintAtoms(branch string) []string {
	fields := strings.FieldsFunc(branch, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	atoms := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		field := fields[i]
		if isOperatorToken(field) && i+1 < len(fields) {
			i++
			field += fields[i]
		}
		atoms = append(atoms, field)
	}
	return atoms
}

func isOperatorToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '<', '>', '=', '!', '^', '~':
		default:
			return false
		}
	}
	return true
}

func parseConstraintAtom(atom string) (*VersionRange, error) {
	if atom == "*" {
		return AnyConstraint(), nil
	}

	op := ""
	for _, candidate := range []string{">=", "<=", "==", "!=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(atom, candidate) {
			op = candidate
			break
		}
	}
	literal := strings.TrimSpace(strings.TrimPrefix(atom, op))

	version, err := NewSemverVersion(literal)
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %w", atom, err)
	}

	switch op {
	case ">=":
		return NewRangeConstraint(version, true, nil, false), nil
	case ">":
		return NewRangeConstraint(version, false, nil, false), nil
	case "<=":
		return NewRangeConstraint(nil, false, version, true), nil
	case "<":
		return NewRangeConstraint(nil, false, version, false), nil
	case "!=":
		return NewExactConstraint(version).complement(), nil
	case "^":
		return caretConstraint(version), nil
	case "~":
		return tildeConstraint(literal, version), nil
	default: // "=", "==" or a bare version
		return NewExactConstraint(version), nil
	}
}

// caretConstraint allows changes that do not modify the leftmost non-zero
// component: ^1.2.3 is >=1.2.3,<2.0.0 and ^0.2.1 is >=0.2.1,<0.3.0.
func caretConstraint(version *SemverVersion) *VersionRange {
	v := version.Semver()

	var upper *semver.Version
	switch {
	case v.Major() > 0:
		upper = semver.New(v.Major()+1, 0, 0, "", "")
	case v.Minor() > 0:
		upper = semver.New(0, v.Minor()+1, 0, "", "")
	default:
		upper = semver.New(0, 0, v.Patch()+1, "", "")
	}
	return NewRangeConstraint(version, true, &SemverVersion{v: upper}, false)
}

// tildeConstraint allows patch-level changes when a minor version is
// specified, minor-level changes otherwise: ~1.2.3 is >=1.2.3,<1.3.0 and
// ~1 is >=1.0.0,<2.0.0.
func tildeConstraint(literal string, version *SemverVersion) *VersionRange {
	core := literal
	if cut := strings.IndexAny(core, "-+"); cut >= 0 {
		core = core[:cut]
	}

	v := version.Semver()
	var upper *semver.Version
	if strings.Contains(core, ".") {
		upper = semver.New(v.Major(), v.Minor()+1, 0, "", "")
	} else {
		upper = semver.New(v.Major()+1, 0, 0, "", "")
	}
	return NewRangeConstraint(version, true, &SemverVersion{v: upper}, false)
}
