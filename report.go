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

// Reporter formats a failure incompatibility into an error message.
type Reporter interface {
	// Report generates a human-readable explanation from the terminal
	// incompatibility of a failed solve.
	Report(incompatibility *Incompatibility) string
}

// DefaultReporter renders the derivation tree of a failure, walking conflict
// causes depth-first so that the facts appear before the conclusions drawn
// from them.
type DefaultReporter struct{}

// Report implements Reporter.
func (r *DefaultReporter) Report(incompatibility *Incompatibility) string {
	if incompatibility == nil {
		return "version solving failed"
	}

	var lines []string
	r.visit(incompatibility, &lines, 0, make(map[*Incompatibility]bool))
	if len(lines) == 0 {
		return incompatibility.String()
	}
	return strings.Join(lines, "\n")
}

func (r *DefaultReporter) visit(incompatibility *Incompatibility, lines *[]string, depth int, visited map[*Incompatibility]bool) {
	if visited[incompatibility] {
		return
	}
	visited[incompatibility] = true

	indent := strings.Repeat("  ", depth)

	cause, ok := incompatibility.Cause.(*ConflictCause)
	if !ok {
		*lines = append(*lines, fmt.Sprintf("%sBecause %s", indent, incompatibility))
		return
	}

	r.visit(cause.Conflict, lines, depth+1, visited)
	r.visit(cause.Other, lines, depth+1, visited)

	if incompatibility.IsFailure() {
		*lines = append(*lines, fmt.Sprintf("%sversion solving failed.", indent))
		return
	}
	*lines = append(*lines, fmt.Sprintf("%sThus, %s.", indent, incompatibility))
}

// CollapsedReporter renders the derivation as a flat "And because" chain,
// which reads better for shallow failures.
type CollapsedReporter struct{}

// Report implements Reporter.
func (r *CollapsedReporter) Report(incompatibility *Incompatibility) string {
	if incompatibility == nil {
		return "version solving failed"
	}

	var lines []string
	r.collect(incompatibility, &lines, make(map[*Incompatibility]bool))
	if len(lines) == 0 {
		return incompatibility.String()
	}

	out := "Because " + lines[0]
	for _, line := range lines[1:] {
		out += "\nAnd because " + line
	}
	out += "\nversion solving failed."
	return out
}

func (r *CollapsedReporter) collect(incompatibility *Incompatibility, lines *[]string, visited map[*Incompatibility]bool) {
	if visited[incompatibility] {
		return
	}
	visited[incompatibility] = true

	if cause, ok := incompatibility.Cause.(*ConflictCause); ok {
		r.collect(cause.Conflict, lines, visited)
		r.collect(cause.Other, lines, visited)
		if !incompatibility.IsFailure() {
			*lines = append(*lines, incompatibility.String())
		}
		return
	}

	*lines = append(*lines, incompatibility.String())
}
