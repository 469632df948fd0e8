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

// SolverResult is the outcome of a successful solve: the concrete packages
// selected for the root project, excluding the synthetic root itself.
type SolverResult struct {
	Root     *Package
	Packages []*Package

	// AttemptedSolutions counts the distinct decision paths explored.
	AttemptedSolutions int
}

// GetVersion returns the selected version for a package by complete name.
func (r *SolverResult) GetVersion(completeName string) (Version, bool) {
	for _, pkg := range r.Packages {
		if pkg.CompleteName() == completeName {
			return pkg.Version, true
		}
	}
	return nil, false
}
