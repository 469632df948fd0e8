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

import "fmt"

// SolveFailure is the terminal error of version solving. It carries the
// failure incompatibility whose cause chain is the full derivation tree;
// Error renders it with the default reporter, and external reporters can
// walk Incompatibility themselves.
type SolveFailure struct {
	Incompatibility *Incompatibility
}

// NewSolveFailure creates a failure from the terminal incompatibility.
func NewSolveFailure(incompatibility *Incompatibility) *SolveFailure {
	return &SolveFailure{Incompatibility: incompatibility}
}

// Error implements the error interface.
func (e *SolveFailure) Error() string {
	if e.Incompatibility == nil {
		return "version solving failed"
	}
	return (&DefaultReporter{}).Report(e.Incompatibility)
}

// PackageNotFoundError indicates that a package is absent from the provider's
// universe.
type PackageNotFoundError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("package %s not found: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("package %s not found", e.Name)
}

// Unwrap returns the underlying error.
func (e *PackageNotFoundError) Unwrap() error { return e.Err }

var (
	_ error = (*SolveFailure)(nil)
	_ error = (*PackageNotFoundError)(nil)
)
