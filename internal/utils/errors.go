/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
)

// UnresolvedLabelError occurs when a jump targets a label that no block defines.
type UnresolvedLabelError struct {
	Label string
	Line  int
}

func (self UnresolvedLabelError) Error() string {
	if self.Label == "" {
		return fmt.Sprintf("UnresolvedLabel(line %d): jump without a target", self.Line+1)
	} else {
		return fmt.Sprintf("UnresolvedLabel(line %d): no block defines %q", self.Line+1, self.Label)
	}
}

// DuplicateLabelError occurs when a label is defined more than once.
type DuplicateLabelError struct {
	Label string
	Line  int
	Prev  int
}

func (self DuplicateLabelError) Error() string {
	return fmt.Sprintf("DuplicateLabel(line %d): %q already defined at line %d", self.Line+1, self.Label, self.Prev+1)
}

// InvalidEdgeError occurs when the CFG has an edge to a non-existent block, or when
// the predecessor relation is not the transpose of the successor relation.
type InvalidEdgeError struct {
	From   int
	To     int
	Reason string
}

func (self InvalidEdgeError) Error() string {
	return fmt.Sprintf("InvalidEdge(bb_%d -> bb_%d): %s", self.From, self.To, self.Reason)
}

// NonConvergenceError occurs when the fixed-point iteration exceeds its pass limit.
type NonConvergenceError struct {
	Passes int
	Blocks int
}

func (self NonConvergenceError) Error() string {
	return fmt.Sprintf("NonConvergence: no fixed point after %d passes over %d blocks", self.Passes, self.Blocks)
}

func ELabel(label string, line int) UnresolvedLabelError {
	return UnresolvedLabelError{
		Label: label,
		Line:  line,
	}
}

func EDupLabel(label string, line int, prev int) DuplicateLabelError {
	return DuplicateLabelError{
		Label: label,
		Line:  line,
		Prev:  prev,
	}
}

func EEdge(from int, to int, nb int) InvalidEdgeError {
	return InvalidEdgeError{
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("target out of range [0, %d)", nb),
	}
}

func ETranspose(from int, to int) InvalidEdgeError {
	return InvalidEdgeError{
		From:   from,
		To:     to,
		Reason: "predecessor list is not the transpose of successor list",
	}
}

func EConverge(passes int, blocks int) NonConvergenceError {
	return NonConvergenceError{
		Passes: passes,
		Blocks: blocks,
	}
}
