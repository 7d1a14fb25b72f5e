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

package dataflow

import (
	"github.com/cloudwego/liveness/internal/asm"
	"github.com/cloudwego/liveness/internal/varset"
)

// Point is the liveness immediately before and after one instruction.
type Point struct {
	LiveIn  varset.Set
	LiveOut varset.Set
}

// LiveAt walks a block backwards from its live-out set, and returns the liveness
// around every instruction in program order.
func LiveAt(eff []asm.Effect, out varset.Set) []Point {
	ret := make([]Point, len(eff))
	live := out.Clone()

	/* live(i-1) = use(i) ∪ (live(i) - def(i)) */
	for i := len(eff) - 1; i >= 0; i-- {
		ret[i].LiveOut = live.Clone()
		live.Subtract(eff[i].Defs)
		live.Union(eff[i].Uses)
		ret[i].LiveIn = live.Clone()
	}
	return ret
}
