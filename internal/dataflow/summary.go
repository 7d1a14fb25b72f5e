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
	"github.com/cloudwego/liveness/internal/cfg"
	"github.com/cloudwego/liveness/internal/varset"
)

// Summary is the pair of sets the liveness equations need for one block.
// Use holds the variables read before any write within the block, and Def
// holds every variable written by the block.
type Summary struct {
	Use varset.Set
	Def varset.Set
}

// Summarize reduces a block into its Summary. It also returns the effect of
// every instruction, in program order.
func Summarize(bb *cfg.BasicBlock, tab asm.RoleTable) (Summary, []asm.Effect) {
	ret := Summary{
		Use: varset.New(),
		Def: varset.New(),
	}

	/* classify every instruction */
	eff := make([]asm.Effect, len(bb.Ins))
	for i, ins := range bb.Ins {
		eff[i] = asm.Classify(ins, tab)
	}

	/* use(i-1) = uses(i) ∪ (use(i) - defs(i)) */
	for i := len(eff) - 1; i >= 0; i-- {
		if e := eff[i]; !e.Empty() {
			ret.Use.Subtract(e.Defs)
			ret.Use.Union(e.Uses)
			ret.Def.Union(e.Defs)
		}
	}
	return ret, eff
}

// Universe collects every variable mentioned by any summary.
func Universe(sums []Summary) varset.Set {
	ret := varset.New()
	for _, s := range sums {
		ret.Union(s.Use)
		ret.Union(s.Def)
	}
	return ret
}
