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

package cfg

import (
	"fmt"
	"strings"

	"github.com/cloudwego/liveness/internal/asm"
	"github.com/cloudwego/liveness/internal/utils"
)

type BasicBlock struct {
	Id     int
	Labels []string
	Ins    []asm.Instruction
	Kind   asm.Kind
	Succ   []int
	Pred   []int
}

// Last returns the instruction that exits the block.
func (self *BasicBlock) Last() asm.Instruction {
	return self.Ins[len(self.Ins)-1]
}

// hasBody reports whether the block holds anything besides labels and blank lines.
func (self *BasicBlock) hasBody() bool {
	for _, ins := range self.Ins {
		if !ins.Malformed && ins.Kind != asm.KindLabel {
			return true
		}
	}
	return false
}

func (self *BasicBlock) String() string {
	return fmt.Sprintf("bb_%d", self.Id)
}

// CFG is the control flow graph of one instruction stream. Blocks are kept in
// program order, and every edge refers to a block by its index.
type CFG struct {
	Blocks []*BasicBlock
	Labels map[string]int
}

func (self *CFG) link(from int, to int) {
	p := self.Blocks[from]
	q := self.Blocks[to]

	/* edges are unique */
	for _, v := range p.Succ {
		if v == to {
			return
		}
	}

	/* keep both directions in sync */
	p.Succ = append(p.Succ, to)
	q.Pred = append(q.Pred, from)
}

// Validate checks that every edge refers to an existing block, and that the
// predecessor lists are the transpose of the successor lists.
func (self *CFG) Validate() error {
	nb := len(self.Blocks)
	succ := make(map[[2]int]int)

	/* all successors must be in range */
	for i, bb := range self.Blocks {
		for _, s := range bb.Succ {
			if s < 0 || s >= nb {
				return utils.EEdge(i, s, nb)
			} else {
				succ[[2]int{i, s}]++
			}
		}
	}

	/* all predecessors must match a successor */
	for i, bb := range self.Blocks {
		for _, p := range bb.Pred {
			if p < 0 || p >= nb {
				return utils.EEdge(p, i, nb)
			}
			if e := [2]int{p, i}; succ[e] == 0 {
				return utils.ETranspose(p, i)
			} else {
				succ[e]--
			}
		}
	}

	/* and every successor must have a matching predecessor */
	for e, n := range succ {
		if n != 0 {
			return utils.ETranspose(e[0], e[1])
		}
	}
	return nil
}

func (self *CFG) String() string {
	buf := make([]string, 0, len(self.Blocks))
	for _, bb := range self.Blocks {
		succ := make([]string, 0, len(bb.Succ))
		for _, s := range bb.Succ {
			succ = append(succ, fmt.Sprintf("bb_%d", s))
		}
		buf = append(buf, fmt.Sprintf("bb_%d (%d ins, %s) -> {%s}", bb.Id, len(bb.Ins), bb.Kind, strings.Join(succ, ", ")))
	}
	return strings.Join(buf, "\n")
}
