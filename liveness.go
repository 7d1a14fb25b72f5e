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

package liveness

import (
	"github.com/cloudwego/liveness/internal/asm"
	"github.com/cloudwego/liveness/internal/cfg"
	"github.com/cloudwego/liveness/internal/dataflow"
	"github.com/cloudwego/liveness/internal/opts"
	"github.com/cloudwego/liveness/internal/varset"
)

type (
	Role      = asm.Role
	RoleTable = asm.RoleTable
)

const (
	RoleIn    = asm.RoleIn
	RoleOut   = asm.RoleOut
	RoleInOut = asm.RoleInOut
)

// ParseRole converts a role tag such as "in", "out" or "in/out" into a Role.
func ParseRole(tag string) Role {
	return asm.ParseRole(tag)
}

// Instruction is the analysis result of one source line. Uses and Defs are the
// variables it reads and writes, LiveIn and LiveOut are the variables live
// immediately before and after it.
type Instruction struct {
	Line    int
	Text    string
	Uses    []string
	Defs    []string
	LiveIn  []string
	LiveOut []string
}

// Block is the analysis result of one basic block.
type Block struct {
	Id           int
	Labels       []string
	Instructions []Instruction
	Use          []string
	Def          []string
	Pred         []int
	Succ         []int
	In           []string
	Out          []string
	Reachable    bool
}

// Result is the outcome of a liveness analysis run.
type Result struct {
	Blocks    []Block
	Labels    map[string]int
	Loops     [][]int
	Passes    int
	Malformed int
}

// Block returns the block that defines the label.
func (self *Result) Block(label string) (*Block, bool) {
	if i, ok := self.Labels[label]; !ok {
		return nil, false
	} else {
		return &self.Blocks[i], true
	}
}

// Analyze computes the live variables of an instruction stream, one line per
// instruction. Operand roles come from tab, instructions not in tab have no effect.
//
// Unresolved jump targets, duplicated labels and a failure to converge abort the
// analysis with an error. Lines that cannot be parsed are counted in Result.Malformed.
func Analyze(lines []string, tab RoleTable, options ...Option) (*Result, error) {
	var st dataflow.State
	var np int

	/* apply all options */
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* build the control flow graph */
	g, err := cfg.Build(lines)
	if err != nil {
		o.Logger.Error(err, "cannot build the control flow graph", "lines", len(lines))
		return nil, err
	}

	/* summarize every block */
	sums := make([]dataflow.Summary, len(g.Blocks))
	effs := make([][]asm.Effect, len(g.Blocks))
	for i, bb := range g.Blocks {
		sums[i], effs[i] = dataflow.Summarize(bb, tab)
	}

	/* solve the equations */
	sv := dataflow.Solver{
		MaxPasses: o.MaxPasses,
		Log:       o.Logger,
	}

	/* select the iteration scheme */
	if o.Parallel {
		st, np, err = sv.SolveParallel(g, sums)
	} else {
		st, np, err = sv.Solve(g, sums)
	}

	/* check for solver errors */
	if err != nil {
		o.Logger.Error(err, "cannot solve liveness", "blocks", len(g.Blocks))
		return nil, err
	}

	/* collect the results */
	ret := &Result{
		Blocks:    make([]Block, len(g.Blocks)),
		Labels:    make(map[string]int, len(g.Labels)),
		Loops:     g.Loops(),
		Passes:    np,
		Malformed: g.Malformed(),
	}

	/* copy the label index */
	for k, v := range g.Labels {
		ret.Labels[k] = v
	}

	/* convert every block */
	for i, r := range g.Reachable() {
		ret.Blocks[i] = newBlock(g.Blocks[i], sums[i], effs[i], st.In[i], st.Out[i])
		ret.Blocks[i].Reachable = r
	}

	/* all done */
	o.Logger.V(1).Info("liveness analyzed",
		"lines", len(lines),
		"blocks", len(ret.Blocks),
		"passes", ret.Passes,
		"malformed", ret.Malformed,
	)
	return ret, nil
}

func newBlock(bb *cfg.BasicBlock, sum dataflow.Summary, eff []asm.Effect, in varset.Set, out varset.Set) Block {
	pts := dataflow.LiveAt(eff, out)
	ret := Block{
		Id:           bb.Id,
		Labels:       append([]string(nil), bb.Labels...),
		Instructions: make([]Instruction, len(bb.Ins)),
		Use:          sum.Use.Slice(),
		Def:          sum.Def.Slice(),
		Pred:         append([]int(nil), bb.Pred...),
		Succ:         append([]int(nil), bb.Succ...),
		In:           in.Slice(),
		Out:          out.Slice(),
	}

	/* convert every instruction */
	for i, ins := range bb.Ins {
		ret.Instructions[i] = Instruction{
			Line:    ins.Line,
			Text:    ins.Text,
			Uses:    eff[i].Uses.Slice(),
			Defs:    eff[i].Defs.Slice(),
			LiveIn:  pts[i].LiveIn.Slice(),
			LiveOut: pts[i].LiveOut.Slice(),
		}
	}
	return ret
}
