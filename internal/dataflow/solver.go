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
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/go-logr/logr"

	"github.com/cloudwego/liveness/internal/cfg"
	"github.com/cloudwego/liveness/internal/utils"
	"github.com/cloudwego/liveness/internal/varset"
)

var (
	SolveCount uint64
	PassCount  uint64
)

// State holds the live-in and live-out sets of every block, indexed by block ID.
type State struct {
	In  []varset.Set
	Out []varset.Set
}

// NewState allocates an empty state, every set is a distinct object.
func NewState(nb int) State {
	ret := State{
		In:  make([]varset.Set, nb),
		Out: make([]varset.Set, nb),
	}

	/* never share a set between blocks */
	for i := 0; i < nb; i++ {
		ret.In[i] = varset.New()
		ret.Out[i] = varset.New()
	}
	return ret
}

func (self State) Clone() State {
	ret := State{
		In:  make([]varset.Set, len(self.In)),
		Out: make([]varset.Set, len(self.Out)),
	}
	for i := range self.In {
		ret.In[i] = self.In[i].Clone()
		ret.Out[i] = self.Out[i].Clone()
	}
	return ret
}

func (self State) Equal(other State) bool {
	if len(self.In) != len(other.In) {
		return false
	}
	for i := range self.In {
		if !self.In[i].Equal(other.In[i]) || !self.Out[i].Equal(other.Out[i]) {
			return false
		}
	}
	return true
}

// Solver computes the fixed point of the backward liveness equations:
//
//     IN[b]  = USE[b] ∪ (OUT[b] - DEF[b])
//     OUT[b] = ∪ IN[s] for every successor s of b
//
// MaxPasses caps the number of passes, zero means a bound derived from the
// size of the lattice. OnPass, if set, is called after every pass.
type Solver struct {
	MaxPasses int
	Log       logr.Logger
	OnPass    func(pass int, st State)
}

func (self Solver) limit(sums []Summary) int {
	if self.MaxPasses > 0 {
		return self.MaxPasses
	} else {
		return (len(Universe(sums))+1)*(len(sums)+1) + 1
	}
}

func (self Solver) check(g *cfg.CFG, sums []Summary) error {
	if len(sums) != len(g.Blocks) {
		panic(fmt.Sprintf("dataflow: %d summaries for %d blocks", len(sums), len(g.Blocks)))
	} else {
		return g.Validate()
	}
}

func (self Solver) pass(pass int, changed bool, st State) {
	atomic.AddUint64(&PassCount, 1)
	self.Log.V(2).Info("liveness pass", "pass", pass, "changed", changed)

	/* notify the observer */
	if self.OnPass != nil {
		self.OnPass(pass, st)
	}
}

func liveout(g *cfg.CFG, i int, in []varset.Set) varset.Set {
	ret := varset.New()
	for _, s := range g.Blocks[i].Succ {
		ret.Union(in[s])
	}
	return ret
}

func livein(sum Summary, out varset.Set) varset.Set {
	ret := out.Clone()
	ret.Subtract(sum.Def)
	ret.Union(sum.Use)
	return ret
}

// Solve runs the iteration from empty sets.
func (self Solver) Solve(g *cfg.CFG, sums []Summary) (State, int, error) {
	return self.Resume(g, sums, NewState(len(g.Blocks)))
}

// Resume runs the iteration from an existing state, updating it in place. Blocks
// are visited in ascending order, and each update sees the latest values of the
// other blocks. It returns the number of passes performed.
func (self Solver) Resume(g *cfg.CFG, sums []Summary, st State) (State, int, error) {
	if err := self.check(g, sums); err != nil {
		return st, 0, err
	}

	/* state must match the graph */
	if len(st.In) != len(g.Blocks) || len(st.Out) != len(g.Blocks) {
		panic(fmt.Sprintf("dataflow: state of %d blocks for a graph of %d blocks", len(st.In), len(g.Blocks)))
	}

	/* iterate until nothing changes */
	np := self.limit(sums)
	atomic.AddUint64(&SolveCount, 1)

	/* Gauss-Seidel iteration */
	for pass := 1; pass <= np; pass++ {
		changed := false

		/* update every block in place */
		for i := range g.Blocks {
			if in := livein(sums[i], st.Out[i]); !in.Equal(st.In[i]) {
				st.In[i] = in
				changed = true
			}
			if out := liveout(g, i, st.In); !out.Equal(st.Out[i]) {
				st.Out[i] = out
				changed = true
			}
		}

		/* reached the fixed point */
		if self.pass(pass, changed, st); !changed {
			return st, pass, nil
		}
	}

	/* too many passes */
	return st, np, utils.EConverge(np, len(g.Blocks))
}

// SolveParallel runs the copy-based (Jacobi) variant of the iteration. Every pass
// computes fresh sets for all blocks concurrently from the previous pass, and
// waits for all of them before starting the next one.
func (self Solver) SolveParallel(g *cfg.CFG, sums []Summary) (State, int, error) {
	nb := len(g.Blocks)
	st := NewState(nb)

	/* validate before solving */
	if err := self.check(g, sums); err != nil {
		return st, 0, err
	}

	/* split blocks between workers */
	np := self.limit(sums)
	nw := runtime.GOMAXPROCS(0)
	atomic.AddUint64(&SolveCount, 1)

	/* never more workers than blocks */
	if nw > nb {
		nw = nb
	}

	/* Jacobi iteration */
	for pass := 1; pass <= np; pass++ {
		wg := new(sync.WaitGroup)
		nx := State{In: make([]varset.Set, nb), Out: make([]varset.Set, nb)}
		ch := make([]bool, nb)

		/* each worker owns a stride of blocks */
		for w := 0; w < nw; w++ {
			w := w
			wg.Add(1)
			gopool.Go(func() {
				defer wg.Done()
				for i := w; i < nb; i += nw {
					nx.Out[i] = liveout(g, i, st.In)
					nx.In[i] = livein(sums[i], nx.Out[i])
					ch[i] = !nx.In[i].Equal(st.In[i]) || !nx.Out[i].Equal(st.Out[i])
				}
			})
		}

		/* barrier */
		wg.Wait()
		changed := false

		/* check for changes */
		for _, c := range ch {
			changed = changed || c
		}

		/* swap in the new state */
		st = nx
		self.pass(pass, changed, st)

		/* reached the fixed point */
		if !changed {
			return st, pass, nil
		}
	}

	/* too many passes */
	return st, np, utils.EConverge(np, nb)
}
