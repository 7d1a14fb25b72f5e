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
	"sort"

	"github.com/oleiade/lane"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Reachable marks every block reachable from the entry block.
func (self *CFG) Reachable() []bool {
	q := lane.NewQueue()
	r := make([]bool, len(self.Blocks))

	/* nothing to traverse */
	if len(self.Blocks) == 0 {
		return r
	}

	/* traverse the graph with BFS */
	for q.Enqueue(self.Blocks[0]); !q.Empty(); {
		p := q.Dequeue().(*BasicBlock)
		r[p.Id] = true

		/* add all unvisited successors */
		for _, s := range p.Succ {
			if !r[s] {
				r[s] = true
				q.Enqueue(self.Blocks[s])
			}
		}
	}
	return r
}

// Loops returns the strongly connected components that contain a cycle, each
// sorted by block index, ordered by their smallest block index.
func (self *CFG) Loops() [][]int {
	g := simple.NewDirectedGraph()
	selfloop := make(map[int]bool)

	/* mirror all the blocks */
	for _, bb := range self.Blocks {
		g.AddNode(simple.Node(bb.Id))
	}

	/* self edges are not allowed in simple graphs */
	for _, bb := range self.Blocks {
		for _, s := range bb.Succ {
			if s == bb.Id {
				selfloop[s] = true
			} else {
				g.SetEdge(simple.Edge{F: simple.Node(bb.Id), T: simple.Node(s)})
			}
		}
	}

	/* a component is a loop if it has more than one block or a self edge */
	var ret [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfloop[int(scc[0].ID())] {
			continue
		}

		/* convert to block indices */
		ids := make([]int, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, int(n.ID()))
		}

		/* sort by block ID */
		sort.Ints(ids)
		ret = append(ret, ids)
	}

	/* keep the order stable */
	sort.Slice(ret, func(i int, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}
