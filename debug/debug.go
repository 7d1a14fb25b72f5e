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

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/liveness/internal/cfg"
	"github.com/cloudwego/liveness/internal/dataflow"
)

// A Stats records statistics about the analyses run so far.
type Stats struct {
	Graph  GraphStats
	Solver SolverStats
}

// A GraphStats records statistics about the control flow graph builder.
type GraphStats struct {
	Builds    int
	Blocks    int
	Malformed int
}

// A SolverStats records statistics about the fixed-point iteration.
type SolverStats struct {
	Runs   int
	Passes int
}

// GetStats returns statistics of the analyzer.
func GetStats() Stats {
	return Stats{
		Graph: GraphStats{
			Builds:    int(atomic.LoadUint64(&cfg.BuildCount)),
			Blocks:    int(atomic.LoadUint64(&cfg.BlockCount)),
			Malformed: int(atomic.LoadUint64(&cfg.MalformedCount)),
		},
		Solver: SolverStats{
			Runs:   int(atomic.LoadUint64(&dataflow.SolveCount)),
			Passes: int(atomic.LoadUint64(&dataflow.PassCount)),
		},
	}
}
