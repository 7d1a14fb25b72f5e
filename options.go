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
	"fmt"

	"github.com/go-logr/logr"

	"github.com/cloudwego/liveness/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxPasses caps the number of passes of the fixed-point iteration.
//
// Exceeding the limit aborts the analysis with a NonConvergenceError. Valid
// programs always converge, so a small limit is only useful to bound the time
// spent on a malformed graph.
//
// The default value "0" derives the limit from the number of blocks and
// variables, which is never reached by a valid program.
func WithMaxPasses(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("liveness: invalid pass limit: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxPasses = n }
	}
}

// WithParallel selects the copy-based iteration, which updates all the blocks of
// one pass concurrently. The result is identical to the sequential iteration.
func WithParallel(v bool) Option {
	return func(o *opts.Options) { o.Parallel = v }
}

// WithLogger sets the logger used to report the progress of the analysis.
func WithLogger(l logr.Logger) Option {
	return func(o *opts.Options) { o.Logger = l }
}

// SetMaxPasses sets the default pass limit for all analyses from now on.
//
// This value can also be configured with the `LIVENESS_MAX_PASSES`
// environment variable.
//
// Returns the old opts.MaxPasses value.
func SetMaxPasses(n int) int {
	n, opts.MaxPasses = opts.MaxPasses, n
	return n
}
