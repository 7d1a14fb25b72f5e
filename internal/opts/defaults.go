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

package opts

import (
	"os"
	"strconv"
)

const (
	_DefaultMaxPasses = 0 // derived from the size of the lattice
)

var (
	MaxPasses = parseOrDefault("LIVENESS_MAX_PASSES", _DefaultMaxPasses)
	Parallel  = parseBool("LIVENESS_PARALLEL")
)

// parseOrDefault reads a non-negative integer from the environment.
func parseOrDefault(key string, def int) int {
	env := os.Getenv(key)
	if env == "" {
		return def
	}

	/* negative counts are rejected by the parser */
	val, err := strconv.ParseUint(env, 0, 31)
	if err != nil {
		panic("liveness: invalid value for " + key + ": " + env)
	}
	return int(val)
}

func parseBool(key string) bool {
	if env := os.Getenv(key); env == "" {
		return false
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("liveness: invalid value for " + key)
	} else {
		return val
	}
}
