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
	"github.com/cloudwego/liveness/internal/utils"
)

// UnresolvedLabelError occurs when a jump targets a label that no block defines.
type UnresolvedLabelError = utils.UnresolvedLabelError

// DuplicateLabelError occurs when the same label is defined twice.
type DuplicateLabelError = utils.DuplicateLabelError

// InvalidEdgeError occurs when the control flow graph refers to a block that does not exist.
type InvalidEdgeError = utils.InvalidEdgeError

// NonConvergenceError occurs when the liveness equations do not reach a fixed
// point within the pass limit.
type NonConvergenceError = utils.NonConvergenceError
