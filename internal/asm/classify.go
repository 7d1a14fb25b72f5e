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

package asm

import (
	"strings"

	"github.com/cloudwego/liveness/internal/varset"
)

// Role tells whether an operand is read, written, or both.
type Role uint8

const (
	RoleIn Role = 1 << iota
	RoleOut

	RoleInOut = RoleIn | RoleOut
)

// ParseRole converts a role tag into a Role. Any tag mentioning "in" reads the
// operand and any tag mentioning "out" writes it, so "in/out" and "inout" do both.
func ParseRole(tag string) (r Role) {
	if strings.Contains(tag, "in") {
		r |= RoleIn
	}
	if strings.Contains(tag, "out") {
		r |= RoleOut
	}
	return
}

func (self Role) String() string {
	switch self {
	case RoleIn:
		return "in"
	case RoleOut:
		return "out"
	case RoleInOut:
		return "in/out"
	default:
		return "-"
	}
}

// RoleTable maps a mnemonic to the roles of its operands, in operand order.
// It is built once and shared read-only.
type RoleTable map[string][]Role

// Effect is the set of variables an instruction reads and writes.
type Effect struct {
	Uses varset.Set
	Defs varset.Set
}

func (self Effect) Empty() bool {
	return len(self.Uses) == 0 && len(self.Defs) == 0
}

// IsVariable reports whether an operand token refers to a variable.
func IsVariable(tok string) bool {
	return len(tok) != 0 && tok[0] == VarSigil && strings.IndexByte(tok, ':') < 0
}

// Classify computes the variables used and defined by one instruction.
// Instructions not in the table have no effect.
func Classify(ins Instruction, tab RoleTable) Effect {
	ret := Effect{
		Uses: varset.New(),
		Defs: varset.New(),
	}

	/* malformed or unknown instructions don't touch any variable */
	if ins.Malformed {
		return ret
	}

	/* look up the operand roles */
	roles, ok := tab[ins.Op]
	if !ok {
		return ret
	}

	/* operands past the shorter list are ignored */
	for i, arg := range ins.Args {
		if i >= len(roles) {
			break
		}

		/* skip non-variable operands */
		if !IsVariable(arg) {
			continue
		}

		/* read-modify-write operands go to both sets */
		if roles[i]&RoleIn != 0 {
			ret.Uses.Add(arg)
		}
		if roles[i]&RoleOut != 0 {
			ret.Defs.Add(arg)
		}
	}
	return ret
}
