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
)

const (
	VarSigil   = '%' // register operands
	LabelSigil = '.' // assembler-local labels
)

type Kind uint8

const (
	KindPlain  Kind = iota // falls through to the next instruction
	KindLabel              // label definition, starts a block
	KindJump               // unconditional jump
	KindBranch             // conditional jump, may fall through
	KindReturn             // leaves the function
)

func (self Kind) String() string {
	switch self {
	case KindPlain:
		return "plain"
	case KindLabel:
		return "label"
	case KindJump:
		return "jump"
	case KindBranch:
		return "branch"
	case KindReturn:
		return "return"
	default:
		return "unknown"
	}
}

// IsTerminator reports whether an instruction of this kind always closes its block.
func (self Kind) IsTerminator() bool {
	return self == KindJump || self == KindBranch || self == KindReturn
}

var _ControlFlow = map[string]Kind{
	"jmp":   KindJump,
	"jmpq":  KindJump,
	"ret":   KindReturn,
	"retq":  KindReturn,
	"je":    KindBranch,
	"jne":   KindBranch,
	"jz":    KindBranch,
	"jnz":   KindBranch,
	"jl":    KindBranch,
	"jle":   KindBranch,
	"jg":    KindBranch,
	"jge":   KindBranch,
	"jnge":  KindBranch,
	"jnl":   KindBranch,
	"jng":   KindBranch,
	"jnle":  KindBranch,
	"ja":    KindBranch,
	"jae":   KindBranch,
	"jb":    KindBranch,
	"jbe":   KindBranch,
	"jna":   KindBranch,
	"jnae":  KindBranch,
	"jnb":   KindBranch,
	"jnbe":  KindBranch,
	"jc":    KindBranch,
	"jnc":   KindBranch,
	"js":    KindBranch,
	"jns":   KindBranch,
	"jo":    KindBranch,
	"jno":   KindBranch,
	"jp":    KindBranch,
	"jnp":   KindBranch,
	"jpe":   KindBranch,
	"jpo":   KindBranch,
	"jcxz":  KindBranch,
	"jecxz": KindBranch,
	"jrcxz": KindBranch,
}

var _Prefixes = map[string]bool{
	"notrack": true,
	"bnd":     true,
	"rep":     true,
	"repe":    true,
	"repz":    true,
	"repne":   true,
	"repnz":   true,
	"lock":    true,
}

// Instruction is one line of the instruction stream, split into a mnemonic
// and its raw operand tokens. Label is set when the line also defines a label.
type Instruction struct {
	Line      int
	Text      string
	Label     string
	Op        string
	Args      []string
	Kind      Kind
	Malformed bool
}

func isSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t'
}

// ParseInstruction splits a line on runs of commas, spaces and tabs. A line
// without any token is marked as malformed. A leading label definition is
// split off, and so are instruction prefixes such as `notrack` or `rep`.
func ParseInstruction(line int, text string) Instruction {
	ins := Instruction{Line: line, Text: text}
	tok := strings.FieldsFunc(text, isSeparator)

	/* nothing to split */
	if len(tok) == 0 {
		ins.Malformed = true
		return ins
	}

	/* the label may be followed by an instruction on the same line */
	if name, ok := LabelOf(text); ok {
		if ins.Label, tok = name, tok[1:]; len(tok) == 0 {
			ins.Kind = KindLabel
			return ins
		}
	}

	/* skip the prefixes, unless nothing else is left */
	for len(tok) > 1 && _Prefixes[tok[0]] {
		tok = tok[1:]
	}

	/* mnemonic and operands */
	ins.Op = tok[0]
	ins.Args = tok[1:]

	/* control transfers are matched by the exact mnemonic */
	if k, ok := _ControlFlow[ins.Op]; ok {
		ins.Kind = k
	}
	return ins
}

// LabelOf returns the name of the label defined on this line. A label definition
// starts with the label sigil and its first token ends with a colon.
func LabelOf(text string) (string, bool) {
	if len(text) == 0 || text[0] != LabelSigil {
		return "", false
	}

	/* the first token must be terminated by a colon */
	tok := text
	if i := strings.IndexFunc(text, isSeparator); i >= 0 {
		tok = text[:i]
	}

	/* strip the colon */
	if len(tok) < 2 || tok[len(tok)-1] != ':' {
		return "", false
	} else {
		return tok[:len(tok)-1], true
	}
}

// Target returns the jump target of a control transfer instruction, and
// whether it is an indirect one (`jmp *%rax`).
func (self Instruction) Target() (label string, indirect bool, ok bool) {
	if !self.Kind.IsTerminator() || self.Kind == KindReturn || len(self.Args) == 0 {
		return "", false, false
	}

	/* indirect jumps go through a register or memory operand */
	if t := self.Args[0]; t[0] == '*' {
		return t, true, true
	} else {
		return t, false, true
	}
}

func (self Instruction) String() string {
	return strings.TrimSpace(self.Text)
}
