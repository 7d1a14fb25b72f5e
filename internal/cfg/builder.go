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
	"sync/atomic"

	"github.com/cloudwego/liveness/internal/asm"
	"github.com/cloudwego/liveness/internal/utils"
)

var (
	BuildCount     uint64
	BlockCount     uint64
	MalformedCount uint64
)

type _GraphBuilder struct {
	bb  *BasicBlock
	cfg *CFG
	def map[string]int
}

func newGraphBuilder() *_GraphBuilder {
	return &_GraphBuilder{
		bb:  new(BasicBlock),
		cfg: &CFG{Labels: make(map[string]int)},
		def: make(map[string]int),
	}
}

func (self *_GraphBuilder) flush() {
	if len(self.bb.Ins) != 0 {
		self.bb.Id = len(self.cfg.Blocks)
		self.cfg.Blocks = append(self.cfg.Blocks, self.bb)
		self.bb = new(BasicBlock)
	}
}

func (self *_GraphBuilder) label(ins asm.Instruction) error {
	name := ins.Label

	/* labels must be unique */
	if prev, ok := self.def[name]; ok {
		return utils.EDupLabel(name, ins.Line, prev)
	}

	/* a block holding nothing but labels is merged into this one */
	if self.bb.hasBody() {
		self.flush()
	}

	/* the label refers to the block being built */
	self.def[name] = ins.Line
	self.bb.Labels = append(self.bb.Labels, name)
	self.cfg.Labels[name] = len(self.cfg.Blocks)
	return nil
}

func (self *_GraphBuilder) scan(lines []string) (int, error) {
	nb := 0

	/* split the stream into maximal blocks */
	for i, line := range lines {
		ins := asm.ParseInstruction(i, line)

		/* blank lines are kept but never touch anything */
		if ins.Malformed {
			nb++
		}

		/* a label definition starts a new block */
		if ins.Label != "" {
			if err := self.label(ins); err != nil {
				return nb, err
			}
		}

		/* control transfers always close the block */
		if self.bb.Ins = append(self.bb.Ins, ins); ins.Kind.IsTerminator() {
			self.bb.Kind = ins.Kind
			self.flush()
		}
	}

	/* the remaining instructions fall off the end */
	self.flush()
	return nb, nil
}

func (self *_GraphBuilder) edges() error {
	var ok bool
	var to int
	var lb string
	var ind bool

	/* connect every block to its successors */
	for i, bb := range self.cfg.Blocks {
		next := i + 1
		last := bb.Last()

		/* blocks without a terminator fall through */
		if !bb.Kind.IsTerminator() {
			if next < len(self.cfg.Blocks) {
				self.cfg.link(i, next)
			}
			continue
		}

		/* return blocks have no successors */
		if bb.Kind == asm.KindReturn {
			continue
		}

		/* jumps must have a target */
		if lb, ind, ok = last.Target(); !ok {
			return utils.ELabel("", last.Line)
		}

		/* indirect jumps may go to any labeled block */
		if ind {
			for _, p := range self.cfg.Blocks {
				if len(p.Labels) != 0 {
					self.cfg.link(i, p.Id)
				}
			}
		} else if to, ok = self.cfg.Labels[lb]; ok {
			self.cfg.link(i, to)
		} else {
			return utils.ELabel(lb, last.Line)
		}

		/* a conditional branch may not be taken */
		if bb.Kind == asm.KindBranch && next < len(self.cfg.Blocks) {
			self.cfg.link(i, next)
		}
	}
	return nil
}

// Build partitions the instruction stream into basic blocks and connects them.
func Build(lines []string) (*CFG, error) {
	b := newGraphBuilder()
	nb, err := b.scan(lines)

	/* record statistics */
	atomic.AddUint64(&BuildCount, 1)
	atomic.AddUint64(&MalformedCount, uint64(nb))

	/* check for segmentation errors */
	if err != nil {
		return nil, err
	}

	/* resolve all the jump targets */
	if err = b.edges(); err != nil {
		return nil, err
	}

	/* build succeeded */
	atomic.AddUint64(&BlockCount, uint64(len(b.cfg.Blocks)))
	return b.cfg, nil
}

// Malformed counts the lines that could not be split into a mnemonic and operands.
func (self *CFG) Malformed() (n int) {
	for _, bb := range self.Blocks {
		for _, ins := range bb.Ins {
			if ins.Malformed {
				n++
			}
		}
	}
	return
}
