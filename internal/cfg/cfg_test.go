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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oleiade/lane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/liveness/internal/utils"
)

var loopProgram = []string{
	"main:",
	".LFB0:",
	"\tpushq\t%rbp",
	"\tmovq\t%rsp, %rbp",
	"\tmovl\t%edi, %eax",
	"\tjmp\t.L2",
	".L3:",
	"\taddl\t$1, %eax",
	".L2:",
	"\tcmpl\t$9, %eax",
	"\tjle\t.L3",
	"\tpopq\t%rbp",
	"\tret",
}

func cfgdot(g *CFG, fn string) error {
	q := lane.NewQueue()
	n := make(map[int]bool)
	buf := []string{
		"digraph CFG {",
		`    node [ fontname = "monospace", shape = "box" ]`,
		`    START [ shape = "circle" ]`,
		`    START -> bb_0`,
	}
	for q.Enqueue(g.Blocks[0]); !q.Empty(); {
		p := q.Dequeue().(*BasicBlock)
		if n[p.Id] {
			continue
		}
		n[p.Id] = true
		ins := make([]string, 0, len(p.Ins))
		for _, v := range p.Ins {
			ins = append(ins, strings.ReplaceAll(v.String(), `"`, `\"`))
		}
		buf = append(buf, fmt.Sprintf(`    bb_%d [ label = "%s\l" ]`, p.Id, strings.Join(ins, `\l`)))
		for _, s := range p.Succ {
			buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d`, p.Id, s))
			q.Enqueue(g.Blocks[s])
		}
	}
	buf = append(buf, "}")
	return os.WriteFile(fn, []byte(strings.Join(buf, "\n")), 0644)
}

func TestCFG_Build(t *testing.T) {
	g, err := Build(loopProgram)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	require.Len(t, g.Blocks, 5)
	t.Logf("CFG:\n%s", g)

	/* segmentation */
	assert.Len(t, g.Blocks[0].Ins, 1)
	assert.Equal(t, []string{".LFB0"}, g.Blocks[1].Labels)
	assert.Len(t, g.Blocks[1].Ins, 5)
	assert.Equal(t, []string{".L3"}, g.Blocks[2].Labels)
	assert.Len(t, g.Blocks[2].Ins, 2)
	assert.Equal(t, []string{".L2"}, g.Blocks[3].Labels)
	assert.Len(t, g.Blocks[3].Ins, 3)
	assert.Len(t, g.Blocks[4].Ins, 2)
	assert.Equal(t, map[string]int{".LFB0": 1, ".L3": 2, ".L2": 3}, g.Labels)

	/* terminators */
	assert.Equal(t, "plain", g.Blocks[0].Kind.String())
	assert.Equal(t, "jump", g.Blocks[1].Kind.String())
	assert.Equal(t, "plain", g.Blocks[2].Kind.String())
	assert.Equal(t, "branch", g.Blocks[3].Kind.String())
	assert.Equal(t, "return", g.Blocks[4].Kind.String())

	/* edges */
	assert.Equal(t, []int{1}, g.Blocks[0].Succ)
	assert.Equal(t, []int{3}, g.Blocks[1].Succ)
	assert.Equal(t, []int{3}, g.Blocks[2].Succ)
	assert.Equal(t, []int{2, 4}, g.Blocks[3].Succ)
	assert.Empty(t, g.Blocks[4].Succ)
	assert.Empty(t, g.Blocks[0].Pred)
	assert.Equal(t, []int{1, 2}, g.Blocks[3].Pred)
	assert.Equal(t, []int{3}, g.Blocks[2].Pred)
	assert.Equal(t, []int{3}, g.Blocks[4].Pred)

	/* graph properties */
	assert.Equal(t, []bool{true, true, true, true, true}, g.Reachable())
	assert.Equal(t, [][]int{{2, 3}}, g.Loops())

	fn := filepath.Join(t.TempDir(), "cfg.gv")
	require.NoError(t, cfgdot(g, fn))
	buf, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "bb_3 -> bb_2")
}

func TestCFG_MergeConsecutiveLabels(t *testing.T) {
	g, err := Build([]string{
		".L1:",
		"",
		".L2:",
		"\tmovl\t%eax, %ebx",
		"\tjmp\t.L1",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 1)
	assert.Equal(t, []string{".L1", ".L2"}, g.Blocks[0].Labels)
	assert.Equal(t, map[string]int{".L1": 0, ".L2": 0}, g.Labels)
	assert.Equal(t, []int{0}, g.Blocks[0].Succ)
	assert.Equal(t, []int{0}, g.Blocks[0].Pred)
	assert.Equal(t, 1, g.Malformed())
	assert.Equal(t, [][]int{{0}}, g.Loops())
}

func TestCFG_TrailingLabel(t *testing.T) {
	g, err := Build([]string{
		"\tjne\t.L1",
		"\tmovl\t%eax, %ebx",
		".L1:",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 3)
	assert.Equal(t, []int{2, 1}, g.Blocks[0].Succ)
	assert.Equal(t, []int{2}, g.Blocks[1].Succ)
	assert.Empty(t, g.Blocks[2].Succ)
	assert.Empty(t, g.Loops())
}

func TestCFG_BranchToNextBlock(t *testing.T) {
	g, err := Build([]string{
		"\tje\t.L1",
		".L1:",
		"\tret",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 2)
	assert.Equal(t, []int{1}, g.Blocks[0].Succ)
	assert.Equal(t, []int{0}, g.Blocks[1].Pred)
}

func TestCFG_BranchAtEnd(t *testing.T) {
	g, err := Build([]string{
		".L1:",
		"\tdecl\t%ecx",
		"\tjnz\t.L1",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 1)
	assert.Equal(t, []int{0}, g.Blocks[0].Succ)
}

func TestCFG_IndirectJump(t *testing.T) {
	g, err := Build([]string{
		"\tjmp\t*%rax",
		".L1:",
		"\tret",
		".L2:",
		"\tret",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 3)
	assert.Equal(t, []int{1, 2}, g.Blocks[0].Succ)
	assert.Equal(t, []bool{true, true, true}, g.Reachable())
}

func TestCFG_PrefixedTransfers(t *testing.T) {
	g, err := Build([]string{
		"\tnotrack jmp\t*%rax",
		"\tmovl\t%eax, %ebx",
		".L1:",
		"\tret",
		".L2:",
		"\tret",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 4)
	assert.Equal(t, "jump", g.Blocks[0].Kind.String())
	assert.Len(t, g.Blocks[0].Ins, 1)
	assert.Equal(t, []int{2, 3}, g.Blocks[0].Succ)
	assert.Equal(t, []bool{true, false, true, true}, g.Reachable())

	/* a prefixed return closes its block */
	g, err = Build([]string{"\trep ret", "\tmovl\t%eax, %ebx", "\tret"})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 2)
	assert.Equal(t, "return", g.Blocks[0].Kind.String())
	assert.Empty(t, g.Blocks[0].Succ)

	/* so does a bounded jump */
	g, err = Build([]string{"\tbnd jmp\t.L1", "\tmovl\t%eax, %ebx", ".L1:", "\tret"})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 3)
	assert.Equal(t, "jump", g.Blocks[0].Kind.String())
	assert.Equal(t, []int{2}, g.Blocks[0].Succ)
}

func TestCFG_LabelOnInstructionLine(t *testing.T) {
	g, err := Build([]string{
		"\tmovl\t%edi, %eax",
		".L2:\taddl\t$1, %eax",
		"\tcmpl\t$9, %eax",
		"\tjle\t.L2",
		".L3:\tret",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 3)
	assert.Equal(t, map[string]int{".L2": 1, ".L3": 2}, g.Labels)
	assert.Len(t, g.Blocks[1].Ins, 3)
	assert.Equal(t, "addl", g.Blocks[1].Ins[0].Op)
	assert.Equal(t, []int{1, 2}, g.Blocks[1].Succ)
	assert.Equal(t, "return", g.Blocks[2].Kind.String())
	assert.Equal(t, [][]int{{1}}, g.Loops())
}

func TestCFG_NonLocalTarget(t *testing.T) {
	var e utils.UnresolvedLabelError
	_, err := Build([]string{"main:", "\tjmp\tmain"})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "main", e.Label)
	assert.Equal(t, 1, e.Line)
}

func TestCFG_Unreachable(t *testing.T) {
	g, err := Build([]string{
		"\tret",
		"\tmovl\t%eax, %ebx",
	})
	require.NoError(t, err)
	require.Len(t, g.Blocks, 2)
	assert.Equal(t, []bool{true, false}, g.Reachable())
}

func TestCFG_UnresolvedLabel(t *testing.T) {
	var e utils.UnresolvedLabelError
	_, err := Build([]string{
		"\tcmpl\t$0, %eax",
		"\tjne\t.L9",
		"\tret",
	})
	require.Error(t, err)
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ".L9", e.Label)
	assert.Equal(t, 1, e.Line)

	/* jumps without a target can never resolve */
	_, err = Build([]string{"\tjmp"})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "", e.Label)
}

func TestCFG_DuplicateLabel(t *testing.T) {
	var e utils.DuplicateLabelError
	_, err := Build([]string{".L1:", "\tret", ".L1:", "\tret"})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ".L1", e.Label)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 0, e.Prev)
}

func TestCFG_Empty(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Blocks)
	assert.Empty(t, g.Reachable())
	assert.Empty(t, g.Loops())
	assert.NoError(t, g.Validate())
}

func TestCFG_Validate(t *testing.T) {
	var e utils.InvalidEdgeError
	g := &CFG{Blocks: []*BasicBlock{
		{Id: 0, Succ: []int{1}},
		{Id: 1, Pred: []int{0}},
	}}
	require.NoError(t, g.Validate())

	/* out of range */
	g.Blocks[1].Succ = []int{7}
	require.True(t, errors.As(g.Validate(), &e))
	assert.Equal(t, 1, e.From)
	assert.Equal(t, 7, e.To)

	/* missing predecessor */
	g.Blocks[1].Succ = []int{0}
	require.True(t, errors.As(g.Validate(), &e))
	assert.Equal(t, 1, e.From)
	assert.Equal(t, 0, e.To)

	/* stray predecessor */
	g.Blocks[1].Succ = nil
	g.Blocks[0].Pred = []int{1}
	require.True(t, errors.As(g.Validate(), &e))
	assert.Equal(t, 1, e.From)
	assert.Equal(t, 0, e.To)
}
