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

package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolchain_LangOf(t *testing.T) {
	for path, lang := range map[string]Lang{
		"a.s":     LangAsm,
		"dir/b.c": LangC,
		"c.CPP":   LangCXX,
		"d.cc":    LangCXX,
		"e.cxx":   LangCXX,
	} {
		v, err := LangOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, lang, v, path)
	}
	_, err := LangOf("main.go")
	assert.Error(t, err)
}

func TestToolchain_AssembleAsm(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "main.s")
	require.NoError(t, os.WriteFile(fn, []byte("main:\n\tmovl\t$0, %eax\n\tret\n"), 0644))
	lines, err := Assemble(context.Background(), fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"main:", "\tmovl\t$0, %eax", "\tret"}, lines)
}

func TestToolchain_Dispatch(t *testing.T) {
	old := Compilers[LangC]
	defer func() { Compilers[LangC] = old }()

	/* replace the external compiler */
	Compilers[LangC] = func(_ context.Context, src string, dst string) error {
		assert.Equal(t, "main.s", filepath.Base(dst))
		return os.WriteFile(dst, []byte("\tret\n"), 0644)
	}
	lines, err := Assemble(context.Background(), "main.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"\tret"}, lines)

	/* errors are propagated */
	Compilers[LangC] = func(context.Context, string, string) error { return errors.New("boom") }
	_, err = Assemble(context.Background(), "main.c")
	assert.EqualError(t, err, "boom")
}
