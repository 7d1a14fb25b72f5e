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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type Lang uint8

const (
	LangAsm Lang = iota
	LangC
	LangCXX
)

func (self Lang) String() string {
	switch self {
	case LangAsm:
		return "asm"
	case LangC:
		return "c"
	case LangCXX:
		return "c++"
	default:
		return "unknown"
	}
}

var _Extensions = map[string]Lang{
	".s":   LangAsm,
	".c":   LangC,
	".cc":  LangCXX,
	".cpp": LangCXX,
	".cxx": LangCXX,
}

// Compiler turns a source file into assembler text.
type Compiler func(ctx context.Context, src string, dst string) error

func external(cc string) Compiler {
	return func(ctx context.Context, src string, dst string) error {
		var buf bytes.Buffer
		cmd := exec.CommandContext(ctx, cc, "-S", "-o", dst, src)
		cmd.Stderr = &buf

		/* run the compiler */
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s -S %s: %w: %s", cc, src, err, strings.TrimSpace(buf.String()))
		} else {
			return nil
		}
	}
}

// Compilers is the dispatch table of every supported language, except assembler
// which is read as-is.
var Compilers = map[Lang]Compiler{
	LangC:   external("gcc"),
	LangCXX: external("g++"),
}

// LangOf detects the language of a source file by its extension.
func LangOf(path string) (Lang, error) {
	if lang, ok := _Extensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return 0, fmt.Errorf("unsupported source file: %s", path)
	} else {
		return lang, nil
	}
}

// ReadLines returns every line of a file, without line terminators.
func ReadLines(path string) ([]string, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	/* read line by line */
	var ret []string
	defer fp.Close()
	rd := bufio.NewScanner(fp)

	/* scan every line */
	for rd.Scan() {
		ret = append(ret, rd.Text())
	}
	return ret, rd.Err()
}

// Assemble returns the assembler text of a source file, compiling it first if
// it is not written in assembler.
func Assemble(ctx context.Context, path string) ([]string, error) {
	lang, err := LangOf(path)
	if err != nil {
		return nil, err
	}

	/* already assembler */
	if lang == LangAsm {
		return ReadLines(path)
	}

	/* compile into a temporary directory */
	dir, err := os.MkdirTemp("", "liveness-")
	if err != nil {
		return nil, err
	}

	/* remove the output when done */
	defer os.RemoveAll(dir)
	dst := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".s")

	/* dispatch by language */
	if err = Compilers[lang](ctx, path, dst); err != nil {
		return nil, err
	} else {
		return ReadLines(dst)
	}
}
