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

package roletab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cloudwego/liveness/internal/asm"
)

// SyntaxError occurs when a role table line cannot be parsed.
type SyntaxError struct {
	Line   int
	Reason string
}

func (self SyntaxError) Error() string {
	return fmt.Sprintf("role table syntax error at line %d: %s", self.Line, self.Reason)
}

func parseLine(line string) (string, []asm.Role, bool) {
	ins := asm.ParseInstruction(0, line)
	if ins.Malformed || ins.Op == "" || ins.Op[0] == '#' {
		return "", nil, false
	}

	/* every remaining token is a role tag */
	roles := make([]asm.Role, len(ins.Args))
	for i, tag := range ins.Args {
		roles[i] = asm.ParseRole(tag)
	}
	return ins.Op, roles, true
}

// Parse reads a role table in the text format, one mnemonic per line followed by
// the roles of its operands:
//
//     movl in, out
//     addl in, in/out
//
// Blank lines and lines starting with '#' are ignored.
func Parse(r io.Reader) (asm.RoleTable, error) {
	ln := 0
	rd := bufio.NewScanner(r)
	ret := make(asm.RoleTable)

	/* read line by line */
	for rd.Scan() {
		ln++
		op, roles, ok := parseLine(rd.Text())

		/* skip blanks and comments */
		if !ok {
			continue
		}

		/* mnemonics are unique */
		if _, dup := ret[op]; dup {
			return nil, SyntaxError{Line: ln, Reason: fmt.Sprintf("duplicated mnemonic %q", op)}
		} else {
			ret[op] = roles
		}
	}

	/* check for read errors */
	if err := rd.Err(); err != nil {
		return nil, err
	} else {
		return ret, nil
	}
}

// ParseYAML reads a role table from a YAML mapping of mnemonic to role tags:
//
//     movl: [in, out]
//     addl: [in, in/out]
func ParseYAML(data []byte) (asm.RoleTable, error) {
	var src map[string][]string
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, err
	}

	/* convert every entry */
	ret := make(asm.RoleTable, len(src))
	for op, tags := range src {
		roles := make([]asm.Role, len(tags))
		for i, tag := range tags {
			roles[i] = asm.ParseRole(tag)
		}
		ret[op] = roles
	}
	return ret, nil
}

// Load reads a role table file, YAML files are recognized by their extension.
func Load(path string) (asm.RoleTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err := os.ReadFile(path); err != nil {
			return nil, err
		} else {
			return ParseYAML(data)
		}
	default:
		if fp, err := os.Open(path); err != nil {
			return nil, err
		} else {
			defer fp.Close()
			return Parse(fp)
		}
	}
}
