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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/cloudwego/liveness"
	"github.com/cloudwego/liveness/internal/roletab"
	"github.com/cloudwego/liveness/internal/toolchain"
)

var (
	tableFile = flag.String("table", "instructions.txt", "operand role table, text or YAML")
	parallel  = flag.Bool("parallel", false, "update all blocks of a pass concurrently")
	maxPasses = flag.Int("max-passes", 0, "fixed-point pass limit, 0 for automatic")
	verbosity = flag.Int("v", 0, "log verbosity")
)

func join(vv []string) string {
	return strings.Join(vv, ", ")
}

func hasEffects(b liveness.Block) bool {
	for _, ins := range b.Instructions {
		if len(ins.Uses) != 0 || len(ins.Defs) != 0 {
			return true
		}
	}
	return false
}

func render(res *liveness.Result) {
	for _, b := range res.Blocks {
		if !hasEffects(b) {
			continue
		}

		/* one table per block */
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetTitle("bb_%d %s", b.Id, join(b.Labels))
		tw.AppendHeader(table.Row{"line", "instruction", "in", "out", "live-in", "live-out"})

		/* only instructions that touch a variable */
		for _, ins := range b.Instructions {
			if len(ins.Uses) != 0 || len(ins.Defs) != 0 {
				tw.AppendRow(table.Row{ins.Line + 1, strings.TrimSpace(ins.Text), join(ins.Uses), join(ins.Defs), join(ins.LiveIn), join(ins.LiveOut)})
			}
		}

		/* block summary */
		tw.AppendFooter(table.Row{"", "USE / DEF", join(b.Use), join(b.Def), "", ""})
		tw.AppendFooter(table.Row{"", "IN / OUT", "", "", join(b.In), join(b.Out)})
		tw.Render()
		fmt.Println()
	}
}

func checkArgs(narg int, passes int) error {
	if narg != 1 {
		return fmt.Errorf("expected exactly one source file, got %d", narg)
	} else if passes < 0 {
		return fmt.Errorf("invalid pass limit %d", passes)
	} else {
		return nil
	}
}

func newLogger(v int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, prefix, args)
	}, funcr.Options{
		Verbosity: v,
	})
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] <file.c|file.cpp|file.s>\n", os.Args[0])
		flag.PrintDefaults()
	}

	/* exactly one source file, and a sane pass limit */
	flag.Parse()
	if err := checkArgs(flag.NArg(), *maxPasses); err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		flag.Usage()
		atexit.Exit(1)
	}

	/* load the role table */
	log := newLogger(*verbosity)
	tab, err := roletab.Load(*tableFile)
	if err != nil {
		log.Error(err, "cannot load role table", "file", *tableFile)
		atexit.Exit(1)
	}

	/* produce the instruction stream */
	src := flag.Arg(0)
	lines, err := toolchain.Assemble(context.Background(), src)
	if err != nil {
		log.Error(err, "cannot assemble source file", "file", src)
		atexit.Exit(1)
	}

	/* run the analysis */
	res, err := liveness.Analyze(lines, tab,
		liveness.WithLogger(log),
		liveness.WithParallel(*parallel),
		liveness.WithMaxPasses(*maxPasses),
	)

	/* check for errors */
	if err != nil {
		atexit.Exit(2)
	}

	/* print the results */
	if render(res); res.Malformed != 0 {
		log.Info("skipped malformed lines", "count", res.Malformed)
	}
	atexit.Exit(0)
}
