// Command afed renders an Afed document: it evaluates every substitution
// record in a source file and writes the rendered result, following
// spec.md §6's CLI surface exactly. Structured the way the teacher splits
// cmd/funxy into a thin main.go plus a Cobra root command, following the
// pattern _examples/vito-dang and _examples/CWBudde-go-dws use for their
// own CLIs (the teacher's own CLI is manual os.Args parsing with no Cobra
// dependency, but Afed's flag surface is one flat command, not a nested
// subcommand tree, so Cobra's single-Command shape is the better fit).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
