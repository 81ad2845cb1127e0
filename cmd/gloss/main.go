package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "gloss/internal/llm/providers" // register vendors
)

func main() {
	os.Exit(run(os.Stderr))
}

// run executes the root command and maps the outcome to an exit code. An
// interrupt exits nonzero with no message of its own.
func run(stderr *os.File) int {
	err := newRootCommand().Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
	}
	return 1
}
