package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes a run that finished but left failed chapters (2)
// from a run that could not complete at all (1).
func exitCode(err error) int {
	var partial *chapterFailureError
	if errors.As(err, &partial) {
		return 2
	}
	return 1
}
