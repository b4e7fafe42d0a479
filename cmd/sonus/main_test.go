package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForPartialFailure(t *testing.T) {
	err := fmt.Errorf("chapterize: %w", &chapterFailureError{failed: 2})
	if got := exitCode(err); got != 2 {
		t.Fatalf("expected exit code 2 for failed chapters, got %d", got)
	}
}

func TestExitCodeForFatalError(t *testing.T) {
	if got := exitCode(errors.New("config broken")); got != 1 {
		t.Fatalf("expected exit code 1, got %d", got)
	}
}
