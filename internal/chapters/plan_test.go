package chapters

import (
	"errors"
	"testing"
	"time"
)

func TestPlanPartitionsTimeline(t *testing.T) {
	boundaries := []Boundary{
		{Title: "Chapter 1", Start: 0},
		{Title: "Chapter 2", Start: 530 * time.Second},
		{Title: "Chapter 3", Start: 1800 * time.Second},
	}
	total := 2220 * time.Second

	planned, err := Plan(boundaries, total)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(planned) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(planned))
	}

	// Coverage + partition invariant: contiguous, non-overlapping, start at
	// zero, end at total duration.
	if planned[0].Start != 0 {
		t.Fatalf("first chapter must start at 0, got %v", planned[0].Start)
	}
	if planned[len(planned)-1].End != total {
		t.Fatalf("last chapter must end at total, got %v", planned[len(planned)-1].End)
	}
	for i := 1; i < len(planned); i++ {
		if planned[i].Start != planned[i-1].End {
			t.Fatalf("chapters %d and %d not contiguous: %v vs %v", i-1, i, planned[i-1].End, planned[i].Start)
		}
	}
	for i, c := range planned {
		if c.Track != i+1 {
			t.Fatalf("track numbering broken at %d: %d", i, c.Track)
		}
		if c.Duration() <= 0 {
			t.Fatalf("chapter %d has non-positive duration", i)
		}
	}
}

func TestPlanPullsFirstChapterToZero(t *testing.T) {
	boundaries := []Boundary{
		{Title: "Chapter 1", Start: 2 * time.Second},
		{Title: "Chapter 2", Start: 60 * time.Second},
	}
	planned, err := Plan(boundaries, 120*time.Second)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if planned[0].Start != 0 {
		t.Fatalf("first chapter start = %v, want 0", planned[0].Start)
	}
}

func TestPlanDropsBoundaryAtEnd(t *testing.T) {
	boundaries := []Boundary{
		{Title: "Chapter 1", Start: 0},
		{Title: "Stinger", Start: 100 * time.Second},
	}
	planned, err := Plan(boundaries, 100*time.Second)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(planned) != 1 {
		t.Fatalf("boundary at total duration should plan nothing, got %+v", planned)
	}
	if planned[0].End != 100*time.Second {
		t.Fatalf("surviving chapter should cover the full audio, got %v", planned[0].End)
	}
}

func TestPlanEmptyBoundaries(t *testing.T) {
	_, err := Plan(nil, time.Hour)
	if !errors.Is(err, ErrEmptyChapterList) {
		t.Fatalf("expected ErrEmptyChapterList, got %v", err)
	}
}

func TestPlanRejectsNonPositiveTotal(t *testing.T) {
	if _, err := Plan([]Boundary{{Title: "A"}}, 0); err == nil {
		t.Fatal("expected error for zero total duration")
	}
}

func TestPlanSingleChapterCoversEverything(t *testing.T) {
	planned, err := Plan([]Boundary{{Title: "Whole Book", Start: 0}}, 45*time.Minute)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(planned) != 1 || planned[0].Start != 0 || planned[0].End != 45*time.Minute {
		t.Fatalf("unexpected plan: %+v", planned)
	}
}
