package chapters

import (
	"reflect"
	"testing"
	"time"
)

func TestBaseTitle(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Chapter 1", "Chapter 1"},
		{"Chapter 1 (04:02)", "Chapter 1"},
		{"Chapter 1 (06:19)", "Chapter 1"},
		{"Chapter 12 (1:04:02)", "Chapter 12"},
		{"Chapter 3(00:15)", "Chapter 3"},
		{"  Epilogue  ", "Epilogue"},
		{"Part (Two)", "Part (Two)"},      // not a time annotation
		{"Intro (4:02) More", "Intro (4:02) More"}, // annotation must be trailing
		{"(04:02)", ""},
	}
	for _, tc := range cases {
		if got := BaseTitle(tc.input); got != tc.expected {
			t.Fatalf("BaseTitle(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestCollapseDropsElapsedTimeDuplicates(t *testing.T) {
	markers := []GlobalMarker{
		{Title: "Chapter 1", Offset: 0},
		{Title: "Chapter 1 (04:02)", Offset: 242 * time.Second},
		{Title: "Chapter 1 (06:19)", Offset: 379 * time.Second},
		{Title: "Chapter 2", Offset: 530 * time.Second},
	}

	got := Collapse(markers)
	want := []Boundary{
		{Title: "Chapter 1", Start: 0},
		{Title: "Chapter 2", Start: 530 * time.Second},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collapse = %+v, want %+v", got, want)
	}
}

func TestCollapseAcrossFileBoundary(t *testing.T) {
	// File 0 (1820s) ends with Chapter 3 at local 1800s; file 1 restarts it.
	perFile := [][]Marker{
		{{Title: "Chapter 2", Offset: 0}, {Title: "Chapter 3", Offset: 1800 * time.Second}},
		{{Title: "Chapter 3 (00:15)", Offset: 15 * time.Second}, {Title: "Chapter 4", Offset: 200 * time.Second}},
	}
	durations := []time.Duration{1820 * time.Second, 400 * time.Second}

	globals, err := Normalize(perFile, durations)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	got := Collapse(globals)

	want := []Boundary{
		{Title: "Chapter 2", Start: 0},
		{Title: "Chapter 3", Start: 1800 * time.Second},
		{Title: "Chapter 4", Start: 2020 * time.Second},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collapse = %+v, want %+v", got, want)
	}
}

func TestCollapseIsIdempotent(t *testing.T) {
	markers := []GlobalMarker{
		{Title: "Prologue", Offset: 0},
		{Title: "Prologue (02:00)", Offset: 120 * time.Second},
		{Title: "Chapter 1", Offset: 300 * time.Second},
		{Title: "Chapter 1 (10:00)", Offset: 600 * time.Second},
	}

	first := Collapse(markers)
	second := Collapse(markers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Collapse not deterministic: %+v vs %+v", first, second)
	}

	// Feeding the boundary stream back through changes nothing.
	rerun := make([]GlobalMarker, len(first))
	for i, b := range first {
		rerun[i] = GlobalMarker{Title: b.Title, Offset: b.Start}
	}
	if got := Collapse(rerun); !reflect.DeepEqual(got, first) {
		t.Fatalf("Collapse not idempotent: %+v vs %+v", got, first)
	}
}

func TestCollapseKeepsLegitimateAlternation(t *testing.T) {
	markers := []GlobalMarker{
		{Title: "Chapter 1", Offset: 0},
		{Title: "Interlude", Offset: 100 * time.Second},
		{Title: "Chapter 1", Offset: 200 * time.Second},
	}
	got := Collapse(markers)
	if len(got) != 3 {
		t.Fatalf("alternating titles must all survive, got %+v", got)
	}
}

func TestCollapseEmptyInput(t *testing.T) {
	if got := Collapse(nil); len(got) != 0 {
		t.Fatalf("expected no boundaries, got %+v", got)
	}
}
