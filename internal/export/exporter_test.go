package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sonus/internal/book"
	"sonus/internal/chapters"
	"sonus/internal/media/ffmpeg"
)

type cutCall struct {
	input      string
	start, end time.Duration
}

type fakeClient struct {
	mu        sync.Mutex
	cuts      []cutCall
	concats   [][]string
	tags      []ffmpeg.Metadata
	failCutAt time.Duration
	failCut   bool
	failTag   bool
}

func (f *fakeClient) Cut(ctx context.Context, inputPath string, start, end time.Duration, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCut && start == f.failCutAt {
		return errors.New("stream copy failed")
	}
	f.cuts = append(f.cuts, cutCall{input: inputPath, start: start, end: end})
	return os.WriteFile(outputPath, []byte("cut"), 0o644)
}

func (f *fakeClient) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.concats = append(f.concats, append([]string(nil), inputPaths...))
	return os.WriteFile(outputPath, []byte("joined"), 0o644)
}

func (f *fakeClient) Tag(ctx context.Context, inputPath, outputPath string, meta ffmpeg.Metadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTag {
		return errors.New("tag rejected")
	}
	f.tags = append(f.tags, meta)
	return os.WriteFile(outputPath, []byte("tagged"), 0o644)
}

func testBook() *book.Book {
	return &book.Book{
		Title:  "Deep Work",
		Author: "Cal Newport",
		Parts: []book.Part{
			{Index: 0, Path: "part1.mp3", Duration: 1820 * time.Second},
			{Index: 1, Path: "part2.mp3", Duration: 400 * time.Second},
		},
	}
}

func newTestExporter(t *testing.T, client ffmpeg.Client, workers int) *Exporter {
	t.Helper()
	exporter, err := New(Options{Client: client, Workers: workers})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return exporter
}

func TestExportAllWritesTaggedChapters(t *testing.T) {
	client := &fakeClient{}
	exporter := newTestExporter(t, client, 2)
	dest := t.TempDir()

	plan := []chapters.Chapter{
		{Title: "Chapter 1", Start: 0, End: 1700 * time.Second, Track: 1},
		{Title: "Chapter 2", Start: 1700 * time.Second, End: 1900 * time.Second, Track: 2},
		{Title: "Chapter 3", Start: 1900 * time.Second, End: 2220 * time.Second, Track: 3},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Status != StatusExported {
			t.Fatalf("track %d: expected exported, got %s (%v)", result.Chapter.Track, result.Status, result.Err)
		}
		want := filepath.Join(dest, fmt.Sprintf("%02d %s.mp3", result.Chapter.Track, result.Chapter.Title))
		if result.Path != want {
			t.Fatalf("track %d: expected path %s, got %s", result.Chapter.Track, want, result.Path)
		}
		if _, statErr := os.Stat(result.Path); statErr != nil {
			t.Fatalf("track %d: output missing: %v", result.Chapter.Track, statErr)
		}
	}
	if len(client.tags) != 3 {
		t.Fatalf("expected 3 tag calls, got %d", len(client.tags))
	}
	for _, meta := range client.tags {
		if meta.Artist != "Cal Newport" || meta.Album != "Deep Work" {
			t.Fatalf("unexpected metadata: %+v", meta)
		}
	}
}

func TestExportAllCutsAcrossPartBoundary(t *testing.T) {
	client := &fakeClient{}
	exporter := newTestExporter(t, client, 1)
	dest := t.TempDir()

	plan := []chapters.Chapter{
		{Title: "Chapter 2", Start: 1700 * time.Second, End: 1900 * time.Second, Track: 1},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	if results[0].Status != StatusExported {
		t.Fatalf("expected exported, got %s (%v)", results[0].Status, results[0].Err)
	}
	if len(client.cuts) != 2 {
		t.Fatalf("expected 2 cuts, got %d", len(client.cuts))
	}
	first, second := client.cuts[0], client.cuts[1]
	if first.input != "part1.mp3" || first.start != 1700*time.Second || first.end != 1820*time.Second {
		t.Fatalf("unexpected first cut: %+v", first)
	}
	if second.input != "part2.mp3" || second.start != 0 || second.end != 80*time.Second {
		t.Fatalf("unexpected second cut: %+v", second)
	}
	if len(client.concats) != 1 || len(client.concats[0]) != 2 {
		t.Fatalf("expected one concat of 2 pieces, got %+v", client.concats)
	}
}

func TestExportAllIsolatesChapterFailures(t *testing.T) {
	client := &fakeClient{failCut: true, failCutAt: 500 * time.Second}
	exporter := newTestExporter(t, client, 2)
	dest := t.TempDir()

	plan := []chapters.Chapter{
		{Title: "Chapter 1", Start: 0, End: 500 * time.Second, Track: 1},
		{Title: "Chapter 2", Start: 500 * time.Second, End: 1000 * time.Second, Track: 2},
		{Title: "Chapter 3", Start: 1000 * time.Second, End: 2220 * time.Second, Track: 3},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	if results[0].Status != StatusExported || results[2].Status != StatusExported {
		t.Fatalf("surrounding chapters should still export: %+v", results)
	}
	if results[1].Status != StatusFailed {
		t.Fatalf("expected failed status for track 2, got %s", results[1].Status)
	}
	if !errors.Is(results[1].Err, ErrCutFailed) {
		t.Fatalf("expected ErrCutFailed, got %v", results[1].Err)
	}
	if results[1].Path != "" {
		t.Fatalf("failed chapter should report no path, got %s", results[1].Path)
	}
	entries, readErr := os.ReadDir(dest)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 output files after failure cleanup, got %d", len(entries))
	}
}

func TestExportAllKeepsAudioWhenTaggingFails(t *testing.T) {
	client := &fakeClient{failTag: true}
	exporter := newTestExporter(t, client, 1)
	dest := t.TempDir()

	plan := []chapters.Chapter{
		{Title: "Chapter 1", Start: 0, End: 2220 * time.Second, Track: 1},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	result := results[0]
	if result.Status != StatusUntagged {
		t.Fatalf("expected untagged, got %s (%v)", result.Status, result.Err)
	}
	if !errors.Is(result.Err, ErrTagFailed) {
		t.Fatalf("expected ErrTagFailed, got %v", result.Err)
	}
	data, readErr := os.ReadFile(result.Path)
	if readErr != nil {
		t.Fatalf("untagged output missing: %v", readErr)
	}
	if string(data) != "joined" {
		t.Fatalf("expected raw joined audio, got %q", data)
	}
}

func TestExportAllSanitizesOutputNames(t *testing.T) {
	client := &fakeClient{}
	exporter := newTestExporter(t, client, 1)
	dest := t.TempDir()

	plan := []chapters.Chapter{
		{Title: "Part One: The Idea!", Start: 0, End: 2220 * time.Second, Track: 1},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	want := filepath.Join(dest, "01 Part One - The Idea.mp3")
	if results[0].Path != want {
		t.Fatalf("expected %s, got %s", want, results[0].Path)
	}
}

func TestExportAllAvoidsNameCollisions(t *testing.T) {
	client := &fakeClient{}
	exporter := newTestExporter(t, client, 1)
	dest := t.TempDir()

	existing := filepath.Join(dest, "01 Chapter 1.mp3")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed existing file: %v", err)
	}

	plan := []chapters.Chapter{
		{Title: "Chapter 1", Start: 0, End: 2220 * time.Second, Track: 1},
	}

	results, err := exporter.ExportAll(context.Background(), testBook(), plan, dest)
	if err != nil {
		t.Fatalf("ExportAll returned error: %v", err)
	}
	if results[0].Path == existing {
		t.Fatalf("expected a fresh path, got the existing one: %s", results[0].Path)
	}
	data, readErr := os.ReadFile(existing)
	if readErr != nil || string(data) != "old" {
		t.Fatalf("existing file should be untouched, got %q (%v)", data, readErr)
	}
}
