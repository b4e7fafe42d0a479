package history

import "time"

// Run summarizes one chapterization of an audiobook.
type Run struct {
	ID         string
	BookTitle  string
	Author     string
	SourceDir  string
	OutputDir  string
	Parts      int
	Chapters   int
	Exported   int
	Untagged   int
	Failed     int
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ChapterRecord is the stored outcome of a single chapter within a run.
type ChapterRecord struct {
	RunID      string
	Track      int
	Title      string
	Status     string
	OutputPath string
	Error      string
}
