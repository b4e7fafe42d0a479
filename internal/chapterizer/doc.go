// Package chapterizer drives the full pipeline: scan an audiobook directory,
// merge the per-part markers onto one timeline, collapse duplicate chapter
// titles, plan the chapter ranges, and export each chapter as a tagged MP3.
// A file lock keeps concurrent runs from clobbering shared state, and each
// run is recorded in the history database when enabled.
package chapterizer
