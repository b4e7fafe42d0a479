// Package book assembles an Audiobook from a directory of downloaded part
// files: it discovers the ordered MP3 parts, measures each part's playable
// duration with ffprobe, reads book-level tags, and gathers the raw chapter
// markers every later pipeline stage consumes.
//
// Duration probing is deliberately strict. Global chapter offsets are running
// sums of part durations, so a single bad measurement corrupts every offset
// after it; any probe failure aborts the scan with ErrDurationProbeFailed.
// Missing chapter metadata, by contrast, is recoverable: a part without
// markers becomes one implicit chapter spanning the whole part.
package book
