// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The chapterizer depends on exact playable durations: every global chapter
// offset is a running sum of part durations, so a wrong value silently
// corrupts the whole timeline. Inspect therefore asks ffprobe for stream and
// format data and Duration prefers the decoded audio stream length over the
// container estimate.
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - Result.Duration: playable duration of the first audio stream
package ffprobe
