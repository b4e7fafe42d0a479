// Package export materializes planned chapters as tagged MP3 files.
//
// Each chapter range is resolved against the part list into one or more
// (part, local start, local end) pieces; a chapter spans a part boundary when
// its global start lies in one part and its end in a later one. Pieces are
// cut with ffmpeg, concatenated in part order, tagged, and written to a path
// reserved before any worker starts.
//
// Exports are independent once the plan exists, so they fan out across a
// bounded worker pool. Failures stay per-chapter: a failed cut or concat
// skips that chapter and the rest of the book still completes; a failed tag
// keeps the untagged audio.
package export
