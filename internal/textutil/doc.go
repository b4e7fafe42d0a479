// Package textutil provides text normalization helpers for the chapterizer.
//
// The primary use cases are:
//   - Sanitizing chapter and book names for safe filesystem use
//   - Deriving lowercase tokens for stable identifiers (history keys)
//   - Deriving display titles from file names when tags are absent
//
// Chapter name sanitization follows the output conventions of the OverDrive
// desktop tooling: exclamation and question marks are dropped and colons
// become " -" so chapter files sort and read naturally on every platform.
package textutil
