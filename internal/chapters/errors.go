package chapters

import "errors"

// ErrEmptyChapterList reports that collapsing produced no chapter boundaries.
// Callers should fall back to whole-book output rather than retry.
var ErrEmptyChapterList = errors.New("chapters: no chapter boundaries")

// ErrFileCountMismatch reports that marker lists and durations disagree on
// the number of part files.
var ErrFileCountMismatch = errors.New("chapters: marker and duration counts differ")
