// Package chapters turns per-file chapter markers into a single ordered,
// non-overlapping chapter plan for a whole audiobook.
//
// The pipeline is a strict three-step fold, free of any audio I/O:
//
//	Normalize: rebase file-local marker offsets onto one global timeline
//	Collapse:  drop encoder-inserted duplicate markers by base title
//	Plan:      pair consecutive boundaries into closed-open ranges
//
// OverDrive encoders restart a chapter marker at part boundaries and after
// pauses, appending an elapsed-time suffix to the title ("Chapter 1",
// "Chapter 1 (04:02)", "Chapter 1 (06:19)"). Collapse treats a repeated base
// title with no intervening distinct title as the same chapter regardless of
// the time gap or which part the marker lives in. A book that genuinely
// repeats one title for two different chapters is merged by this heuristic;
// that trade-off is deliberate.
package chapters
