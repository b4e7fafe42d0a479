package chapters

import (
	"fmt"
	"time"
)

// Normalize rebases per-file markers onto one global timeline. perFile and
// durations are indexed by part position; the global offset of a marker is
// the sum of all preceding part durations plus its local offset.
//
// The output is globally ordered by construction: parts are walked in index
// order and markers within a part keep their stored order. A marker whose
// local offset exceeds its part's measured duration is clamped to the part
// end; OverDrive occasionally writes a final marker a few hundred
// milliseconds past the playable audio.
func Normalize(perFile [][]Marker, durations []time.Duration) ([]GlobalMarker, error) {
	if len(perFile) != len(durations) {
		return nil, fmt.Errorf("%w: %d marker lists, %d durations", ErrFileCountMismatch, len(perFile), len(durations))
	}

	total := 0
	for _, markers := range perFile {
		total += len(markers)
	}

	globals := make([]GlobalMarker, 0, total)
	var base time.Duration
	for i, markers := range perFile {
		if durations[i] <= 0 {
			return nil, fmt.Errorf("part %d: non-positive duration %v", i, durations[i])
		}
		for _, m := range markers {
			local := m.Offset
			if local < 0 {
				return nil, fmt.Errorf("part %d: negative marker offset %v", i, local)
			}
			if local > durations[i] {
				local = durations[i]
			}
			globals = append(globals, GlobalMarker{
				Title:     m.Title,
				Offset:    base + local,
				FileIndex: i,
			})
		}
		base += durations[i]
	}
	return globals, nil
}

// TotalDuration sums part durations into the audiobook length.
func TotalDuration(durations []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total
}
