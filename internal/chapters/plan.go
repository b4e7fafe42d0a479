package chapters

import (
	"fmt"
	"time"
)

// Plan pairs consecutive boundaries into closed-open export ranges. Every
// chapter ends where the next begins; the last chapter ends at the total
// audiobook duration. The first chapter is pulled back to offset zero so the
// ranges partition the whole recording even when the first marker sits a
// moment into the audio.
func Plan(boundaries []Boundary, total time.Duration) ([]Chapter, error) {
	if len(boundaries) == 0 {
		return nil, ErrEmptyChapterList
	}
	if total <= 0 {
		return nil, fmt.Errorf("non-positive total duration %v", total)
	}

	planned := make([]Chapter, 0, len(boundaries))
	track := 1
	for i, b := range boundaries {
		start := b.Start
		if i == 0 {
			start = 0
		}
		end := total
		if i+1 < len(boundaries) {
			end = boundaries[i+1].Start
		}
		if end > total {
			end = total
		}
		if end <= start {
			// A boundary at or past the end of the audio plans nothing.
			continue
		}
		planned = append(planned, Chapter{
			Title: b.Title,
			Start: start,
			End:   end,
			Track: track,
		})
		track++
	}

	if len(planned) == 0 {
		return nil, ErrEmptyChapterList
	}
	return planned, nil
}
