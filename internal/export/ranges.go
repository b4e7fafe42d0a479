package export

import (
	"fmt"
	"time"

	"sonus/internal/book"
)

// Piece is the intersection of a global chapter range with one part file,
// expressed in that part's local time.
type Piece struct {
	PartIndex int
	Path      string
	Start     time.Duration
	End       time.Duration
}

// ResolveRange intersects the closed-open global range [start, end) with the
// part list and returns the file-local pieces in part order.
func ResolveRange(parts []book.Part, start, end time.Duration) ([]Piece, error) {
	if end <= start {
		return nil, fmt.Errorf("invalid range [%v, %v)", start, end)
	}

	var pieces []Piece
	var base time.Duration
	for _, part := range parts {
		partStart := base
		partEnd := base + part.Duration
		base = partEnd

		if end <= partStart || start >= partEnd {
			continue
		}

		localStart := time.Duration(0)
		if start > partStart {
			localStart = start - partStart
		}
		localEnd := part.Duration
		if end < partEnd {
			localEnd = end - partStart
		}
		pieces = append(pieces, Piece{
			PartIndex: part.Index,
			Path:      part.Path,
			Start:     localStart,
			End:       localEnd,
		})
	}

	if len(pieces) == 0 {
		return nil, fmt.Errorf("range [%v, %v) lies outside the audiobook", start, end)
	}
	return pieces, nil
}
