package chapters

import (
	"regexp"
	"strings"
)

// elapsedSuffix matches the parenthetical elapsed-time annotation OverDrive
// appends to restarted markers: optional whitespace, then "(M:SS)" or
// "(H:MM:SS)" at the end of the title.
var elapsedSuffix = regexp.MustCompile(`\s*\(\d+:\d+(?::\d+)?\)\s*$`)

// BaseTitle strips a trailing elapsed-time annotation and surrounding
// whitespace from a marker title. Titles without the annotation are returned
// trimmed but otherwise unchanged.
func BaseTitle(title string) string {
	return strings.TrimSpace(elapsedSuffix.ReplaceAllString(title, ""))
}

// Collapse reduces a globally ordered marker stream to canonical chapter
// boundaries in one forward pass. A marker opens a new chapter only when its
// base title differs from the previous marker's base title; repeats are
// encoder-inserted restarts and are dropped, whether they occur in the same
// part file or a later one.
func Collapse(markers []GlobalMarker) []Boundary {
	boundaries := make([]Boundary, 0, len(markers))
	current := ""
	haveCurrent := false

	for _, marker := range markers {
		base := BaseTitle(marker.Title)
		if haveCurrent && base == current {
			continue
		}
		boundaries = append(boundaries, Boundary{Title: base, Start: marker.Offset})
		current = base
		haveCurrent = true
	}
	return boundaries
}
