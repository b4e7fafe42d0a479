package chapters

import "time"

// Marker is a raw chapter marker local to one part file.
type Marker struct {
	Title  string
	Offset time.Duration
}

// GlobalMarker is a Marker rebased onto the audiobook-wide timeline.
type GlobalMarker struct {
	Title     string
	Offset    time.Duration
	FileIndex int
}

// Boundary is a deduplicated chapter start on the global timeline.
type Boundary struct {
	Title string
	Start time.Duration
}

// Chapter is a planned export range. Start is inclusive, End exclusive.
type Chapter struct {
	Title string
	Start time.Duration
	End   time.Duration
	Track int
}

// Duration returns the planned chapter length.
func (c Chapter) Duration() time.Duration {
	return c.End - c.Start
}
