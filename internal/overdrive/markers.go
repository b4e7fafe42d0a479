package overdrive

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMetadataMissing reports that a part file carries no embedded OverDrive
// chapter markers. Recoverable: the part becomes one implicit chapter.
var ErrMetadataMissing = errors.New("overdrive: media markers metadata missing")

// Marker is one raw chapter marker: a title and a file-local offset.
type Marker struct {
	Title  string
	Offset time.Duration
}

// Extract reads the OverDrive MediaMarkers frame from the file at path and
// returns its ordered markers. Returns ErrMetadataMissing when the file has
// no ID3 tag or no marker frame.
func Extract(path string) ([]Marker, error) {
	payload, err := readMediaMarkersFrame(path)
	if err != nil {
		return nil, err
	}
	markers, err := ParseMediaMarkers(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrMetadataMissing)
	}
	return markers, nil
}

type markerXML struct {
	Name string `xml:"Name"`
	Time string `xml:"Time"`
}

type markersXML struct {
	Markers []markerXML `xml:"Marker"`
}

// ParseMediaMarkers decodes the MediaMarkers XML document into ordered
// markers. Marker order in the document is preserved; OverDrive writes
// markers in ascending time order within a part.
func ParseMediaMarkers(document string) ([]Marker, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, errors.New("empty marker document")
	}

	var parsed markersXML
	decoder := xml.NewDecoder(strings.NewReader(document))
	// OverDrive documents occasionally carry a latin-1 prolog.
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse marker xml: %w", err)
	}

	markers := make([]Marker, 0, len(parsed.Markers))
	for _, m := range parsed.Markers {
		offset, err := ParseTimestamp(m.Time)
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", m.Name, err)
		}
		markers = append(markers, Marker{
			Title:  strings.TrimSpace(m.Name),
			Offset: offset,
		})
	}
	return markers, nil
}

// ParseTimestamp converts an OverDrive marker timestamp (MM:SS.mmm or
// HH:MM:SS.mmm) into a duration.
func ParseTimestamp(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")

	var hours, minutes int
	var seconds float64
	var err error

	switch len(parts) {
	case 3:
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
	case 2:
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
		if seconds, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
	default:
		return 0, fmt.Errorf("timestamp %q: expected MM:SS or HH:MM:SS", value)
	}

	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("timestamp %q: negative component", value)
	}

	total := float64(hours*3600+minutes*60) + seconds
	return time.Duration(total * float64(time.Second)), nil
}
