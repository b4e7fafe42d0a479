// Package overdrive extracts embedded OverDrive chapter markers from
// downloaded audiobook part files.
//
// OverDrive encoders store per-part chapter data as an XML document inside an
// ID3v2 TXXX frame with the description "OverDrive MediaMarkers". Each marker
// is a (Name, Time) pair where Time is a file-local offset written as
// MM:SS.mmm or HH:MM:SS.mmm. The package reads that frame directly from the
// tag, parses the XML, and returns ordered markers with time.Duration
// offsets.
//
// A part without the frame (or without any ID3 tag at all) yields
// ErrMetadataMissing; callers substitute one implicit chapter spanning the
// whole file.
package overdrive
