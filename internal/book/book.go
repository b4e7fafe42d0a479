package book

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/simonhull/audiometa"

	"sonus/internal/chapters"
	"sonus/internal/logging"
	"sonus/internal/media/ffprobe"
	"sonus/internal/overdrive"
	"sonus/internal/textutil"
)

// ErrDurationProbeFailed reports that a part's playable duration could not be
// measured. Fatal for the whole run: offsets downstream cannot be trusted.
var ErrDurationProbeFailed = errors.New("book: duration probe failed")

// ErrNoParts reports that a directory holds no part files.
var ErrNoParts = errors.New("book: no part files found")

// Test seams for the external capabilities the scan consumes.
var (
	inspectMedia   = ffprobe.Inspect
	extractMarkers = overdrive.Extract
	readTags       = readBookTags
)

// Part is one source file in part order.
type Part struct {
	Index    int
	Path     string
	Duration time.Duration
	Markers  []chapters.Marker
}

// Book is an ordered part list plus the metadata used to tag exports.
type Book struct {
	Title  string
	Author string
	Parts  []Part
}

// TotalDuration returns the measured length of the whole audiobook.
func (b *Book) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range b.Parts {
		total += p.Duration
	}
	return total
}

// Durations returns the per-part durations in part order.
func (b *Book) Durations() []time.Duration {
	out := make([]time.Duration, len(b.Parts))
	for i, p := range b.Parts {
		out[i] = p.Duration
	}
	return out
}

// MarkersPerPart returns the raw markers grouped by part index.
func (b *Book) MarkersPerPart() [][]chapters.Marker {
	out := make([][]chapters.Marker, len(b.Parts))
	for i, p := range b.Parts {
		out[i] = p.Markers
	}
	return out
}

// Options configures a scan.
type Options struct {
	FFprobeBinary string
	ProbeTimeout  time.Duration
	Logger        *slog.Logger
}

// Scan builds a Book from the MP3 parts under dir. Parts are ordered by
// path, matching the track numbering OverDrive uses for part file names.
func Scan(ctx context.Context, dir string, opts Options) (*Book, error) {
	logger := logging.WithComponent(opts.Logger, "book")

	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoParts)
	}

	author, title := readTags(paths[0])
	if author == "" {
		author = "Unknown Author"
	}
	if title == "" {
		title = textutil.TitleFromFileName(dir)
	}
	if title == "" {
		title = "Unknown Title"
	}
	// Multi-artist ID3 frames separate names with slashes; keep the first.
	if idx := strings.Index(author, "/"); idx >= 0 {
		author = strings.TrimSpace(author[:idx])
	}

	book := &Book{Title: title, Author: author, Parts: make([]Part, 0, len(paths))}
	for i, path := range paths {
		duration, err := probeDuration(ctx, opts, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDurationProbeFailed, path, err)
		}

		markers, err := partMarkers(path, i, title)
		if err != nil {
			return nil, err
		}
		logger.Debug("part probed", "part", filepath.Base(path), "markers", len(markers), "duration", duration)

		book.Parts = append(book.Parts, Part{
			Index:    i,
			Path:     path,
			Duration: duration,
			Markers:  markers,
		})
	}

	logger.Info("book assembled",
		"title", book.Title,
		"author", book.Author,
		"parts", len(book.Parts),
		"duration", book.TotalDuration())
	return book, nil
}

// Discover returns the MP3 files under dir in sorted path order.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".mp3") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func probeDuration(ctx context.Context, opts Options, path string) (time.Duration, error) {
	if opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ProbeTimeout)
		defer cancel()
	}
	result, err := inspectMedia(ctx, opts.FFprobeBinary, path)
	if err != nil {
		return 0, err
	}
	if result.AudioStreamCount() == 0 {
		return 0, errors.New("no audio stream")
	}
	return result.Duration()
}

// partMarkers extracts embedded markers, falling back to one implicit chapter
// spanning the whole part when the file carries no metadata.
func partMarkers(path string, index int, bookTitle string) ([]chapters.Marker, error) {
	raw, err := extractMarkers(path)
	if err != nil {
		if errors.Is(err, overdrive.ErrMetadataMissing) {
			title := textutil.TitleFromFileName(path)
			if title == "" {
				title = fmt.Sprintf("%s - Part %d", bookTitle, index+1)
			}
			return []chapters.Marker{{Title: title, Offset: 0}}, nil
		}
		return nil, fmt.Errorf("extract markers from %s: %w", path, err)
	}

	out := make([]chapters.Marker, len(raw))
	for i, m := range raw {
		out[i] = chapters.Marker{Title: m.Title, Offset: m.Offset}
	}
	return out, nil
}

// readBookTags pulls artist and album from the first part's tags. Tag read
// failures are non-fatal; callers fall back to directory-derived names.
func readBookTags(path string) (author, title string) {
	file, err := audiometa.Open(path)
	if err != nil {
		return "", ""
	}
	defer file.Close()
	return strings.TrimSpace(file.Tags.Artist), strings.TrimSpace(file.Tags.Album)
}
