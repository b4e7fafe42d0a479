package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sonus/internal/book"
	"sonus/internal/chapters"
	"sonus/internal/fileutil"
	"sonus/internal/logging"
	"sonus/internal/media/ffmpeg"
	"sonus/internal/textutil"
)

var (
	// ErrCutFailed marks a chapter whose source pieces could not be cut.
	ErrCutFailed = errors.New("chapter cut failed")
	// ErrConcatFailed marks a chapter whose pieces could not be joined.
	ErrConcatFailed = errors.New("chapter concatenation failed")
	// ErrTagFailed marks a chapter written without metadata.
	ErrTagFailed = errors.New("chapter tagging failed")
)

// Status reports the outcome of a single chapter export.
type Status string

const (
	// StatusExported means the chapter was cut, joined, and tagged.
	StatusExported Status = "exported"
	// StatusUntagged means the audio was written but tagging failed.
	StatusUntagged Status = "untagged"
	// StatusFailed means no usable output was produced.
	StatusFailed Status = "failed"
)

// Result records what happened to one planned chapter.
type Result struct {
	Chapter chapters.Chapter
	Path    string
	Status  Status
	Err     error
}

// Exporter writes planned chapters as individual tagged MP3 files.
type Exporter struct {
	client    ffmpeg.Client
	logger    *slog.Logger
	workers   int
	overwrite bool
}

// Options configures an Exporter.
type Options struct {
	Client    ffmpeg.Client
	Logger    *slog.Logger
	Workers   int
	Overwrite bool
}

// New constructs an Exporter. Workers below one are raised to one.
func New(opts Options) (*Exporter, error) {
	if opts.Client == nil {
		return nil, errors.New("ffmpeg client required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Exporter{
		client:    opts.Client,
		logger:    logging.WithComponent(logger, "export"),
		workers:   workers,
		overwrite: opts.Overwrite,
	}, nil
}

// ExportAll writes every planned chapter of bk into destDir. Chapters fail
// independently: a cut, concat, or tag error is recorded in that chapter's
// Result and the remaining chapters still run. The returned slice is ordered
// by track number; the error covers setup problems only.
func (e *Exporter) ExportAll(ctx context.Context, bk *book.Book, plan []chapters.Chapter, destDir string) ([]Result, error) {
	if len(plan) == 0 {
		return nil, chapters.ErrEmptyChapterList
	}
	if err := fileutil.EnsureDir(destDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths, err := e.reservePaths(plan, destDir)
	if err != nil {
		return nil, err
	}

	// Book-named work directory so interrupted runs leave an identifiable
	// trail in the temp dir.
	workDir, err := os.MkdirTemp("", "sonus-"+textutil.SanitizeToken(bk.Title)+"-")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	results := make([]Result, len(plan))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i, ch := range plan {
		group.Go(func() error {
			results[i] = e.exportChapter(groupCtx, bk, ch, paths[i], workDir)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// reservePaths claims an output file per chapter up front so parallel workers
// never race over name collisions.
func (e *Exporter) reservePaths(plan []chapters.Chapter, destDir string) ([]string, error) {
	paths := make([]string, len(plan))
	for i, ch := range plan {
		name := fmt.Sprintf("%02d %s.mp3", ch.Track, textutil.SanitizeFileName(ch.Title))
		candidate := filepath.Join(destDir, name)
		if e.overwrite {
			paths[i] = candidate
			continue
		}
		reserved, err := fileutil.ReservePath(candidate)
		if err != nil {
			return nil, fmt.Errorf("reserve %s: %w", candidate, err)
		}
		paths[i] = reserved
	}
	return paths, nil
}

func (e *Exporter) exportChapter(ctx context.Context, bk *book.Book, ch chapters.Chapter, outputPath, workDir string) Result {
	result := Result{Chapter: ch, Path: outputPath}

	fail := func(err error) Result {
		if !e.overwrite {
			os.Remove(outputPath)
		}
		result.Status = StatusFailed
		result.Err = err
		result.Path = ""
		e.logger.Error("chapter export failed",
			"track", ch.Track,
			"title", ch.Title,
			"error", err)
		return result
	}

	pieces, err := ResolveRange(bk.Parts, ch.Start, ch.End)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrCutFailed, err))
	}

	cutPaths := make([]string, len(pieces))
	for j, piece := range pieces {
		cutPath := filepath.Join(workDir, fmt.Sprintf("ch%03d-p%02d.mp3", ch.Track, j))
		if err := e.client.Cut(ctx, piece.Path, piece.Start, piece.End, cutPath); err != nil {
			return fail(fmt.Errorf("%w: part %d: %v", ErrCutFailed, piece.PartIndex, err))
		}
		cutPaths[j] = cutPath
	}

	joined := filepath.Join(workDir, fmt.Sprintf("ch%03d.mp3", ch.Track))
	if err := e.client.Concat(ctx, cutPaths, joined); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrConcatFailed, err))
	}

	meta := ffmpeg.Metadata{
		Title:  ch.Title,
		Track:  ch.Track,
		Artist: bk.Author,
		Album:  bk.Title,
	}
	if err := e.client.Tag(ctx, joined, outputPath, meta); err != nil {
		// Keep the audio even when tagging fails.
		if copyErr := fileutil.CopyFile(joined, outputPath); copyErr != nil {
			return fail(fmt.Errorf("%w: %v", ErrTagFailed, errors.Join(err, copyErr)))
		}
		result.Status = StatusUntagged
		result.Err = fmt.Errorf("%w: %v", ErrTagFailed, err)
		e.logger.Warn("chapter written without tags",
			"track", ch.Track,
			"title", ch.Title,
			"error", err)
		return result
	}

	result.Status = StatusExported
	e.logger.Debug("chapter exported",
		"track", ch.Track,
		"title", ch.Title,
		"path", outputPath)
	return result
}
