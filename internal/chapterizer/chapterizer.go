package chapterizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sonus/internal/book"
	"sonus/internal/chapters"
	"sonus/internal/config"
	"sonus/internal/export"
	"sonus/internal/history"
	"sonus/internal/logging"
	"sonus/internal/media/ffmpeg"
	"sonus/internal/notifications"
	"sonus/internal/textutil"
)

// ErrAlreadyRunning indicates another chapterization holds the run lock.
var ErrAlreadyRunning = errors.New("another sonus run is already in progress")

// test seam
var scanBook = book.Scan

// Options wires the chapterizer's collaborators. Config is required; the rest
// default from it when nil.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   ffmpeg.Client
	History  *history.Store
	Notifier notifications.Service
}

// Request describes a single chapterization run. GenericTitles and Workers
// act as overrides on top of the configured export settings.
type Request struct {
	SourceDir     string
	OutputDir     string
	GenericTitles bool
	DryRun        bool
	Workers       int
}

// Summary reports what a run produced.
type Summary struct {
	RunID     string
	Book      *book.Book
	Chapters  []chapters.Chapter
	Results   []export.Result
	OutputDir string
	Exported  int
	Untagged  int
	Failed    int
	Elapsed   time.Duration
	DryRun    bool
}

// Chapterizer runs the scan, plan, and export pipeline.
type Chapterizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   ffmpeg.Client
	store    *history.Store
	notifier notifications.Service
	lock     *flock.Flock
}

// New constructs a Chapterizer from Options.
func New(opts Options) (*Chapterizer, error) {
	if opts.Config == nil {
		return nil, errors.New("config required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	client := opts.Client
	if client == nil {
		client = ffmpeg.NewCLI(
			ffmpeg.WithBinary(opts.Config.FFmpeg.FFmpegBinary),
			ffmpeg.WithTimeout(time.Duration(opts.Config.FFmpeg.CutTimeout)*time.Second),
		)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}
	return &Chapterizer{
		cfg:      opts.Config,
		logger:   logging.WithComponent(logger, "chapterizer"),
		client:   client,
		store:    opts.History,
		notifier: notifier,
		lock:     flock.New(opts.Config.LockPath()),
	}, nil
}

// Run executes the pipeline for one audiobook directory. It returns a Summary
// even when individual chapters fail; the error covers fatal problems that
// stop the whole run.
func (c *Chapterizer) Run(ctx context.Context, req Request) (*Summary, error) {
	if err := c.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	locked, err := c.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = c.lock.Unlock() }()

	started := time.Now()
	summary, err := c.run(ctx, req, started)
	if err != nil {
		c.logger.Error("run failed", "source", req.SourceDir, "error", err)
		if notifyErr := c.notifier.NotifyError(ctx, err, filepath.Base(req.SourceDir)); notifyErr != nil {
			c.logger.Warn("error notification failed", "error", notifyErr)
		}
		return nil, err
	}
	return summary, nil
}

func (c *Chapterizer) run(ctx context.Context, req Request, started time.Time) (*Summary, error) {
	bk, err := scanBook(ctx, req.SourceDir, book.Options{
		FFprobeBinary: c.cfg.FFmpeg.FFprobeBinary,
		ProbeTimeout:  time.Duration(c.cfg.FFmpeg.ProbeTimeout) * time.Second,
		Logger:        c.logger,
	})
	if err != nil {
		return nil, err
	}

	generic := req.GenericTitles || c.cfg.Export.GenericChapters
	plan, err := c.planChapters(bk, generic)
	if err != nil {
		return nil, err
	}

	destDir := c.destinationDir(bk, req.OutputDir)
	summary := &Summary{
		RunID:     uuid.NewString(),
		Book:      bk,
		Chapters:  plan,
		OutputDir: destDir,
		DryRun:    req.DryRun,
	}

	c.logger.Info("book scanned",
		"title", bk.Title,
		"author", bk.Author,
		"parts", len(bk.Parts),
		"chapters", len(plan),
		"duration", bk.TotalDuration().Round(time.Second))

	if req.DryRun {
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	if err := c.notifier.NotifyRunStarted(ctx, bk.Title, len(bk.Parts)); err != nil {
		c.logger.Warn("start notification failed", "error", err)
	}

	workers := req.Workers
	if workers <= 0 {
		workers = c.cfg.Export.Workers
	}
	exporter, err := export.New(export.Options{
		Client:    c.client,
		Logger:    c.logger,
		Workers:   workers,
		Overwrite: c.cfg.Export.OverwriteOutput,
	})
	if err != nil {
		return nil, err
	}

	results, err := exporter.ExportAll(ctx, bk, plan, destDir)
	if err != nil {
		return nil, err
	}

	summary.Results = results
	for _, result := range results {
		switch result.Status {
		case export.StatusExported:
			summary.Exported++
		case export.StatusUntagged:
			summary.Untagged++
		case export.StatusFailed:
			summary.Failed++
		}
	}
	summary.Elapsed = time.Since(started)

	c.recordRun(ctx, req, summary, started)

	if err := c.notifier.NotifyRunCompleted(ctx, bk.Title, summary.Exported+summary.Untagged, summary.Failed, summary.Elapsed); err != nil {
		c.logger.Warn("completion notification failed", "error", err)
	}

	c.logger.Info("run complete",
		"exported", summary.Exported,
		"untagged", summary.Untagged,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Second))
	return summary, nil
}

// planChapters turns the book's per-part markers into the final chapter list.
func (c *Chapterizer) planChapters(bk *book.Book, generic bool) ([]chapters.Chapter, error) {
	markers, err := chapters.Normalize(bk.MarkersPerPart(), bk.Durations())
	if err != nil {
		return nil, err
	}
	boundaries := chapters.Collapse(markers)
	plan, err := chapters.Plan(boundaries, bk.TotalDuration())
	if errors.Is(err, chapters.ErrEmptyChapterList) {
		// No usable boundaries anywhere: fall back to one chapter per part.
		c.logger.Warn("no chapter boundaries found, exporting whole parts")
		plan = wholePartChapters(bk)
	} else if err != nil {
		return nil, err
	}
	if generic {
		for i := range plan {
			plan[i].Title = fmt.Sprintf("Chapter %d", plan[i].Track)
		}
	}
	return plan, nil
}

// wholePartChapters maps each part to one chapter spanning its full length.
func wholePartChapters(bk *book.Book) []chapters.Chapter {
	plan := make([]chapters.Chapter, 0, len(bk.Parts))
	var base time.Duration
	for i, part := range bk.Parts {
		title := textutil.TitleFromFileName(part.Path)
		if title == "" {
			title = fmt.Sprintf("%s - Part %d", bk.Title, i+1)
		}
		plan = append(plan, chapters.Chapter{
			Title: title,
			Start: base,
			End:   base + part.Duration,
			Track: i + 1,
		})
		base += part.Duration
	}
	return plan
}

// destinationDir resolves output/<author>/<book title> under the configured
// or requested output root.
func (c *Chapterizer) destinationDir(bk *book.Book, override string) string {
	root := override
	if root == "" {
		root = c.cfg.Paths.OutputDir
	}
	author := textutil.SanitizeFileName(bk.Author)
	if author == "" {
		author = "Unknown Author"
	}
	title := textutil.SanitizeFileName(bk.Title)
	if title == "" {
		title = "Unknown Book"
	}
	return filepath.Join(root, author, title)
}

func (c *Chapterizer) recordRun(ctx context.Context, req Request, summary *Summary, started time.Time) {
	if c.store == nil || !c.cfg.History.Enabled {
		return
	}

	status := "completed"
	if summary.Failed > 0 {
		status = "completed_with_errors"
	}
	run := history.Run{
		ID:         summary.RunID,
		BookTitle:  summary.Book.Title,
		Author:     summary.Book.Author,
		SourceDir:  req.SourceDir,
		OutputDir:  summary.OutputDir,
		Parts:      len(summary.Book.Parts),
		Chapters:   len(summary.Chapters),
		Exported:   summary.Exported,
		Untagged:   summary.Untagged,
		Failed:     summary.Failed,
		Status:     status,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	records := make([]history.ChapterRecord, 0, len(summary.Results))
	for _, result := range summary.Results {
		record := history.ChapterRecord{
			Track:      result.Chapter.Track,
			Title:      result.Chapter.Title,
			Status:     string(result.Status),
			OutputPath: result.Path,
		}
		if result.Err != nil {
			record.Error = result.Err.Error()
		}
		records = append(records, record)
	}

	if err := c.store.RecordRun(ctx, run, records); err != nil {
		c.logger.Warn("history record failed", "error", err)
		return
	}
	if err := c.store.Prune(ctx, c.cfg.History.Keep); err != nil {
		c.logger.Warn("history prune failed", "error", err)
	}
}
