package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sonus/internal/chapterizer"
	"sonus/internal/config"
	"sonus/internal/export"
	"sonus/internal/history"
)

// chapterFailureError reports a run that completed but skipped chapters; the
// process exits with a distinct code so scripts can tell partial output from
// no output.
type chapterFailureError struct {
	failed int
}

func (e *chapterFailureError) Error() string {
	return fmt.Sprintf("%d chapters failed", e.failed)
}

func newChapterizeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		generic   bool
		dryRun    bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "chapterize <directory>...",
		Short: "Split OverDrive audiobook directories into chapter files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if outputDir != "" {
				if outputDir, err = config.ExpandPath(outputDir); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}

			var store *history.Store
			if cfg.History.Enabled && !dryRun {
				store, err = history.Open(cfg.HistoryDBPath())
				if err != nil {
					return fmt.Errorf("open history database: %w", err)
				}
				defer store.Close()
			}

			runner, err := chapterizer.New(chapterizer.Options{
				Config:  cfg,
				Logger:  ctx.ensureLogger(),
				History: store,
			})
			if err != nil {
				return err
			}

			failedChapters := 0
			for _, arg := range args {
				sourceDir, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve source directory: %w", err)
				}

				summary, err := runner.Run(cmd.Context(), chapterizer.Request{
					SourceDir:     sourceDir,
					OutputDir:     outputDir,
					GenericTitles: generic,
					DryRun:        dryRun,
					Workers:       workers,
				})
				if err != nil {
					return err
				}

				printSummary(cmd, summary)
				failedChapters += summary.Failed
			}
			if failedChapters > 0 {
				return &chapterFailureError{failed: failedChapters}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory root (defaults to the configured output_dir)")
	cmd.Flags().BoolVarP(&generic, "generic", "g", false, "Name chapters \"Chapter N\" instead of using marker titles")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan chapters without cutting any audio")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel export workers (defaults to the configured value)")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *chapterizer.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s by %s: %d parts, %d chapters, %s total\n",
		summary.Book.Title,
		displayAuthor(summary.Book.Author),
		len(summary.Book.Parts),
		len(summary.Chapters),
		formatDuration(summary.Book.TotalDuration()))

	if summary.DryRun {
		rows := make([][]string, 0, len(summary.Chapters))
		for _, ch := range summary.Chapters {
			rows = append(rows, []string{
				strconv.Itoa(ch.Track),
				ch.Title,
				formatDuration(ch.Start),
				formatDuration(ch.Duration()),
			})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"Track", "Title", "Start", "Length"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight}))
		fmt.Fprintln(out, "Dry run: no files were written")
		return
	}

	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		detail := result.Path
		if result.Status == export.StatusFailed && result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(result.Chapter.Track),
			result.Chapter.Title,
			string(result.Status),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Track", "Title", "Status", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))

	fmt.Fprintf(out, "Exported %d, untagged %d, failed %d in %s\n",
		summary.Exported, summary.Untagged, summary.Failed,
		summary.Elapsed.Round(time.Second))
}

func displayAuthor(author string) string {
	if author == "" {
		return "Unknown Author"
	}
	return author
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
