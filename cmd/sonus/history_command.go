package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sonus/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past chapterization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortRunID(run.ID),
						run.BookTitle,
						run.Author,
						strconv.Itoa(run.Chapters),
						fmt.Sprintf("%d/%d", run.Exported+run.Untagged, run.Chapters),
						run.Status,
						run.StartedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Run", "Book", "Author", "Chapters", "Written", "Status", "Started"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-chapter outcomes for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				run, err := findRun(cmd, store, args[0])
				if err != nil {
					return err
				}

				records, err := store.RunChapters(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s by %s (%s, started %s)\n",
					run.BookTitle, displayAuthor(run.Author), run.Status,
					run.StartedAt.Local().Format(time.RFC1123))

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					detail := record.OutputPath
					if record.Error != "" {
						detail = record.Error
					}
					rows = append(rows, []string{
						strconv.Itoa(record.Track),
						record.Title,
						record.Status,
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Track", "Title", "Status", "Output"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func withHistoryStore(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// findRun matches a full or prefix run ID.
func findRun(cmd *cobra.Command, store *history.Store, id string) (history.Run, error) {
	runs, err := store.ListRuns(cmd.Context(), 0)
	if err != nil {
		return history.Run{}, err
	}
	var matched []history.Run
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
		if len(id) >= 4 && len(run.ID) >= len(id) && run.ID[:len(id)] == id {
			matched = append(matched, run)
		}
	}
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		return history.Run{}, fmt.Errorf("no run found for %q", id)
	default:
		return history.Run{}, fmt.Errorf("run ID %q is ambiguous (%d matches)", id, len(matched))
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
