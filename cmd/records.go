package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
	"github.com/okian/chartrec/internal/domain/types"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored chart records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			views, err := svc.RecordViews(ctx)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), views)
			return nil
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <song-id> <difficulty> <rate>",
		Short: "Record an achievement rate, keeping the best per chart",
		Long: "Rate is either the raw integer form (1005000) or a percentage (100.5%).\n" +
			"A lower or equal rate leaves the stored record untouched.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rate.Parse(args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.Add(ctx, model.Record{
				SongID:          args[0],
				DifficultyLevel: args[1],
				AchievementRate: r,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s %s\n",
				res.Outcome, displayTitle(res.Record), res.Record.DifficultyLevel, res.Record.Rate)
			return nil
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <song-id> <difficulty>",
		Aliases: []string{"rm"},
		Short:   "Delete the record for one chart",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			if err := svc.Remove(ctx, model.ChartKey{SongID: args[0], DifficultyLevel: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", args[0], args[1])
			return nil
		},
	}
}

func printRecords(w io.Writer, views []types.RecordView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No records.")
		return
	}
	fmt.Fprintf(w, "%-32s  %-6s  %-5s  %s\n", "Song", "Diff", "Level", "Rate")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, v := range views {
		title := displayTitle(v)
		if len(title) > 32 {
			title = title[:31] + "…"
		}
		fmt.Fprintf(w, "%-32s  %-6s  %5.1f  %s\n", title, v.DifficultyLevel, v.DifficultyDecimal, v.Rate)
	}
	fmt.Fprintf(w, "%s records\n", humanize.Comma(int64(len(views))))
}

func displayTitle(v types.RecordView) string {
	if v.Title != "" {
		return v.Title
	}
	return v.SongID
}
