package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the song catalog by title or artist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			songs, err := svc.SearchSongs(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(songs) == 0 {
				fmt.Fprintln(w, "No matching songs.")
				return nil
			}
			for _, s := range songs {
				levels := make([]string, len(s.Charts))
				for i, ch := range s.Charts {
					levels[i] = fmt.Sprintf("%s(%.1f)", ch.DifficultyLevel, ch.DifficultyDecimal)
				}
				fmt.Fprintf(w, "%-20s  %-28s  %-20s  %s\n", s.ID, s.Title, s.Artist, strings.Join(levels, " "))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results (0 for all)")
	return cmd
}
