package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/chartrec/internal/domain/importer"
	"github.com/okian/chartrec/internal/domain/types"
)

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Replace all records with those in a capture file",
		Long: "Reads a cloud save or social capture as JSON from a file, or from stdin\n" +
			"when the argument is omitted or '-'. The stored collection is replaced.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args, c.cfg.MaxImportBytes)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			summary, err := svc.Import(ctx, raw)
			if err != nil {
				printImportError(cmd.ErrOrStderr(), err)
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newFetchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the cloud save capture and import it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			summary, err := svc.FetchAndImport(ctx)
			if err != nil {
				printImportError(cmd.ErrOrStderr(), err)
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func readPayload(cmd *cobra.Command, args []string, limit int64) ([]byte, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("capture exceeds %s", humanize.IBytes(uint64(limit)))
	}
	return raw, nil
}

func printSummary(w io.Writer, s types.ImportSummary) {
	fmt.Fprintf(w, "imported %s of %s entries from %s capture",
		humanize.Comma(int64(s.Imported)), humanize.Comma(int64(s.Entries)), s.Shape)
	if s.Unplayed > 0 {
		fmt.Fprintf(w, ", %s unplayed dropped", humanize.Comma(int64(s.Unplayed)))
	}
	fmt.Fprintf(w, " (%s)\n", humanize.Time(s.At))
	for _, r := range s.Rejected {
		fmt.Fprintf(w, "  skipped #%d %s %s: %s\n", r.Index, r.SongID, r.DifficultyLevel, r.Reason)
	}
}

func printImportError(w io.Writer, err error) {
	var ie *importer.Error
	if !errors.As(err, &ie) {
		return
	}
	for _, r := range ie.Rejected {
		fmt.Fprintf(w, "  #%d %s %s: %v\n", r.Index, r.SongID, r.DifficultyLevel, r.Reason)
	}
}
