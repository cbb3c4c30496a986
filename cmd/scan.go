package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/config"
	"github.com/lehigh-university-libraries/cardscanner/internal/console"
	"github.com/lehigh-university-libraries/cardscanner/internal/debuglog"
	"github.com/lehigh-university-libraries/cardscanner/internal/export"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var (
		selection   string
		outDir      string
		savePath    string
		parquetPath string
		sheetID     string
		credentials string
		debug       bool
		analysis    analysisFlags
	)

	cmd := &cobra.Command{
		Use:   "scan FILE|URL...",
		Short: "Scan business card images from the terminal",
		Long: `Sends the given card images to the analysis endpoint in one request and
prints the contacts found. Arguments are image files or http(s) URLs;
non-image files are skipped.

Rows are numbered from 1. --select picks the contacts to save as vCards
into --out.`,
		Example: `  # Scan two cards and print the contacts
  cardscanner scan front.jpg back.jpg

  # Save every contact as a vCard and keep the result set
  cardscanner scan cards/*.jpg --select all --out contacts --save scan.yaml

  # Scan a card by URL and append the contacts to a Google Sheet
  cardscanner scan https://example.org/card.png --sheet-id 1AbC...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv()
			analysis.apply(&cfg)
			applySheetFlags(&cfg, sheetID, credentials)

			candidates, err := loadCandidates(ctx, args)
			if err != nil {
				return err
			}

			view := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), export.DirSink{Dir: outDir})
			trail := debuglog.New(slog.Default())
			c, err := scanner.New(view, newAnalyzer(cfg), scanner.WithDiagnostics(trail))
			if err != nil {
				return err
			}
			if debug {
				defer func() { fmt.Fprint(cmd.ErrOrStderr(), trail.Text()) }()
			}

			c.SelectFiles(ctx, candidates)
			if err := c.Submit(ctx); err != nil {
				return err
			}

			rs := c.ResultSet()
			if savePath != "" {
				info := export.ScanInfo{Endpoint: cfg.Endpoint, Images: c.Payload().Names()}
				if err := export.SaveYAML(savePath, info, rs); err != nil {
					return err
				}
				slog.Info("Result set saved", "path", savePath, "records", len(rs.Records))
			}
			if parquetPath != "" && rs.Len() > 0 {
				if err := export.WriteParquet(parquetPath, rs.Valid); err != nil {
					return err
				}
				slog.Info("Contacts written", "path", parquetPath, "contacts", rs.Len())
			}

			sheet, err := newSheets(ctx, cfg)
			if err != nil {
				return err
			}
			if sheet != nil {
				if err := sheet.Append(ctx, rs.Valid); err != nil {
					return err
				}
			}

			return exportSelection(ctx, c, selection)
		},
	}

	cmd.Flags().StringVar(&selection, "select", "", `Contacts to save as vCards: "all" or rows such as "1,3-4"`)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for vCard downloads")
	cmd.Flags().StringVar(&savePath, "save", "", "Save the result set as YAML")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write the valid contacts as a parquet table")
	cmd.Flags().BoolVar(&debug, "debug", false, "Print the diagnostic trail when done")
	sheetFlags(cmd, &sheetID, &credentials)
	analysis.register(cmd)

	return cmd
}

// loadCandidates resolves local paths and fetches URLs
func loadCandidates(ctx context.Context, args []string) ([]intake.Candidate, error) {
	fetcher := intake.NewFetcher()
	candidates := make([]intake.Candidate, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			file, err := fetcher.Fetch(ctx, arg)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch %s: %w", arg, err)
			}
			candidates = append(candidates, file)
			continue
		}

		file, err := intake.NewLocalFile(arg)
		if err != nil {
			return nil, err
		}
		if file.Size() > intake.MaxFileSize {
			return nil, fmt.Errorf("%s: %w", arg, intake.ErrTooLarge)
		}
		candidates = append(candidates, file)
	}
	return candidates, nil
}

func exportSelection(ctx context.Context, c *scanner.Controller, selection string) error {
	table := c.Table()
	if table == nil || selection == "" {
		return nil
	}
	count := len(table.Snapshot())
	if count == 0 {
		return nil
	}

	all, rows, err := console.ParseSelection(selection, count)
	if err != nil {
		return err
	}
	if all {
		c.SelectAll(true)
	}
	for _, row := range rows {
		if err := c.Select(row, true); err != nil {
			return err
		}
	}
	return c.ExportSelected(ctx)
}
