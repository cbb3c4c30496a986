package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/config"
	"github.com/lehigh-university-libraries/cardscanner/internal/console"
	"github.com/lehigh-university-libraries/cardscanner/internal/export"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		selection   string
		outDir      string
		bundle      string
		parquetPath string
		sheetID     string
		credentials string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export contacts from a saved scan",
		Long: `Reads a result set saved with "scan --save" (YAML) or a parquet contacts
table. The contacts chosen with --select are written as vCards; --parquet
and the Google Sheet always receive every valid contact. Failed entries
are never exported.`,
		Example: `  # One vCard per contact
  cardscanner export scan.yaml --out contacts

  # Rows 1 and 2 as a single multi-card file
  cardscanner export scan.yaml --select 1,2 --bundle team.vcf

  # Convert a saved scan to parquet and a sheet
  cardscanner export scan.yaml --select "" --parquet contacts.parquet --sheet-id 1AbC...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv()
			applySheetFlags(&cfg, sheetID, credentials)

			contacts, err := loadContacts(args[0])
			if err != nil {
				return err
			}
			slog.Info("Loaded contacts", "path", args[0], "contacts", len(contacts))

			chosen, err := choose(contacts, selection)
			if err != nil {
				return err
			}

			if len(chosen) > 0 {
				sink := export.DirSink{Dir: outDir}
				files := make([]vcard.File, 0, len(chosen))
				if bundle != "" {
					files = append(files, vcard.Bundle(bundle, chosen))
				} else {
					for _, c := range chosen {
						files = append(files, vcard.NewFile(c))
					}
				}
				for _, f := range files {
					path, err := sink.Save(f)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
				}
			}

			if parquetPath != "" {
				if err := export.WriteParquet(parquetPath, contacts); err != nil {
					return err
				}
			}

			sheet, err := newSheets(ctx, cfg)
			if err != nil {
				return err
			}
			if sheet != nil {
				return sheet.Append(ctx, contacts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selection, "select", "all", `Contacts to write as vCards: "all", rows such as "1,3-4", or "" for none`)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for vCard files")
	cmd.Flags().StringVar(&bundle, "bundle", "", "Write the chosen contacts into one multi-card file with this name")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write every valid contact as a parquet table")
	sheetFlags(cmd, &sheetID, &credentials)

	return cmd
}

// loadContacts returns the valid contacts of a saved scan
func loadContacts(path string) ([]models.ContactRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		file, err := export.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		return file.ResultSet().Valid, nil
	case ".parquet":
		records, err := export.ReadParquet(path)
		if err != nil {
			return nil, err
		}
		return models.NewResultSet(records).Valid, nil
	default:
		return nil, fmt.Errorf("unsupported file %s: expected .yaml or .parquet", path)
	}
}

func choose(contacts []models.ContactRecord, selection string) ([]models.ContactRecord, error) {
	if len(contacts) == 0 {
		return nil, nil
	}
	all, rows, err := console.ParseSelection(selection, len(contacts))
	if err != nil {
		return nil, err
	}
	if all {
		return contacts, nil
	}
	chosen := make([]models.ContactRecord, 0, len(rows))
	for _, row := range rows {
		chosen = append(chosen, contacts[row])
	}
	return chosen, nil
}
