package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/analyze"
	"github.com/lehigh-university-libraries/cardscanner/internal/config"
	"github.com/lehigh-university-libraries/cardscanner/internal/export"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

// analysisFlags override the environment for the analysis endpoint
type analysisFlags struct {
	endpoint  string
	csrfToken string
	csrfPage  string
	timeout   time.Duration
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Analysis endpoint (default $CARDSCANNER_ENDPOINT or "+config.DefaultEndpoint+")")
	cmd.Flags().StringVar(&f.csrfToken, "csrf-token", "", "X-CSRFToken value (default $CARDSCANNER_CSRF_TOKEN)")
	cmd.Flags().StringVar(&f.csrfPage, "csrf-page", "", "Page to read the csrfmiddlewaretoken field from (default $CARDSCANNER_CSRF_PAGE)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Analysis request timeout (default $CARDSCANNER_TIMEOUT or 2m)")
}

func (f *analysisFlags) apply(cfg *config.Config) {
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	if f.csrfToken != "" {
		cfg.CSRFToken = f.csrfToken
	}
	if f.csrfPage != "" {
		cfg.CSRFPage = f.csrfPage
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
}

// newAnalyzer builds the analysis client. A configured token wins over
// reading one from a page.
func newAnalyzer(cfg config.Config) *analyze.Client {
	client := analyze.NewClient(cfg.Endpoint, cfg.Timeout)
	switch {
	case cfg.CSRFToken != "":
		client.Tokens = analyze.StaticToken(cfg.CSRFToken)
	case cfg.CSRFPage != "":
		client.Tokens = &analyze.PageToken{PageURL: cfg.CSRFPage, HTTPClient: client.HTTPClient}
	}
	slog.Debug("Analysis client configured", "endpoint", cfg.Endpoint, "timeout", cfg.Timeout, "csrf_page", cfg.CSRFPage)
	return client
}

// newSheets returns nil when no spreadsheet is configured
func newSheets(ctx context.Context, cfg config.Config) (*export.SheetsAppender, error) {
	if cfg.SheetID == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	return export.NewSheetsAppender(ctx, cfg.SheetID, opts...)
}

func sheetFlags(cmd *cobra.Command, sheetID, credentials *string) {
	cmd.Flags().StringVar(sheetID, "sheet-id", "", "Google Sheet to append contacts to (default $GOOGLE_SHEET_ID)")
	cmd.Flags().StringVar(credentials, "credentials", "", "Service account JSON for Sheets (default $GOOGLE_APPLICATION_CREDENTIALS)")
}

func applySheetFlags(cfg *config.Config, sheetID, credentials string) {
	if sheetID != "" {
		cfg.SheetID = sheetID
	}
	if credentials != "" {
		cfg.Credentials = credentials
	}
}
