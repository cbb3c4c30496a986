package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetColumns is the header row of the contacts spreadsheet
var SheetColumns = []string{
	"Name",
	"Business Name",
	"Job Title",
	"Contact Number",
	"Email",
	"Website",
	"Address",
	"Created At",
}

const headerRange = "A1:H1"

// SheetsAppender appends contacts to a Google Sheet
type SheetsAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	now           func() time.Time
}

// NewSheetsAppender connects to the Sheets API. Credentials come from opts,
// typically option.WithCredentialsFile.
func NewSheetsAppender(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsAppender, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sheets service: %w", err)
	}
	return &SheetsAppender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
	}, nil
}

// EnsureHeader writes the header row when the sheet has none
func (a *SheetsAppender) EnsureHeader(ctx context.Context) error {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	header := make([]interface{}, len(SheetColumns))
	for i, c := range SheetColumns {
		header[i] = c
	}
	_, err = a.svc.Spreadsheets.Values.Update(a.spreadsheetID, headerRange, &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}
	slog.Info("Sheet headers initialized", "spreadsheet", a.spreadsheetID)
	return nil
}

// Append adds one row per contact below the existing data
func (a *SheetsAppender) Append(ctx context.Context, contacts []models.ContactRecord) error {
	if len(contacts) == 0 {
		return nil
	}
	if err := a.EnsureHeader(ctx); err != nil {
		return err
	}

	created := a.now().Format("2006-01-02 15:04:05")
	rows := make([][]interface{}, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []interface{}{
			c.Name,
			c.Company,
			c.Position,
			c.Phone,
			c.Email,
			c.Website,
			c.Address,
			created,
		})
	}

	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, "A1", &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet: %w", err)
	}

	slog.Info("Contacts appended to sheet", "spreadsheet", a.spreadsheetID, "rows", len(rows))
	return nil
}
