// Package results turns analysed contacts into the selectable contacts table.
package results

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
)

// Placeholder fills cells whose field is empty
const Placeholder = "-"

// Columns are the table headings after the selection column
var Columns = []string{"Name", "Position", "Company", "Phone", "Email", "Website", "Address", "Actions"}

// Diagnostics receives notes about skipped entries
type Diagnostics interface {
	Addf(format string, args ...any)
}

// Cell is one rendered field. Href is empty for plain text cells.
type Cell struct {
	Field     string
	Text      string
	Href      string
	NewWindow bool
}

// Row is one valid contact
type Row struct {
	// Index points into Table.Records, the full response list
	Index    int
	Contact  models.ContactRecord
	Cells    []Cell
	Selected bool
}

// Table is the rendered result set
type Table struct {
	mu      sync.Mutex
	Records []models.ContactRecord
	Rows    []Row
	Skipped int
}

// Build renders one row per record without an error; error entries are
// logged and counted but never rendered
func Build(records []models.ContactRecord, log Diagnostics) *Table {
	t := &Table{Records: records}
	for i, c := range records {
		if c.Failed() {
			log.Addf("Skipping error entry: %s", c.Error)
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, Row{
			Index:   i,
			Contact: c,
			Cells:   cells(c),
		})
	}
	log.Addf("Displaying %d contacts", len(t.Rows))
	return t
}

// Heading is the count line shown above the table
func (t *Table) Heading() string {
	return fmt.Sprintf("%d Contacts Found", len(t.Rows))
}

// Select toggles the checkbox of one row
func (t *Table) Select(row int, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("no contact row %d", row)
	}
	t.Rows[row].Selected = on
	return nil
}

// SelectAll mirrors the header checkbox onto every row
func (t *Table) SelectAll(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.Rows {
		t.Rows[i].Selected = on
	}
}

// Selected returns the checked contacts in table order
func (t *Table) Selected() []models.ContactRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.ContactRecord
	for _, r := range t.Rows {
		if r.Selected {
			out = append(out, r.Contact)
		}
	}
	return out
}

// AllSelected reports whether the header checkbox should appear checked
func (t *Table) AllSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Rows) == 0 {
		return false
	}
	for _, r := range t.Rows {
		if !r.Selected {
			return false
		}
	}
	return true
}

// Contact returns the contact rendered in row
func (t *Table) Contact(row int) (models.ContactRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= len(t.Rows) {
		return models.ContactRecord{}, fmt.Errorf("no contact row %d", row)
	}
	return t.Rows[row].Contact, nil
}

// Snapshot copies the rows so a view can render without holding the table
func (t *Table) Snapshot() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, len(t.Rows))
	copy(out, t.Rows)
	return out
}

func cells(c models.ContactRecord) []Cell {
	return []Cell{
		textCell("name", c.Name),
		textCell("position", c.Position),
		textCell("company", c.Company),
		linkCell("phone", c.Phone, PhoneHref(c.Phone), false),
		linkCell("email", c.Email, EmailHref(c.Email), false),
		linkCell("website", c.Website, WebsiteHref(c.Website), true),
		textCell("address", c.Address),
	}
}

func textCell(field, value string) Cell {
	if value == "" {
		return Cell{Field: field, Text: Placeholder}
	}
	return Cell{Field: field, Text: value}
}

func linkCell(field, value, href string, newWindow bool) Cell {
	if value == "" {
		return Cell{Field: field, Text: Placeholder}
	}
	return Cell{Field: field, Text: value, Href: href, NewWindow: newWindow}
}

// PhoneHref links a phone number with the tel: scheme
func PhoneHref(phone string) string {
	return "tel:" + phone
}

// EmailHref links an address with the mailto: scheme
func EmailHref(email string) string {
	return "mailto:" + email
}

// WebsiteHref adds http:// unless the site already names a scheme starting with http
func WebsiteHref(site string) string {
	if strings.HasPrefix(site, "http") {
		return site
	}
	return "http://" + site
}
