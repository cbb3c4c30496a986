// Package console hosts the scanner in a terminal: previews and progress go
// to stderr, the contacts table to stdout, and downloads into a directory.
package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/results"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	faint        = lipgloss.NewStyle().Faint(true)
)

// Saver stores a downloaded file and reports where it went
type Saver interface {
	Save(f vcard.File) (string, error)
}

// View renders the scanner page as terminal output
type View struct {
	Out    io.Writer
	ErrOut io.Writer
	Saver  Saver

	table *results.Table
	// Saved lists download paths in order
	Saved   []string
	Notices []string
}

func New(out, errOut io.Writer, saver Saver) *View {
	return &View{Out: out, ErrOut: errOut, Saver: saver}
}

// A terminal has no drop target; everything else maps onto stdout/stderr
func (v *View) Mounts() scanner.Mounts {
	m := scanner.AllMounts
	m.DropZone = false
	return m
}

func (v *View) EnsurePreview()       {}
func (v *View) SetDropHighlight(bool) {}
func (v *View) ClearPreview()        {}

func (v *View) ShowPreview(on bool) {
	if on {
		fmt.Fprintln(v.ErrOut, headingStyle.Render("Preview"))
	}
}

func (v *View) AddThumbnail(th intake.Thumbnail) {
	size := "unknown size"
	if th.Width > 0 {
		size = fmt.Sprintf("%dx%d", th.Width, th.Height)
	}
	fmt.Fprintf(v.ErrOut, "  %s %s\n", th.Name, faint.Render("("+size+")"))
}

func (v *View) ShowLoading(on bool) {
	if on {
		fmt.Fprintln(v.ErrOut, faint.Render("Analyzing cards..."))
	}
}

func (v *View) ShowResults(on bool) {
	if on && v.table != nil {
		fmt.Fprintln(v.Out, Render(v.table))
	}
}

func (v *View) RenderResults(t *results.Table) { v.table = t }
func (v *View) ClearResults()                  { v.table = nil }

func (v *View) Notify(msg string) {
	v.Notices = append(v.Notices, msg)
	fmt.Fprintln(v.ErrOut, noticeStyle.Render(msg))
}

func (v *View) Download(f vcard.File) error {
	path, err := v.Saver.Save(f)
	if err != nil {
		return err
	}
	v.Saved = append(v.Saved, path)
	fmt.Fprintf(v.ErrOut, "Saved %s\n", path)
	return nil
}

// Render draws the heading and contacts table. Rows are numbered from 1
// for --select.
func Render(t *results.Table) string {
	headers := append([]string{"#"}, results.Columns[:len(results.Columns)-1]...)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, r := range t.Snapshot() {
		cells := []string{strconv.Itoa(i + 1)}
		for _, c := range r.Cells {
			cells = append(cells, c.Text)
		}
		tbl.Row(cells...)
	}

	return headingStyle.Render(t.Heading()) + "\n" + tbl.String()
}
