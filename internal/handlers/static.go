package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/cardscanner/internal/analyze"
	"github.com/lehigh-university-libraries/cardscanner/internal/results"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type thumbnailData struct {
	Name   string
	Src    template.URL
	Width  int
	Height int
}

type cellData struct {
	Text      string
	Href      template.URL
	NewWindow bool
}

type rowData struct {
	// Index is the table row, not the position in the response
	Index    int
	Name     string
	Selected bool
	Cells    []cellData
}

type pageData struct {
	TokenField string
	Token      string
	State      string

	Highlight      bool
	PreviewVisible bool
	Thumbnails     []thumbnailData
	Loading        bool

	ResultsVisible bool
	Heading        string
	Columns        []string
	Rows           []rowData
	AllSelected    bool

	Notices      []string
	Debug        []string
	DebugVisible bool
}

// HandleIndex renders the page, opening a page session on first visit
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageFromCookie(r)
	if !ok {
		var err error
		page, err = h.newPage()
		if err != nil {
			h.writeError(w, "Failed to create page: "+err.Error(), http.StatusInternalServerError)
			return
		}
		setPageCookie(w, page)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.pageData(page)); err != nil {
		h.writeError(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write page", "page", page.ID, "err", err)
	}
}

func (h *Handler) pageData(page *Page) pageData {
	v := page.view
	v.mu.Lock()
	data := pageData{
		TokenField:     analyze.TokenField,
		Token:          page.Token,
		Highlight:      v.highlight,
		PreviewVisible: v.previewVisible,
		Loading:        v.loading,
		ResultsVisible: v.resultsVisible && v.table != nil,
		Columns:        results.Columns,
	}
	for _, th := range v.thumbnails {
		data.Thumbnails = append(data.Thumbnails, thumbnailData{
			Name:   th.Name,
			Src:    template.URL(th.DataURL),
			Width:  th.Width,
			Height: th.Height,
		})
	}
	table := v.table
	v.mu.Unlock()

	data.Notices = v.takeNotices()
	data.State = page.scanner.State().String()
	data.Debug = page.debug.Lines()
	data.DebugVisible = page.debug.Visible()

	if table != nil {
		data.Heading = table.Heading()
		data.AllSelected = table.AllSelected()
		for i, row := range table.Snapshot() {
			rd := rowData{Index: i, Name: row.Contact.DisplayName(), Selected: row.Selected}
			for _, c := range row.Cells {
				// hrefs are built by the results package with a fixed scheme
				rd.Cells = append(rd.Cells, cellData{Text: c.Text, Href: template.URL(c.Href), NewWindow: c.NewWindow})
			}
			data.Rows = append(data.Rows, rd)
		}
	}
	return data
}
