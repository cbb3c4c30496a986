// Package handlers serves the card scanner page. Each browser page session
// owns one scanner.Controller; POSTs drive it and the next GET renders the
// state it left behind.
package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/lehigh-university-libraries/cardscanner/internal/storage"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// maxRequestSize caps a whole POST body; single files are capped by intake.MaxFileSize
const maxRequestSize = 256 << 20

// ContactAppender receives the valid contacts of every successful scan
type ContactAppender interface {
	Append(ctx context.Context, contacts []models.ContactRecord) error
}

type Handler struct {
	pages    *storage.SessionStore[*Page]
	analyzer scanner.Analyzer
	fetcher  *intake.Fetcher
	sheets   ContactAppender
	tmpl     *template.Template
}

type Option func(*Handler)

// WithSheets appends every scan's contacts to a
func WithSheets(a ContactAppender) Option {
	return func(h *Handler) {
		h.sheets = a
	}
}

func New(analyzer scanner.Analyzer, opts ...Option) *Handler {
	h := &Handler{
		pages:    storage.New[*Page](),
		analyzer: analyzer,
		fetcher:  intake.NewFetcher(),
		tmpl:     pageTemplate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires the page routes. Every POST needs a live page session and
// its token.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthcheck", h.HandleHealthcheck).Methods(http.MethodGet)

	post := r.Methods(http.MethodPost).Subrouter()
	post.Use(h.requirePage)
	post.HandleFunc("/files", h.HandleFiles)
	post.HandleFunc("/submit", h.HandleSubmit)
	post.HandleFunc("/select", h.HandleSelect)
	post.HandleFunc("/export", h.HandleExport)
	post.HandleFunc("/export/{row:[0-9]+}", h.HandleExportContact)
	post.HandleFunc("/scan-another", h.HandleScanAnother)

	return r
}

// Sweep drops page sessions idle for longer than maxIdle
func (h *Handler) Sweep(maxIdle time.Duration) int {
	return h.pages.Sweep(maxIdle)
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

// Response helpers
func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) writeFile(w http.ResponseWriter, f vcard.File) {
	w.Header().Set("Content-Type", f.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	if _, err := w.Write(f.Data); err != nil {
		slog.Error("Unable to write download", "file", f.Name, "err", err)
	}
}
