package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cardscanner/internal/analyze"
	"github.com/lehigh-university-libraries/cardscanner/internal/debuglog"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// CookieName identifies the page session
const CookieName = "cardscanner_page"

// tokenHeader is accepted in place of the hidden form field, as Django does
const tokenHeader = "X-CSRFToken"

// Page is one open scanner page
type Page struct {
	ID    string
	Token string

	view    *pageView
	debug   *debuglog.Reporter
	scanner *scanner.Controller

	// exportMu spans an export and the drain of its queued downloads
	exportMu sync.Mutex
}

type pageKey struct{}

// export runs one export and returns the files it queued. Overlapping
// exports on the same page wait, so each response gets its own files.
func (p *Page) export(run func() error) ([]vcard.File, error) {
	p.exportMu.Lock()
	defer p.exportMu.Unlock()
	err := run()
	return p.view.takeDownloads(), err
}

func (h *Handler) newPage() (*Page, error) {
	id := uuid.NewString()
	page := &Page{
		ID:    id,
		Token: strings.ReplaceAll(uuid.NewString(), "-", ""),
		view:  &pageView{},
		debug: debuglog.New(slog.Default().With("page", id)),
	}

	c, err := scanner.New(page.view, h.analyzer, scanner.WithDiagnostics(page.debug))
	if err != nil {
		return nil, err
	}
	page.scanner = c

	h.pages.Set(id, page)
	slog.Info("Page session created", "page", id, "sessions", h.pages.Len())
	return page, nil
}

// pageFromCookie returns the caller's page session, if it is still alive
func (h *Handler) pageFromCookie(r *http.Request) (*Page, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return h.pages.Get(cookie.Value)
}

func setPageCookie(w http.ResponseWriter, page *Page) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    page.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requirePage resolves the page session and checks the page token before
// any POST reaches the controller
func (h *Handler) requirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.pageFromCookie(r)
		if !ok {
			h.writeError(w, "Page session not found", http.StatusNotFound)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
				return
			}
		}

		token := r.FormValue(analyze.TokenField)
		if token == "" {
			token = r.Header.Get(tokenHeader)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(page.Token)) != 1 {
			h.writeError(w, "CSRF token missing or incorrect", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), pageKey{}, page)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func pageFrom(r *http.Request) *Page {
	page, _ := r.Context().Value(pageKey{}).(*Page)
	return page
}
