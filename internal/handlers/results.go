package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// BundleName is the download name when several contacts are exported at once
const BundleName = "contacts.vcf"

// HandleSubmit posts the pending payload for analysis. Both the submit
// button and the form's own submit land here.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)

	err := page.scanner.Submit(r.Context())
	switch {
	case errors.Is(err, scanner.ErrSubmitInProgress):
		h.writeError(w, "Submission already in progress", http.StatusConflict)
		return
	case err == nil && h.sheets != nil:
		h.appendToSheet(r, page)
	}

	h.redirectHome(w, r)
}

func (h *Handler) appendToSheet(r *http.Request, page *Page) {
	rs := page.scanner.ResultSet()
	if rs.Len() == 0 {
		return
	}
	if err := h.sheets.Append(r.Context(), rs.Valid); err != nil {
		slog.Error("Failed to append contacts to sheet", "page", page.ID, "err", err)
		page.debug.Addf("ERROR: sheet append failed: %v", err)
		return
	}
	page.debug.Addf("Appended %d contacts to sheet", rs.Len())
}

// HandleSelect stores the table's checkbox state
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	if err := applySelection(r, page.scanner); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.redirectHome(w, r)
}

// HandleExport downloads the checked contacts. The checkboxes live in the
// export form, so their state is applied first. Several contacts download
// as one multi-card file.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)

	var selectErr error
	files, err := page.export(func() error {
		if selectErr = applySelection(r, page.scanner); selectErr != nil {
			return selectErr
		}
		return page.scanner.ExportSelected(r.Context())
	})
	if selectErr != nil {
		h.writeError(w, selectErr.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, scanner.ErrNoSelection) {
		h.redirectHome(w, r)
		return
	}
	if err != nil {
		h.writeError(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(files) == 0 {
		h.writeError(w, "Export produced no files", http.StatusInternalServerError)
		return
	}

	if len(files) == 1 {
		h.writeFile(w, files[0])
		return
	}
	h.writeFile(w, vcard.Join(BundleName, files))
}

// HandleExportContact downloads the row's vCard
func (h *Handler) HandleExportContact(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)

	row, err := strconv.Atoi(mux.Vars(r)["row"])
	if err != nil {
		h.writeError(w, "Invalid row", http.StatusBadRequest)
		return
	}

	files, err := page.export(func() error {
		return page.scanner.ExportContact(r.Context(), row)
	})
	if err != nil {
		var verr *scanner.ValidationError
		if errors.As(err, &verr) {
			h.writeError(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(files) != 1 {
		h.writeError(w, "Export produced no files", http.StatusInternalServerError)
		return
	}
	h.writeFile(w, files[0])
}

// HandleScanAnother resets the page to first load
func (h *Handler) HandleScanAnother(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	page.scanner.ScanAnother()
	h.redirectHome(w, r)
}

func applySelection(r *http.Request, c *scanner.Controller) error {
	if c.Table() == nil {
		return nil
	}

	c.SelectAll(false)
	if r.FormValue("all") != "" {
		c.SelectAll(true)
		return nil
	}
	for _, v := range r.Form["contact"] {
		row, err := strconv.Atoi(v)
		if err != nil {
			return &scanner.ValidationError{Message: "invalid contact row " + strconv.Quote(v)}
		}
		if err := c.Select(row, true); err != nil {
			return err
		}
	}
	return nil
}
