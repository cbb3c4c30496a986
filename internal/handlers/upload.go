package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/analyze"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
)

// HandleFiles takes the picker or drop zone selection. A non-empty
// image_url field fetches that image instead. Files that cannot be used
// are reported on the page and the rest of the selection goes on.
func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)

	if imageURL := strings.TrimSpace(r.FormValue("image_url")); imageURL != "" {
		h.handleURLUpload(w, r, page, imageURL)
		return
	}

	var candidates []intake.Candidate
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File[analyze.FieldName] {
			file := intake.NewFormFile(header)
			// non-images are skipped by the intake without being read
			if !intake.IsImage(file.ContentType()) {
				candidates = append(candidates, file)
				continue
			}

			// request temp files are removed once the response is written
			buffered, err := intake.Buffer(file)
			if err != nil {
				slog.Error("Upload rejected", "page", page.ID, "file", header.Filename, "err", err)
				page.debug.Addf("ERROR: %v", err)
				if errors.Is(err, intake.ErrTooLarge) {
					page.view.Notify(fmt.Sprintf("%s is too large (max 10MB) and was skipped.", header.Filename))
				} else {
					page.view.Notify(fmt.Sprintf("%s could not be read and was skipped.", header.Filename))
				}
				continue
			}
			candidates = append(candidates, buffered)
		}
	}

	var accepted int
	if r.FormValue("source") == "drop" {
		accepted = page.scanner.Drop(r.Context(), candidates)
	} else {
		accepted = page.scanner.SelectFiles(r.Context(), candidates)
	}
	slog.Info("Files received", "page", page.ID, "files", len(candidates), "previews", accepted)

	h.redirectHome(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request, page *Page, imageURL string) {
	file, err := h.fetcher.Fetch(r.Context(), imageURL)
	if err != nil {
		slog.Error("Failed to fetch image URL", "page", page.ID, "url", imageURL, "err", err)
		page.debug.Addf("ERROR: %v", err)
		page.view.Notify("Failed to process image URL: " + err.Error())
		h.redirectHome(w, r)
		return
	}

	page.scanner.SelectFiles(r.Context(), []intake.Candidate{file})
	slog.Info("Image fetched from URL", "page", page.ID, "url", imageURL, "bytes", file.Size())

	h.redirectHome(w, r)
}
