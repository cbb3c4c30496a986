package handlers

import (
	"sync"

	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/results"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// pageView records what the controller asked the page to show. The next
// GET renders it; notices and downloads are consumed once.
type pageView struct {
	mu sync.Mutex

	highlight      bool
	previewVisible bool
	thumbnails     []intake.Thumbnail
	loading        bool
	resultsVisible bool
	table          *results.Table
	notices        []string
	downloads      []vcard.File
}

// The served page template carries every mount
func (v *pageView) Mounts() scanner.Mounts { return scanner.AllMounts }

// The template always carries the preview container
func (v *pageView) EnsurePreview() {}

func (v *pageView) SetDropHighlight(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.highlight = on
}

func (v *pageView) ShowPreview(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.previewVisible = on
}

func (v *pageView) ClearPreview() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.thumbnails = nil
}

func (v *pageView) AddThumbnail(th intake.Thumbnail) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.thumbnails = append(v.thumbnails, th)
}

func (v *pageView) ShowLoading(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = on
}

func (v *pageView) ShowResults(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resultsVisible = on
}

func (v *pageView) RenderResults(t *results.Table) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.table = t
}

func (v *pageView) ClearResults() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.table = nil
}

func (v *pageView) Notify(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, msg)
}

// Download queues f for the current response; the handler writes and drops it
func (v *pageView) Download(f vcard.File) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.downloads = append(v.downloads, f)
	return nil
}

func (v *pageView) takeDownloads() []vcard.File {
	v.mu.Lock()
	defer v.mu.Unlock()
	files := v.downloads
	v.downloads = nil
	return files
}

func (v *pageView) takeNotices() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	notices := v.notices
	v.notices = nil
	return notices
}
