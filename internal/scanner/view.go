package scanner

import (
	"context"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/results"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// View is the host page as the controller sees it. The controller calls it
// from one goroutine at a time.
type View interface {
	// Mounts reports which page elements the host provides
	Mounts() Mounts
	// EnsurePreview creates the preview container and image area when the host lacks them
	EnsurePreview()

	SetDropHighlight(on bool)
	ShowPreview(on bool)
	ClearPreview()
	AddThumbnail(th intake.Thumbnail)

	ShowLoading(on bool)
	ShowResults(on bool)
	RenderResults(t *results.Table)
	ClearResults()

	// Notify shows a blocking notice to the user
	Notify(msg string)
	// Download hands a file to the user and releases it before returning
	Download(f vcard.File) error
}

// Analyzer sends a payload to the analysis endpoint
type Analyzer interface {
	Analyze(ctx context.Context, payload intake.Payload) ([]models.ContactRecord, error)
}

// Diagnostics receives the debug trail of every user action
type Diagnostics interface {
	Add(msg string)
	Addf(format string, args ...any)
}

// Mounts lists the page elements a host provides. The upload form, results
// container and contact details mount are required; the preview pair is
// created on demand; the rest are skipped when absent.
type Mounts struct {
	DropZone         bool
	FileInput        bool
	UploadForm       bool
	SubmitButton     bool
	ScanAnother      bool
	PreviewContainer bool
	ImagePreview     bool
	ResultsContainer bool
	ContactDetails   bool
	Loading          bool
	CSRFField        bool
}

// AllMounts is a host that provides every element
var AllMounts = Mounts{
	DropZone:         true,
	FileInput:        true,
	UploadForm:       true,
	SubmitButton:     true,
	ScanAnother:      true,
	PreviewContainer: true,
	ImagePreview:     true,
	ResultsContainer: true,
	ContactDetails:   true,
	Loading:          true,
	CSRFField:        true,
}

func (m Mounts) missingRequired() []string {
	var missing []string
	if !m.UploadForm {
		missing = append(missing, "upload form")
	}
	if !m.ResultsContainer {
		missing = append(missing, "results container")
	}
	if !m.ContactDetails {
		missing = append(missing, "contact details")
	}
	return missing
}

func (m Mounts) missingOptional() []string {
	var missing []string
	check := []struct {
		present bool
		name    string
	}{
		{m.DropZone, "drop zone"},
		{m.FileInput, "file input"},
		{m.SubmitButton, "submit button"},
		{m.ScanAnother, "scan another button"},
		{m.PreviewContainer, "preview container"},
		{m.ImagePreview, "image preview"},
		{m.Loading, "loading indicator"},
		{m.CSRFField, "CSRF field"},
	}
	for _, c := range check {
		if !c.present {
			missing = append(missing, c.name)
		}
	}
	return missing
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
