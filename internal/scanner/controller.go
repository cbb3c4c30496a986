// Package scanner is the card scanner page controller. One Controller owns
// the pending payload, the result set and the view for a single page.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/cardscanner/internal/debuglog"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/results"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// State is the page state
type State int

const (
	Idle State = iota
	FilesSelected
	Submitting
	ResultsShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FilesSelected:
		return "files_selected"
	case Submitting:
		return "submitting"
	case ResultsShown:
		return "results_shown"
	default:
		return "unknown"
	}
}

// Controller drives one page. All view calls happen with mu held, so
// concurrent triggers (thumbnail reads, clicks, drops) never interleave on the view.
type Controller struct {
	view   View
	client Analyzer
	log    Diagnostics
	mounts Mounts
	drop   intake.DropZone

	mu           sync.Mutex
	state        State
	payload      intake.Payload
	table        *results.Table
	resultSet    *models.ResultSet
	submitting   bool
	previewReady bool
	// selection increments on every intake pass so late thumbnails of an
	// older selection are dropped
	selection uint64
	// epoch increments on reset so an in-flight submission cannot render
	// into a page that was cleared meanwhile
	epoch uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithDiagnostics routes the debug trail to d
func WithDiagnostics(d Diagnostics) Option {
	return func(c *Controller) {
		c.log = d
	}
}

// New resolves the host mounts once and returns a controller in the Idle
// state. A host missing a required mount is rejected.
func New(view View, client Analyzer, opts ...Option) (*Controller, error) {
	if view == nil {
		return nil, errors.New("scanner: nil view")
	}
	if client == nil {
		return nil, errors.New("scanner: nil analyzer")
	}

	c := &Controller{
		view:   view,
		client: client,
		log:    debuglog.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mounts = view.Mounts()
	if missing := c.mounts.missingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("host page is missing required mounts: %s", joinNames(missing))
	}
	if missing := c.mounts.missingOptional(); len(missing) > 0 {
		c.log.Addf("Mounts not found: %s", joinNames(missing))
	}

	c.log.Add("Card scanner initialized")
	return c, nil
}

// SelectFiles is the file picker path: it replaces the payload with the
// images among files and renders their previews
func (c *Controller) SelectFiles(ctx context.Context, files []intake.Candidate) int {
	c.log.Addf("File input changed: %d files selected", len(files))
	return c.accept(ctx, files)
}

// Drag applies an enter, over or leave event to the drop zone
func (c *Controller) Drag(ev intake.DragEvent) {
	if !c.mounts.DropZone {
		return
	}
	on := c.drop.Handle(ev)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetDropHighlight(on)
}

// Drop feeds dropped files into the same intake path as SelectFiles
func (c *Controller) Drop(ctx context.Context, files []intake.Candidate) int {
	if !c.mounts.DropZone {
		c.log.Add("Drop ignored: no drop zone")
		return 0
	}
	c.Drag(intake.Drop)
	c.log.Addf("Files dropped: %d", len(files))
	return c.accept(ctx, files)
}

func (c *Controller) accept(ctx context.Context, files []intake.Candidate) int {
	if len(files) == 0 {
		c.log.Add("No files to process")
		return 0
	}

	payload, skipped := intake.Accept(files, c.log)

	c.mu.Lock()
	c.selection++
	selection := c.selection
	c.payload = payload
	c.log.Addf("Payload replaced: %d images, %d skipped", payload.Len(), skipped)

	if c.state == Idle || c.state == FilesSelected {
		if payload.Empty() {
			c.state = Idle
		} else {
			c.state = FilesSelected
		}
	}

	if payload.Empty() {
		if c.previewReady {
			c.view.ClearPreview()
			c.view.ShowPreview(false)
		}
		c.mu.Unlock()
		return 0
	}

	c.ensurePreview()
	c.view.ClearPreview()
	c.view.ShowPreview(true)
	c.mu.Unlock()

	return intake.RenderThumbnails(ctx, payload, func(th intake.Thumbnail) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if selection != c.selection {
			return
		}
		c.view.AddThumbnail(th)
	}, c.log)
}

// ensurePreview requires mu
func (c *Controller) ensurePreview() {
	if c.previewReady {
		return
	}
	if !c.mounts.PreviewContainer || !c.mounts.ImagePreview {
		c.log.Add("Creating missing preview container")
		c.view.EnsurePreview()
	}
	c.previewReady = true
}

// Submit is the single submission entry point for both the submit button
// and the form submit event. It shows the loading indicator, posts the
// payload and renders the contacts. The loading indicator is hidden again
// whatever the outcome. Failures are logged and shown as a notice; the
// error is also returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.log.Add("Submission triggered")

	if c.submitting {
		c.mu.Unlock()
		c.log.Add("Submission ignored: already in progress")
		return ErrSubmitInProgress
	}
	if c.payload.Empty() {
		c.log.Add("Error: No images in payload")
		c.view.Notify(ErrEmptyPayload.Message)
		c.mu.Unlock()
		return ErrEmptyPayload
	}

	payload := c.payload
	epoch := c.epoch
	c.submitting = true
	c.state = Submitting
	c.view.ShowResults(false)
	if c.mounts.Loading {
		c.view.ShowLoading(true)
	}
	c.mu.Unlock()

	c.log.Addf("Sending %d images to server", payload.Len())
	records, err := c.analyze(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitting = false
	if c.mounts.Loading {
		c.view.ShowLoading(false)
	}

	if epoch != c.epoch {
		c.log.Add("Discarding response: page was reset during submission")
		return err
	}

	if err != nil {
		c.log.Addf("Error during submission: %v", err)
		slog.Error("Card analysis failed", "images", payload.Len(), "err", err)
		c.view.Notify(FailurePrefix + err.Error())
		// results are hidden, so they can no longer be exported
		c.table = nil
		c.resultSet = nil
		c.view.ClearResults()
		if c.payload.Empty() {
			c.state = Idle
		} else {
			c.state = FilesSelected
		}
		return err
	}

	c.table = results.Build(records, c.log)
	c.resultSet = models.NewResultSet(records)
	c.view.ClearResults()
	c.view.RenderResults(c.table)
	c.view.ShowResults(true)
	c.state = ResultsShown

	slog.Info("Contacts rendered", "records", len(records), "valid", c.resultSet.Len())
	return nil
}

func (c *Controller) analyze(ctx context.Context, payload intake.Payload) (records []models.ContactRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	return c.client.Analyze(ctx, payload)
}

// Select toggles one row's checkbox
func (c *Controller) Select(row int, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		return ErrNoResults
	}
	if err := c.table.Select(row, on); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// SelectAll mirrors the header checkbox onto every row
func (c *Controller) SelectAll(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table != nil {
		c.table.SelectAll(on)
	}
}

// ExportContact downloads the vCard of one row
func (c *Controller) ExportContact(ctx context.Context, row int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		return ErrNoResults
	}
	contact, err := c.table.Contact(row)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return c.download(ctx, contact)
}

// ExportSelected downloads a vCard for every checked row. With nothing
// checked it only shows a notice.
func (c *Controller) ExportSelected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var selected []models.ContactRecord
	if c.table != nil {
		selected = c.table.Selected()
	}
	if len(selected) == 0 {
		c.view.Notify(ErrNoSelection.Message)
		return ErrNoSelection
	}

	var errs []error
	for _, contact := range selected {
		if err := c.download(ctx, contact); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// download requires mu
func (c *Controller) download(ctx context.Context, contact models.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.log.Addf("Generating VCF for %s", contact.DisplayName())
	if err := c.view.Download(vcard.NewFile(contact)); err != nil {
		c.log.Addf("ERROR: VCF download failed: %v", err)
		return fmt.Errorf("failed to download vCard for %s: %w", contact.DisplayName(), err)
	}
	c.log.Add("VCF download triggered")
	return nil
}

// ScanAnother returns the page to its first-load state
func (c *Controller) ScanAnother() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Add("Scan another button clicked")
	c.view.ClearResults()
	c.view.ShowResults(false)
	c.view.ShowPreview(false)
	c.view.ClearPreview()

	c.table = nil
	c.resultSet = nil
	c.payload = intake.Payload{}
	c.selection++
	c.epoch++
	c.state = Idle
}

// State returns the current page state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload returns the pending upload
func (c *Controller) Payload() intake.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

// ResultSet returns the cached result set, nil when none
func (c *Controller) ResultSet() *models.ResultSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultSet
}

// Table returns the rendered table, nil when no results are shown
func (c *Controller) Table() *results.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table
}
