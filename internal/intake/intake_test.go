package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Addf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recorder) contains(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

type brokenFile struct{ name string }

func (b brokenFile) Name() string        { return b.name }
func (b brokenFile) Size() int64         { return 10 }
func (b brokenFile) ContentType() string { return "image/png" }
func (b brokenFile) Open() (io.ReadCloser, error) {
	return nil, errors.New("permission denied")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"IMAGE/GIF", true},
		{"image/svg+xml; charset=utf-8", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := IsImage(tt.contentType); got != tt.expected {
				t.Errorf("IsImage(%q) = %v, expected %v", tt.contentType, got, tt.expected)
			}
		})
	}
}

func TestAcceptSkipsNonImages(t *testing.T) {
	log := &recorder{}
	candidates := []Candidate{
		NewMemoryFile("notes.txt", "text/plain", []byte("hello")),
		NewMemoryFile("card.pdf", "application/pdf", []byte("%PDF-1.4")),
	}

	p, skipped := Accept(candidates, log)
	if !p.Empty() {
		t.Errorf("Expected empty payload, got %d entries", p.Len())
	}
	if skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", skipped)
	}
	if !log.contains("Skipping non-image file: notes.txt") {
		t.Error("Expected skip to be logged")
	}

	rendered := RenderThumbnails(context.Background(), p, func(Thumbnail) {
		t.Error("Expected no thumbnail for an empty payload")
	}, log)
	if rendered != 0 {
		t.Errorf("Expected 0 thumbnails, got %d", rendered)
	}
}

func TestAcceptKeepsSelectionOrder(t *testing.T) {
	data := pngBytes(t, 2, 2)
	p, skipped := Accept([]Candidate{
		NewMemoryFile("b.png", "image/png", data),
		NewMemoryFile("skip.txt", "text/plain", nil),
		NewMemoryFile("a.png", "image/png", data),
	}, &recorder{})

	if skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", skipped)
	}
	if got := strings.Join(p.Names(), ","); got != "b.png,a.png" {
		t.Errorf("Expected b.png,a.png, got %s", got)
	}
}

func TestRenderThumbnailsRendersEveryImage(t *testing.T) {
	data := pngBytes(t, 4, 3)
	var candidates []Candidate
	for i := 0; i < 8; i++ {
		candidates = append(candidates, NewMemoryFile(fmt.Sprintf("card%d.png", i), "image/png", data))
	}
	p, _ := Accept(candidates, &recorder{})

	var (
		mu    sync.Mutex
		names = map[string]Thumbnail{}
	)
	n := RenderThumbnails(context.Background(), p, func(th Thumbnail) {
		mu.Lock()
		defer mu.Unlock()
		names[th.Name] = th
	}, &recorder{})

	if n != 8 || len(names) != 8 {
		t.Fatalf("Expected 8 thumbnails, got n=%d unique=%d", n, len(names))
	}
	th := names["card0.png"]
	if !strings.HasPrefix(th.DataURL, "data:image/png;base64,") {
		t.Errorf("Expected png data URL, got %.40s", th.DataURL)
	}
	if th.Width != 4 || th.Height != 3 {
		t.Errorf("Expected 4x3, got %dx%d", th.Width, th.Height)
	}
}

func TestRenderThumbnailsContinuesAfterReadError(t *testing.T) {
	log := &recorder{}
	p, _ := Accept([]Candidate{
		brokenFile{name: "broken.png"},
		NewMemoryFile("ok.png", "image/png", pngBytes(t, 1, 1)),
	}, log)

	var got []string
	var mu sync.Mutex
	n := RenderThumbnails(context.Background(), p, func(th Thumbnail) {
		mu.Lock()
		got = append(got, th.Name)
		mu.Unlock()
	}, log)

	if n != 1 || len(got) != 1 || got[0] != "ok.png" {
		t.Errorf("Expected only ok.png rendered, got %v", got)
	}
	if !log.contains("failed to read broken.png") {
		t.Error("Expected read failure to be logged")
	}
}

func TestDropZoneHighlight(t *testing.T) {
	var z DropZone
	steps := []struct {
		ev       DragEvent
		expected bool
	}{
		{DragEnter, true},
		{DragOver, true},
		{DragLeave, false},
		{DragOver, true},
		{Drop, false},
	}
	for _, s := range steps {
		if got := z.Handle(s.ev); got != s.expected {
			t.Errorf("After %s expected highlight %v, got %v", s.ev, s.expected, got)
		}
	}
}

func TestNewLocalFile(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "card.png")
	if err := os.WriteFile(pngPath, pngBytes(t, 1, 1), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewLocalFile(pngPath)
	if err != nil {
		t.Fatalf("NewLocalFile failed: %v", err)
	}
	if f.Name() != "card.png" || f.ContentType() != "image/png" {
		t.Errorf("Expected card.png image/png, got %s %s", f.Name(), f.ContentType())
	}

	// No extension: content sniffing decides
	rawPath := filepath.Join(dir, "scan")
	if err := os.WriteFile(rawPath, pngBytes(t, 1, 1), 0644); err != nil {
		t.Fatal(err)
	}
	raw, err := NewLocalFile(rawPath)
	if err != nil {
		t.Fatalf("NewLocalFile failed: %v", err)
	}
	if raw.ContentType() != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", raw.ContentType())
	}

	if _, err := NewLocalFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFetcher(t *testing.T) {
	data := pngBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher()
	file, err := f.Fetch(context.Background(), srv.URL+"/cards/front.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if file.Name() != "front.png" || file.ContentType() != "image/png" || file.Size() != int64(len(data)) {
		t.Errorf("Unexpected file %s %s %d", file.Name(), file.ContentType(), file.Size())
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("Expected error for 404")
	}
}

func TestBuffer(t *testing.T) {
	src := NewMemoryFile("card.png", "image/png", []byte("pixels"))
	buf, err := Buffer(src)
	if err != nil {
		t.Fatalf("Buffer failed: %v", err)
	}
	if buf.Name() != "card.png" || buf.ContentType() != "image/png" || buf.Size() != 6 {
		t.Errorf("Unexpected buffered file: %s %s %d", buf.Name(), buf.ContentType(), buf.Size())
	}

	big := NewMemoryFile("big.png", "image/png", make([]byte, MaxFileSize+1))
	if _, err := Buffer(big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}
