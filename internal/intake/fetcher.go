package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Fetcher downloads images offered by URL instead of as a file
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a fetcher with a 30 second timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads imageURL into memory. The MIME type comes from the
// response header, or from the bytes when the server sends none.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (*MemoryFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("image too large (max 10MB): %s", imageURL)
	}

	name := filenameFromURL(imageURL)
	slog.Info("Downloaded image", "url", imageURL, "name", name, "bytes", len(data))

	return NewMemoryFile(name, resp.Header.Get("Content-Type"), data), nil
}

func filenameFromURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "image.jpg"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "image.jpg"
	}
	return name
}
