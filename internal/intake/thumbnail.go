package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"
	"sync/atomic"
)

// Thumbnail is a displayable preview of one payload image
type Thumbnail struct {
	Name    string
	DataURL string
	Width   int
	Height  int
}

// ReadError is a failed preview read for a single file. It never aborts the batch.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// RenderThumbnails reads every payload entry concurrently and hands each
// finished preview to emit. emit may be called from several goroutines and
// in any order. Failed reads are logged and skipped. The call returns once
// every read has finished, with the number of previews emitted.
func RenderThumbnails(ctx context.Context, p Payload, emit func(Thumbnail), log Diagnostics) int {
	var (
		wg       sync.WaitGroup
		rendered atomic.Int64
	)

	for _, entry := range p.entries {
		wg.Add(1)
		go func(c Candidate) {
			defer wg.Done()
			log.Addf("Creating preview for: %s (%d bytes)", c.Name(), c.Size())

			thumb, err := readThumbnail(ctx, c)
			if err != nil {
				log.Addf("ERROR: %v", err)
				return
			}
			emit(thumb)
			n := rendered.Add(1)
			log.Addf("Image preview added: %d of %d", n, p.Len())
		}(entry)
	}

	wg.Wait()
	return int(rendered.Load())
}

func readThumbnail(ctx context.Context, c Candidate) (Thumbnail, error) {
	if err := ctx.Err(); err != nil {
		return Thumbnail{}, &ReadError{Name: c.Name(), Err: err}
	}

	rc, err := c.Open()
	if err != nil {
		return Thumbnail{}, &ReadError{Name: c.Name(), Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return Thumbnail{}, &ReadError{Name: c.Name(), Err: err}
	}
	if len(data) > MaxFileSize {
		return Thumbnail{}, &ReadError{Name: c.Name(), Err: fmt.Errorf("file too large (max %d bytes)", MaxFileSize)}
	}

	thumb := Thumbnail{
		Name:    c.Name(),
		DataURL: "data:" + c.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}

	// Unknown formats still preview; only the dimensions are lost
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		thumb.Width = cfg.Width
		thumb.Height = cfg.Height
	}

	return thumb, nil
}
