package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-image upload limit
const MaxFileSize = 10 * 1024 * 1024

// ErrTooLarge is returned for files over MaxFileSize
var ErrTooLarge = errors.New("file too large (max 10MB)")

// Candidate is a file offered to the intake by the picker, a drop or the command line
type Candidate interface {
	Name() string
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a candidate read from disk on demand
type LocalFile struct {
	path        string
	size        int64
	contentType string
}

// NewLocalFile stats path and resolves its MIME type, first by extension and
// then by sniffing the leading bytes
func NewLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType, err = sniffFile(path)
		if err != nil {
			return nil, err
		}
	}

	return &LocalFile{
		path:        path,
		size:        info.Size(),
		contentType: baseType(contentType),
	}, nil
}

func (f *LocalFile) Name() string        { return filepath.Base(f.path) }
func (f *LocalFile) Size() int64         { return f.size }
func (f *LocalFile) ContentType() string { return f.contentType }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// FormFile adapts a multipart upload from the page's file input or drop zone
type FormFile struct {
	header *multipart.FileHeader
}

// NewFormFile wraps a parsed multipart file header
func NewFormFile(header *multipart.FileHeader) *FormFile {
	return &FormFile{header: header}
}

func (f *FormFile) Name() string { return f.header.Filename }
func (f *FormFile) Size() int64  { return f.header.Size }

func (f *FormFile) ContentType() string {
	return baseType(f.header.Header.Get("Content-Type"))
}

func (f *FormFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// MemoryFile is a candidate whose bytes are already in memory
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
}

// NewMemoryFile wraps data; an empty contentType is sniffed from the bytes
func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &MemoryFile{
		name:        name,
		contentType: baseType(contentType),
		data:        data,
	}
}

func (f *MemoryFile) Name() string        { return f.name }
func (f *MemoryFile) Size() int64         { return int64(len(f.data)) }
func (f *MemoryFile) ContentType() string { return f.contentType }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Buffer copies a candidate into memory so it outlives its source, such as
// the temp files of a multipart request
func Buffer(c Candidate) (*MemoryFile, error) {
	if c.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrTooLarge)
	}
	rc, err := c.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.Name(), err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrTooLarge)
	}
	return NewMemoryFile(c.Name(), c.ContentType(), data), nil
}

func sniffFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(head[:n]), nil
}

// baseType drops MIME parameters such as "; charset=utf-8"
func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
