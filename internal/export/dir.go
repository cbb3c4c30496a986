// Package export writes contacts out of the scanner: vCard downloads,
// saved result sets and spreadsheet rows.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
)

// DirSink saves downloads into a directory, the way a browser saves into
// its downloads folder
type DirSink struct {
	Dir string
}

// Save writes f and returns its path. An existing file with the same name
// is kept and the new one gets a " (n)" suffix.
func (s DirSink) Save(f vcard.File) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := sanitize(f.Name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; ; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(s.Dir, candidate)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}

		_, werr := file.Write(f.Data)
		cerr := file.Close()
		if werr != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, cerr)
		}

		slog.Info("vCard saved", "path", path, "bytes", len(f.Data))
		return path, nil
	}
}

// Download satisfies the view download contract
func (s DirSink) Download(f vcard.File) error {
	_, err := s.Save(f)
	return err
}

var unsafeNameChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

func sanitize(name string) string {
	name = unsafeNameChars.Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		name = "contact" + name
	}
	return name
}
