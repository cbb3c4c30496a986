// Package intake turns picked or dropped files into an upload payload and
// renders their previews.
package intake

import (
	"strings"
)

// Diagnostics receives intake progress and per-file problems
type Diagnostics interface {
	Addf(format string, args ...any)
}

// Payload is the ordered set of images waiting to be submitted
type Payload struct {
	entries []Candidate
}

// Len returns the number of images in the payload
func (p Payload) Len() int {
	return len(p.entries)
}

// Empty reports whether there is nothing to submit
func (p Payload) Empty() bool {
	return len(p.entries) == 0
}

// Entries returns the payload images in selection order
func (p Payload) Entries() []Candidate {
	out := make([]Candidate, len(p.entries))
	copy(out, p.entries)
	return out
}

// Names returns the file names in selection order
func (p Payload) Names() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.Name())
	}
	return names
}

// IsImage reports whether a MIME type matches the image pattern
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(baseType(contentType)), "image/")
}

// Accept builds a fresh payload from the candidates, skipping anything that
// is not an image. It returns the payload and the number of skipped files.
func Accept(candidates []Candidate, log Diagnostics) (Payload, int) {
	var p Payload
	skipped := 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if !IsImage(c.ContentType()) {
			log.Addf("Skipping non-image file: %s (%s)", c.Name(), c.ContentType())
			skipped++
			continue
		}
		log.Addf("Added file: %s (%d bytes)", c.Name(), c.Size())
		p.entries = append(p.entries, c)
	}
	return p, skipped
}
