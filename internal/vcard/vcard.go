// Package vcard encodes contact records as vCard 3.0 text.
package vcard

import (
	"bytes"
	"strings"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
)

// MIMEType is the content type of generated files
const MIMEType = "text/vcard"

const lineBreak = "\r\n"

// File is a downloadable vCard
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Generate renders a contact as vCard 3.0.
// BEGIN, VERSION, FN, N and END are always present; the other properties
// only when the contact carries a value for them.
func Generate(c models.ContactRecord) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + c.Name,
		"N:" + c.Name + ";;;",
	}

	optional := []struct {
		value  string
		render func(string) string
	}{
		{c.Email, func(v string) string { return "EMAIL:" + v }},
		{c.Phone, func(v string) string { return "TEL:" + v }},
		{c.Company, func(v string) string { return "ORG:" + v }},
		{c.Position, func(v string) string { return "TITLE:" + v }},
		{c.Website, func(v string) string { return "URL:" + v }},
		{c.Address, func(v string) string { return "ADR:;;" + v + ";;;" }},
	}
	for _, field := range optional {
		if field.value != "" {
			lines = append(lines, field.render(field.value))
		}
	}

	lines = append(lines, "END:VCARD")
	return strings.Join(lines, lineBreak)
}

// Filename returns the download name for a contact
func Filename(c models.ContactRecord) string {
	name := c.Name
	if name == "" {
		name = "contact"
	}
	return name + ".vcf"
}

// NewFile wraps the vCard for c as a downloadable file
func NewFile(c models.ContactRecord) File {
	return File{
		Name:     Filename(c),
		MIMEType: MIMEType,
		Data:     []byte(Generate(c)),
	}
}

// Bundle concatenates several cards into one multi-card file
func Bundle(name string, contacts []models.ContactRecord) File {
	cards := make([]string, 0, len(contacts))
	for _, c := range contacts {
		cards = append(cards, Generate(c))
	}
	return File{
		Name:     name,
		MIMEType: MIMEType,
		Data:     []byte(strings.Join(cards, lineBreak)),
	}
}

// Join concatenates already generated files into one multi-card file
func Join(name string, files []File) File {
	parts := make([][]byte, 0, len(files))
	for _, f := range files {
		parts = append(parts, f.Data)
	}
	return File{
		Name:     name,
		MIMEType: MIMEType,
		Data:     bytes.Join(parts, []byte(lineBreak)),
	}
}
