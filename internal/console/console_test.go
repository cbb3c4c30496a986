package console

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/cardscanner/internal/export"
	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/scanner"
)

type staticAnalyzer []models.ContactRecord

func (s staticAnalyzer) Analyze(context.Context, intake.Payload) ([]models.ContactRecord, error) {
	return s, nil
}

func TestViewRendersAndSaves(t *testing.T) {
	var out, errOut bytes.Buffer
	dir := t.TempDir()
	view := New(&out, &errOut, export.DirSink{Dir: dir})

	c, err := scanner.New(view, staticAnalyzer{
		{Name: "Ada Lovelace", Email: "a@x.com", Website: "example.org"},
		{Error: "blur"},
	})
	if err != nil {
		t.Fatal(err)
	}

	c.SelectFiles(context.Background(), []intake.Candidate{
		intake.NewMemoryFile("card.png", "image/png", []byte("not really a png")),
	})
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"1 Contacts Found", "Ada Lovelace", "a@x.com", "Position"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
	if !strings.Contains(errOut.String(), "card.png") {
		t.Errorf("Expected preview line for card.png, got %s", errOut.String())
	}

	c.SelectAll(true)
	if err := c.ExportSelected(context.Background()); err != nil {
		t.Fatalf("ExportSelected failed: %v", err)
	}
	if len(view.Saved) != 1 || !strings.HasSuffix(view.Saved[0], "Ada Lovelace.vcf") {
		t.Errorf("Expected Ada Lovelace.vcf saved, got %v", view.Saved)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		input     string
		all       bool
		picked    []int
		expectErr bool
	}{
		{input: "", picked: nil},
		{input: "all", all: true},
		{input: "ALL", all: true},
		{input: "1", picked: []int{0}},
		{input: "1,3", picked: []int{0, 2}},
		{input: "2-4", picked: []int{1, 2, 3}},
		{input: "1, 1, 2", picked: []int{0, 1}},
		{input: "0", expectErr: true},
		{input: "5", expectErr: true},
		{input: "x", expectErr: true},
		{input: "3-2", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			all, picked, err := ParseSelection(tt.input, 4)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if all != tt.all || !reflect.DeepEqual(picked, tt.picked) {
				t.Errorf("Expected all=%v picked=%v, got all=%v picked=%v", tt.all, tt.picked, all, picked)
			}
		})
	}
}
