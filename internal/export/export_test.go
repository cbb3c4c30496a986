package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/lehigh-university-libraries/cardscanner/internal/vcard"
	"google.golang.org/api/option"
)

func TestDirSinkSave(t *testing.T) {
	dir := t.TempDir()
	sink := DirSink{Dir: dir}
	f := vcard.NewFile(models.ContactRecord{Name: "Ada"})

	first, err := sink.Save(f)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := sink.Save(f)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Base(first) != "Ada.vcf" {
		t.Errorf("Expected Ada.vcf, got %s", first)
	}
	if filepath.Base(second) != "Ada (1).vcf" {
		t.Errorf("Expected Ada (1).vcf, got %s", second)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(f.Data) {
		t.Errorf("Expected file contents %q, got %q", f.Data, data)
	}
}

func TestDirSinkSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	path, err := DirSink{Dir: dir}.Save(vcard.NewFile(models.ContactRecord{Name: "../etc/passwd"}))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected file inside %s, got %s", dir, path)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "scan.yaml")
	rs := models.NewResultSet([]models.ContactRecord{
		{Name: "Ada", Email: "a@x.com"},
		{Error: "blur"},
	})

	if err := SaveYAML(path, ScanInfo{Endpoint: "http://localhost:8000/analyze/", Images: []string{"card.png"}}, rs); err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}

	f, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if f.Scan.Timestamp == "" {
		t.Error("Expected timestamp filled in")
	}
	loaded := f.ResultSet()
	if len(loaded.Records) != 2 || loaded.Len() != 1 || loaded.Valid[0].Name != "Ada" {
		t.Errorf("Unexpected result set %+v", loaded)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.parquet")
	contacts := []models.ContactRecord{
		{Name: "Ada", Company: "Analytical Engines", Email: "a@x.com"},
		{Name: "Grace", Phone: "555-0100"},
	}

	if err := WriteParquet(path, contacts); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}
	rows, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Company != "Analytical Engines" || rows[1].Phone != "555-0100" {
		t.Errorf("Unexpected rows %+v", rows)
	}

	if err := WriteParquet(path, nil); err == nil {
		t.Error("Expected error for empty contacts")
	}
}

func TestSheetsAppender(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string][]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies[r.Method] = append(bodies[r.Method], string(body))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]any{"range": "Sheet1!A1:H1"})
			return
		}
		_, _ = io.WriteString(w, "{}")
	}))
	defer srv.Close()

	a, err := NewSheetsAppender(context.Background(), "sheet-1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("NewSheetsAppender failed: %v", err)
	}
	a.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

	err = a.Append(context.Background(), []models.ContactRecord{{Name: "Ada", Company: "Analytical Engines"}})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies[http.MethodPut]) != 1 || !strings.Contains(bodies[http.MethodPut][0], "Business Name") {
		t.Errorf("Expected header row written, got %v", bodies[http.MethodPut])
	}
	if len(bodies[http.MethodPost]) != 1 {
		t.Fatalf("Expected one append call, got %v", bodies[http.MethodPost])
	}
	appended := bodies[http.MethodPost][0]
	for _, want := range []string{"Ada", "Analytical Engines", "2026-10-19 09:30:00"} {
		if !strings.Contains(appended, want) {
			t.Errorf("Expected %q in appended row, got %s", want, appended)
		}
	}
}

func TestNewSheetsAppenderRequiresID(t *testing.T) {
	if _, err := NewSheetsAppender(context.Background(), "", option.WithoutAuthentication()); err == nil {
		t.Error("Expected error without spreadsheet ID")
	}
}
