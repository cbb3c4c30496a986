package analyze

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
)

type nopLog struct{}

func (nopLog) Addf(string, ...any) {}

func payloadOf(t *testing.T, files ...*intake.MemoryFile) intake.Payload {
	t.Helper()
	cands := make([]intake.Candidate, 0, len(files))
	for _, f := range files {
		cands = append(cands, f)
	}
	p, _ := intake.Accept(cands, nopLog{})
	return p
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		expected  []string
		expectErr bool
	}{
		{
			name:     "results envelope",
			body:     `{"results":[{"name":"Ada","email":"a@x.com"},{"error":"blur"}]}`,
			expected: []string{"Ada", ""},
		},
		{
			name:     "single record",
			body:     `{"name":"Grace","company":"Navy"}`,
			expected: []string{"Grace"},
		},
		{
			name:     "data envelope",
			body:     `{"success":true,"data":[{"name":"Linus"}]}`,
			expected: []string{"Linus"},
		},
		{
			name:     "bare array",
			body:     `[{"name":"A"},{"name":"B"}]`,
			expected: []string{"A", "B"},
		},
		{
			name:     "empty results list",
			body:     `{"results":[]}`,
			expected: []string{},
		},
		{
			name:      "not json",
			body:      `<html>oops</html>`,
			expectErr: true,
		},
		{
			name:      "empty body",
			body:      ``,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseResponse([]byte(tt.body))
			if tt.expectErr {
				if err == nil {
					t.Fatalf("Expected error, got %v", records)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(records) != len(tt.expected) {
				t.Fatalf("Expected %d records, got %d", len(tt.expected), len(records))
			}
			for i, name := range tt.expected {
				if records[i].Name != name {
					t.Errorf("Record %d: expected name %q, got %q", i, name, records[i].Name)
				}
			}
		})
	}
}

func TestAnalyzeSendsMultipartWithToken(t *testing.T) {
	var (
		gotToken string
		gotNames []string
		gotTypes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze/" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		gotToken = r.Header.Get("X-CSRFToken")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, fh := range r.MultipartForm.File["images"] {
			gotNames = append(gotNames, fh.Filename)
			gotTypes = append(gotTypes, fh.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"results":[{"name":"Ada","email":"a@x.com"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/analyze/", 5*time.Second)
	c.Tokens = StaticToken("tok123")

	p := payloadOf(t,
		intake.NewMemoryFile("front.png", "image/png", []byte("png")),
		intake.NewMemoryFile("back.jpg", "image/jpeg", []byte("jpg")),
	)
	records, err := c.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if gotToken != "tok123" {
		t.Errorf("Expected token tok123, got %q", gotToken)
	}
	if strings.Join(gotNames, ",") != "front.png,back.jpg" {
		t.Errorf("Expected both files under images, got %v", gotNames)
	}
	if strings.Join(gotTypes, ",") != "image/png,image/jpeg" {
		t.Errorf("Expected part MIME types preserved, got %v", gotTypes)
	}
	if len(records) != 1 || records[0].Name != "Ada" {
		t.Errorf("Unexpected records %+v", records)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Analyze(context.Background(), payloadOf(t, intake.NewMemoryFile("a.png", "image/png", []byte("x"))))

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Expected ServerError, got %v", err)
	}
	if se.StatusCode != 500 {
		t.Errorf("Expected 500, got %d", se.StatusCode)
	}
	if se.Error() != "Server returned 500: Internal Server Error" {
		t.Errorf("Unexpected message %q", se.Error())
	}
}

func TestAnalyzeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.Analyze(context.Background(), payloadOf(t, intake.NewMemoryFile("a.png", "image/png", []byte("x"))))

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Analyze(context.Background(), payloadOf(t, intake.NewMemoryFile("a.png", "image/png", []byte("x"))))

	var me *MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("Expected MalformedResponseError, got %v", err)
	}
}

func TestAnalyzeRejectsEmptyPayload(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Analyze(context.Background(), intake.Payload{}); err == nil {
		t.Error("Expected error for empty payload")
	}
	if called {
		t.Error("Expected no request for empty payload")
	}
}

func TestPageToken(t *testing.T) {
	page := `<html><body><form id="uploadForm">
<input type="hidden" name="csrfmiddlewaretoken" value="page-token">
<input type="file" id="fileInput" name="images" multiple>
</form></body></html>`

	var uploadToken, uploadCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "cookie-token", Path: "/"})
		_, _ = io.WriteString(w, page)
	})
	mux.HandleFunc("/analyze/", func(w http.ResponseWriter, r *http.Request) {
		uploadToken = r.Header.Get("X-CSRFToken")
		if c, err := r.Cookie("csrftoken"); err == nil {
			uploadCookie = c.Value
		}
		_, _ = io.WriteString(w, `{"name":"Ada"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/analyze/", time.Second)
	c.Tokens = &PageToken{PageURL: srv.URL + "/", HTTPClient: c.HTTPClient}

	if _, err := c.Analyze(context.Background(), payloadOf(t, intake.NewMemoryFile("a.png", "image/png", []byte("x")))); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if uploadToken != "page-token" {
		t.Errorf("Expected page-token header, got %q", uploadToken)
	}
	if uploadCookie != "cookie-token" {
		t.Errorf("Expected cookie carried over, got %q", uploadCookie)
	}
}

func TestFindTokenMissing(t *testing.T) {
	_, err := FindToken(strings.NewReader(`<html><body><form></form></body></html>`))
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}
}
