// Package analyze submits card images to the analysis endpoint and decodes
// the contacts it returns.
package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/intake"
	"github.com/lehigh-university-libraries/cardscanner/internal/models"
)

// FieldName is the repeated multipart field carrying the images
const FieldName = "images"

// Client posts upload payloads to the analysis endpoint
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Tokens     TokenSource
}

// NewClient returns a client with a cookie jar, so a PageToken sharing
// HTTPClient sends the token cookie along with the upload
func NewClient(endpoint string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// Analyze uploads every payload image in one request and returns the
// contacts found. Failures are *TransportError, *ServerError or
// *MalformedResponseError.
func (c *Client) Analyze(ctx context.Context, payload intake.Payload) ([]models.ContactRecord, error) {
	if payload.Empty() {
		return nil, errors.New("no images to upload")
	}

	token := ""
	if c.Tokens != nil {
		t, err := c.Tokens.Token(ctx)
		if err != nil {
			return nil, &TransportError{Err: fmt.Errorf("CSRF token: %w", err)}
		}
		token = t
	}

	body, contentType, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	slog.Info("Sending images for analysis", "endpoint", c.Endpoint, "images", payload.Len())

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	slog.Info("Analysis response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &ServerError{StatusCode: resp.StatusCode, Status: reasonPhrase(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	records, err := ParseResponse(data)
	if err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	return records, nil
}

func encodePayload(payload intake.Payload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, entry := range payload.Entries() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, escapeQuotes(entry.Name())))
		h.Set("Content-Type", entry.ContentType())

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part for %s: %w", entry.Name(), err)
		}
		if err := copyEntry(part, entry); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func copyEntry(dst io.Writer, entry intake.Candidate) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", entry.Name(), err)
	}
	defer rc.Close()

	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// reasonPhrase returns the status text the server sent, falling back to the standard one
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
