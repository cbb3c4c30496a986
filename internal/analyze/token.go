package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"
)

// TokenField is the hidden form field carrying the anti-forgery token
const TokenField = "csrfmiddlewaretoken"

// TokenSource supplies the X-CSRFToken header value
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token configured up front
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// PageToken reads the token from the host page's embedded form. The client
// should carry a cookie jar so the token cookie travels with the upload.
type PageToken struct {
	PageURL    string
	HTTPClient *http.Client
}

func (p *PageToken) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.PageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create page request: %w", err)
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load host page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to load host page: HTTP %d", resp.StatusCode)
	}

	return FindToken(resp.Body)
}

// FindToken scans an HTML document for the csrfmiddlewaretoken input
func FindToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse host page: %w", err)
	}

	var walk func(n *html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.ElementNode && n.Data == "input" {
			var name, value string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if name == TokenField {
				return value, true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v, ok := walk(c); ok {
				return v, true
			}
		}
		return "", false
	}

	token, ok := walk(doc)
	if !ok || token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}
