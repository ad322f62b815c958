package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/everstacklabs/modelprices/internal/httpclient"
)

// DefaultURL is the LiteLLM-maintained price and context window catalog.
const DefaultURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

// FetchError reports why the catalog could not be retrieved. It is the only
// failure the Fetcher produces.
type FetchError struct {
	URL string
	Op  string // "request" or "decode"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching catalog from %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LiteLLM downloads the catalog from a single URL.
type LiteLLM struct {
	url    string
	client *httpclient.Client
}

// NewLiteLLM returns a fetcher for url (DefaultURL when empty).
func NewLiteLLM(url string, client *httpclient.Client) *LiteLLM {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = httpclient.New()
	}
	return &LiteLLM{url: url, client: client}
}

// URL returns the source URL.
func (l *LiteLLM) URL() string { return l.url }

// Fetch performs one GET and decodes the body. No retries.
func (l *LiteLLM) Fetch(ctx context.Context) (*RawCatalog, error) {
	resp, err := l.client.Get(ctx, l.url)
	if err != nil {
		return nil, &FetchError{URL: l.url, Op: "request", Err: err}
	}

	raw, err := ParseRawCatalog(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: l.url, Op: "decode", Err: err}
	}

	slog.Info("catalog fetched",
		"url", l.url,
		"entries", raw.Len(),
		"bytes", len(resp.Body),
		"from_cache", resp.FromCache)
	return raw, nil
}
