package textsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/verte-zerg/speedtype/internal/model"
)

// DefaultQuoteURL returns passages of 150-300 characters.
const DefaultQuoteURL = "https://api.quotable.io/random?minLength=150&maxLength=300"

const (
	defaultQuoteTimeout = 5 * time.Second
	maxQuoteBody        = 64 << 10
)

// ErrRateLimited is returned when the upstream request budget is exhausted.
var ErrRateLimited = errors.New("quote source rate limited")

// QuotableOptions configures a Quotable client.
type QuotableOptions struct {
	URL    string
	Client *http.Client
	// RatePerSecond caps upstream requests; 0 disables limiting.
	RatePerSecond float64
	Burst         int
}

// Quotable fetches random quotes from a quotable-compatible HTTP API.
type Quotable struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

type quotableResponse struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Length  int    `json:"length"`
}

// NewQuotable builds a Quotable client.
func NewQuotable(opts QuotableOptions) *Quotable {
	if opts.URL == "" {
		opts.URL = DefaultQuoteURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultQuoteTimeout}
	}
	q := &Quotable{url: opts.URL, client: opts.Client}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return q
}

// FetchRandomText implements Source.
func (q *Quotable) FetchRandomText(ctx context.Context) (model.Quote, error) {
	if q.limiter != nil && !q.limiter.Allow() {
		return model.Quote{}, ErrRateLimited
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url, nil)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := q.client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("quote request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to read quote: %w", err)
	}
	parsed, err := decodeQuote(body)
	if err != nil {
		return model.Quote{}, err
	}
	content := strings.TrimSpace(parsed.Content)
	if content == "" {
		return model.Quote{}, ErrEmptyText
	}
	return NewQuote(content, strings.TrimSpace(parsed.Author), model.SourceQuote), nil
}

// decodeQuote accepts a single object or the array form of /quotes/random.
func decodeQuote(body []byte) (quotableResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []quotableResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return quotableResponse{}, fmt.Errorf("failed to decode quote: %w", err)
		}
		if len(list) == 0 {
			return quotableResponse{}, ErrEmptyText
		}
		return list[0], nil
	}
	var single quotableResponse
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return quotableResponse{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	return single, nil
}
