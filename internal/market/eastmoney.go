package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://push2.eastmoney.com/api/qt/ulist.np/get"

	maxBodyBytes = 4 << 20
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=market_test -destination=mock_http_client_test.go -source=eastmoney.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// EastmoneyFetcher fetches a whole watchlist in one ulist round trip.
type EastmoneyFetcher struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

type EastmoneyOption func(*EastmoneyFetcher)

func WithBaseURL(baseURL string) EastmoneyOption {
	return func(f *EastmoneyFetcher) {
		if baseURL != "" {
			f.baseURL = baseURL
		}
	}
}

func WithHTTPClient(c HTTPClient) EastmoneyOption {
	return func(f *EastmoneyFetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithHeader adds headers sent with every request.
func WithHeader(header http.Header) EastmoneyOption {
	return func(f *EastmoneyFetcher) {
		for key, values := range header {
			for _, value := range values {
				f.header.Add(key, value)
			}
		}
	}
}

func NewEastmoneyFetcher(timeout time.Duration, opts ...EastmoneyOption) *EastmoneyFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	f := &EastmoneyFetcher{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		header: http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type ulistResp struct {
	Data *ulistData `json:"data"`
}

type ulistData struct {
	Total int        `json:"total"`
	Diff  []RawQuote `json:"diff"`
}

// Fetch resolves every code, issues a single batched request and normalizes
// the result. The batch either succeeds as a whole or returns one error.
func (f *EastmoneyFetcher) Fetch(ctx context.Context, codes []string) ([]Quote, error) {
	if len(codes) == 0 {
		return []Quote{}, nil
	}
	secids := make([]string, 0, len(codes))
	for _, c := range codes {
		secids = append(secids, Resolve(c))
	}

	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("secids", strings.Join(secids, ","))
	q.Set("fields", QuoteFields)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range f.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	var payload ulistResp
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ResponseFormatError{Reason: "invalid json", Err: err}
	}
	if payload.Data == nil || payload.Data.Diff == nil {
		return nil, &ResponseFormatError{Reason: "missing data.diff"}
	}

	out := make([]Quote, 0, len(payload.Data.Diff))
	for _, raw := range payload.Data.Diff {
		out = append(out, Normalize(raw))
	}
	return out, nil
}
