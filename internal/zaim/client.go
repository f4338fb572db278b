// Package zaim is a read-only client for the Zaim household ledger API.
package zaim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"warikan/internal/metrics"
)

// ErrHistoryTruncated means the ledger holds more transactions than the
// client pages through, so totals computed from the result would be short.
var ErrHistoryTruncated = errors.New("zaim transaction history exceeds page limit")

const (
	DefaultBaseURL  = "https://api.zaim.net"
	defaultPageSize = 100
	maxPages        = 50
	metricsTarget   = "zaim"
)

type (
	// Credentials are the consumer and access token pairs of an authorised app.
	Credentials struct {
		ConsumerKey       string
		ConsumerSecret    string
		AccessToken       string
		AccessTokenSecret string
	}

	Account struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"-"`
	}

	// Transaction is a ledger entry. Zero account ids mean the side is absent.
	Transaction struct {
		ID            int64  `json:"id"`
		Date          string `json:"date"`
		Amount        int64  `json:"amount"`
		Mode          string `json:"mode"`
		FromAccountID int64  `json:"from_account_id"`
		ToAccountID   int64  `json:"to_account_id"`
		Name          string `json:"name"`
		Comment       string `json:"comment"`
		Place         string `json:"place"`
	}

	// APIError is returned for any non-200 answer.
	APIError struct {
		StatusCode int
		Body       string
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("Zaim API Error (%d): %s", e.StatusCode, e.Body)
}

// UnmarshalJSON maps Zaim's numeric active flag (1 / -1) to a bool.
func (a *Account) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Active int    `json:"active"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.ID, a.Name, a.Active = raw.ID, raw.Name, raw.Active == 1
	return nil
}

type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	maxPages int
}

type Option func(*clientOptions)

type clientOptions struct {
	base     *http.Client
	pageSize int
}

// WithHTTPClient sets the transport the signing client wraps.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.base = c }
}

// WithPageSize overrides the number of transactions requested per page.
func WithPageSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// NewClient builds an OAuth 1.0a signing client for baseURL.
func NewClient(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if creds.ConsumerKey == "" || creds.ConsumerSecret == "" || creds.AccessToken == "" || creds.AccessTokenSecret == "" {
		return nil, fmt.Errorf("zaim OAuth credentials not configured")
	}
	o := clientOptions{base: &http.Client{Timeout: 30 * time.Second}, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, o.base)
	signed := cfg.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret))
	signed.Timeout = o.base.Timeout

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     signed,
		pageSize: o.pageSize,
		maxPages: maxPages,
	}, nil
}

// ListAccounts returns every account of the authorised user.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var out struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.get(ctx, "/v2/home/account", url.Values{"mapping": {"1"}}, &out); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out.Accounts, nil
}

// ListTransactions pages through the money endpoint until a short page.
// Running out of pages first is ErrHistoryTruncated.
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var all []Transaction
	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{
			"mapping": {"1"},
			"limit":   {strconv.Itoa(c.pageSize)},
			"page":    {strconv.Itoa(page)},
		}
		var out struct {
			Money []Transaction `json:"money"`
		}
		if err := c.get(ctx, "/v2/home/money", q, &out); err != nil {
			return nil, fmt.Errorf("list transactions page %d: %w", page, err)
		}
		all = append(all, out.Money...)
		if len(out.Money) < c.pageSize {
			return all, nil
		}
	}
	slog.WarnContext(ctx, "Zaim transaction paging stopped at page limit", "pages", c.maxPages, "count", len(all))
	return nil, fmt.Errorf("%w: %d pages of %d", ErrHistoryTruncated, c.maxPages, c.pageSize)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternal(metricsTarget, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
