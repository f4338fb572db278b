// Package line talks to the LINE Messaging API: replies to webhook events
// and verification of inbound webhook signatures.
package line

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

	"warikan/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.line.me"
	replyPath      = "/v2/bot/message/reply"
	metricsTarget  = "line"

	// MaxTextLength is the platform limit for one text message.
	MaxTextLength = 5000
)

// APIError is returned for any non-200 answer.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LINE API Error (%d): %s", e.StatusCode, e.Body)
}

type (
	TextMessage struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	ReplyRequest struct {
		ReplyToken string        `json:"replyToken"`
		Messages   []TextMessage `json:"messages"`
	}
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func NewClient(baseURL, channelAccessToken string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(channelAccessToken) == "" {
		return nil, errors.New("LINE channel access token not configured")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   channelAccessToken,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Reply sends text as a single message answering replyToken. Texts over
// the platform limit are truncated.
func (c *Client) Reply(ctx context.Context, replyToken, text string) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveExternal(metricsTarget, start, err)
		metrics.Replies.WithLabelValues(metrics.Outcome(err)).Inc()
	}()

	if replyToken == "" {
		return errors.New("empty reply token")
	}

	body, err := json.Marshal(ReplyRequest{
		ReplyToken: replyToken,
		Messages:   []TextMessage{{Type: "text", Text: truncate(text, MaxTextLength)}},
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+replyPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
