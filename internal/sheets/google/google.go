package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"warikan/internal/metrics"
	ports "warikan/internal/sheets"
)

const metricsTarget = "sheets"

// Options configures a Sheets row store.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	// Endpoint overrides the API base URL; without credentials requests
	// are sent unauthenticated.
	Endpoint string
	Timeout  time.Duration
}

// Client stores advance-payment rows in one sheet of a spreadsheet. The
// sheet and its header row are created on first use.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	ready   bool
	sheetID int64
}

var _ ports.RowStore = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		opts.SheetName = "AdvancePayments"
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// newSheetsService authenticates with a service account and wraps a pooled
// transport in the OAuth2 token source.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	base := newHTTPClientWithPooling(opts.Timeout)

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	case opts.Endpoint != "":
		slog.InfoContext(ctx, "Using unauthenticated Sheets endpoint", "endpoint", opts.Endpoint)
		return gsheet.NewService(ctx,
			goption.WithEndpoint(opts.Endpoint),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(base))
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	creds, err := googleoauth.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(authCtx, creds.TokenSource)
	httpClient.Timeout = base.Timeout

	svcOpts := []goption.ClientOption{goption.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		svcOpts = append(svcOpts, goption.WithEndpoint(opts.Endpoint))
	}
	return gsheet.NewService(ctx, svcOpts...)
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm.
func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func (c *Client) ListRows(ctx context.Context) (rows []ports.Row, err error) {
	defer observe(time.Now(), &err)
	if err := c.ensureSheet(ctx); err != nil {
		return nil, err
	}
	rng := c.a1("A2:F")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, raw := range resp.Values {
		row, ok, err := parseRow(raw)
		if err != nil {
			return nil, fmt.Errorf("sheet row %d: %w", i+2, err)
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (c *Client) AppendRow(ctx context.Context, r ports.Row) (err error) {
	defer observe(time.Now(), &err)
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("append row: empty id")
	}
	if err := c.ensureSheet(ctx); err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{{r.ID, r.Date, r.Payer, r.Amount, r.Memo, r.CreatedAt}}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:F"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Row appended to sheet", "sheet", c.sheetName, "id", r.ID)
	return nil
}

func (c *Client) DeleteRowByID(ctx context.Context, id string) (found bool, err error) {
	defer observe(time.Now(), &err)
	if err := c.ensureSheet(ctx); err != nil {
		return false, err
	}
	rng := c.a1("A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}

	index := -1
	for i, raw := range resp.Values {
		if i == 0 || len(raw) == 0 {
			continue // header
		}
		if cellString(raw[0]) == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:         c.sheetID,
			Dimension:       "ROWS",
			StartIndex:      int64(index),
			EndIndex:        int64(index + 1),
			ForceSendFields: []string{"SheetId", "StartIndex"},
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("delete row %d of %s: %w", index+1, c.sheetName, err)
	}
	slog.InfoContext(ctx, "Row deleted from sheet", "sheet", c.sheetName, "id", id, "row", index+1)
	return true, nil
}

// ensureSheet creates the sheet and header when missing and caches the
// numeric sheet id needed for row deletion.
func (c *Client) ensureSheet(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	found := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			c.sheetID = sh.Properties.SheetId
			found = true
			break
		}
	}

	if !found {
		resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: c.sheetName},
			}}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("add sheet %s: %w", c.sheetName, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
			c.sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
		slog.InfoContext(ctx, "Created sheet", "sheet", c.sheetName, "sheet_id", c.sheetID)
	}

	header, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("A1:F1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header.Values) == 0 || len(header.Values[0]) == 0 {
		values := make([]any, len(ports.Header))
		for i, h := range ports.Header {
			values[i] = h
		}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.a1("A1:F1"), &gsheet.ValueRange{Values: [][]any{values}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	c.ready = true
	return nil
}

// a1 quotes the sheet name for A1 notation.
func (c *Client) a1(cells string) string {
	return "'" + strings.ReplaceAll(c.sheetName, "'", "''") + "'!" + cells
}

func observe(start time.Time, err *error) {
	metrics.ObserveExternal(metricsTarget, start, *err)
}
