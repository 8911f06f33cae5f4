// Package google reads ledgers from a Google Sheets range and appends budget
// alerts to an alerts tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendtrend/internal/budget"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
	"spendtrend/internal/sources"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerRange   string
	alertsSheet   string
	logger        *log.Logger
}

type Config struct {
	SpreadsheetID string
	LedgerRange   string // e.g. "Transactions!A:Z", header on the first row
	AlertsSheet   string // optional
	Logger        *log.Logger
}

var _ sources.Source = (*Client)(nil)

// New creates a Sheets client authenticated with service account credentials
// from the environment.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSource)

	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	rng := strings.TrimSpace(cfg.LedgerRange)
	if rng == "" {
		rng = "Transactions!A:Z"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		ledgerRange:   rng,
		alertsSheet:   strings.TrimSpace(cfg.AlertsSheet),
		logger:        logger.WithComponent(log.ComponentSource),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) Name() string {
	return "sheets:" + c.ledgerRange
}

// ReadTable reads the ledger range. The first non-empty row is the header.
func (c *Client) ReadTable(ctx context.Context) (ingest.Table, error) {
	if c.svc == nil {
		return ingest.Table{}, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.ledgerRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return ingest.Table{}, fmt.Errorf("read %s: %w", c.ledgerRange, err)
	}
	return tableFromValues(resp.Values)
}

func tableFromValues(values [][]any) (ingest.Table, error) {
	start := 0
	for start < len(values) && isBlank(values[start]) {
		start++
	}
	if start == len(values) {
		return ingest.Table{}, errors.New("sheet range is empty")
	}

	header := toStrings(values[start])
	records := make([][]string, 0, len(values)-start-1)
	for _, row := range values[start+1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, toStrings(row))
	}
	return ingest.NewTable(header, records), nil
}

// AppendAlert writes one alert as a new row at the bottom of the alerts tab.
func (c *Client) AppendAlert(ctx context.Context, a budget.Alert) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if c.alertsSheet == "" {
		return errors.New("alerts sheet not configured")
	}

	rng := fmt.Sprintf("%s!A:G", c.alertsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{{
		a.RaisedAt.Format(time.RFC3339),
		a.Month.String(),
		a.Spent.StringFixed(2),
		a.Threshold.StringFixed(2),
		a.Overage.StringFixed(2),
		a.Category,
		a.SessionID,
	}}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append alert to %s: %w", c.alertsSheet, err)
	}
	if resp.Updates != nil {
		c.logger.InfoContext(ctx, "Budget alert appended", "range", resp.Updates.UpdatedRange, log.FieldMonth, a.Month.String())
	}
	return nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(sources.CellString(v))
	}
	return out
}

func isBlank(row []any) bool {
	for _, v := range row {
		if strings.TrimSpace(sources.CellString(v)) != "" {
			return false
		}
	}
	return true
}
