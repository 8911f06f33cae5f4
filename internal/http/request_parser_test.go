package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testDefaults() ParamDefaults {
	return ParamDefaults{Threshold: decimal.NewFromInt(500), Horizon: 3}
}

func TestParseQueryParams(t *testing.T) {
	tests := []struct {
		name          string
		query         url.Values
		wantStart     string
		wantEnd       string
		wantCategory  string
		wantThreshold string
		wantHorizon   int
		wantErr       bool
	}{
		{
			name:          "empty query uses defaults",
			query:         url.Values{},
			wantThreshold: "500",
			wantHorizon:   3,
		},
		{
			name: "all values provided",
			query: url.Values{
				"start":     {"2024-01-01"},
				"end":       {"2024-03-31"},
				"category":  {" Food "},
				"threshold": {"250,5"},
				"months":    {"6"},
			},
			wantStart:     "2024-01-01",
			wantEnd:       "2024-03-31",
			wantCategory:  "Food",
			wantThreshold: "250.5",
			wantHorizon:   6,
		},
		{
			name:          "open ended start",
			query:         url.Values{"start": {"2024-02-01"}},
			wantStart:     "2024-02-01",
			wantThreshold: "500",
			wantHorizon:   3,
		},
		{
			name:          "out of range horizon is left to the service",
			query:         url.Values{"months": {"40"}},
			wantThreshold: "500",
			wantHorizon:   40,
		},
		{name: "bad start", query: url.Values{"start": {"01/02/2024"}}, wantErr: true},
		{name: "bad end", query: url.Values{"end": {"tomorrow"}}, wantErr: true},
		{name: "bad threshold", query: url.Values{"threshold": {"lots"}}, wantErr: true},
		{name: "bad months", query: url.Values{"months": {"three"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseQueryParams(tt.query, testDefaults())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, errBadRequest) {
					t.Errorf("error %v should be a bad request", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := dateString(p.Start); got != tt.wantStart {
				t.Errorf("Start = %q, want %q", got, tt.wantStart)
			}
			if got := dateString(p.End); got != tt.wantEnd {
				t.Errorf("End = %q, want %q", got, tt.wantEnd)
			}
			if p.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", p.Category, tt.wantCategory)
			}
			if !p.Threshold.Equal(decimal.RequireFromString(tt.wantThreshold)) {
				t.Errorf("Threshold = %s, want %s", p.Threshold, tt.wantThreshold)
			}
			if p.Horizon != tt.wantHorizon {
				t.Errorf("Horizon = %d, want %d", p.Horizon, tt.wantHorizon)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	limit, offset, err := ParsePage(url.Values{"limit": {"10"}, "offset": {"5"}})
	if err != nil || limit != 10 || offset != 5 {
		t.Fatalf("got limit=%d offset=%d err=%v", limit, offset, err)
	}

	limit, offset, err = ParsePage(url.Values{})
	if err != nil || limit != 0 || offset != 0 {
		t.Fatalf("defaults: got limit=%d offset=%d err=%v", limit, offset, err)
	}

	for _, q := range []url.Values{{"limit": {"-1"}}, {"offset": {"x"}}} {
		if _, _, err := ParsePage(q); !errors.Is(err, errBadRequest) {
			t.Errorf("ParsePage(%v) error = %v, want bad request", q, err)
		}
	}
}

func TestReadUploadRawBody(t *testing.T) {
	body := "Date,Description,Amount,Category\n2024-01-01,a,1,x\n"
	req := httptest.NewRequest(http.MethodPost, "/api/ledgers", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")

	up, err := ReadUpload(httptest.NewRecorder(), req, 1024)
	if err != nil {
		t.Fatalf("ReadUpload: %v", err)
	}
	defer up.Close()

	got, _ := io.ReadAll(up.Body)
	if string(got) != body {
		t.Errorf("body = %q, want %q", got, body)
	}
	if up.Name != "upload.csv" {
		t.Errorf("Name = %q", up.Name)
	}
}

func TestReadUploadMultipart(t *testing.T) {
	req := multipartRequest(t, "file", "../bank/march.csv", "Date,Description,Amount,Category\n")

	up, err := ReadUpload(httptest.NewRecorder(), req, 1<<20)
	if err != nil {
		t.Fatalf("ReadUpload: %v", err)
	}
	defer up.Close()

	if up.Name != "march.csv" {
		t.Errorf("Name = %q, want march.csv", up.Name)
	}
}

func TestReadUploadMultipartMissingField(t *testing.T) {
	req := multipartRequest(t, "ledger", "march.csv", "x")

	_, err := ReadUpload(httptest.NewRecorder(), req, 1<<20)
	if !errors.Is(err, errBadRequest) {
		t.Fatalf("error = %v, want bad request", err)
	}
}

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/ledgers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
