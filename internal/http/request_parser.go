// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// query filters shared by every analysis endpoint and ledger uploads.

package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"spendtrend/internal/core"
	"spendtrend/internal/services"
)

// errBadRequest marks malformed request input that maps to 400.
var errBadRequest = errors.New("bad request")

// ParamError reports a query parameter that could not be parsed.
type ParamError struct {
	Name  string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Name, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func (e *ParamError) Is(target error) bool {
	return target == errBadRequest
}

// ParamDefaults fills in parameters the caller left out.
type ParamDefaults struct {
	Threshold decimal.Decimal
	Horizon   int
}

// ParseQueryParams extracts the analysis filters from query.
//
// Recognized keys:
//
//	start, end  YYYY-MM-DD, either may be omitted
//	category    exact category label
//	threshold   non-negative decimal
//	months      forecast horizon
//
// Range, threshold sign and horizon bounds are left to the report service.
func ParseQueryParams(query url.Values, defaults ParamDefaults) (services.Params, error) {
	p := services.Params{
		Threshold: defaults.Threshold,
		Horizon:   defaults.Horizon,
	}

	for _, key := range []string{"start", "end"} {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			continue
		}
		d, err := core.ParseISODate(v)
		if err != nil {
			return services.Params{}, &ParamError{Name: key, Value: v, Err: errors.New("expected YYYY-MM-DD")}
		}
		if key == "start" {
			p.Start = &d
		} else {
			p.End = &d
		}
	}

	p.Category = sanitizeInput(query.Get("category"))

	if v := strings.TrimSpace(query.Get("threshold")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return services.Params{}, &ParamError{Name: "threshold", Value: v, Err: err}
		}
		p.Threshold = amount
	}

	if v := strings.TrimSpace(query.Get("months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return services.Params{}, &ParamError{Name: "months", Value: v, Err: errors.New("expected an integer")}
		}
		p.Horizon = n
	}

	return p, nil
}

// ParsePage reads limit and offset for list endpoints. A zero limit means
// no limit.
func ParsePage(query url.Values) (limit, offset int, err error) {
	for _, key := range []string{"limit", "offset"} {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			continue
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, &ParamError{Name: key, Value: v, Err: errors.New("expected a non-negative integer")}
		}
		if key == "limit" {
			limit = n
		} else {
			offset = n
		}
	}
	return limit, offset, nil
}

// Upload is a ledger body extracted from a request.
type Upload struct {
	Name string
	Body io.Reader

	closer io.Closer
}

func (u *Upload) Close() error {
	if u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

// ReadUpload extracts the ledger from r. Multipart bodies must carry the
// CSV in the "file" field; any other content type is read as raw CSV.
// The body is capped at maxBytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return &Upload{Name: "upload.csv", Body: r.Body}, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, &ParamError{Name: "multipart body", Value: mediaType, Err: err}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ParamError{Name: "file", Value: "", Err: err}
	}
	name := filepath.Base(sanitizeInput(header.Filename))
	if name == "" || name == "." {
		name = "upload.csv"
	}
	return &Upload{Name: name, Body: file, closer: file}, nil
}
