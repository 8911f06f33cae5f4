// Package services composes the analysis building blocks into the
// operations the CLI, the HTTP API and the alert worker expose.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrend/internal/analysis"
	"spendtrend/internal/budget"
	"spendtrend/internal/cache"
	"spendtrend/internal/core"
	"spendtrend/internal/forecast"
	"spendtrend/internal/log"
)

// AlertPublisher delivers over-budget alerts somewhere outside the process.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, a budget.Alert) error
}

// Params narrows and parameterizes a request. Nil Start or End leave that
// side of the range open; an empty Category keeps every category.
type Params struct {
	Start     *core.Date
	End       *core.Date
	Category  string
	Threshold decimal.Decimal
	Horizon   int

	// Carried into published alerts.
	SessionID string
	Source    string
}

// Validate checks the parameters before any data is touched.
func (p Params) Validate() error {
	if p.Start != nil && p.End != nil && p.Start.After(p.End.Time) {
		return &core.InvalidRangeError{Start: *p.Start, End: *p.End}
	}
	if p.Threshold.IsNegative() {
		return core.ErrNegativeThreshold
	}
	if p.Horizon < 1 || p.Horizon > forecast.MaxHorizon {
		return fmt.Errorf("horizon %d: %w", p.Horizon, core.ErrInvalidHorizon)
	}
	return nil
}

// Filters echoes the narrowing applied to a report.
type Filters struct {
	Start    *core.Date `json:"start,omitempty"`
	End      *core.Date `json:"end,omitempty"`
	Category string     `json:"category,omitempty"`
}

// Report is everything the dashboard shows for one ledger.
type Report struct {
	Filters       Filters              `json:"filters"`
	Summary       core.Summary         `json:"summary"`
	Categories    []core.CategoryTotal `json:"categories"`
	Monthly       []core.MonthTotal    `json:"monthly"`
	Daily         []core.DayTotal      `json:"daily"`
	Budget        budget.Verdict       `json:"budget"`
	Forecast      *forecast.Result     `json:"forecast,omitempty"`
	RSquared      *float64             `json:"r_squared,omitempty"`
	ForecastError string               `json:"forecast_error,omitempty"`
}

const (
	alertMemorySize = 1024
	alertMemoryTTL  = 24 * time.Hour
)

type ReportService struct {
	publisher AlertPublisher
	logger    *log.Logger
	now       func() time.Time

	// published remembers alerts already sent so repeated reads of the
	// same ledger and month do not publish again.
	published *cache.LRUCache[struct{}]
}

// NewReportService builds a service. A nil publisher disables alerts.
func NewReportService(publisher AlertPublisher, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportService{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentReport),
		now:       time.Now,
		published: cache.NewLRUCache[struct{}](alertMemorySize, alertMemoryTTL),
	}
}

// Cleaner exposes the published-alert memory to a cache.Janitor.
func (s *ReportService) Cleaner() cache.Cleaner {
	return s.published
}

// Filter derives the ledger a request works on: date range first, then
// category. The input ledger is never modified.
func (s *ReportService) Filter(l core.Ledger, p Params) (core.Ledger, error) {
	switch {
	case p.Start != nil && p.End != nil:
		var err error
		if l, err = analysis.FilterDateRange(l, *p.Start, *p.End); err != nil {
			return core.Ledger{}, err
		}
	case p.Start != nil:
		start := *p.Start
		l = l.Filter(func(tx core.Transaction) bool { return !tx.Date.Before(start.Time) })
	case p.End != nil:
		end := *p.End
		l = l.Filter(func(tx core.Transaction) bool { return !tx.Date.After(end.Time) })
	}
	if p.Category != "" {
		l = analysis.FilterCategory(l, p.Category)
	}
	return l, nil
}

func (s *ReportService) Summary(l core.Ledger, p Params) (core.Summary, error) {
	l, err := s.Filter(l, p)
	if err != nil {
		return core.Summary{}, err
	}
	return analysis.Summarize(l)
}

func (s *ReportService) Categories(l core.Ledger, p Params) ([]core.CategoryTotal, error) {
	l, err := s.Filter(l, p)
	if err != nil {
		return nil, err
	}
	return analysis.RankCategories(l), nil
}

func (s *ReportService) Monthly(l core.Ledger, p Params) ([]core.MonthTotal, error) {
	l, err := s.Filter(l, p)
	if err != nil {
		return nil, err
	}
	return analysis.MonthlySeries(l), nil
}

func (s *ReportService) Daily(l core.Ledger, p Params) ([]core.DayTotal, error) {
	l, err := s.Filter(l, p)
	if err != nil {
		return nil, err
	}
	return analysis.DailyTotals(l), nil
}

// Budget evaluates the latest month against p.Threshold and publishes an
// alert when it is over.
func (s *ReportService) Budget(ctx context.Context, l core.Ledger, p Params) (budget.Verdict, error) {
	if p.Threshold.IsNegative() {
		return budget.Verdict{}, core.ErrNegativeThreshold
	}
	l, err := s.Filter(l, p)
	if err != nil {
		return budget.Verdict{}, err
	}
	v, err := budget.Evaluate(analysis.MonthlySeries(l), p.Threshold)
	if err != nil {
		return budget.Verdict{}, err
	}
	s.maybeAlert(ctx, v, p)
	return v, nil
}

// Forecast fits the monthly series of the filtered ledger and projects
// p.Horizon months.
func (s *ReportService) Forecast(l core.Ledger, p Params) (forecast.Result, *forecast.Model, error) {
	if p.Horizon < 1 || p.Horizon > forecast.MaxHorizon {
		return forecast.Result{}, nil, fmt.Errorf("horizon %d: %w", p.Horizon, core.ErrInvalidHorizon)
	}
	l, err := s.Filter(l, p)
	if err != nil {
		return forecast.Result{}, nil, err
	}
	model, err := forecast.Fit(analysis.MonthlySeries(l))
	if err != nil {
		return forecast.Result{}, nil, err
	}
	res, err := model.Forecast(p.Horizon)
	if err != nil {
		return forecast.Result{}, nil, err
	}
	return res, model, nil
}

// Build produces the full report. A forecast that cannot be fitted is
// reported in ForecastError rather than failing the whole report.
func (s *ReportService) Build(ctx context.Context, l core.Ledger, p Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	derived, err := s.Filter(l, p)
	if err != nil {
		return Report{}, err
	}

	summary, err := analysis.Summarize(derived)
	if err != nil {
		return Report{}, err
	}
	monthly := analysis.MonthlySeries(derived)

	verdict, err := budget.Evaluate(monthly, p.Threshold)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Filters:    Filters{Start: p.Start, End: p.End, Category: p.Category},
		Summary:    summary,
		Categories: analysis.RankCategories(derived),
		Monthly:    monthly,
		Daily:      analysis.DailyTotals(derived),
		Budget:     verdict,
	}

	model, err := forecast.Fit(monthly)
	switch {
	case errors.Is(err, core.ErrInsufficientData):
		r.ForecastError = err.Error()
	case err != nil:
		return Report{}, err
	default:
		res, err := model.Forecast(p.Horizon)
		if err != nil {
			return Report{}, err
		}
		r2 := model.RSquared()
		r.Forecast, r.RSquared = &res, &r2
	}

	s.maybeAlert(ctx, verdict, p)

	s.logger.DebugContext(ctx, "Report built",
		log.FieldSessionID, p.SessionID,
		log.FieldVerdict, string(verdict.Status),
		"transactions", summary.Transactions,
		"months", summary.Months)
	return r, nil
}

func (s *ReportService) maybeAlert(ctx context.Context, v budget.Verdict, p Params) {
	if s.publisher == nil {
		return
	}
	alert, ok := budget.AlertFor(v, s.now())
	if !ok {
		return
	}
	alert.SessionID = p.SessionID
	alert.Source = p.Source
	alert.Category = p.Category

	key := alertKey(alert)
	if _, seen := s.published.Get(key); seen {
		s.logger.DebugContext(ctx, "Budget alert already published",
			log.FieldSessionID, p.SessionID, "month", alert.Month.String())
		return
	}

	if err := s.publisher.PublishBudgetAlert(ctx, alert); err != nil {
		log.NewStructuredLogger(s.logger).LogError(ctx, "Failed to publish budget alert", err, log.OpPublish,
			log.NewFields().WithSession(p.SessionID))
		return
	}
	s.published.Set(key, struct{}{})
}

// alertKey identifies an alert by everything except the time it was raised.
func alertKey(a budget.Alert) string {
	return strings.Join([]string{
		a.SessionID,
		a.Source,
		a.Category,
		a.Month.String(),
		a.Threshold.String(),
		a.Spent.String(),
	}, "\x00")
}
