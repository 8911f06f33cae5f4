// Package forecast projects monthly spending with a least-squares trend line.
//
// The predictor is the 0-based chronological index of each month in the
// series, so absent months do not stretch the time axis. The uncertainty
// band is one residual standard deviation either side of the prediction
// and keeps the same width at every horizon.
package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"spendtrend/internal/core"
)

const (
	MinPoints  = 2
	MaxHorizon = 12
)

// Model is a fitted trend line, total ≈ Slope*index + Intercept.
type Model struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// StdError is the sample standard deviation (n-1) of the residuals.
	StdError float64 `json:"std_error"`

	last   core.Month
	actual []float64
}

// Fit regresses the series totals on their indices 0..k-1. Fewer than two
// months leave the line underdetermined and return ErrInsufficientData.
func Fit(series []core.MonthTotal) (*Model, error) {
	k := len(series)
	if k < MinPoints {
		return nil, fmt.Errorf("fit trend on %d month(s), need at least %d: %w", k, MinPoints, core.ErrInsufficientData)
	}

	xs := make([]float64, k)
	ys := make([]float64, k)
	for i, m := range series {
		xs[i] = float64(i)
		ys[i] = m.Total.InexactFloat64()
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	m := &Model{
		Slope:     slope,
		Intercept: intercept,
		last:      series[k-1].Month,
		actual:    ys,
	}
	// Two points are interpolated exactly; keep float noise out of the band.
	if k > MinPoints {
		m.StdError = stat.StdDev(m.Residuals(), nil)
	}
	return m, nil
}

// Predict evaluates the trend line at a month index.
func (m *Model) Predict(index int) float64 {
	return m.Slope*float64(index) + m.Intercept
}

// Points is the number of historical months the model was fitted on.
func (m *Model) Points() int {
	return len(m.actual)
}

// LastMonth is the latest historical month.
func (m *Model) LastMonth() core.Month {
	return m.last
}

// Fitted returns the trend values at the historical indices.
func (m *Model) Fitted() []float64 {
	out := make([]float64, len(m.actual))
	for i := range m.actual {
		out[i] = m.Predict(i)
	}
	return out
}

// Residuals returns actual minus fitted for every historical month.
func (m *Model) Residuals() []float64 {
	fitted := m.Fitted()
	out := make([]float64, len(m.actual))
	for i, y := range m.actual {
		out[i] = y - fitted[i]
	}
	return out
}

// RSquared is the coefficient of determination of the fit. A flat history
// is explained perfectly by a flat line and scores 1.
func (m *Model) RSquared() float64 {
	flat := true
	for _, y := range m.actual[1:] {
		if y != m.actual[0] {
			flat = false
			break
		}
	}
	if flat {
		return 1
	}
	return stat.RSquaredFrom(m.Fitted(), m.actual, nil)
}

// Forecast projects the n months that follow the last historical month.
func (m *Model) Forecast(n int) (Result, error) {
	if n < 1 || n > MaxHorizon {
		return Result{}, fmt.Errorf("horizon %d: %w", n, core.ErrInvalidHorizon)
	}
	k := m.Points()
	res := Result{
		Slope:     m.Slope,
		Intercept: m.Intercept,
		StdError:  m.StdError,
		Points:    make([]Point, n),
	}
	for i := 0; i < n; i++ {
		p := m.Predict(k + i)
		res.Points[i] = Point{
			Month:      m.last.Add(i + 1),
			Prediction: p,
			Lower:      p - m.StdError,
			Upper:      p + m.StdError,
		}
	}
	return res, nil
}

// Project fits series and forecasts n months in one call.
func Project(series []core.MonthTotal, n int) (Result, error) {
	if n < 1 || n > MaxHorizon {
		return Result{}, fmt.Errorf("horizon %d: %w", n, core.ErrInvalidHorizon)
	}
	m, err := Fit(series)
	if err != nil {
		return Result{}, err
	}
	return m.Forecast(n)
}
