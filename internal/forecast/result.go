package forecast

import "spendtrend/internal/core"

// Point is one projected month. Month is month-start aligned.
type Point struct {
	Month      core.Month `json:"month"`
	Prediction float64    `json:"prediction"`
	Lower      float64    `json:"lower"`
	Upper      float64    `json:"upper"`
}

// Result carries the projected months plus the line they came from.
type Result struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	StdError  float64 `json:"std_error"`
	Points    []Point `json:"points"`
}

func (r Result) Months() []core.Month {
	out := make([]core.Month, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Month
	}
	return out
}

func (r Result) Predictions() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Prediction
	}
	return out
}

func (r Result) Lower() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Lower
	}
	return out
}

func (r Result) Upper() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Upper
	}
	return out
}
