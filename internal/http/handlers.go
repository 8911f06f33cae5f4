package http

import (
	"errors"
	"net/http"
	"time"

	"spendtrend/internal/analysis"
	"spendtrend/internal/core"
	"spendtrend/internal/forecast"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
	"spendtrend/internal/services"
	"spendtrend/internal/session"
	"spendtrend/internal/sources"
	"spendtrend/internal/sources/csvfile"
)

type uploadResponse struct {
	SessionID string       `json:"session_id"`
	Source    string       `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     ingest.Stats `json:"stats"`
}

type sessionResponse struct {
	uploadResponse
	Transactions int        `json:"transactions"`
	Categories   []string   `json:"categories"`
	FirstDate    *core.Date `json:"first_date,omitempty"`
	LastDate     *core.Date `json:"last_date,omitempty"`
}

type transactionsResponse struct {
	Total        int                `json:"total"`
	Offset       int                `json:"offset"`
	Transactions []core.Transaction `json:"transactions"`
}

type forecastResponse struct {
	Horizon  int             `json:"horizon"`
	Fitted   int             `json:"fitted_months"`
	RSquared float64         `json:"r_squared"`
	Forecast forecast.Result `json:"forecast"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := ReadUpload(w, r, s.maxUploadBytes)
	if err != nil {
		writeError(w, r, log.OpIngest, err)
		return
	}
	defer upload.Close()

	src, err := csvfile.FromReader(upload.Name, upload.Body)
	if err != nil {
		writeError(w, r, log.OpIngest, &ParamError{Name: "ledger", Value: upload.Name, Err: err})
		return
	}

	ledger, stats, err := sources.Load(r.Context(), src, s.aliases, log.FromContext(r.Context()))
	if err != nil {
		if !errors.Is(err, core.ErrSchema) {
			err = &ParamError{Name: "ledger", Value: upload.Name, Err: err}
		}
		writeError(w, r, log.OpIngest, err)
		return
	}

	sess := s.sessions.Create(src.Name(), ledger, stats)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/ledgers/"+sess.ID).
		Body(newUploadResponse(sess)).
		Write(w)
}

func newUploadResponse(sess *session.Session) uploadResponse {
	return uploadResponse{
		SessionID: sess.ID,
		Source:    sess.Source,
		CreatedAt: sess.CreatedAt,
		Stats:     sess.Stats,
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	resp := sessionResponse{
		uploadResponse: newUploadResponse(sess),
		Transactions:   sess.Ledger.Len(),
		Categories:     analysis.Categories(sess.Ledger),
	}
	if first, last, err := analysis.DateBounds(sess.Ledger); err == nil {
		resp.FirstDate, resp.LastDate = &first, &last
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, "delete", err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	summary, err := s.reports.Summary(sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	cats, err := s.reports.Categories(sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"categories": cats}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	series, err := s.reports.Monthly(sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"monthly": series}).Write(w)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	series, err := s.reports.Daily(sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"daily": series}).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	limit, offset, err := ParsePage(r.URL.Query())
	if err != nil {
		writeError(w, r, "transactions", err)
		return
	}
	filtered, err := s.reports.Filter(sess.Ledger, p)
	if err != nil {
		writeError(w, r, "transactions", err)
		return
	}
	txs := filtered.Transactions()
	NewJSONResponse().Body(transactionsResponse{
		Total:        len(txs),
		Offset:       offset,
		Transactions: page(txs, limit, offset),
	}).Write(w)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	verdict, err := s.reports.Budget(r.Context(), sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpBudget, err)
		return
	}
	NewJSONResponse().Body(verdict).Write(w)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	res, model, err := s.reports.Forecast(sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpForecast, err)
		return
	}
	NewJSONResponse().Body(forecastResponse{
		Horizon:  p.Horizon,
		Fitted:   model.Points(),
		RSquared: model.RSquared(),
		Forecast: res,
	}).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, p, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	report, err := s.reports.Build(r.Context(), sess.Ledger, p)
	if err != nil {
		writeError(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":   "ready",
		"sessions": s.sessions.Len(),
	}).Write(w)
}

// lookupSession resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, "lookup", err)
		return nil, false
	}
	return sess, true
}

func (s *Server) sessionParams(w http.ResponseWriter, r *http.Request) (*session.Session, services.Params, bool) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return nil, services.Params{}, false
	}
	p, err := ParseQueryParams(r.URL.Query(), s.defaults)
	if err != nil {
		writeError(w, r, "params", err)
		return nil, services.Params{}, false
	}
	p.SessionID = sess.ID
	p.Source = sess.Source
	return sess, p, true
}
