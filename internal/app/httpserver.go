package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/db"
	"github.com/achievo/achievement-portal/internal/export"
	"github.com/achievo/achievement-portal/internal/metrics"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/notify"
	"github.com/achievo/achievement-portal/internal/observability"
	"github.com/achievo/achievement-portal/internal/report"
	"github.com/achievo/achievement-portal/internal/stats"
	"github.com/achievo/achievement-portal/internal/verify"
)

// Deps bundles the collaborators the JSON API exposes.
type Deps struct {
	DB      *sql.DB
	Store   *db.Store
	Verify  *verify.Service
	Reports *report.Builder
	Alerts  *notify.AdminAlerter
	Log     *zap.Logger
}

type HTTPServer struct {
	srv *http.Server
}

type api struct {
	Deps
	limiter *DecideLimiter
}

// StartHTTP serves the portal API until ctx is cancelled, then shuts down
// with a short grace period.
func StartHTTP(ctx context.Context, addr string, d Deps) *HTTPServer {
	a := &api{Deps: d, limiter: NewDecideLimiter()}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := ctxutil.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := d.DB.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/students", a.createStudent)
	mux.HandleFunc("GET /api/students/{id}", a.getStudent)
	mux.HandleFunc("PATCH /api/students/{id}", a.updateStudent)
	mux.HandleFunc("DELETE /api/students/{id}", a.deleteStudent)
	mux.HandleFunc("GET /api/students/{id}/achievements", a.studentAchievements)
	mux.HandleFunc("POST /api/students/{id}/academic", a.addAcademicRecord)
	mux.HandleFunc("GET /api/students/{id}/academic", a.listAcademicRecords)

	mux.HandleFunc("POST /api/achievements", a.createAchievement)
	mux.HandleFunc("DELETE /api/achievements/{id}", a.deleteAchievement)
	mux.HandleFunc("POST /api/achievements/{id}/score", a.scoreAchievement)
	mux.HandleFunc("POST /api/verify/bulk", a.bulkScore)
	mux.HandleFunc("POST /api/achievements/{id}/decision", a.decide)
	mux.HandleFunc("POST /api/reports", a.buildReport)
	mux.HandleFunc("POST /api/reports/export", a.exportReport)
	mux.HandleFunc("GET /api/stats/types", a.statsTypes)
	mux.HandleFunc("GET /api/stats/categories", a.statsCategories)
	mux.HandleFunc("GET /api/leaderboard", a.leaderboard)

	srv := &http.Server{Addr: addr, Handler: withRequestID(mux)}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.Log.Error("http server", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}

// withRequestID tags every request for log correlation, minting an id
// when the caller did not send one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}

type createAchievementRequest struct {
	StudentID       string          `json:"studentId"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Details         json.RawMessage `json:"details"`
	CertificatePath *string         `json:"certificatePath"`
}

func (a *api) createAchievement(w http.ResponseWriter, r *http.Request) {
	var req createAchievementRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: "invalid studentId"})
		return
	}
	cats, ok := models.CategoriesByType[models.AchievementType(req.Type)]
	if !ok {
		a.writeErr(w, &verify.ValidationError{Reason: fmt.Sprintf("unknown achievement type %q", req.Type)})
		return
	}
	known := false
	for _, c := range cats {
		if c == req.Category {
			known = true
			break
		}
	}
	if !known {
		a.writeErr(w, &verify.ValidationError{Reason: fmt.Sprintf("unknown category %q for type %q", req.Category, req.Type)})
		return
	}
	details, err := models.UnmarshalDetails(req.Details)
	if err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: "invalid details: " + err.Error()})
		return
	}
	ach := &models.Achievement{
		StudentID:       studentID,
		Type:            models.AchievementType(req.Type),
		Category:        req.Category,
		Details:         details,
		CertificatePath: req.CertificatePath,
	}
	if err := a.Store.CreateAchievement(r.Context(), ach); err != nil {
		a.writeErr(w, err)
		return
	}
	if a.Alerts != nil {
		if st, err := a.Store.GetStudent(r.Context(), studentID); err == nil {
			a.Alerts.PendingSubmitted(ach, st.Name)
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         ach.ID,
		"status":     ach.VerificationStatus,
		"basePoints": ach.BasePoints,
	})
}

func (a *api) deleteAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	// An absent requester means an admin delete, which may remove
	// approved rows too.
	var requester *uuid.UUID
	if q := r.URL.Query().Get("requester"); q != "" {
		rid, err := uuid.Parse(q)
		if err != nil {
			a.writeErr(w, &verify.ValidationError{Reason: "invalid requester"})
			return
		}
		requester = &rid
	}
	if err := a.Store.DeleteAchievement(r.Context(), id, requester); err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) scoreAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	res, err := a.Verify.Score(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) bulkScore(w http.ResponseWriter, r *http.Request) {
	res, err := a.Verify.BulkScore(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type decisionRequest struct {
	Decision string `json:"decision"` // APPROVED or REJECTED
	Notes    string `json:"notes"`
}

func (a *api) decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	var req decisionRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}

	ctx := r.Context()
	if admin := r.Header.Get("X-Admin-Id"); admin != "" {
		ctx = ctxutil.WithAdminID(ctx, admin)
	}

	unlock := a.limiter.lock(id)
	defer unlock()

	res, err := a.Verify.Decide(ctx, id, models.VerificationStatus(req.Decision), req.Notes)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if a.Alerts != nil {
		if ach, err := a.Store.GetAchievement(r.Context(), id); err == nil {
			a.Alerts.Decided(ach, res.PointsAwarded)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

type reportResponse struct {
	FiltersEnabled bool              `json:"filtersEnabled"`
	LocationLabel  string            `json:"locationLabel"`
	Fields         []string          `json:"fields"`
	Labels         map[string]string `json:"labels"`
	Rows           []models.Row      `json:"rows"`
	FailedBranches int               `json:"failedBranches"`
	BySubType      []reportBranch    `json:"bySubType,omitempty"`
	Empty          bool              `json:"empty"`
}

type reportBranch struct {
	SubType string       `json:"subType"`
	Rows    []models.Row `json:"rows,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (a *api) buildReport(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	res, err := a.Reports.Run(r.Context(), req)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	resp := reportResponse{
		FiltersEnabled: res.FiltersEnabled,
		LocationLabel:  res.LocationLabel,
		Fields:         res.Fields,
		Labels:         res.Labels,
		Rows:           res.Rows,
		FailedBranches: res.FailedBranches,
		Empty:          res.Empty(),
	}
	for _, br := range res.BySubType {
		b := reportBranch{SubType: br.SubType, Rows: br.Rows}
		if br.Err != nil {
			b.Error = br.Err.Error()
		}
		resp.BySubType = append(resp.BySubType, b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) exportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	enc, contentType, ok := encoderFor(format)
	if !ok {
		a.writeErr(w, &verify.ValidationError{Reason: fmt.Sprintf("unknown export format %q", format)})
		return
	}

	var req models.ReportRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	res, err := a.Reports.Run(r.Context(), req)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if res.Empty() {
		http.Error(w, "no records found for the selected filters", http.StatusNotFound)
		return
	}

	t := export.Table{Fields: res.Fields, Labels: res.Labels, Rows: res.Rows}
	name := export.ReportFilename(req.Category, req.SubType, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := enc(w, t); err != nil {
		a.Log.Error("export failed", zap.String("format", format), zap.Error(err))
		observability.CaptureErrTag("http", err)
		return
	}
	metrics.Exports.WithLabelValues(format).Inc()
}

func encoderFor(format string) (func(io.Writer, export.Table) error, string, bool) {
	switch format {
	case "csv":
		return export.WriteCSV, "text/csv; charset=utf-8", true
	case "pdf":
		return export.WritePDF, "application/pdf", true
	case "docx":
		return export.WriteDocx, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true
	case "xlsx":
		return export.WriteXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	}
	return nil, "", false
}

func (a *api) statsTypes(w http.ResponseWriter, r *http.Request) {
	all, err := a.Store.ListAll(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.TypeBreakdown(all))
}

func (a *api) statsCategories(w http.ResponseWriter, r *http.Request) {
	t := models.AchievementType(r.URL.Query().Get("type"))
	if _, ok := models.CategoriesByType[t]; !ok {
		a.writeErr(w, &verify.ValidationError{Reason: fmt.Sprintf("unknown achievement type %q", string(t))})
		return
	}
	all, err := a.Store.ListAll(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.CategoryBreakdown(all, t))
}

func (a *api) leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := a.Store.Leaderboard(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.RankLeaderboard(rows))
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &verify.ValidationError{Reason: "invalid id in path"}
	}
	return id, nil
}

func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bad request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeErr maps the error taxonomy onto HTTP codes. Anything unclassified
// is a 500 and goes to Sentry.
func (a *api) writeErr(w http.ResponseWriter, err error) {
	var vErr *verify.ValidationError
	var rErr *report.ValidationError
	var low *verify.ScoreTooLowError
	var notScored *verify.NotScoredError
	switch {
	case errors.As(err, &vErr), errors.As(err, &rErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &low), errors.As(err, &notScored):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, verify.ErrAlreadyDecided):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, verify.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		metrics.HandlerErrors.Inc()
		observability.CaptureErrTag("http", err)
		a.Log.Error("handler error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
