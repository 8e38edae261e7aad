// Package report turns a ReportRequest into normalized queries against the
// reporting store and reshapes the rows for display and export.
package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/fields"
	"github.com/achievo/achievement-portal/internal/models"
)

// ValidationError marks a request refused before any query is issued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Query is the normalized filter payload sent to the reporting store.
type Query struct {
	StudentFields     []string
	AchievementFields []string
	AcademicFields    []string
	Category          models.AchievementType
	SubType           string
	Location          string
	Level             string
	Position          string
	StartYear         int
	EndYear           int
}

// Querier is the reporting side of the persistence collaborator.
type Querier interface {
	QueryReport(ctx context.Context, q Query) ([]models.Row, error)
}

// SubTypeResult is one branch of an "ALL" fan-out: either rows or the
// branch error, never both.
type SubTypeResult struct {
	SubType string
	Rows    []models.Row
	Err     error
}

// Result is a finished report run. Ran distinguishes "query returned zero
// rows" from "report was never built".
type Result struct {
	Ran            bool
	FiltersEnabled bool
	LocationLabel  string
	Fields         []string
	Labels         map[string]string
	Rows           []models.Row
	BySubType      []SubTypeResult
	FailedBranches int
}

type Builder struct {
	q   Querier
	log *zap.Logger
}

func NewBuilder(q Querier, log *zap.Logger) *Builder {
	return &Builder{q: q, log: log}
}

// FiltersEnabled reports whether the category-specific filters (location,
// level, position) apply: only for a specific sub-type that actually
// carries those fields. Courses and aggregate selections never qualify.
func FiltersEnabled(subType string) bool {
	if subType == "" || subType == models.SubTypeAll {
		return false
	}
	return fields.HasLocation(subType) || fields.HasPosition(subType)
}

// LocationLabel derives the display label of the location filter for a
// sub-type.
func LocationLabel(subType string) string {
	switch subType {
	case "Workshop":
		return "Workshop Location"
	case "Seminar", "Webinar":
		return "Seminar Location"
	case "Hackathon", "Code Competition":
		return "Organizer Location"
	default:
		return "Competition Location"
	}
}

// Normalize validates the request and builds the query payload, forcing
// inapplicable filters to the "All" sentinel.
func (b *Builder) Normalize(req models.ReportRequest) (Query, error) {
	if len(req.StudentFields)+len(req.AchievementFields)+len(req.AcademicFields) == 0 {
		return Query{}, &ValidationError{Reason: "select at least one field to generate a report"}
	}
	for _, k := range append(append(append([]string(nil), req.StudentFields...), req.AchievementFields...), req.AcademicFields...) {
		if !fields.Known(k) {
			return Query{}, &ValidationError{Reason: fmt.Sprintf("unknown report field %q", k)}
		}
	}

	cat := models.AchievementType(req.Category)
	subTypes, ok := models.CategoriesByType[cat]
	if !ok {
		return Query{}, &ValidationError{Reason: fmt.Sprintf("unknown achievement category %q", req.Category)}
	}
	if req.SubType != models.SubTypeAll && !contains(subTypes, req.SubType) {
		return Query{}, &ValidationError{Reason: fmt.Sprintf("sub-type %q does not belong to category %q", req.SubType, req.Category)}
	}

	if req.StartYear != 0 && req.EndYear != 0 && req.StartYear > req.EndYear {
		return Query{}, &ValidationError{Reason: fmt.Sprintf("start year %d is after end year %d", req.StartYear, req.EndYear)}
	}

	q := Query{
		StudentFields:     req.StudentFields,
		AchievementFields: req.AchievementFields,
		AcademicFields:    req.AcademicFields,
		Category:          cat,
		SubType:           req.SubType,
		Location:          models.FilterAll,
		Level:             models.FilterAll,
		Position:          models.FilterAll,
		StartYear:         req.StartYear,
		EndYear:           req.EndYear,
	}
	if FiltersEnabled(req.SubType) {
		q.Location = orAll(req.Location)
		q.Level = orAll(req.Level)
		q.Position = orAll(req.Position)
	}
	return q, nil
}

// Run executes the report. For a specific sub-type that is a single
// query; for the ALL sentinel it fans out over every sub-type of the
// category sequentially, capturing each branch's rows or error so one
// failing branch never aborts the rest.
func (b *Builder) Run(ctx context.Context, req models.ReportRequest) (*Result, error) {
	q, err := b.Normalize(req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Ran:            true,
		FiltersEnabled: FiltersEnabled(req.SubType),
		LocationLabel:  LocationLabel(req.SubType),
		Fields:         fieldOrder(q),
		Labels:         fields.Labels(),
		Rows:           []models.Row{},
	}

	if q.SubType != models.SubTypeAll {
		rows, err := b.q.QueryReport(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("report query %s/%s: %w", q.Category, q.SubType, err)
		}
		res.Rows = append(res.Rows, rows...)
		res.BySubType = []SubTypeResult{{SubType: q.SubType, Rows: rows}}
		return res, nil
	}

	for _, st := range models.CategoriesByType[q.Category] {
		branch := q
		branch.SubType = st
		rows, err := b.q.QueryReport(ctx, branch)
		if err != nil {
			res.FailedBranches++
			res.BySubType = append(res.BySubType, SubTypeResult{SubType: st, Err: err})
			b.log.Warn("report branch failed", zap.String("subType", st), zap.Error(err))
			continue
		}
		res.Rows = append(res.Rows, rows...)
		res.BySubType = append(res.BySubType, SubTypeResult{SubType: st, Rows: rows})
	}
	return res, nil
}

// Empty reports a ran-but-zero-rows outcome; callers render it
// differently from a report that was never generated.
func (r *Result) Empty() bool { return r != nil && r.Ran && len(r.Rows) == 0 }

func fieldOrder(q Query) []string {
	out := make([]string, 0, len(q.StudentFields)+len(q.AchievementFields)+len(q.AcademicFields))
	out = append(out, q.StudentFields...)
	out = append(out, q.AchievementFields...)
	return append(out, q.AcademicFields...)
}

func orAll(v string) string {
	if v == "" {
		return models.FilterAll
	}
	return v
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
