package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/report"
)

// fieldExprs maps registry field keys to SQL select expressions.
// Detail fields live inside the kind-tagged jsonb envelope.
var fieldExprs = map[string]string{
	"uce":          "st.uce",
	"student_name": "st.name",
	"email":        "st.email",
	"department":   "st.department",
	"semester":     "st.semester",

	"exam_type":    "r.exam_type",
	"subject":      "r.subject",
	"max_marks":    "r.max_marks",
	"scored_marks": "r.scored_marks",

	"type":                "a.type",
	"category":            "a.category",
	"verification_status": "a.verification_status",
	"verification_score":  "a.verification_score",
	"awarded_points":      "a.awarded_points",
	"certificate_path":    "a.certificate_path",

	"event_name":     detailExpr("event_name"),
	"organizer":      detailExpr("organizer"),
	"location":       detailExpr("location"),
	"level":          detailExpr("level"),
	"position":       detailExpr("position"),
	"prize":          detailExpr("prize"),
	"start_date":     detailExpr("start_date"),
	"end_date":       detailExpr("end_date"),
	"title":          detailExpr("title"),
	"publisher":      detailExpr("publisher"),
	"indexed":        detailExpr("indexed"),
	"course_name":    detailExpr("course_name"),
	"provider":       detailExpr("provider"),
	"duration_weeks": detailExpr("duration_weeks"),
	"completed_on":   detailExpr("completed_on"),
	"description":    detailExpr("description"),
	"awarded_on":     detailExpr("awarded_on"),
	"marksheet_ref":  "r.marksheet_ref",
}

func detailExpr(key string) string {
	return fmt.Sprintf("a.details->'data'->>'%s'", key)
}

// QueryReport runs one normalized report query and returns flat rows keyed
// by the requested field keys.
func (s *Store) QueryReport(ctx context.Context, q report.Query) ([]models.Row, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	keys := make([]string, 0, len(q.StudentFields)+len(q.AchievementFields)+len(q.AcademicFields))
	keys = append(keys, q.StudentFields...)
	keys = append(keys, q.AchievementFields...)
	keys = append(keys, q.AcademicFields...)

	selects := make([]string, len(keys))
	for i, k := range keys {
		expr, ok := fieldExprs[k]
		if !ok {
			return nil, fmt.Errorf("no column mapping for field %q", k)
		}
		selects[i] = expr
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(`
FROM achievements a
JOIN students st ON st.id = a.student_id AND st.deleted_at IS NULL`)
	if len(q.AcademicFields) > 0 {
		sb.WriteString(`
LEFT JOIN academic_records r ON r.student_id = st.id`)
	}

	args := []any{string(q.Category), q.SubType}
	sb.WriteString(`
WHERE a.type = $1 AND a.category = $2`)

	addFilter := func(expr, val string) {
		if val == "" || val == models.FilterAll {
			return
		}
		args = append(args, val)
		fmt.Fprintf(&sb, " AND %s = $%d", expr, len(args))
	}
	addFilter(detailExpr("location"), q.Location)
	addFilter(detailExpr("level"), q.Level)
	addFilter(detailExpr("position"), q.Position)

	yearExpr := "EXTRACT(YEAR FROM COALESCE((a.details->'data'->>'start_date')::timestamptz, a.created_at))"
	if q.StartYear != 0 {
		args = append(args, q.StartYear)
		fmt.Fprintf(&sb, " AND %s >= $%d", yearExpr, len(args))
	}
	if q.EndYear != 0 {
		args = append(args, q.EndYear)
		fmt.Fprintf(&sb, " AND %s <= $%d", yearExpr, len(args))
	}

	sb.WriteString("\nORDER BY st.uce, a.created_at")

	rows, err := s.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Row{}
	for rows.Next() {
		vals := make([]any, len(keys))
		ptrs := make([]any, len(keys))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := models.Row{}
		for i, k := range keys {
			row[k] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue flattens driver types so encoders see plain strings and
// numbers.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return v
	}
}
