package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/models"
)

func (s *Store) AddAcademicRecord(ctx context.Context, r *models.AcademicRecord) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO academic_records (id, student_id, exam_type, semester, subject, max_marks, scored_marks, marksheet_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		r.ID, r.StudentID, r.ExamType, r.Semester, r.Subject, r.MaxMarks, r.ScoredMarks, r.MarksheetRef)
	if err != nil {
		return fmt.Errorf("insert academic record: %w", err)
	}
	return nil
}

func (s *Store) ListAcademicRecords(ctx context.Context, studentID uuid.UUID) ([]models.AcademicRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
SELECT id, student_id, exam_type, semester, subject, max_marks, scored_marks, marksheet_ref, created_at
FROM academic_records
WHERE student_id = $1
ORDER BY semester, subject`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AcademicRecord
	for rows.Next() {
		var r models.AcademicRecord
		if err := rows.Scan(&r.ID, &r.StudentID, &r.ExamType, &r.Semester, &r.Subject,
			&r.MaxMarks, &r.ScoredMarks, &r.MarksheetRef, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
