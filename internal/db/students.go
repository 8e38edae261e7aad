package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/verify"
)

func (s *Store) CreateStudent(ctx context.Context, st *models.Student) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO students (id, uce, name, email, department, semester, photo_ref, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, now(), now())`,
		st.ID, st.UCE, st.Name, st.Email, st.Department, st.Semester, st.PhotoRef)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return s.getStudent(ctx, `id = $1`, id)
}

func (s *Store) GetStudentByUCE(ctx context.Context, uce string) (*models.Student, error) {
	return s.getStudent(ctx, `uce = $1`, uce)
}

func (s *Store) getStudent(ctx context.Context, cond string, arg any) (*models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var st models.Student
	var photo sql.NullString
	var deleted sql.NullTime
	err := s.DB.QueryRowContext(ctx, `
SELECT id, uce, name, email, department, semester, photo_ref, is_active, created_at, updated_at, deleted_at
FROM students WHERE `+cond+` AND deleted_at IS NULL`, arg).
		Scan(&st.ID, &st.UCE, &st.Name, &st.Email, &st.Department, &st.Semester,
			&photo, &st.IsActive, &st.CreatedAt, &st.UpdatedAt, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, verify.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if photo.Valid {
		st.PhotoRef = &photo.String
	}
	if deleted.Valid {
		st.DeletedAt = &deleted.Time
	}
	return &st, nil
}

// UpdateStudentProfile updates mutable profile attributes.
func (s *Store) UpdateStudentProfile(ctx context.Context, id uuid.UUID, department string, semester int, photoRef *string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
UPDATE students
SET department = $2, semester = $3, photo_ref = COALESCE($4, photo_ref), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`, id, department, semester, photoRef)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return verify.ErrNotFound
	}
	return nil
}

// DeleteStudent soft-deletes; achievements keep their rows for reporting
// history.
func (s *Store) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx,
		`UPDATE students SET deleted_at = now(), is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return verify.ErrNotFound
	}
	return nil
}

// Leaderboard sums awarded points per active student.
func (s *Store) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
SELECT st.id, st.uce, st.name, COALESCE(SUM(a.awarded_points), 0) AS total
FROM students st
LEFT JOIN achievements a ON a.student_id = st.id AND a.verification_status = $1
WHERE st.deleted_at IS NULL AND st.is_active
GROUP BY st.id, st.uce, st.name`, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.LeaderboardRow
	for rows.Next() {
		var r models.LeaderboardRow
		if err := rows.Scan(&r.StudentID, &r.UCE, &r.StudentName, &r.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
