package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/points"
	"github.com/achievo/achievement-portal/internal/verify"
)

const achievementColumns = `
id, student_id, type, category, details, verification_status, verification_score,
base_points, awarded_points, admin_notes, email_sent, email_sent_at,
certificate_path, created_at, updated_at`

// CreateAchievement inserts a new PENDING submission. Base points are
// computed from the award table at submission time.
func (s *Store) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.VerificationStatus = models.StatusPending
	a.BasePoints = points.BaseFor(a)

	details, err := models.MarshalDetails(a.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO achievements (id, student_id, type, category, details, verification_status, base_points, certificate_path, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		a.ID, a.StudentID, a.Type, a.Category, details, a.VerificationStatus, a.BasePoints, a.CertificatePath)
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

func (s *Store) GetAchievement(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id)
	a, err := scanAchievement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, verify.ErrNotFound
	}
	return a, err
}

// ListPending returns every achievement still waiting for automated
// verification, oldest first.
func (s *Store) ListPending(ctx context.Context) ([]models.Achievement, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
SELECT `+achievementColumns+`
FROM achievements
WHERE verification_status = $1
ORDER BY created_at`, models.StatusPending)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListByStudent returns a student's achievements, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Achievement, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
SELECT `+achievementColumns+`
FROM achievements
WHERE student_id = $1
ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListAll returns every achievement, for the stats views.
func (s *Store) ListAll(ctx context.Context) ([]models.Achievement, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT `+achievementColumns+` FROM achievements ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SaveScore persists a scorer verdict unless the achievement is already
// terminal.
func (s *Store) SaveScore(ctx context.Context, id uuid.UUID, score int, status models.VerificationStatus) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
UPDATE achievements
SET verification_score = $2, verification_status = $3, updated_at = now()
WHERE id = $1 AND verification_status NOT IN ($4, $5)`,
		id, score, status, models.StatusApproved, models.StatusRejected)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return s.explainNoWrite(ctx, id, models.StatusPending, 0)
	}
	return nil
}

// ApplyDecision is the atomic check-and-set of the decision flow: the
// status guard and, for approvals, the score gate live inside the UPDATE
// itself so only one concurrent decision can take effect.
func (s *Store) ApplyDecision(ctx context.Context, id uuid.UUID, decision models.VerificationStatus, notes string, awarded int, minScore int) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
UPDATE achievements
SET verification_status = $2, admin_notes = $3, awarded_points = $4, updated_at = now()
WHERE id = $1
  AND verification_status NOT IN ($5, $6)
  AND ($2 <> $5 OR (verification_score IS NOT NULL AND verification_score >= $7))`,
		id, decision, notes, awarded, models.StatusApproved, models.StatusRejected, minScore)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return s.explainNoWrite(ctx, id, decision, minScore)
	}
	return nil
}

// explainNoWrite turns a zero-row conditional update into the precise
// refusal the caller must surface.
func (s *Store) explainNoWrite(ctx context.Context, id uuid.UUID, decision models.VerificationStatus, minScore int) error {
	var status models.VerificationStatus
	var score sql.NullInt64
	err := s.DB.QueryRowContext(ctx,
		`SELECT verification_status, verification_score FROM achievements WHERE id = $1`, id).
		Scan(&status, &score)
	if errors.Is(err, sql.ErrNoRows) {
		return verify.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status.Terminal() {
		return verify.ErrAlreadyDecided
	}
	if decision == models.StatusApproved {
		if !score.Valid {
			return &verify.NotScoredError{}
		}
		if int(score.Int64) < minScore {
			return &verify.ScoreTooLowError{Score: int(score.Int64), Threshold: minScore}
		}
	}
	return fmt.Errorf("achievement %s: conditional update did not apply", id)
}

func (s *Store) MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx,
		`UPDATE achievements SET email_sent = TRUE, email_sent_at = $2 WHERE id = $1`, id, at)
	return err
}

// Unnotified is one decided achievement whose decision mail is still owed.
type Unnotified struct {
	ID       uuid.UUID
	Email    string
	Decision models.VerificationStatus
	Notes    string
}

// ListUnnotified returns decided achievements with no delivered mail, for
// the retry job.
func (s *Store) ListUnnotified(ctx context.Context, limit int) ([]Unnotified, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
SELECT a.id, st.email, a.verification_status, COALESCE(a.admin_notes, '')
FROM achievements a
JOIN students st ON st.id = a.student_id AND st.deleted_at IS NULL
WHERE a.verification_status IN ($1, $2) AND NOT a.email_sent
ORDER BY a.updated_at
LIMIT $3`, models.StatusApproved, models.StatusRejected, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Unnotified
	for rows.Next() {
		var u Unnotified
		if err := rows.Scan(&u.ID, &u.Email, &u.Decision, &u.Notes); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteAchievement removes a submission. Students may delete only their
// own unapproved records; admins may delete any.
func (s *Store) DeleteAchievement(ctx context.Context, id uuid.UUID, requester *uuid.UUID) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var res sql.Result
	var err error
	if requester == nil { // admin path
		res, err = s.DB.ExecContext(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	} else {
		res, err = s.DB.ExecContext(ctx, `
DELETE FROM achievements
WHERE id = $1 AND student_id = $2 AND verification_status <> $3`,
			id, *requester, models.StatusApproved)
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return verify.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAchievement(r rowScanner) (*models.Achievement, error) {
	var (
		a       models.Achievement
		details []byte
		score   sql.NullInt64
		notes   sql.NullString
		sentAt  sql.NullTime
		cert    sql.NullString
	)
	err := r.Scan(&a.ID, &a.StudentID, &a.Type, &a.Category, &details,
		&a.VerificationStatus, &score, &a.BasePoints, &a.AwardedPoints,
		&notes, &a.EmailSent, &sentAt, &cert, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.Details, err = models.UnmarshalDetails(details); err != nil {
		return nil, fmt.Errorf("decode details for %s: %w", a.ID, err)
	}
	if score.Valid {
		v := int(score.Int64)
		a.VerificationScore = &v
	}
	if notes.Valid {
		a.AdminNotes = &notes.String
	}
	if sentAt.Valid {
		a.EmailSentAt = &sentAt.Time
	}
	if cert.Valid {
		a.CertificatePath = &cert.String
	}
	return &a, nil
}
