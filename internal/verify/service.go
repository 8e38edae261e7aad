// Package verify implements the achievement verification lifecycle:
// PENDING → VERIFIED/PARTIAL/FAILED (automated scoring) → APPROVED/REJECTED
// (admin decision). Approval is gated on the verification score and is the
// only path that awards points.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/ctxutil"
	"github.com/achievo/achievement-portal/internal/metrics"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/points"
	"github.com/achievo/achievement-portal/internal/scorer"
)

// Store is the persistence collaborator. ApplyDecision must be a
// conditional update keyed on the current status (and on the score gate
// for approvals) so that concurrent decisions cannot both win.
type Store interface {
	GetAchievement(ctx context.Context, id uuid.UUID) (*models.Achievement, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ListPending(ctx context.Context) ([]models.Achievement, error)
	SaveScore(ctx context.Context, id uuid.UUID, score int, status models.VerificationStatus) error
	ApplyDecision(ctx context.Context, id uuid.UUID, decision models.VerificationStatus, notes string, awarded int, minScore int) error
	MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Scorer is the external OCR/matching collaborator.
type Scorer interface {
	Score(ctx context.Context, a *models.Achievement) (*scorer.Result, error)
}

// Notifier delivers decision mail. Best-effort: the return value reports
// delivery, errors never propagate into the decision itself.
type Notifier interface {
	SendDecision(ctx context.Context, email string, decision models.VerificationStatus, notes string) bool
}

type Service struct {
	store  Store
	scorer Scorer
	mailer Notifier
	log    *zap.Logger
}

func NewService(store Store, sc Scorer, mailer Notifier, log *zap.Logger) *Service {
	return &Service{store: store, scorer: sc, mailer: mailer, log: log}
}

// BulkResult aggregates one bulk verification run.
type BulkResult struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Partial  int `json:"partial"`
	Failed   int `json:"failed"`
	Errors   int `json:"errors"`
}

// DecisionResult reports the outcome of an admin decision.
type DecisionResult struct {
	PointsAwarded int    `json:"pointsAwarded"`
	EmailSent     bool   `json:"emailSent"`
	Message       string `json:"message"`
}

// Score runs the external scorer for one achievement and persists the
// resulting score and status. Terminal achievements are never re-scored.
func (s *Service) Score(ctx context.Context, id uuid.UUID) (*scorer.Result, error) {
	a, err := s.store.GetAchievement(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.VerificationStatus.Terminal() {
		return nil, ErrAlreadyDecided
	}

	res, err := s.scorer.Score(ctx, a)
	if err != nil {
		metrics.ScoreErrors.Inc()
		return nil, fmt.Errorf("score achievement %s: %w", id, err)
	}
	if err := s.store.SaveScore(ctx, id, res.OverallScore, res.VerificationStatus); err != nil {
		return nil, fmt.Errorf("persist score for %s: %w", id, err)
	}
	metrics.ScoreRuns.Inc()
	s.log.Info("achievement scored",
		zap.String("id", id.String()),
		zap.Int("score", res.OverallScore),
		zap.String("status", string(res.VerificationStatus)))
	return res, nil
}

// BulkScore scores every currently-PENDING achievement sequentially.
// A failing item is counted and skipped; one bad certificate must not
// abort the batch.
func (s *Service) BulkScore(ctx context.Context) (*BulkResult, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	res := &BulkResult{Total: len(pending)}
	for i := range pending {
		a := &pending[i]
		sc, err := s.scorer.Score(ctx, a)
		if err != nil {
			res.Errors++
			metrics.ScoreErrors.Inc()
			s.log.Warn("bulk score item failed", zap.String("id", a.ID.String()), zap.Error(err))
			continue
		}
		if err := s.store.SaveScore(ctx, a.ID, sc.OverallScore, sc.VerificationStatus); err != nil {
			res.Errors++
			s.log.Warn("bulk score persist failed", zap.String("id", a.ID.String()), zap.Error(err))
			continue
		}
		metrics.ScoreRuns.Inc()
		switch sc.VerificationStatus {
		case models.StatusVerified:
			res.Verified++
		case models.StatusPartial:
			res.Partial++
		case models.StatusFailed:
			res.Failed++
		}
	}
	s.log.Info("bulk verification finished",
		zap.Int("total", res.Total), zap.Int("verified", res.Verified),
		zap.Int("partial", res.Partial), zap.Int("failed", res.Failed),
		zap.Int("errors", res.Errors))
	return res, nil
}

// Decide applies an admin decision. APPROVED requires a verification
// score of at least MinApproveScore and awards the base points; REJECTED
// records notes and awards nothing. Either way the decision mail is
// best-effort and its failure only clears the EmailSent flag.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, decision models.VerificationStatus, notes string) (*DecisionResult, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, &ValidationError{Reason: fmt.Sprintf("decision must be %s or %s", models.StatusApproved, models.StatusRejected)}
	}

	a, err := s.store.GetAchievement(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.VerificationStatus.Terminal() {
		return nil, ErrAlreadyDecided
	}

	awarded := 0
	if decision == models.StatusApproved {
		if a.VerificationScore == nil {
			return nil, &NotScoredError{}
		}
		if *a.VerificationScore < MinApproveScore {
			return nil, &ScoreTooLowError{Score: *a.VerificationScore, Threshold: MinApproveScore}
		}
		awarded = a.BasePoints
		if awarded == 0 {
			awarded = points.BaseFor(a)
		}
	}

	// The store re-checks both preconditions inside a conditional update;
	// under concurrent admins only one decision can take effect.
	if err := s.store.ApplyDecision(ctx, id, decision, notes, awarded, MinApproveScore); err != nil {
		return nil, err
	}
	metrics.Decisions.WithLabelValues(string(decision)).Inc()

	fields := []zap.Field{
		zap.String("achievement", id.String()),
		zap.String("decision", string(decision)),
		zap.Int("awarded", awarded),
	}
	if admin, ok := ctxutil.AdminID(ctx); ok {
		fields = append(fields, zap.String("admin", admin))
	}
	if rid, ok := ctxutil.RequestID(ctx); ok {
		fields = append(fields, zap.String("request_id", rid))
	}
	s.log.Info("decision applied", fields...)

	result := &DecisionResult{PointsAwarded: awarded}
	if decision == models.StatusApproved {
		result.Message = fmt.Sprintf("Achievement approved, %d points awarded", awarded)
	} else {
		result.Message = "Achievement rejected"
	}

	student, err := s.store.GetStudent(ctx, a.StudentID)
	if err != nil {
		s.log.Warn("decision mail skipped, student lookup failed",
			zap.String("achievement", id.String()), zap.Error(err))
		return result, nil
	}
	if s.mailer.SendDecision(ctx, student.Email, decision, notes) {
		result.EmailSent = true
		if err := s.store.MarkEmailSent(ctx, id, time.Now()); err != nil {
			s.log.Warn("mark email sent failed", zap.String("achievement", id.String()), zap.Error(err))
		}
	} else {
		metrics.EmailFailures.Inc()
	}
	return result, nil
}
