package verify_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/scorer"
	"github.com/achievo/achievement-portal/internal/verify"
)

// fakeStore is an in-memory Store with the same conditional-update
// semantics as the SQL implementation.
type fakeStore struct {
	mu           sync.Mutex
	achievements map[uuid.UUID]*models.Achievement
	students     map[uuid.UUID]*models.Student
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		achievements: map[uuid.UUID]*models.Achievement{},
		students:     map[uuid.UUID]*models.Student{},
	}
}

func (f *fakeStore) GetAchievement(_ context.Context, id uuid.UUID) (*models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.achievements[id]
	if !ok {
		return nil, verify.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetStudent(_ context.Context, id uuid.UUID) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, verify.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListPending(_ context.Context) ([]models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Achievement
	for _, a := range f.achievements {
		if a.VerificationStatus == models.StatusPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveScore(_ context.Context, id uuid.UUID, score int, status models.VerificationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.achievements[id]
	if !ok {
		return verify.ErrNotFound
	}
	if a.VerificationStatus.Terminal() {
		return verify.ErrAlreadyDecided
	}
	a.VerificationScore = &score
	a.VerificationStatus = status
	return nil
}

func (f *fakeStore) ApplyDecision(_ context.Context, id uuid.UUID, decision models.VerificationStatus, notes string, awarded int, minScore int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.achievements[id]
	if !ok {
		return verify.ErrNotFound
	}
	// check-and-set under one lock, mirroring the conditional UPDATE
	if a.VerificationStatus.Terminal() {
		return verify.ErrAlreadyDecided
	}
	if decision == models.StatusApproved {
		if a.VerificationScore == nil {
			return &verify.NotScoredError{}
		}
		if *a.VerificationScore < minScore {
			return &verify.ScoreTooLowError{Score: *a.VerificationScore, Threshold: minScore}
		}
	}
	a.VerificationStatus = decision
	a.AdminNotes = &notes
	a.AwardedPoints = awarded
	return nil
}

func (f *fakeStore) MarkEmailSent(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.achievements[id]; ok {
		a.EmailSent = true
		a.EmailSentAt = &at
	}
	return nil
}

type fakeScorer struct {
	fn func(a *models.Achievement) (*scorer.Result, error)
}

func (f *fakeScorer) Score(_ context.Context, a *models.Achievement) (*scorer.Result, error) {
	return f.fn(a)
}

type fakeMailer struct {
	mu   sync.Mutex
	ok   bool
	sent int
}

func (f *fakeMailer) SendDecision(context.Context, string, models.VerificationStatus, string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ok {
		f.sent++
	}
	return f.ok
}

func seedAchievement(st *fakeStore, score *int, status models.VerificationStatus) uuid.UUID {
	studentID := uuid.New()
	st.students[studentID] = &models.Student{ID: studentID, UCE: "1NH21CS001", Name: "Asha Rao", Email: "asha@example.edu"}
	id := uuid.New()
	st.achievements[id] = &models.Achievement{
		ID:                 id,
		StudentID:          studentID,
		Type:               models.TypeCoCurricular,
		Category:           "Hackathon",
		Details:            models.CompetitionDetails{EventName: "HackXperience", Position: models.PositionWinner},
		VerificationStatus: status,
		VerificationScore:  score,
		BasePoints:         15,
	}
	return id
}

func intp(v int) *int { return &v }

func newService(st *fakeStore, sc *fakeScorer, m *fakeMailer) *verify.Service {
	return verify.NewService(st, sc, m, zap.NewNop())
}

func TestDecideApproveBelowThreshold(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(49), models.StatusPartial)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	_, err := svc.Decide(context.Background(), id, models.StatusApproved, "looks fine")
	var tooLow *verify.ScoreTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("want ScoreTooLowError, got %v", err)
	}
	if tooLow.Score != 49 || tooLow.Threshold != 50 {
		t.Fatalf("unexpected error detail: %+v", tooLow)
	}

	a, _ := st.GetAchievement(context.Background(), id)
	if a.VerificationStatus != models.StatusPartial || a.AwardedPoints != 0 {
		t.Fatalf("refused approval must not mutate state: %+v", a)
	}
}

func TestDecideApproveBoundaryInclusive(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(50), models.StatusPartial)
	m := &fakeMailer{ok: true}
	svc := newService(st, &fakeScorer{}, m)

	res, err := svc.Decide(context.Background(), id, models.StatusApproved, "")
	if err != nil {
		t.Fatalf("score 50 must be approvable: %v", err)
	}
	if res.PointsAwarded != 15 {
		t.Fatalf("awarded = %d, want base points 15", res.PointsAwarded)
	}
	if !res.EmailSent {
		t.Fatal("email should be reported as sent")
	}

	a, _ := st.GetAchievement(context.Background(), id)
	if a.VerificationStatus != models.StatusApproved || a.AwardedPoints != 15 || !a.EmailSent {
		t.Fatalf("unexpected state after approval: %+v", a)
	}
}

func TestDecideUnscoredApproveRefused(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, nil, models.StatusPending)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	_, err := svc.Decide(context.Background(), id, models.StatusApproved, "")
	var notScored *verify.NotScoredError
	if !errors.As(err, &notScored) {
		t.Fatalf("want NotScoredError, got %v", err)
	}
}

func TestDecideRejectFromPending(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, nil, models.StatusPending)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	res, err := svc.Decide(context.Background(), id, models.StatusRejected, "certificate unreadable")
	if err != nil {
		t.Fatalf("reject from PENDING must work: %v", err)
	}
	if res.PointsAwarded != 0 {
		t.Fatalf("reject must not award points, got %d", res.PointsAwarded)
	}
	a, _ := st.GetAchievement(context.Background(), id)
	if a.VerificationStatus != models.StatusRejected || a.AdminNotes == nil || *a.AdminNotes != "certificate unreadable" {
		t.Fatalf("unexpected state after rejection: %+v", a)
	}
}

func TestDecideAlreadyDecided(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(80), models.StatusApproved)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	_, err := svc.Decide(context.Background(), id, models.StatusRejected, "")
	if !errors.Is(err, verify.ErrAlreadyDecided) {
		t.Fatalf("want ErrAlreadyDecided, got %v", err)
	}
}

func TestDecideInvalidDecision(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(80), models.StatusVerified)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	_, err := svc.Decide(context.Background(), id, models.StatusPartial, "")
	var ve *verify.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestDecideEmailFailureDoesNotRollBack(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(90), models.StatusVerified)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: false})

	res, err := svc.Decide(context.Background(), id, models.StatusApproved, "")
	if err != nil {
		t.Fatalf("mail failure must not fail the decision: %v", err)
	}
	if res.EmailSent {
		t.Fatal("EmailSent should be false")
	}
	a, _ := st.GetAchievement(context.Background(), id)
	if a.VerificationStatus != models.StatusApproved || a.AwardedPoints != 15 {
		t.Fatalf("approval must stand despite mail failure: %+v", a)
	}
}

func TestScoreSkipsTerminal(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(80), models.StatusRejected)
	sc := &fakeScorer{fn: func(*models.Achievement) (*scorer.Result, error) {
		t.Fatal("scorer must not be called for terminal achievements")
		return nil, nil
	}}
	svc := newService(st, sc, &fakeMailer{ok: true})

	if _, err := svc.Score(context.Background(), id); !errors.Is(err, verify.ErrAlreadyDecided) {
		t.Fatalf("want ErrAlreadyDecided, got %v", err)
	}
}

func TestBulkScoreIsolatesFailures(t *testing.T) {
	st := newFakeStore()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, seedAchievement(st, nil, models.StatusPending))
	}
	bad := ids[2]
	sc := &fakeScorer{fn: func(a *models.Achievement) (*scorer.Result, error) {
		if a.ID == bad {
			return nil, fmt.Errorf("ocr backend unavailable")
		}
		return &scorer.Result{OverallScore: 72, VerificationStatus: models.StatusPartial}, nil
	}}
	svc := newService(st, sc, &fakeMailer{ok: true})

	res, err := svc.BulkScore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 || res.Partial != 4 || res.Errors != 1 || res.Verified != 0 || res.Failed != 0 {
		t.Fatalf("unexpected aggregate: %+v", res)
	}

	a, _ := st.GetAchievement(context.Background(), bad)
	if a.VerificationStatus != models.StatusPending {
		t.Fatalf("failed item must stay PENDING, got %s", a.VerificationStatus)
	}
}

func TestConcurrentDecideAwardsOnce(t *testing.T) {
	st := newFakeStore()
	id := seedAchievement(st, intp(85), models.StatusVerified)
	svc := newService(st, &fakeScorer{}, &fakeMailer{ok: true})

	const n = 20
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), id, models.StatusApproved, "")
			results[i] = err
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
		} else if !errors.Is(err, verify.ErrAlreadyDecided) {
			t.Fatalf("unexpected error under contention: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("exactly one decide must win, got %d", ok)
	}

	a, _ := st.GetAchievement(context.Background(), id)
	if a.AwardedPoints != 15 {
		t.Fatalf("points must be awarded exactly once, got %d", a.AwardedPoints)
	}
}
