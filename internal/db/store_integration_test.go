//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/db"
	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/testutil/testdb"
	"github.com/achievo/achievement-portal/internal/verify"
)

func mustSeedStudent(t *testing.T, store *db.Store, uce, name string) *models.Student {
	t.Helper()
	st := &models.Student{
		UCE:        uce,
		Name:       name,
		Email:      uce + "@example.edu",
		Department: "CSE",
		Semester:   5,
	}
	if err := store.CreateStudent(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	return st
}

func mustSeedAchievement(t *testing.T, store *db.Store, studentID uuid.UUID, category string, pos models.Position) *models.Achievement {
	t.Helper()
	a := &models.Achievement{
		StudentID: studentID,
		Type:      models.TypeCoCurricular,
		Category:  category,
		Details: models.CompetitionDetails{
			EventName: "Test " + category,
			Level:     "National",
			Position:  pos,
			StartDate: time.Now().AddDate(0, -1, 0),
			EndDate:   time.Now().AddDate(0, -1, 2),
		},
	}
	if err := store.CreateAchievement(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestDecisionLifecycle(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	store := db.NewStore(h.DB)
	ctx := context.Background()

	st := mustSeedStudent(t, store, "1MS21CS001", "Asha")
	a := mustSeedAchievement(t, store, st.ID, "Hackathon", models.PositionWinner)

	if a.VerificationStatus != models.StatusPending {
		t.Fatalf("new achievement status = %s", a.VerificationStatus)
	}
	if a.BasePoints != 15 {
		t.Fatalf("hackathon winner base points = %d", a.BasePoints)
	}

	// Approval before scoring must be refused by the conditional update.
	err = store.ApplyDecision(ctx, a.ID, models.StatusApproved, "", a.BasePoints, verify.MinApproveScore)
	var notScored *verify.NotScoredError
	if !errors.As(err, &notScored) {
		t.Fatalf("approve unscored: %v", err)
	}

	if err := store.SaveScore(ctx, a.ID, 86, models.StatusVerified); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplyDecision(ctx, a.ID, models.StatusApproved, "looks genuine", a.BasePoints, verify.MinApproveScore); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetAchievement(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.VerificationStatus != models.StatusApproved || got.AwardedPoints != 15 {
		t.Fatalf("after approve: %s / %d points", got.VerificationStatus, got.AwardedPoints)
	}

	// Second decision on a terminal row.
	err = store.ApplyDecision(ctx, a.ID, models.StatusRejected, "", 0, verify.MinApproveScore)
	if !errors.Is(err, verify.ErrAlreadyDecided) {
		t.Fatalf("re-decide: %v", err)
	}
}

func TestApproveBelowThresholdRefused(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	store := db.NewStore(h.DB)
	ctx := context.Background()

	st := mustSeedStudent(t, store, "1MS21CS002", "Ravi")
	a := mustSeedAchievement(t, store, st.ID, "Code Competition", models.PositionRunnerUp)

	if err := store.SaveScore(ctx, a.ID, 41, models.StatusFailed); err != nil {
		t.Fatal(err)
	}
	err = store.ApplyDecision(ctx, a.ID, models.StatusApproved, "", a.BasePoints, verify.MinApproveScore)
	var low *verify.ScoreTooLowError
	if !errors.As(err, &low) {
		t.Fatalf("approve at 41: %v", err)
	}
	if low.Score != 41 || low.Threshold != verify.MinApproveScore {
		t.Fatalf("error detail: %+v", low)
	}

	// Rejection has no score gate.
	if err := store.ApplyDecision(ctx, a.ID, models.StatusRejected, "forged certificate", 0, verify.MinApproveScore); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentDecideSingleWinner(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	store := db.NewStore(h.DB)
	ctx := context.Background()

	st := mustSeedStudent(t, store, "1MS21CS003", "Meera")
	a := mustSeedAchievement(t, store, st.ID, "Hackathon", models.PositionParticipation)
	if err := store.SaveScore(ctx, a.ID, 90, models.StatusVerified); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wins := make(chan models.VerificationStatus, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := store.ApplyDecision(ctx, a.ID, models.StatusApproved, "", a.BasePoints, verify.MinApproveScore); err == nil {
				wins <- models.StatusApproved
			}
		}()
		go func() {
			defer wg.Done()
			if err := store.ApplyDecision(ctx, a.ID, models.StatusRejected, "", 0, verify.MinApproveScore); err == nil {
				wins <- models.StatusRejected
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []models.VerificationStatus
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("winners = %d, want exactly 1", len(winners))
	}

	got, err := store.GetAchievement(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.VerificationStatus != winners[0] {
		t.Fatalf("stored %s, winner %s", got.VerificationStatus, winners[0])
	}
}

func TestLeaderboardSumsApprovedOnly(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	store := db.NewStore(h.DB)
	ctx := context.Background()

	st := mustSeedStudent(t, store, "1MS21CS004", "Kiran")

	approved := mustSeedAchievement(t, store, st.ID, "Hackathon", models.PositionWinner)
	if err := store.SaveScore(ctx, approved.ID, 88, models.StatusVerified); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplyDecision(ctx, approved.ID, models.StatusApproved, "", approved.BasePoints, verify.MinApproveScore); err != nil {
		t.Fatal(err)
	}

	// A pending achievement must not count.
	mustSeedAchievement(t, store, st.ID, "Code Competition", models.PositionWinner)

	rows, err := store.Leaderboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].TotalPoints != 15 || rows[0].UCE != "1MS21CS004" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestStudentDeleteRules(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	store := db.NewStore(h.DB)
	ctx := context.Background()

	st := mustSeedStudent(t, store, "1MS21CS005", "Divya")
	a := mustSeedAchievement(t, store, st.ID, "Hackathon", models.PositionWinner)
	if err := store.SaveScore(ctx, a.ID, 95, models.StatusVerified); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplyDecision(ctx, a.ID, models.StatusApproved, "", a.BasePoints, verify.MinApproveScore); err != nil {
		t.Fatal(err)
	}

	// Students cannot remove approved achievements.
	err = store.DeleteAchievement(ctx, a.ID, &st.ID)
	if err == nil {
		t.Fatal("student delete of approved row must fail")
	}

	// Admins can.
	if err := store.DeleteAchievement(ctx, a.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetAchievement(ctx, a.ID); !errors.Is(err, verify.ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}

	// Soft-deleted students disappear from lookups.
	if err := store.DeleteStudent(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetStudentByUCE(ctx, "1MS21CS005"); !errors.Is(err, verify.ErrNotFound) {
		t.Fatalf("after student delete: %v", err)
	}
}
