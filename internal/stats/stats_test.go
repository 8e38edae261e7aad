package stats

import (
	"testing"

	"github.com/achievo/achievement-portal/internal/models"
)

func ach(t models.AchievementType, category string) models.Achievement {
	return models.Achievement{Type: t, Category: category}
}

func TestTypeBreakdown(t *testing.T) {
	in := []models.Achievement{
		ach(models.TypeCoCurricular, "Hackathon"),
		ach(models.TypeCoCurricular, "Workshop"),
		ach(models.TypeCourses, "Online Course"),
	}
	slices := TypeBreakdown(in)

	got := map[string]Slice{}
	for _, s := range slices {
		got[s.Label] = s
	}
	if got[string(models.TypeCoCurricular)].Count != 2 {
		t.Fatalf("co-curricular count = %d", got[string(models.TypeCoCurricular)].Count)
	}
	if got[string(models.TypeCoCurricular)].Percent != 66.7 {
		t.Fatalf("co-curricular percent = %v, want 66.7", got[string(models.TypeCoCurricular)].Percent)
	}
	if got[string(models.TypeSpecial)].Count != 0 || got[string(models.TypeSpecial)].Percent != 0 {
		t.Fatal("zero-count types must still appear with 0%")
	}
}

func TestEmptyInputYieldsZeroPercents(t *testing.T) {
	for _, s := range TypeBreakdown(nil) {
		if s.Percent != 0 || s.Count != 0 {
			t.Fatalf("empty input: %+v", s)
		}
	}
	for _, s := range CategoryBreakdown(nil, models.TypeCoCurricular) {
		if s.Percent != 0 || s.Count != 0 {
			t.Fatalf("empty input: %+v", s)
		}
	}
}

func TestCategoryBreakdownScopedToType(t *testing.T) {
	in := []models.Achievement{
		ach(models.TypeCoCurricular, "Hackathon"),
		ach(models.TypeCoCurricular, "Hackathon"),
		ach(models.TypeCoCurricular, "Workshop"),
		ach(models.TypeExtraCurricular, "Sports"), // other type, ignored
	}
	slices := CategoryBreakdown(in, models.TypeCoCurricular)
	got := map[string]Slice{}
	for _, s := range slices {
		got[s.Label] = s
	}
	if got["Hackathon"].Count != 2 || got["Hackathon"].Percent != 66.7 {
		t.Fatalf("hackathon slice = %+v", got["Hackathon"])
	}
	if got["Workshop"].Percent != 33.3 {
		t.Fatalf("workshop percent = %v", got["Workshop"].Percent)
	}
	if _, ok := got["Sports"]; ok {
		t.Fatal("foreign categories must not leak into the breakdown")
	}
}

func TestRankLeaderboard(t *testing.T) {
	rows := []models.LeaderboardRow{
		{StudentName: "Asha", TotalPoints: 21},
		{StudentName: "Ravi", TotalPoints: 6},
		{StudentName: "Meera", TotalPoints: 21},
		{StudentName: "Kiran", TotalPoints: 5},
	}
	ranked := RankLeaderboard(rows)

	if ranked[0].StudentName != "Asha" || ranked[1].StudentName != "Meera" {
		t.Fatalf("tie order by name broken: %v, %v", ranked[0].StudentName, ranked[1].StudentName)
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 1 {
		t.Fatalf("tied students must share a rank: %d, %d", ranked[0].Rank, ranked[1].Rank)
	}
	if ranked[0].Badge != models.BadgePlatinum {
		t.Fatalf("21 points must be Platinum, got %q", ranked[0].Badge)
	}
	if ranked[2].Badge != models.BadgeBronze {
		t.Fatalf("6 points must be Bronze, got %q", ranked[2].Badge)
	}
	if ranked[3].Badge != models.BadgeNone {
		t.Fatalf("5 points must have no badge, got %q", ranked[3].Badge)
	}
}
