package points

import (
	"testing"

	"github.com/achievo/achievement-portal/internal/models"
)

func TestBase(t *testing.T) {
	cases := []struct {
		name     string
		typ      models.AchievementType
		category string
		position models.Position
		indexed  bool
		want     int
	}{
		{"hackathon winner", models.TypeCoCurricular, "Hackathon", models.PositionWinner, false, 15},
		{"hackathon runner-up", models.TypeCoCurricular, "Hackathon", models.PositionRunnerUp, false, 10},
		{"code competition participation", models.TypeCoCurricular, "Code Competition", models.PositionParticipation, false, 5},
		{"workshop attendance", models.TypeCoCurricular, "Workshop", "", false, 5},
		{"indexed paper", models.TypeCoCurricular, "Paper Publication", "", true, 25},
		{"non-indexed paper", models.TypeCoCurricular, "Paper Publication", "", false, 10},
		{"sports winner", models.TypeExtraCurricular, "Sports", models.PositionWinner, false, 5},
		{"sports runner-up", models.TypeExtraCurricular, "Sports", models.PositionRunnerUp, false, 3},
		{"cultural participation", models.TypeExtraCurricular, "Cultural Event", models.PositionParticipation, false, 1},
		{"course completion", models.TypeCourses, "Online Course", "", false, 5},
		{"special flat", models.TypeSpecial, "Special Achievement", "", false, 20},
		{"special ignores position", models.TypeSpecial, "Special Achievement", models.PositionWinner, true, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Base(c.typ, c.category, "National", c.position, c.indexed)
			if got != c.want {
				t.Fatalf("Base(%s/%s/%s) = %d, want %d", c.typ, c.category, c.position, got, c.want)
			}
		})
	}
}

func TestBaseFor(t *testing.T) {
	a := &models.Achievement{
		Type:     models.TypeCoCurricular,
		Category: "Hackathon",
		Details:  models.CompetitionDetails{EventName: "HackXperience", Position: models.PositionWinner},
	}
	if got := BaseFor(a); got != 15 {
		t.Fatalf("BaseFor hackathon winner = %d, want 15", got)
	}

	p := &models.Achievement{
		Type:     models.TypeCoCurricular,
		Category: "Paper Publication",
		Details:  models.PublicationDetails{Title: "On Caching", Indexed: true},
	}
	if got := BaseFor(p); got != 25 {
		t.Fatalf("BaseFor indexed publication = %d, want 25", got)
	}
}

func TestBadgeBoundaries(t *testing.T) {
	cases := []struct {
		points int
		want   models.Badge
	}{
		{0, models.BadgeNone},
		{5, models.BadgeNone}, // strictly greater than, not >=
		{6, models.BadgeBronze},
		{10, models.BadgeBronze},
		{11, models.BadgeSilver},
		{15, models.BadgeSilver},
		{16, models.BadgeGold},
		{20, models.BadgeGold},
		{21, models.BadgePlatinum},
		{100, models.BadgePlatinum},
	}
	for _, c := range cases {
		if got := BadgeFor(c.points); got != c.want {
			t.Errorf("BadgeFor(%d) = %q, want %q", c.points, got, c.want)
		}
	}
}
