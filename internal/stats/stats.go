// Package stats groups achievements for the drill-down pie charts and
// computes the points leaderboard.
package stats

import (
	"math"
	"sort"

	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/points"
)

// Slice is one pie-chart segment.
type Slice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ByType counts achievements per achievement type.
func ByType(achievements []models.Achievement) map[models.AchievementType]int {
	out := make(map[models.AchievementType]int)
	for _, a := range achievements {
		out[a.Type]++
	}
	return out
}

// ByCategory counts achievements of one type per sub-category.
func ByCategory(achievements []models.Achievement, t models.AchievementType) map[string]int {
	out := make(map[string]int)
	for _, a := range achievements {
		if a.Type == t {
			out[a.Category]++
		}
	}
	return out
}

// TypeBreakdown returns one slice per known achievement type, zero-count
// types included. An empty input yields 0% everywhere, never NaN.
func TypeBreakdown(achievements []models.Achievement) []Slice {
	counts := ByType(achievements)
	labels := make([]string, 0, len(models.CategoriesByType))
	for t := range models.CategoriesByType {
		labels = append(labels, string(t))
	}
	sort.Strings(labels)

	out := make([]Slice, 0, len(labels))
	for _, l := range labels {
		out = append(out, Slice{Label: l, Count: counts[models.AchievementType(l)]})
	}
	return withPercents(out, len(achievements))
}

// CategoryBreakdown returns one slice per known sub-category of the type,
// zero-count categories included.
func CategoryBreakdown(achievements []models.Achievement, t models.AchievementType) []Slice {
	counts := ByCategory(achievements, t)
	total := 0
	for _, c := range counts {
		total += c
	}

	out := make([]Slice, 0, len(models.CategoriesByType[t]))
	for _, cat := range models.CategoriesByType[t] {
		out = append(out, Slice{Label: cat, Count: counts[cat]})
	}
	return withPercents(out, total)
}

func withPercents(slices []Slice, total int) []Slice {
	for i := range slices {
		if total == 0 {
			slices[i].Percent = 0
			continue
		}
		p := float64(slices[i].Count) / float64(total) * 100
		slices[i].Percent = math.Round(p*10) / 10
	}
	return slices
}

// RankLeaderboard sorts rows by points descending (ties by name), assigns
// ranks with ties sharing a rank, and attaches badges.
func RankLeaderboard(rows []models.LeaderboardRow) []models.LeaderboardRow {
	out := append([]models.LeaderboardRow(nil), rows...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].StudentName < out[j].StudentName
	})
	for i := range out {
		if i > 0 && out[i].TotalPoints == out[i-1].TotalPoints {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
		out[i].Badge = points.BadgeFor(out[i].TotalPoints)
	}
	return out
}
