// Package points holds the fixed award table and badge tiers. Everything
// here is a pure lookup so the verification flow stays testable.
package points

import "github.com/achievo/achievement-portal/internal/models"

// Base computes the potential award of an achievement before approval.
// The table is fixed; level does not currently affect the award but is
// part of the lookup key contract.
func Base(t models.AchievementType, category, level string, position models.Position, indexed bool) int {
	switch t {
	case models.TypeSpecial:
		return 20
	case models.TypeCourses:
		return 5
	case models.TypeExtraCurricular:
		switch position {
		case models.PositionWinner:
			return 5
		case models.PositionRunnerUp:
			return 3
		default:
			return 1
		}
	case models.TypeCoCurricular:
		if category == "Paper Publication" {
			if indexed {
				return 25
			}
			return 10
		}
		switch position {
		case models.PositionWinner:
			return 15
		case models.PositionRunnerUp:
			return 10
		default:
			// attendance-only events (workshop, seminar, webinar) land here
			return 5
		}
	}
	return 0
}

// BaseFor derives the award for a full achievement record.
func BaseFor(a *models.Achievement) int {
	var (
		level   string
		pos     models.Position
		indexed bool
	)
	if l, ok := models.LevelOf(a.Details); ok {
		level = l
	}
	if p, ok := models.PositionOf(a.Details); ok {
		pos = p
	}
	if pub, ok := a.Details.(models.PublicationDetails); ok {
		indexed = pub.Indexed
	}
	return Base(a.Type, a.Category, level, pos, indexed)
}

// BadgeFor maps total awarded points to a badge tier. Boundaries are
// strict: exactly 20 points is still Gold, 21 is Platinum.
func BadgeFor(total int) models.Badge {
	switch {
	case total > 20:
		return models.BadgePlatinum
	case total > 15:
		return models.BadgeGold
	case total > 10:
		return models.BadgeSilver
	case total > 5:
		return models.BadgeBronze
	default:
		return models.BadgeNone
	}
}
