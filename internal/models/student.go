package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UCE        string     `db:"uce" json:"uce"` // unique enrollment number
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Department string     `db:"department" json:"department"`
	Semester   int        `db:"semester" json:"semester"`
	PhotoRef   *string    `db:"photo_ref" json:"photoRef,omitempty"` // opaque blob reference, resolved by the file store
	IsActive   bool       `db:"is_active" json:"isActive"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}

// AcademicRecord is one exam-type-specific sub-record of a student.
type AcademicRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StudentID    uuid.UUID `db:"student_id" json:"studentId"`
	ExamType     string    `db:"exam_type" json:"examType"` // e.g. SEE, CIE, Semester
	Semester     int       `db:"semester" json:"semester"`
	Subject      string    `db:"subject" json:"subject"`
	MaxMarks     int       `db:"max_marks" json:"maxMarks"`
	ScoredMarks  int       `db:"scored_marks" json:"scoredMarks"`
	MarksheetRef *string   `db:"marksheet_ref" json:"marksheetRef,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Badge string

const (
	BadgeNone     Badge = ""
	BadgeBronze   Badge = "Bronze"
	BadgeSilver   Badge = "Silver"
	BadgeGold     Badge = "Gold"
	BadgePlatinum Badge = "Platinum"
)

// LeaderboardRow is one line of the points leaderboard.
type LeaderboardRow struct {
	StudentID   uuid.UUID `db:"student_id" json:"studentId"`
	UCE         string    `db:"uce" json:"uce"`
	StudentName string    `db:"student_name" json:"studentName"`
	TotalPoints int       `db:"total_points" json:"totalPoints"`
	Badge       Badge     `db:"-" json:"badge,omitempty"`
	Rank        int       `db:"-" json:"rank"`
}
