package models

import (
	"time"

	"github.com/google/uuid"
)

type AchievementType string

const (
	TypeCoCurricular    AchievementType = "Co-Curricular"
	TypeExtraCurricular AchievementType = "Extra-Curricular"
	TypeCourses         AchievementType = "Courses"
	TypeSpecial         AchievementType = "Special Achievement"
)

// CategoriesByType lists the known sub-types under each achievement type.
// The "ALL" sentinel used by reports is not part of these lists.
var CategoriesByType = map[AchievementType][]string{
	TypeCoCurricular:    {"Workshop", "Seminar", "Webinar", "Hackathon", "Code Competition", "Paper Publication"},
	TypeExtraCurricular: {"Sports", "Cultural Event", "Volunteering"},
	TypeCourses:         {"Online Course", "Certification"},
	TypeSpecial:         {"Special Achievement"},
}

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusVerified VerificationStatus = "VERIFIED"
	StatusPartial  VerificationStatus = "PARTIAL"
	StatusFailed   VerificationStatus = "FAILED"
	StatusApproved VerificationStatus = "APPROVED"
	StatusRejected VerificationStatus = "REJECTED"
)

// Terminal reports whether the status can no longer change.
func (s VerificationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Scored reports whether the automated scorer has already run.
func (s VerificationStatus) Scored() bool {
	return s == StatusVerified || s == StatusPartial || s == StatusFailed
}

type Achievement struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	StudentID          uuid.UUID          `db:"student_id" json:"studentId"`
	Type               AchievementType    `db:"type" json:"type"`
	Category           string             `db:"category" json:"category"`
	Details            Details            `db:"details" json:"details"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verificationStatus"`
	VerificationScore  *int               `db:"verification_score" json:"verificationScore,omitempty"`
	BasePoints         int                `db:"base_points" json:"basePoints"`
	AwardedPoints      int                `db:"awarded_points" json:"awardedPoints"`
	AdminNotes         *string            `db:"admin_notes" json:"adminNotes,omitempty"`
	EmailSent          bool               `db:"email_sent" json:"emailSent"`
	EmailSentAt        *time.Time         `db:"email_sent_at" json:"emailSentAt,omitempty"`
	CertificatePath    *string            `db:"certificate_path" json:"certificatePath,omitempty"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

type Position string

const (
	PositionWinner        Position = "Winner"
	PositionRunnerUp      Position = "Runner-up"
	PositionParticipation Position = "Participation"
)
