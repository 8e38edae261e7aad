package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/observability"
)

// AdminAlerter pushes short review alerts to admin Telegram chats. It is an
// optional channel: a nil alerter or empty token disables it entirely.
type AdminAlerter struct {
	bot      *tgbotapi.BotAPI
	adminIDs []int64
	log      *zap.Logger
}

func NewAdminAlerter(token string, adminIDs []int64, log *zap.Logger) (*AdminAlerter, error) {
	if token == "" || len(adminIDs) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &AdminAlerter{bot: bot, adminIDs: adminIDs, log: log}, nil
}

// PendingSubmitted announces a new achievement awaiting review.
func (a *AdminAlerter) PendingSubmitted(ach *models.Achievement, studentName string) {
	if a == nil {
		return
	}
	text := fmt.Sprintf("New achievement pending review\nStudent: %s\nType: %s / %s\nID: %s",
		studentName, ach.Type, ach.Category, ach.ID)
	a.broadcast(text)
}

// Decided announces a terminal decision so admins see the audit trail.
func (a *AdminAlerter) Decided(ach *models.Achievement, points int) {
	if a == nil {
		return
	}
	text := fmt.Sprintf("Achievement %s: %s (%d points)", ach.ID, ach.VerificationStatus, points)
	a.broadcast(text)
}

func (a *AdminAlerter) broadcast(text string) {
	for _, id := range a.adminIDs {
		if _, err := a.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
			a.log.Warn("admin alert failed", zap.Int64("chat", id), zap.Error(err))
			if isSystemErr(err) {
				observability.CaptureErr(err)
			}
		}
	}
}

// 5xx, 429 and timeouts are ours to notice; Telegram-side validation noise
// stays out of Sentry.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}
