package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

type AchievementHandler struct {
	db           *gorm.DB
	achievements *achievements.Service
	authHandler  *auth.AuthHandler
}

func NewAchievementHandler(db *gorm.DB, achievementService *achievements.Service, authHandler *auth.AuthHandler) *AchievementHandler {
	return &AchievementHandler{db: db, achievements: achievementService, authHandler: authHandler}
}

type ListAchievementsRequest struct {
	auth.AuthInput
}

type AchievementWithProgress struct {
	models.Achievement
	UserProgress models.ProgressSnapshot `json:"user_progress"`
	IsCompleted  bool                    `json:"is_completed"`
	CompletedAt  *time.Time              `json:"completed_at"`
}

type ListAchievementsResponse struct {
	Body struct {
		Achievements []AchievementWithProgress `json:"achievements"`
	}
}

// HandleList returns the full catalog annotated with the user's progress.
// Achievements never evaluated for this user report zero progress.
func (h *AchievementHandler) HandleList(ctx context.Context, input *ListAchievementsRequest) (*ListAchievementsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var catalog []models.Achievement
	if err := h.db.Find(&catalog).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to get achievements: " + err.Error())
	}

	var progressRows []models.UserAchievement
	if err := h.db.Where("user_id = ?", userID).Find(&progressRows).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to get achievements: " + err.Error())
	}
	progressByID := make(map[uint]models.UserAchievement, len(progressRows))
	for _, row := range progressRows {
		progressByID[row.AchievementID] = row
	}

	result := make([]AchievementWithProgress, 0, len(catalog))
	for _, achievement := range catalog {
		entry := AchievementWithProgress{Achievement: achievement}
		if row, ok := progressByID[achievement.ID]; ok {
			entry.UserProgress = row.Progress
			entry.IsCompleted = row.IsCompleted
			entry.CompletedAt = row.CompletedAt
		} else {
			entry.UserProgress = models.ProgressSnapshot{
				Target: achievement.Criteria.TargetOrDefault(),
			}
		}
		result = append(result, entry)
	}

	res := &ListAchievementsResponse{}
	res.Body.Achievements = result
	return res, nil
}

type ListNotificationsRequest struct {
	auth.AuthInput
}

type ListNotificationsResponse struct {
	Body struct {
		Notifications []models.AchievementNotification `json:"notifications"`
	}
}

// HandleListNotifications returns unviewed completion events, newest first.
func (h *AchievementHandler) HandleListNotifications(ctx context.Context, input *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var notifications []models.AchievementNotification
	err = h.db.Preload("Achievement").
		Where("user_id = ? AND is_viewed = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get notifications: " + err.Error())
	}

	res := &ListNotificationsResponse{}
	res.Body.Notifications = notifications
	return res, nil
}

type MarkNotificationViewedRequest struct {
	auth.AuthInput
	NotificationID uint `path:"id"`
}

type MarkNotificationViewedResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleMarkNotificationViewed flips the viewed flag. Repeat calls are
// harmless.
func (h *AchievementHandler) HandleMarkNotificationViewed(ctx context.Context, input *MarkNotificationViewedRequest) (*MarkNotificationViewedResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var notification models.AchievementNotification
	err = h.db.Where("id = ? AND user_id = ?", input.NotificationID, userID).First(&notification).Error
	if err != nil {
		return nil, huma.Error404NotFound("Notification not found")
	}

	if !notification.IsViewed {
		notification.IsViewed = true
		if err := h.db.Save(&notification).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to mark notification: " + err.Error())
		}
	}

	res := &MarkNotificationViewedResponse{}
	res.Body.Message = "Notification marked as viewed"
	return res, nil
}

type CheckAchievementsRequest struct {
	auth.AuthInput
}

type CheckAchievementsResponse struct {
	Body struct {
		Message        string               `json:"message"`
		NewlyCompleted []models.Achievement `json:"newly_completed"`
	}
}

// HandleCheck runs a retroactive evaluation over every category.
func (h *AchievementHandler) HandleCheck(ctx context.Context, input *CheckAchievementsRequest) (*CheckAchievementsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	newlyCompleted, err := h.achievements.RunRetroactiveCheck(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res := &CheckAchievementsResponse{}
	res.Body.Message = fmt.Sprintf("Achievement check complete. %d new achievements earned.", len(newlyCompleted))
	res.Body.NewlyCompleted = newlyCompleted
	return res, nil
}
