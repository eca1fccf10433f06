package achievements

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"github.com/the-aether-lab/aether-lab-api/internal/notifier"
	"gorm.io/gorm"
)

// Trigger is the coarse event tag deciding which achievement categories are
// worth re-evaluating.
type Trigger string

const (
	TriggerCollectionUpdate Trigger = "collection_update"
	TriggerDeckUpdate       Trigger = "deck_update"
	TriggerRetroactive      Trigger = "retroactive"
)

// triggerCategories routes triggers to the achievement categories they can
// affect. Discovery achievements measure collection composition, so they are
// only re-checked on collection mutations.
var triggerCategories = map[Trigger][]string{
	TriggerCollectionUpdate: {"collection", "discovery", "mastery"},
	TriggerDeckUpdate:       {"deck", "mastery"},
	TriggerRetroactive:      {"collection", "deck", "discovery", "mastery"},
}

type Service struct {
	db       *gorm.DB
	notifier notifier.Notifier
}

func NewService(db *gorm.DB, notifier notifier.Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// Evaluate re-checks every active achievement matching the trigger against
// the user's current collection and deck state, upserts progress rows and
// returns the achievements that completed during this call. Each definition
// is persisted in its own transaction, so a failure partway through leaves
// earlier updates durable.
func (s *Service) Evaluate(userID uint, trigger Trigger) ([]models.Achievement, error) {
	var definitions []models.Achievement
	if err := s.db.Where("is_active = ?", true).Find(&definitions).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	newlyCompleted := []models.Achievement{}

	for _, definition := range definitions {
		if !s.shouldCheck(definition, trigger) {
			continue
		}

		progress, err := s.calculateProgress(userID, definition.Criteria)
		if err != nil {
			return newlyCompleted, fmt.Errorf("failed to evaluate %q: %w", definition.Name, err)
		}

		completed, err := s.updateUserProgress(userID, definition, progress)
		if err != nil {
			return newlyCompleted, fmt.Errorf("failed to record progress for %q: %w", definition.Name, err)
		}
		if completed {
			newlyCompleted = append(newlyCompleted, definition)
		}
	}

	if len(newlyCompleted) > 0 {
		s.announce(userID, newlyCompleted)
	}

	return newlyCompleted, nil
}

// RunRetroactiveCheck re-evaluates every category against existing data.
func (s *Service) RunRetroactiveCheck(userID uint) ([]models.Achievement, error) {
	return s.Evaluate(userID, TriggerRetroactive)
}

func (s *Service) shouldCheck(definition models.Achievement, trigger Trigger) bool {
	for _, category := range triggerCategories[trigger] {
		if definition.Category == category {
			return true
		}
	}
	return false
}

func (s *Service) calculateProgress(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	switch criteria.Type {
	case models.CriteriaCollectionCount:
		return s.checkCollectionCount(userID, criteria)
	case models.CriteriaDeckCount:
		return s.checkDeckCount(userID, criteria)
	case models.CriteriaCardCriteria:
		return s.checkCardCriteria(userID, criteria)
	case models.CriteriaDeckCriteria:
		return s.checkDeckCriteria(userID, criteria)
	case models.CriteriaBannedCards:
		return s.checkBannedCards(userID, criteria)
	}
	return models.ProgressSnapshot{Current: 0, Target: criteria.TargetOrDefault()}, nil
}

func snapshot(current, target int) models.ProgressSnapshot {
	return models.ProgressSnapshot{
		Current:   current,
		Target:    target,
		Completed: current >= target,
	}
}

// checkCollectionCount counts either distinct printing buckets (unique) or
// the summed quantity across all of them.
func (s *Service) checkCollectionCount(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	target := criteria.TargetOrDefault()

	if criteria.Unique {
		var count int64
		err := s.db.Model(&models.CollectionCard{}).Where("user_id = ?", userID).Count(&count).Error
		if err != nil {
			return models.ProgressSnapshot{}, err
		}
		return snapshot(int(count), target), nil
	}

	var total *int
	err := s.db.Model(&models.CollectionCard{}).
		Where("user_id = ?", userID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return models.ProgressSnapshot{}, err
	}
	current := 0
	if total != nil {
		current = *total
	}
	return snapshot(current, target), nil
}

func (s *Service) checkDeckCount(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	target := criteria.TargetOrDefault()

	var count int64
	if err := s.db.Model(&models.Deck{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return models.ProgressSnapshot{}, err
	}
	return snapshot(int(count), target), nil
}

// checkCardCriteria counts the user's printing buckets whose card matches all
// provided filter predicates. Each bucket counts once regardless of quantity.
func (s *Service) checkCardCriteria(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	target := criteria.TargetOrDefault()
	filter := criteria.Filter
	if filter == nil {
		return models.ProgressSnapshot{}, fmt.Errorf("card_criteria requires a filter")
	}

	var owned []models.CollectionCard
	err := s.db.Preload("Card").Where("user_id = ?", userID).Find(&owned).Error
	if err != nil {
		return models.ProgressSnapshot{}, err
	}

	current := 0
	for _, entry := range owned {
		if matchesCardFilter(entry.Card, filter) {
			current++
		}
	}
	return snapshot(current, target), nil
}

func matchesCardFilter(card models.Card, filter *models.CardFilter) bool {
	if filter.Rarity != "" && card.Rarity != filter.Rarity {
		return false
	}
	if filter.MonoColor() {
		if len(card.Colors) != 1 {
			return false
		}
	} else if required := filter.ColorList(); len(required) > 0 {
		for _, color := range required {
			if !containsColor(card.Colors, color) {
				return false
			}
		}
	}
	if filter.TypeLine != "" && !strings.Contains(card.TypeLine, filter.TypeLine) {
		return false
	}
	return true
}

func containsColor(colors models.StringList, color string) bool {
	for _, c := range colors {
		if c == color {
			return true
		}
	}
	return false
}

func (s *Service) checkDeckCriteria(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	target := criteria.TargetOrDefault()
	filter := criteria.Filter
	if filter == nil {
		return models.ProgressSnapshot{}, fmt.Errorf("deck_criteria requires a filter")
	}

	switch filter.Type {
	case models.DeckFilterCreatureTypes:
		return s.checkCreatureTypeDiversity(userID, target)
	case models.DeckFilterFormatLegal:
		// Format legality is a placeholder until a banned/restricted list
		// source is wired up.
		return models.ProgressSnapshot{Current: 0, Target: target}, nil
	}
	return models.ProgressSnapshot{Current: 0, Target: target}, nil
}

// checkCreatureTypeDiversity counts the distinct creature subtypes appearing
// in the mainboards of the user's decks.
func (s *Service) checkCreatureTypeDiversity(userID uint, target int) (models.ProgressSnapshot, error) {
	var entries []models.DeckCard
	err := s.db.Preload("Card").
		Joins("JOIN decks ON decks.id = deck_cards.deck_id").
		Where("decks.user_id = ? AND deck_cards.card_type = ?", userID, models.ZoneMainboard).
		Find(&entries).Error
	if err != nil {
		return models.ProgressSnapshot{}, err
	}

	seen := map[string]bool{}
	for _, entry := range entries {
		for _, subtype := range creatureSubtypes(entry.Card.TypeLine) {
			seen[subtype] = true
		}
	}
	return snapshot(len(seen), target), nil
}

// creatureSubtypes extracts the subtype tokens after the em-dash of a
// creature type line. Lines without the separator yield nothing.
func creatureSubtypes(typeLine string) []string {
	if !strings.Contains(strings.ToLower(typeLine), "creature") {
		return nil
	}
	_, after, found := strings.Cut(typeLine, "—")
	if !found {
		return nil
	}
	var subtypes []string
	for _, token := range strings.Fields(after) {
		if strings.ToLower(token) == "creature" {
			continue
		}
		subtypes = append(subtypes, token)
	}
	return subtypes
}

// checkBannedCards is a placeholder: it needs a banned-list source, so it
// always reports zero progress and never completes.
func (s *Service) checkBannedCards(userID uint, criteria models.Criteria) (models.ProgressSnapshot, error) {
	return models.ProgressSnapshot{Current: 0, Target: criteria.TargetOrDefault()}, nil
}

// updateUserProgress upserts the per-user progress row and performs the
// one-shot completion transition. Completion is never reverted and the
// notification row is created exactly once.
func (s *Service) updateUserProgress(userID uint, definition models.Achievement, progress models.ProgressSnapshot) (bool, error) {
	completed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var userAchievement models.UserAchievement
		err := tx.Where("user_id = ? AND achievement_id = ?", userID, definition.ID).
			First(&userAchievement).Error
		if err == gorm.ErrRecordNotFound {
			userAchievement = models.UserAchievement{
				UserID:        userID,
				AchievementID: definition.ID,
				Progress:      progress,
			}
		} else if err != nil {
			return err
		} else {
			userAchievement.Progress = progress
		}

		if progress.Completed && !userAchievement.IsCompleted {
			now := time.Now().UTC()
			userAchievement.IsCompleted = true
			userAchievement.CompletedAt = &now
			completed = true
		}

		if err := tx.Save(&userAchievement).Error; err != nil {
			return err
		}

		if completed {
			notification := models.AchievementNotification{
				UserID:        userID,
				AchievementID: definition.ID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return completed, nil
}

// announce pushes completion messages out-of-band. Delivery failures are
// logged, never surfaced: progress and notifications are already durable.
func (s *Service) announce(userID uint, completed []models.Achievement) {
	if s.notifier == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		log.Printf("Failed to load user %d for achievement announcement: %v", userID, err)
		return
	}

	for _, achievement := range completed {
		if err := s.notifier.NotifyAchievement(user, achievement); err != nil {
			log.Printf("Failed to announce achievement %q: %v", achievement.Name, err)
		}
	}
}
