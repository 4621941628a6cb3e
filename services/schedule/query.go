package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carebook/config"
	"carebook/models"
	"carebook/utils"
)

// PreviewMonth merges the rule store and the slot ledger into the month's full
// grid for calendar rendering. The flattened view sits behind a short-TTL
// Redis cache; every write for the provider drops the affected month's entry.
func (s *DefaultScheduleService) PreviewMonth(ctx context.Context, providerID string, year, month int) ([]models.SlotView, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Message: fmt.Sprintf("month %d is out of range 1-12", month)}
	}

	key := previewCacheKey(providerID, year, month)
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, key).Bytes()
		if err == nil {
			var views []models.SlotView
			if json.Unmarshal(cached, &views) == nil {
				return views, nil
			}
		}
	}

	slots, err := s.slotsForMonth(ctx, providerID, year, month)
	if err != nil {
		return nil, err
	}
	views := make([]models.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slot.View())
	}

	if s.Cache != nil {
		if payload, err := json.Marshal(views); err == nil {
			ttl := time.Duration(config.AppConfig.PreviewCacheTTL) * time.Second
			if ttl <= 0 {
				ttl = 30 * time.Second
			}
			if err := s.Cache.Set(ctx, key, payload, ttl).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache month preview", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return views, nil
}

func previewCacheKey(providerID string, year, month int) string {
	return fmt.Sprintf("preview:%s:%04d-%02d", providerID, year, month)
}

// dropPreviewCacheForDate invalidates the cached preview of the month the date
// belongs to. Cache trouble is logged, never surfaced: the TTL bounds staleness.
func (s *DefaultScheduleService) dropPreviewCacheForDate(ctx context.Context, providerID, date string) {
	if s.Cache == nil {
		return
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return
	}
	key := previewCacheKey(providerID, day.Year(), int(day.Month()))
	if err := s.Cache.Del(ctx, key).Err(); err != nil {
		utils.GetLogger().Warn("failed to drop month preview cache", zap.String("key", key), zap.Error(err))
	}
}
