package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"wanderer/internal/models"
	"wanderer/internal/repository"
)

const (
	FeatureSignatureGC = "feature.signature_gc"
	FeatureLazyDelete  = "feature.lazy_delete"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureSignatureGC: true,
		FeatureLazyDelete:  true,
	}
}

type SettingsService struct {
	Repo repository.Repository
}

func (s *SettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			// Upgrade OFF → ON: if the default is now true but the stored
			// value is false, update it. Never turn an ON switch OFF.
			if enabled {
				var current bool
				if err := json.Unmarshal(existing.Value, &current); err == nil && !current {
					raw, _ := json.Marshal(true)
					existing.Value = datatypes.JSON(raw)
					existing.UpdatedAt = now
					if err := s.Repo.UpsertSetting(ctx, existing); err != nil {
						return err
					}
				}
			}
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.Setting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	raw, _ := json.Marshal(enabled)
	item := &models.Setting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		UpdatedAt:   time.Now().UTC(),
	}
	return s.Repo.UpsertSetting(ctx, item)
}
