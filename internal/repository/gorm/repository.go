package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wanderer/internal/models"
	"wanderer/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Systems ----------------------------------------------------------------

func (s *Store) UpsertSystem(ctx context.Context, item *models.System) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemByID(ctx context.Context, id string) (*models.System, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.System
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystems(ctx context.Context, params repository.ListSystemsParams) ([]models.System, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.System{})
	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		query = query.Where("name ILIKE ?", "%"+strings.TrimSpace(*params.Name)+"%")
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.System
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystems(ctx context.Context, params repository.ListSystemsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.System{})
	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		query = query.Where("name ILIKE ?", "%"+strings.TrimSpace(*params.Name)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- Connections ------------------------------------------------------------

func (s *Store) UpsertConnection(ctx context.Context, item *models.Connection) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetConnectionByID(ctx context.Context, id uint64) (*models.Connection, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Connection
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteConnection(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Connection{}).Error
}

func (s *Store) ListConnectionsBySystem(ctx context.Context, systemID string) ([]models.Connection, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Connection
	err := s.db.WithContext(ctx).
		Where("system_source_id = ? OR system_target_id = ?", systemID, systemID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Signatures -------------------------------------------------------------

func (s *Store) ListSignaturesBySystem(ctx context.Context, systemID string) ([]models.Signature, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Signature
	err := s.db.WithContext(ctx).
		Where("system_id = ?", systemID).
		Order("eve_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ApplySignatureDiff writes one whole batch transactionally and returns the
// authoritative post-write set. Updates never touch inserted_at.
func (s *Store) ApplySignatureDiff(ctx context.Context, systemID string, added, updated, removed []models.Signature) ([]models.Signature, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(added) > 0 {
			now := time.Now().UTC()
			for i := range added {
				added[i].ID = 0
				added[i].SystemID = systemID
				if added[i].InsertedAt.IsZero() {
					added[i].InsertedAt = now
				}
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "system_id"}, {Name: "eve_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"kind",
					"sig_group",
					"name",
					"description",
					"custom_info",
					"updated_at",
				}),
			}).Create(&added).Error; err != nil {
				return err
			}
		}
		for _, upd := range updated {
			err := tx.Model(&models.Signature{}).
				Where("system_id = ? AND eve_id = ?", systemID, upd.EveID).
				Updates(map[string]any{
					"kind":        upd.Kind,
					"sig_group":   upd.Group,
					"name":        upd.Name,
					"description": upd.Description,
					"custom_info": upd.CustomInfo,
				}).Error
			if err != nil {
				return err
			}
		}
		if len(removed) > 0 {
			ids := make([]string, 0, len(removed))
			for _, rem := range removed {
				ids = append(ids, rem.EveID)
			}
			err := tx.
				Where("system_id = ? AND eve_id IN ?", systemID, ids).
				Delete(&models.Signature{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListSignaturesBySystem(ctx, systemID)
}

func (s *Store) DeleteSignaturesByEveIDs(ctx context.Context, systemID string, eveIDs []string) (int64, error) {
	if s == nil || s.db == nil || len(eveIDs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("system_id = ? AND eve_id IN ?", systemID, eveIDs).
		Delete(&models.Signature{})
	return res.RowsAffected, res.Error
}

// DeleteSignaturesBefore removes every signature inserted before the cutoff,
// across all systems, and reports the affected systems with their row counts
// so the caller can broadcast each one.
func (s *Store) DeleteSignaturesBefore(ctx context.Context, cutoff time.Time) (map[string]int64, error) {
	if s == nil || s.db == nil || cutoff.IsZero() {
		return nil, nil
	}
	type bucket struct {
		SystemID string
		Count    int64
	}
	affected := map[string]int64{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var buckets []bucket
		err := tx.Model(&models.Signature{}).
			Select("system_id, count(*) as count").
			Where("inserted_at < ?", cutoff).
			Group("system_id").
			Scan(&buckets).Error
		if err != nil {
			return err
		}
		if len(buckets) == 0 {
			return nil
		}
		if err := tx.Where("inserted_at < ?", cutoff).Delete(&models.Signature{}).Error; err != nil {
			return err
		}
		for _, b := range buckets {
			affected[b.SystemID] = b.Count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// --- Settings ---------------------------------------------------------------

func (s *Store) GetSettingByKey(ctx context.Context, key string) (*models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSetting(ctx context.Context, item *models.Setting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Setting
	if err := s.db.WithContext(ctx).Order("key asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
