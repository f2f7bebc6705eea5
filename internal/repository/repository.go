package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"wanderer/internal/models"
)

// ListSystemsParams filters the system listing.
type ListSystemsParams struct {
	Limit  int
	Offset int
	Name   *string
}

// Repository is the persistence contract for the map core. The signature
// engine only ever writes whole batches through ApplySignatureDiff and always
// replaces its working set with the authoritative response.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Systems
	UpsertSystem(ctx context.Context, item *models.System) error
	GetSystemByID(ctx context.Context, id string) (*models.System, error)
	ListSystems(ctx context.Context, params ListSystemsParams) ([]models.System, error)
	CountSystems(ctx context.Context, params ListSystemsParams) (int64, error)

	// Connections
	UpsertConnection(ctx context.Context, item *models.Connection) error
	GetConnectionByID(ctx context.Context, id uint64) (*models.Connection, error)
	DeleteConnection(ctx context.Context, id uint64) error
	ListConnectionsBySystem(ctx context.Context, systemID string) ([]models.Connection, error)

	// Signatures
	ListSignaturesBySystem(ctx context.Context, systemID string) ([]models.Signature, error)
	ApplySignatureDiff(ctx context.Context, systemID string, added, updated, removed []models.Signature) ([]models.Signature, error)
	DeleteSignaturesByEveIDs(ctx context.Context, systemID string, eveIDs []string) (int64, error)
	DeleteSignaturesBefore(ctx context.Context, cutoff time.Time) (map[string]int64, error)

	// Settings
	GetSettingByKey(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, item *models.Setting) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
}
