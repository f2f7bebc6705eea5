package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"wanderer/internal/models"
	"wanderer/internal/repository"
)

// stubRepo is an in-memory Repository for service tests.
type stubRepo struct {
	mu       sync.Mutex
	systems  map[string]models.System
	conns    map[string][]models.Connection
	sigs     map[string][]models.Signature
	settings map[string]models.Setting
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		systems:  map[string]models.System{},
		conns:    map[string][]models.Connection{},
		sigs:     map[string][]models.Signature{},
		settings: map[string]models.Setting{},
	}
}

var _ repository.Repository = (*stubRepo)(nil)

func (r *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *stubRepo) UpsertSystem(_ context.Context, item *models.System) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[item.ID] = *item
	return nil
}

func (r *stubRepo) GetSystemByID(_ context.Context, id string) (*models.System, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.systems[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (r *stubRepo) ListSystems(_ context.Context, _ repository.ListSystemsParams) ([]models.System, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.System, 0, len(r.systems))
	for _, item := range r.systems {
		out = append(out, item)
	}
	return out, nil
}

func (r *stubRepo) CountSystems(_ context.Context, _ repository.ListSystemsParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.systems)), nil
}

func (r *stubRepo) UpsertConnection(_ context.Context, item *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[item.SystemSourceID] = append(r.conns[item.SystemSourceID], *item)
	return nil
}

func (r *stubRepo) GetConnectionByID(_ context.Context, id uint64) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, items := range r.conns {
		for _, item := range items {
			if item.ID == id {
				return &item, nil
			}
		}
	}
	return nil, nil
}

func (r *stubRepo) DeleteConnection(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sys, items := range r.conns {
		kept := items[:0]
		for _, item := range items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		r.conns[sys] = kept
	}
	return nil
}

func (r *stubRepo) ListConnectionsBySystem(_ context.Context, systemID string) ([]models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Connection{}, r.conns[systemID]...), nil
}

func (r *stubRepo) ListSignaturesBySystem(_ context.Context, systemID string) ([]models.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Signature{}, r.sigs[systemID]...), nil
}

func (r *stubRepo) ApplySignatureDiff(_ context.Context, systemID string, added, updated, removed []models.Signature) ([]models.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()

	removedIDs := map[string]bool{}
	for _, sig := range removed {
		removedIDs[sig.EveID] = true
	}
	updatedByID := map[string]models.Signature{}
	for _, sig := range updated {
		updatedByID[sig.EveID] = sig
	}

	next := make([]models.Signature, 0, len(r.sigs[systemID])+len(added))
	for _, sig := range r.sigs[systemID] {
		if removedIDs[sig.EveID] {
			continue
		}
		if upd, ok := updatedByID[sig.EveID]; ok {
			upd.InsertedAt = sig.InsertedAt
			upd.UpdatedAt = now
			sig = upd
		}
		next = append(next, sig)
	}
	for _, sig := range added {
		if sig.InsertedAt.IsZero() {
			sig.InsertedAt = now
		}
		sig.UpdatedAt = now
		next = append(next, sig)
	}
	r.sigs[systemID] = next
	return append([]models.Signature{}, next...), nil
}

func (r *stubRepo) DeleteSignaturesByEveIDs(_ context.Context, systemID string, eveIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doomed := map[string]bool{}
	for _, id := range eveIDs {
		doomed[id] = true
	}
	var n int64
	kept := r.sigs[systemID][:0]
	for _, sig := range r.sigs[systemID] {
		if doomed[sig.EveID] {
			n++
			continue
		}
		kept = append(kept, sig)
	}
	r.sigs[systemID] = kept
	return n, nil
}

func (r *stubRepo) DeleteSignaturesBefore(_ context.Context, cutoff time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for sys, sigs := range r.sigs {
		kept := sigs[:0]
		for _, sig := range sigs {
			if sig.InsertedAt.Before(cutoff) {
				out[sys]++
				continue
			}
			kept = append(kept, sig)
		}
		r.sigs[sys] = kept
	}
	return out, nil
}

func (r *stubRepo) GetSettingByKey(_ context.Context, key string) (*models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.settings[key]; ok {
		return &item, nil
	}
	return nil, nil
}

func (r *stubRepo) UpsertSetting(_ context.Context, item *models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[item.Key] = *item
	return nil
}

func (r *stubRepo) ListSettings(_ context.Context) ([]models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Setting, 0, len(r.settings))
	for _, item := range r.settings {
		out = append(out, item)
	}
	return out, nil
}
