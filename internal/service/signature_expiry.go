package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wanderer/internal/broadcast"
	"wanderer/internal/config"
	"wanderer/internal/models"
	"wanderer/internal/repository"
	"wanderer/internal/signature"
)

// SignatureExpiryService destroys stale signatures on two tiers. CleanSystem
// runs before every read or write touching one system and applies the
// per-type expiration windows. RunOnce is the periodic batch safety net
// sweeping every system against a single max-age cutoff.
type SignatureExpiryService struct {
	Repo   repository.Repository
	Config config.SignaturesConfig
	Hub    *broadcast.Hub
	Logger *zap.Logger
	Flags  *SettingsService

	// Now is swappable for tests. Nil means time.Now.
	Now func() time.Time
}

func (s *SignatureExpiryService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CleanSystem removes every expired signature in one system and returns how
// many were destroyed. Wormhole signatures age against the wormhole window,
// everything else against the default window; a window of 0 hours disables
// that expiration type. With PreserveConnected set, a wormhole signature
// whose eve id is still referenced by a connection of the system outlives
// its window.
func (s *SignatureExpiryService) CleanSystem(ctx context.Context, systemID string) (int, error) {
	if s == nil || s.Repo == nil {
		return 0, nil
	}
	now := s.now()

	var whCutoff, defCutoff time.Time
	if h := s.Config.WormholeExpirationHours; h > 0 {
		whCutoff = now.Add(-time.Duration(h) * time.Hour)
	}
	if h := s.Config.DefaultExpirationHours; h > 0 {
		defCutoff = now.Add(-time.Duration(h) * time.Hour)
	}
	if whCutoff.IsZero() && defCutoff.IsZero() {
		return 0, nil
	}

	sigs, err := s.Repo.ListSignaturesBySystem(ctx, systemID)
	if err != nil {
		return 0, err
	}
	if len(sigs) == 0 {
		return 0, nil
	}

	connected := map[string]bool{}
	if s.Config.PreserveConnected {
		conns, err := s.Repo.ListConnectionsBySystem(ctx, systemID)
		if err != nil {
			return 0, err
		}
		for _, c := range conns {
			if c.SignatureEveID != "" {
				connected[c.SignatureEveID] = true
			}
		}
	}

	var expired []string
	for _, sig := range sigs {
		if s.expiredAt(sig, whCutoff, defCutoff, connected) {
			expired = append(expired, sig.EveID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	n, err := s.Repo.DeleteSignaturesByEveIDs(ctx, systemID, expired)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if s.Logger != nil {
			s.Logger.Info("expired signatures removed",
				zap.String("system_id", systemID),
				zap.Int64("removed", n))
		}
		if s.Hub != nil {
			s.Hub.NotifySignaturesChanged(systemID)
		}
	}
	return int(n), nil
}

func (s *SignatureExpiryService) expiredAt(sig models.Signature, whCutoff, defCutoff time.Time, connected map[string]bool) bool {
	// Age counts from creation. Re-scans bump updated_at but never extend
	// a signature's lifetime.
	if sig.Group == signature.GroupWormhole {
		if whCutoff.IsZero() || !sig.InsertedAt.Before(whCutoff) {
			return false
		}
		return !connected[sig.EveID]
	}
	if defCutoff.IsZero() {
		return false
	}
	return sig.InsertedAt.Before(defCutoff)
}

// RunOnce sweeps every system's signatures older than the max-age cutoff in
// one batch delete and notifies each affected system.
func (s *SignatureExpiryService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	maxAge := s.Config.GCMaxAgeHours
	if maxAge <= 0 {
		return nil
	}
	cutoff := s.now().Add(-time.Duration(maxAge) * time.Hour)

	removed, err := s.Repo.DeleteSignaturesBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	total := int64(0)
	for systemID, n := range removed {
		if n <= 0 {
			continue
		}
		total += n
		if s.Hub != nil {
			s.Hub.NotifySignaturesChanged(systemID)
		}
	}
	if total > 0 && s.Logger != nil {
		s.Logger.Info("signature gc pass",
			zap.Int("systems", len(removed)),
			zap.Int64("removed", total))
	}
	return nil
}

// RunOnceIfEnabled is the cron entry point, gated by the DB feature switch.
func (s *SignatureExpiryService) RunOnceIfEnabled(ctx context.Context) error {
	if s != nil && s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureSignatureGC, true) {
		return nil
	}
	return s.RunOnce(ctx)
}
