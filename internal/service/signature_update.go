package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wanderer/internal/broadcast"
	"wanderer/internal/config"
	"wanderer/internal/models"
	"wanderer/internal/pending"
	"wanderer/internal/repository"
	"wanderer/internal/signature"
)

// PasteOptions control one reconciliation pass.
type PasteOptions struct {
	// UpdateOnly keeps signatures missing from the paste instead of
	// removing them.
	UpdateOnly bool
}

// PasteResult summarizes one reconciliation pass. Signatures is the
// authoritative post-write set reloaded from persistence.
type PasteResult struct {
	Signatures []models.Signature

	Added            int
	Updated          int
	Removed          int
	PendingDeletions int
	Unrecognized     int
}

// SignatureUpdateService runs the paste pipeline for one system: expire,
// parse, merge, diff, persist, notify. All writes for a pass go through a
// single ApplySignatureDiff call so a failed pass leaves the stored set
// untouched.
type SignatureUpdateService struct {
	Repo    repository.Repository
	Config  config.SignaturesConfig
	Hub     *broadcast.Hub
	Logger  *zap.Logger
	Flags   *SettingsService
	Expiry  *SignatureExpiryService
	Tracker *pending.Tracker
}

// ApplyPaste reconciles a raw scanner paste against the stored set of one
// system. Expired signatures are cleaned first so the diff never resurrects
// a record the expiration policy already condemned.
func (s *SignatureUpdateService) ApplyPaste(ctx context.Context, systemID, raw string, opts PasteOptions) (PasteResult, error) {
	if s == nil || s.Repo == nil {
		return PasteResult{}, nil
	}
	systemID = strings.TrimSpace(systemID)
	if systemID == "" {
		return PasteResult{}, fmt.Errorf("apply paste: empty system id")
	}

	if s.Expiry != nil {
		if _, err := s.Expiry.CleanSystem(ctx, systemID); err != nil {
			return PasteResult{}, err
		}
	}

	lines := signature.ParsePaste(raw, signature.ParseOptions{
		RecognizedKinds: signature.RecognizedKinds(),
	})
	var unrecognized int
	for _, line := range lines {
		if line.Kind == signature.LineUnrecognized {
			unrecognized++
		}
	}
	parsed := signature.Signatures(lines)
	for i := range parsed {
		parsed[i].SystemID = systemID
	}

	existing, err := s.Repo.ListSignaturesBySystem(ctx, systemID)
	if err != nil {
		return PasteResult{}, err
	}

	merged := signature.Merge(append(append([]models.Signature{}, existing...), parsed...))
	incoming := restrictToParsed(merged, parsed)

	diff := signature.Diff(existing, incoming, signature.DiffOptions{
		UpdateOnly: opts.UpdateOnly,
	})

	// With lazy delete on, removals are only flagged pending; the tracker
	// finalizes them after the grace delay unless an undo intervenes.
	removedNow := diff.Removed
	var pendingDeletions []models.Signature
	if len(diff.Removed) > 0 && s.lazyDelete(ctx) {
		pendingDeletions = diff.Removed
		removedNow = nil
	}

	authoritative, err := s.Repo.ApplySignatureDiff(ctx, systemID, diff.Added, diff.Updated, removedNow)
	if err != nil {
		return PasteResult{}, err
	}

	if s.Tracker != nil {
		s.Tracker.TrackAdditions(systemID, diff.Added)
		s.Tracker.TrackDeletions(systemID, pendingDeletions)
	}

	touched := signature.Touched(existing, diff)
	if s.Hub != nil && (touched > 0 || !s.Config.SuppressUntouchedBroadcast) {
		s.Hub.NotifySignaturesChanged(systemID)
	}
	if s.Logger != nil {
		s.Logger.Info("signature paste applied",
			zap.String("system_id", systemID),
			zap.Int("added", len(diff.Added)),
			zap.Int("updated", len(diff.Updated)),
			zap.Int("removed", len(removedNow)),
			zap.Int("pending_deletions", len(pendingDeletions)),
			zap.Int("unrecognized", unrecognized))
	}

	return PasteResult{
		Signatures:       authoritative,
		Added:            len(diff.Added),
		Updated:          len(diff.Updated),
		Removed:          len(removedNow),
		PendingDeletions: len(pendingDeletions),
		Unrecognized:     unrecognized,
	}, nil
}

// restrictToParsed keeps only merged records traceable to the paste, by
// exact eve id or, for wormholes, by 3-character prefix. Without this the
// stored records the paste never mentioned would count as incoming and no
// removal could ever fire.
func restrictToParsed(merged, parsed []models.Signature) []models.Signature {
	ids := make(map[string]bool, len(parsed))
	prefixes := map[string]bool{}
	for _, p := range parsed {
		ids[p.EveID] = true
		if p.Group == signature.GroupWormhole {
			prefixes[signature.Prefix(p.EveID)] = true
		}
	}
	out := merged[:0]
	for _, rec := range merged {
		if ids[rec.EveID] || (rec.Group == signature.GroupWormhole && prefixes[signature.Prefix(rec.EveID)]) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *SignatureUpdateService) lazyDelete(ctx context.Context) bool {
	if s == nil || s.Tracker == nil || !s.Config.LazyDelete {
		return false
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureLazyDelete, true) {
		return false
	}
	return true
}

// ListSignatures expires then returns the current set of one system together
// with the tracker's pending flags keyed by eve id.
func (s *SignatureUpdateService) ListSignatures(ctx context.Context, systemID string) ([]models.Signature, map[string]pending.State, error) {
	if s == nil || s.Repo == nil {
		return nil, nil, nil
	}
	if s.Expiry != nil {
		if _, err := s.Expiry.CleanSystem(ctx, systemID); err != nil {
			return nil, nil, err
		}
	}
	sigs, err := s.Repo.ListSignaturesBySystem(ctx, systemID)
	if err != nil {
		return nil, nil, err
	}
	var states map[string]pending.State
	if s.Tracker != nil {
		states = s.Tracker.States(systemID)
	}
	return sigs, states, nil
}

// DeleteSignature removes one signature by eve id. Under lazy delete it is
// only flagged pending; otherwise it is destroyed immediately.
func (s *SignatureUpdateService) DeleteSignature(ctx context.Context, systemID, eveID string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	sigs, err := s.Repo.ListSignaturesBySystem(ctx, systemID)
	if err != nil {
		return err
	}
	var target *models.Signature
	for i := range sigs {
		if sigs[i].EveID == eveID {
			target = &sigs[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("delete signature: %s not found in %s", eveID, systemID)
	}
	if s.lazyDelete(ctx) {
		s.Tracker.TrackDeletions(systemID, []models.Signature{*target})
		if s.Hub != nil {
			s.Hub.NotifySignaturesChanged(systemID)
		}
		return nil
	}
	return s.RemoveNow(ctx, systemID, []models.Signature{*target})
}

// Undo reverts every currently pending operation in one snapshot. Systems
// whose pending deletions were only flag-cleared still get a notification so
// clients drop the stale flags.
func (s *SignatureUpdateService) Undo(ctx context.Context) (pending.UndoResult, error) {
	if s == nil || s.Tracker == nil {
		return pending.UndoResult{}, nil
	}
	res, err := s.Tracker.Undo(ctx)
	if s.Hub != nil {
		seen := map[string]bool{}
		for _, sig := range res.Deletions {
			if !seen[sig.SystemID] {
				seen[sig.SystemID] = true
				s.Hub.NotifySignaturesChanged(sig.SystemID)
			}
		}
	}
	return res, err
}

// RemoveNow is the tracker's destructive removal callback. A rows-affected
// shortfall means another writer, usually expiration, got there first.
func (s *SignatureUpdateService) RemoveNow(ctx context.Context, systemID string, sigs []models.Signature) error {
	if s == nil || s.Repo == nil || len(sigs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		ids = append(ids, sig.EveID)
	}
	n, err := s.Repo.DeleteSignaturesByEveIDs(ctx, systemID, ids)
	if err != nil {
		return err
	}
	if s.Hub != nil && n > 0 {
		s.Hub.NotifySignaturesChanged(systemID)
	}
	if n < int64(len(ids)) {
		return fmt.Errorf("remove %d of %d signatures in %s: %w", n, len(ids), systemID, pending.ErrStaleUndo)
	}
	return nil
}
